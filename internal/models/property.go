package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnitStatus is the occupancy state of a single rentable unit.
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "AVAILABLE"
	UnitStatusOccupied    UnitStatus = "OCCUPIED"
	UnitStatusMaintenance UnitStatus = "MAINTENANCE"
)

// Property is a rental property owned by a landlord. AvailableUnits is a
// denormalized counter: it is always recomputed from the actual unit
// statuses, never incremented in place.
type Property struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LandlordID uuid.UUID `gorm:"type:uuid;not null;index" json:"landlord_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Address    string    `gorm:"size:500" json:"address"`

	TotalUnits     int `gorm:"not null;default:0" json:"total_units"`
	AvailableUnits int `gorm:"not null;default:0" json:"available_units"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Unit is a single rentable unit within a property. Status moves to OCCUPIED
// only as a side effect of a successfully created, active tenant on the unit.
type Unit struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PropertyID uuid.UUID  `gorm:"type:uuid;not null;index" json:"property_id"`
	UnitNumber string     `gorm:"size:50;not null" json:"unit_number"`
	Status     UnitStatus `gorm:"size:20;not null;default:'AVAILABLE';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Unit) TableName() string {
	return "units"
}

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
