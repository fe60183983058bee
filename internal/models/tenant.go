package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TenantStatus is the lifecycle state of a tenant record.
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "ACTIVE"
	TenantStatusInactive TenantStatus = "INACTIVE"
	TenantStatusEvicted  TenantStatus = "EVICTED"
	TenantStatusMovedOut TenantStatus = "MOVED_OUT"
)

// RoleTenant is the role written onto profiles created by onboarding.
const RoleTenant = "TENANT"

// Tenant is a live renter created exactly once per successful onboarding.
// The unique index on InvitationID is what makes tenant creation idempotent
// when a stalled onboarding attempt is resumed.
type Tenant struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// IdentityID is the opaque id of the authentication account owning this
	// tenant, handed back by the identity service.
	IdentityID   string    `gorm:"size:128;not null;index" json:"identity_id"`
	InvitationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"invitation_id"`
	LandlordID   uuid.UUID `gorm:"type:uuid;not null;index" json:"landlord_id"`
	PropertyID   uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	// UnitID is nil when the tenant is attached to the whole property.
	UnitID *uuid.UUID `gorm:"type:uuid;index" json:"unit_id,omitempty"`

	Email     string `gorm:"size:255;not null;index" json:"email"`
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Phone     string `gorm:"size:30" json:"phone,omitempty"`

	LeaseStart      time.Time       `json:"lease_start"`
	LeaseEnd        time.Time       `json:"lease_end"`
	RentAmount      decimal.Decimal `gorm:"type:numeric(12,2)" json:"rent_amount"`
	SecurityDeposit decimal.Decimal `gorm:"type:numeric(12,2)" json:"security_deposit"`

	Status TenantStatus `gorm:"size:20;not null;default:'ACTIVE';index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Profile is the durable profile record tying an authentication identity to
// the person behind it. One profile per identity.
type Profile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	IdentityID string    `gorm:"size:128;not null;uniqueIndex" json:"identity_id"`
	Email      string    `gorm:"size:255;not null;index" json:"email"`
	FirstName  string    `gorm:"size:100;not null" json:"first_name"`
	LastName   string    `gorm:"size:100;not null" json:"last_name"`
	Phone      string    `gorm:"size:30" json:"phone,omitempty"`
	Role       string    `gorm:"size:20;not null" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
