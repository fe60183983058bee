package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultInvitationTTL is how long a freshly issued (or resent) invitation
// token stays valid.
const DefaultInvitationTTL = 7 * 24 * time.Hour

// Invitation is a landlord-issued, time-boxed, single-use offer for a
// prospective tenant to create an account. The verification token is spent
// exactly once: IsVerified flips to true at most one time, and VerifiedAt is
// set in the same write.
type Invitation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LandlordID uuid.UUID `gorm:"type:uuid;not null;index" json:"landlord_id"`
	PropertyID uuid.UUID `gorm:"type:uuid;not null;index" json:"property_id"`
	// UnitID is nil when the tenant is invited to the property as a whole
	// rather than to a specific unit.
	UnitID *uuid.UUID `gorm:"type:uuid;index" json:"unit_id,omitempty"`

	Email     string `gorm:"size:255;not null;index" json:"email"`
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Phone     string `gorm:"size:30" json:"phone,omitempty"`

	// Lease terms, copied forward into the Tenant on successful onboarding.
	LeaseStart      time.Time       `json:"lease_start"`
	LeaseEnd        time.Time       `json:"lease_end"`
	RentAmount      decimal.Decimal `gorm:"type:numeric(12,2)" json:"rent_amount"`
	SecurityDeposit decimal.Decimal `gorm:"type:numeric(12,2)" json:"security_deposit"`

	VerificationToken string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	ExpiresAt         time.Time  `gorm:"not null;index" json:"expires_at"`
	IsVerified        bool       `gorm:"not null;default:false" json:"is_verified"`
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Invitation) TableName() string {
	return "invitations"
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.ExpiresAt.IsZero() {
		i.ExpiresAt = time.Now().Add(DefaultInvitationTTL)
	}
	return nil
}

// IsExpired reports whether the invitation's token window has closed at the
// given instant. Expiry is a strict comparison with no grace period.
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
