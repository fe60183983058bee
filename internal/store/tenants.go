package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beesaferoot/tenantflow/internal/models"
)

// TenantStore persists tenant records.
type TenantStore struct {
	db *gorm.DB
}

func NewTenantStore(db *gorm.DB) *TenantStore {
	return &TenantStore{db: db}
}

func (s *TenantStore) Create(ctx context.Context, t *models.Tenant) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *TenantStore) Get(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &t, nil
}

// GetByInvitation finds the tenant created from a given invitation, if any.
// The unique index on invitation_id guarantees at most one.
func (s *TenantStore) GetByInvitation(ctx context.Context, invitationID uuid.UUID) (*models.Tenant, error) {
	var t models.Tenant
	err := s.db.WithContext(ctx).First(&t, "invitation_id = ?", invitationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant by invitation: %w", err)
	}
	return &t, nil
}

// ProfileStore persists profile records.
type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Create(ctx context.Context, p *models.Profile) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) GetByIdentity(ctx context.Context, identityID string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).First(&p, "identity_id = ?", identityID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile by identity: %w", err)
	}
	return &p, nil
}
