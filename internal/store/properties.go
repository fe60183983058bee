package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beesaferoot/tenantflow/internal/models"
)

// PropertyStore persists properties and their units.
type PropertyStore struct {
	db *gorm.DB
}

func NewPropertyStore(db *gorm.DB) *PropertyStore {
	return &PropertyStore{db: db}
}

func (s *PropertyStore) CreateProperty(ctx context.Context, p *models.Property) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create property: %w", err)
	}
	return nil
}

func (s *PropertyStore) CreateUnit(ctx context.Context, u *models.Unit) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

func (s *PropertyStore) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	var p models.Property
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get property: %w", err)
	}
	return &p, nil
}

func (s *PropertyStore) GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	var u models.Unit
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &u, nil
}

func (s *PropertyStore) SetUnitStatus(ctx context.Context, id uuid.UUID, status models.UnitStatus) error {
	res := s.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("set unit status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOccupiedUnits recounts occupied units from scratch. The occupancy
// accountant derives available_units from this rather than trusting the
// stored counter, so any previous drift self-heals on the next recompute.
func (s *PropertyStore) CountOccupiedUnits(ctx context.Context, propertyID uuid.UUID) (int, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Unit{}).
		Where("property_id = ? AND status = ?", propertyID, models.UnitStatusOccupied).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count occupied units: %w", err)
	}
	return int(n), nil
}

func (s *PropertyStore) SetAvailableUnits(ctx context.Context, propertyID uuid.UUID, available int) error {
	res := s.db.WithContext(ctx).
		Model(&models.Property{}).
		Where("id = ?", propertyID).
		Update("available_units", available)
	if res.Error != nil {
		return fmt.Errorf("set available units: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
