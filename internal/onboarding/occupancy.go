package onboarding

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/beesaferoot/tenantflow/internal/models"
)

// PropertyStore is the unit/property surface the onboarding flow mutates.
type PropertyStore interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error)
	GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error)
	SetUnitStatus(ctx context.Context, id uuid.UUID, status models.UnitStatus) error
	CountOccupiedUnits(ctx context.Context, propertyID uuid.UUID) (int, error)
	SetAvailableUnits(ctx context.Context, propertyID uuid.UUID, available int) error
}

// Accountant keeps a property's denormalized available_units counter
// consistent with the actual unit statuses.
type Accountant struct {
	properties PropertyStore
}

func NewAccountant(properties PropertyStore) *Accountant {
	return &Accountant{properties: properties}
}

// RecomputeAvailability re-derives available_units from a full recount of
// occupied units and writes it back, returning the new value. A recount
// costs one extra read per update but self-heals from any previous drift,
// which an increment/decrement scheme would instead carry forward. It must
// run only after the triggering unit-status flip is durably written.
func (a *Accountant) RecomputeAvailability(ctx context.Context, propertyID uuid.UUID) (int, error) {
	occupied, err := a.properties.CountOccupiedUnits(ctx, propertyID)
	if err != nil {
		return 0, fmt.Errorf("recompute availability: %w", err)
	}

	prop, err := a.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return 0, fmt.Errorf("recompute availability: %w", err)
	}

	available := prop.TotalUnits - occupied
	if err := a.properties.SetAvailableUnits(ctx, propertyID, available); err != nil {
		return 0, fmt.Errorf("recompute availability: %w", err)
	}
	return available, nil
}
