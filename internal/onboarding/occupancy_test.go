package onboarding_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/tenantflow/internal/models"
	"github.com/beesaferoot/tenantflow/internal/onboarding"
)

func TestAccountant_RecomputesFromScratch(t *testing.T) {
	f := newFixture(t)
	prop, units := f.createProperty(4, 2)
	ctx := context.Background()

	// A third unit flips to OCCUPIED; available goes from 2 to 1.
	require.NoError(t, f.properties.SetUnitStatus(ctx, units[2].ID, models.UnitStatusOccupied))

	accountant := onboarding.NewAccountant(f.properties)
	available, err := accountant.RecomputeAvailability(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, available)

	got, err := f.properties.GetProperty(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableUnits)
}

func TestAccountant_SelfHealsFromDrift(t *testing.T) {
	f := newFixture(t)
	prop, _ := f.createProperty(4, 1)
	ctx := context.Background()

	// Simulate a drifted counter left behind by some earlier failure.
	require.NoError(t, f.properties.SetAvailableUnits(ctx, prop.ID, 0))

	accountant := onboarding.NewAccountant(f.properties)
	available, err := accountant.RecomputeAvailability(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, available)
}

func TestAccountant_RecomputeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	prop, _ := f.createProperty(4, 2)
	ctx := context.Background()

	accountant := onboarding.NewAccountant(f.properties)
	first, err := accountant.RecomputeAvailability(ctx, prop.ID)
	require.NoError(t, err)
	second, err := accountant.RecomputeAvailability(ctx, prop.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
