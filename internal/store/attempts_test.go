package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beesaferoot/tenantflow/internal/models"
	"github.com/beesaferoot/tenantflow/internal/store"
)

func TestAttemptStore_StageProgression(t *testing.T) {
	db := setupTestDB(t)
	attempts := store.NewAttemptStore(db)
	ctx := context.Background()

	att := &models.OnboardingAttempt{
		InvitationID: uuid.New(),
		IdentityID:   "auth-1",
		Stage:        models.StageTokenValid,
		Status:       models.AttemptRunning,
	}
	require.NoError(t, attempts.Create(ctx, att))

	require.NoError(t, attempts.SetStage(ctx, att.ID, models.StageInvitationMarked))
	tenantID := uuid.New()
	require.NoError(t, attempts.SetTenant(ctx, att.ID, tenantID))
	require.NoError(t, attempts.RecordError(ctx, att.ID, errors.New("boom")))

	got, err := attempts.Get(ctx, att.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StageInvitationMarked, got.Stage)
	assert.Equal(t, models.AttemptRunning, got.Status)
	assert.Equal(t, "boom", got.LastError)
	require.NotNil(t, got.TenantID)
	assert.Equal(t, tenantID, *got.TenantID)

	require.NoError(t, attempts.MarkSucceeded(ctx, att.ID))
	got, err = attempts.Get(ctx, att.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptSucceeded, got.Status)
	assert.Equal(t, models.StageNotified, got.Stage)
	assert.Empty(t, got.LastError)
}

func TestAttemptStore_ListStalled(t *testing.T) {
	db := setupTestDB(t)
	attempts := store.NewAttemptStore(db)
	ctx := context.Background()

	stalled := &models.OnboardingAttempt{
		InvitationID: uuid.New(),
		IdentityID:   "auth-1",
		Stage:        models.StageInvitationMarked,
		Status:       models.AttemptRunning,
	}
	require.NoError(t, attempts.Create(ctx, stalled))

	// TOKEN_VALID attempts are included: the reconciler has to settle
	// whether their mark-verified write landed.
	preMark := &models.OnboardingAttempt{
		InvitationID: uuid.New(),
		IdentityID:   "auth-2",
		Stage:        models.StageTokenValid,
		Status:       models.AttemptRunning,
	}
	require.NoError(t, attempts.Create(ctx, preMark))

	done := &models.OnboardingAttempt{
		InvitationID: uuid.New(),
		IdentityID:   "auth-3",
		Stage:        models.StageNotified,
		Status:       models.AttemptSucceeded,
	}
	require.NoError(t, attempts.Create(ctx, done))

	got, err := attempts.ListStalled(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, got, 2)
	gotIDs := []uuid.UUID{got[0].ID, got[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{stalled.ID, preMark.ID}, gotIDs)

	// A cutoff in the past matches nothing that was just written.
	got, err = attempts.ListStalled(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, got)
}
