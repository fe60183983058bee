package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beesaferoot/tenantflow/internal/migrate"
	"github.com/beesaferoot/tenantflow/internal/models"
	"github.com/beesaferoot/tenantflow/internal/store"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrate.NewMigrator(db).Up())
	return db
}

func newInvitation(landlordID uuid.UUID, token string) *models.Invitation {
	return &models.Invitation{
		LandlordID:        landlordID,
		PropertyID:        uuid.New(),
		Email:             "renter@example.com",
		FirstName:         "Dana",
		LastName:          "Okafor",
		VerificationToken: token,
		ExpiresAt:         time.Now().Add(24 * time.Hour),
	}
}

func TestInvitationStore_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	invitations := store.NewInvitationStore(db)
	ctx := context.Background()

	inv := newInvitation(uuid.New(), "abc")
	require.NoError(t, invitations.Create(ctx, inv))
	assert.NotEqual(t, uuid.Nil, inv.ID)

	got, err := invitations.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "renter@example.com", got.Email)
	assert.False(t, got.IsVerified)
	assert.Nil(t, got.VerifiedAt)
}

func TestInvitationStore_Get_NotFound(t *testing.T) {
	db := setupTestDB(t)
	invitations := store.NewInvitationStore(db)

	_, err := invitations.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInvitationStore_MarkVerified_FirstCallerWins(t *testing.T) {
	db := setupTestDB(t)
	invitations := store.NewInvitationStore(db)
	ctx := context.Background()

	inv := newInvitation(uuid.New(), "abc")
	require.NoError(t, invitations.Create(ctx, inv))

	now := time.Now()
	won, err := invitations.MarkVerified(ctx, inv.ID, "abc", now)
	require.NoError(t, err)
	assert.True(t, won)

	// The losing side of the race sees the conditional update match nothing.
	won, err = invitations.MarkVerified(ctx, inv.ID, "abc", now)
	require.NoError(t, err)
	assert.False(t, won)

	got, err := invitations.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	require.NotNil(t, got.VerifiedAt)
}

func TestInvitationStore_MarkVerified_WrongToken(t *testing.T) {
	db := setupTestDB(t)
	invitations := store.NewInvitationStore(db)
	ctx := context.Background()

	inv := newInvitation(uuid.New(), "abc")
	require.NoError(t, invitations.Create(ctx, inv))

	won, err := invitations.MarkVerified(ctx, inv.ID, "nope", time.Now())
	require.NoError(t, err)
	assert.False(t, won)

	got, err := invitations.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.False(t, got.IsVerified)
}

func TestInvitationStore_RotateToken(t *testing.T) {
	db := setupTestDB(t)
	invitations := store.NewInvitationStore(db)
	ctx := context.Background()

	inv := newInvitation(uuid.New(), "old-token")
	require.NoError(t, invitations.Create(ctx, inv))

	newExpiry := time.Now().Add(7 * 24 * time.Hour)
	require.NoError(t, invitations.RotateToken(ctx, inv.ID, "new-token", newExpiry))

	got, err := invitations.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-token", got.VerificationToken)
	assert.WithinDuration(t, newExpiry, got.ExpiresAt, time.Second)
	assert.False(t, got.IsVerified)
}

func TestInvitationStore_RotateToken_LeavesVerifiedFlag(t *testing.T) {
	db := setupTestDB(t)
	invitations := store.NewInvitationStore(db)
	ctx := context.Background()

	inv := newInvitation(uuid.New(), "abc")
	require.NoError(t, invitations.Create(ctx, inv))

	won, err := invitations.MarkVerified(ctx, inv.ID, "abc", time.Now())
	require.NoError(t, err)
	require.True(t, won)

	require.NoError(t, invitations.RotateToken(ctx, inv.ID, "rotated", time.Now().Add(time.Hour)))

	got, err := invitations.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified, "resend must not resurrect a spent invitation")
}

func TestInvitationStore_Delete(t *testing.T) {
	db := setupTestDB(t)
	invitations := store.NewInvitationStore(db)
	ctx := context.Background()

	inv := newInvitation(uuid.New(), "abc")
	require.NoError(t, invitations.Create(ctx, inv))

	require.NoError(t, invitations.Delete(ctx, inv.ID))
	_, err := invitations.Get(ctx, inv.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.ErrorIs(t, invitations.Delete(ctx, inv.ID), store.ErrNotFound)
}

func TestInvitationStore_ListByLandlord(t *testing.T) {
	db := setupTestDB(t)
	invitations := store.NewInvitationStore(db)
	ctx := context.Background()

	landlord := uuid.New()
	other := uuid.New()

	first := newInvitation(landlord, "t1")
	second := newInvitation(landlord, "t2")
	third := newInvitation(other, "t3")
	require.NoError(t, invitations.Create(ctx, first))
	require.NoError(t, invitations.Create(ctx, second))
	require.NoError(t, invitations.Create(ctx, third))

	got, err := invitations.ListByLandlord(ctx, landlord)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
