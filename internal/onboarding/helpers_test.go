package onboarding_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/beesaferoot/tenantflow/internal/mailer"
	"github.com/beesaferoot/tenantflow/internal/migrate"
	"github.com/beesaferoot/tenantflow/internal/models"
	"github.com/beesaferoot/tenantflow/internal/onboarding"
	"github.com/beesaferoot/tenantflow/internal/store"
)

type fixture struct {
	t *testing.T

	db          *gorm.DB
	invitations *store.InvitationStore
	properties  *store.PropertyStore
	profiles    *store.ProfileStore
	tenants     *store.TenantStore
	attempts    *store.AttemptStore

	notifier *fakeNotifier
	identity *fakeIdentity
}

func newFixture(t *testing.T) *fixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migrate.NewMigrator(db).Up())

	return &fixture{
		t:           t,
		db:          db,
		invitations: store.NewInvitationStore(db),
		properties:  store.NewPropertyStore(db),
		profiles:    store.NewProfileStore(db),
		tenants:     store.NewTenantStore(db),
		attempts:    store.NewAttemptStore(db),
		notifier:    &fakeNotifier{},
		identity:    &fakeIdentity{id: "auth-123"},
	}
}

func (f *fixture) deps() onboarding.Deps {
	return onboarding.Deps{
		Invitations: f.invitations,
		Properties:  f.properties,
		Profiles:    f.profiles,
		Tenants:     f.tenants,
		Attempts:    f.attempts,
		Identity:    f.identity,
		Notifier:    f.notifier,
		Log:         zerolog.Nop(),
	}
}

func (f *fixture) orchestrator(mod func(*onboarding.Deps)) *onboarding.Orchestrator {
	d := f.deps()
	if mod != nil {
		mod(&d)
	}
	return onboarding.NewOrchestrator(d)
}

// createProperty seeds a property with units, the first occupiedCount of
// which start out OCCUPIED.
func (f *fixture) createProperty(totalUnits, occupiedCount int) (*models.Property, []*models.Unit) {
	ctx := context.Background()
	prop := &models.Property{
		LandlordID:     uuid.New(),
		Name:           "Riverside Court",
		TotalUnits:     totalUnits,
		AvailableUnits: totalUnits - occupiedCount,
	}
	require.NoError(f.t, f.properties.CreateProperty(ctx, prop))

	var units []*models.Unit
	for i := 0; i < totalUnits; i++ {
		u := &models.Unit{PropertyID: prop.ID, UnitNumber: string(rune('A' + i))}
		if i < occupiedCount {
			u.Status = models.UnitStatusOccupied
		}
		require.NoError(f.t, f.properties.CreateUnit(ctx, u))
		units = append(units, u)
	}
	return prop, units
}

func (f *fixture) createInvitation(prop *models.Property, unitID *uuid.UUID, token string) *models.Invitation {
	inv := &models.Invitation{
		LandlordID:        prop.LandlordID,
		PropertyID:        prop.ID,
		UnitID:            unitID,
		Email:             "renter@example.com",
		FirstName:         "Dana",
		LastName:          "Okafor",
		Phone:             "555-0102",
		LeaseStart:        time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		LeaseEnd:          time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		RentAmount:        decimal.RequireFromString("1450.00"),
		SecurityDeposit:   decimal.RequireFromString("2900.00"),
		VerificationToken: token,
		ExpiresAt:         time.Now().Add(24 * time.Hour),
	}
	require.NoError(f.t, f.invitations.Create(context.Background(), inv))
	return inv
}

// latestAttempt fetches the most recent attempt for an invitation.
func (f *fixture) latestAttempt(inv *models.Invitation) *models.OnboardingAttempt {
	var att models.OnboardingAttempt
	err := f.db.Where("invitation_id = ?", inv.ID).Order("created_at DESC").First(&att).Error
	require.NoError(f.t, err)
	return &att
}

// timeAfterNow is a stalled-attempt cutoff that includes rows written
// moments ago.
func timeAfterNow(t *testing.T) time.Time {
	t.Helper()
	return time.Now().Add(time.Minute)
}

type sentMail struct {
	kind    mailer.Kind
	payload mailer.Payload
}

type fakeNotifier struct {
	sent []sentMail
	err  error
}

func (n *fakeNotifier) Send(ctx context.Context, kind mailer.Kind, p mailer.Payload) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, sentMail{kind: kind, payload: p})
	return nil
}

type fakeIdentity struct {
	id    string
	err   error
	calls int
}

func (f *fakeIdentity) CreateIdentity(ctx context.Context, email, password string, metadata map[string]string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.id, nil
}

// failingProfiles fails every Create, simulating the profile writer's
// backing store going away mid-flow.
type failingProfiles struct {
	onboarding.ProfileStore
	err error
}

func (f *failingProfiles) Create(ctx context.Context, p *models.Profile) error {
	return f.err
}

// failingAttempts drops the first SetStage write, simulating a crash in the
// window between the mark-verified write and the stage record landing.
type failingAttempts struct {
	onboarding.AttemptStore
	err   error
	fired bool
}

func (f *failingAttempts) SetStage(ctx context.Context, id uuid.UUID, stage models.OnboardingStage) error {
	if !f.fired {
		f.fired = true
		return f.err
	}
	return f.AttemptStore.SetStage(ctx, id, stage)
}

// failingOccupancy fails the availability write.
type failingOccupancy struct {
	onboarding.PropertyStore
	err error
}

func (f *failingOccupancy) SetAvailableUnits(ctx context.Context, propertyID uuid.UUID, available int) error {
	return f.err
}
