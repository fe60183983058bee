// Package onboarding implements the tenant onboarding workflow: verifying an
// invitation token exactly once, materializing the tenant identity across the
// auth service and the database, and keeping the denormalized occupancy
// counters consistent. The flow is an explicit saga: every stage transition
// is persisted to an onboarding attempt record before the next stage runs,
// and a reconciler rolls stalled attempts forward.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/beesaferoot/tenantflow/internal/mailer"
	"github.com/beesaferoot/tenantflow/internal/models"
	"github.com/beesaferoot/tenantflow/internal/store"
)

// InvitationStore is the invitation surface the orchestrator needs.
type InvitationStore interface {
	InvitationReader
	MarkVerified(ctx context.Context, id uuid.UUID, token string, at time.Time) (bool, error)
}

// ProfileStore writes profile records.
type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByIdentity(ctx context.Context, identityID string) (*models.Profile, error)
}

// TenantStore writes tenant records.
type TenantStore interface {
	Create(ctx context.Context, t *models.Tenant) error
	GetByInvitation(ctx context.Context, invitationID uuid.UUID) (*models.Tenant, error)
}

// AttemptStore persists the saga trail.
type AttemptStore interface {
	Create(ctx context.Context, a *models.OnboardingAttempt) error
	SetStage(ctx context.Context, id uuid.UUID, stage models.OnboardingStage) error
	SetTenant(ctx context.Context, id, tenantID uuid.UUID) error
	RecordError(ctx context.Context, id uuid.UUID, stageErr error) error
	MarkSucceeded(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, stageErr error) error
	ListStalled(ctx context.Context, updatedBefore time.Time) ([]models.OnboardingAttempt, error)
}

// IdentityProvisioner creates authentication accounts on the external auth
// service.
type IdentityProvisioner interface {
	CreateIdentity(ctx context.Context, email, password string, metadata map[string]string) (string, error)
}

// OnboardRequest is one onboarding call. IdentityID and Password are
// mutually exclusive inputs: when IdentityID is empty the orchestrator
// provisions a fresh identity from the invitation's email and Password.
type OnboardRequest struct {
	InvitationID uuid.UUID
	Token        string
	IdentityID   string
	Password     string
}

// Deps bundles the orchestrator's collaborators. Everything is injected;
// there are no package-level singletons.
type Deps struct {
	Invitations InvitationStore
	Properties  PropertyStore
	Profiles    ProfileStore
	Tenants     TenantStore
	Attempts    AttemptStore
	Identity    IdentityProvisioner
	Notifier    mailer.Notifier
	Log         zerolog.Logger
}

// Orchestrator sequences one onboarding attempt through its stages. Within
// an attempt every step is strictly ordered: a stage's write is durably
// acknowledged before the next stage starts, because later stages read state
// written by earlier ones.
type Orchestrator struct {
	invitations InvitationStore
	properties  PropertyStore
	profiles    ProfileStore
	tenants     TenantStore
	attempts    AttemptStore
	identity    IdentityProvisioner
	notifier    mailer.Notifier
	verifier    *Verifier
	accountant  *Accountant
	log         zerolog.Logger
	now         func() time.Time
}

func NewOrchestrator(d Deps) *Orchestrator {
	return &Orchestrator{
		invitations: d.Invitations,
		properties:  d.Properties,
		profiles:    d.Profiles,
		tenants:     d.Tenants,
		attempts:    d.Attempts,
		identity:    d.Identity,
		notifier:    d.Notifier,
		verifier:    NewVerifier(d.Invitations),
		accountant:  NewAccountant(d.Properties),
		log:         d.Log,
		now:         time.Now,
	}
}

// Onboard runs the full workflow for one (invitation, token, identity)
// triple. Errors before the mark-verified write leave no state behind and
// are safe to retry; errors after it leave the invitation consumed, a
// RUNNING attempt record behind, and the reconciler responsible for
// finishing the job.
func (o *Orchestrator) Onboard(ctx context.Context, req OnboardRequest) (*models.Tenant, error) {
	inv, err := o.verifier.Verify(ctx, req.InvitationID, req.Token)
	if err != nil {
		return nil, &StageError{Stage: models.StageTokenValid, Err: err}
	}

	identityID := req.IdentityID
	if identityID == "" {
		identityID, err = o.identity.CreateIdentity(ctx, inv.Email, req.Password, map[string]string{
			"first_name": inv.FirstName,
			"last_name":  inv.LastName,
		})
		if err != nil {
			// Nothing consumed yet; the invitation stays spendable.
			return nil, &StageError{Stage: models.StageTokenValid, Err: err}
		}
	}

	att := &models.OnboardingAttempt{
		InvitationID: inv.ID,
		IdentityID:   identityID,
		Stage:        models.StageTokenValid,
		Status:       models.AttemptRunning,
	}
	if err := o.attempts.Create(ctx, att); err != nil {
		return nil, &StageError{Stage: models.StageTokenValid, Err: err}
	}

	won, err := o.invitations.MarkVerified(ctx, inv.ID, req.Token, o.now())
	if err != nil {
		_ = o.attempts.MarkFailed(ctx, att.ID, err)
		return nil, &StageError{Stage: models.StageInvitationMarked, Err: err}
	}
	if !won {
		// Lost the verify-then-mark race to a concurrent call.
		_ = o.attempts.MarkFailed(ctx, att.ID, ErrAlreadyVerified)
		return nil, &StageError{Stage: models.StageInvitationMarked, Err: ErrAlreadyVerified}
	}
	if err := o.advance(ctx, att, models.StageInvitationMarked); err != nil {
		return nil, o.stall(ctx, att, models.StageInvitationMarked, err)
	}

	return o.resume(ctx, att, inv)
}

// resume executes the stages the attempt has not completed yet, starting
// from att.Stage. It is shared between the live Onboard path and the
// reconciler's roll-forward: every stage is written to be idempotent so a
// crash between a side effect and its stage write does not double-apply.
func (o *Orchestrator) resume(ctx context.Context, att *models.OnboardingAttempt, inv *models.Invitation) (*models.Tenant, error) {
	propertyID := inv.PropertyID
	var unit *models.Unit
	if inv.UnitID != nil {
		u, err := o.properties.GetUnit(ctx, *inv.UnitID)
		if err != nil {
			return nil, o.stall(ctx, att, models.StageProfileCreated, fmt.Errorf("resolve unit: %w", err))
		}
		unit = u
		propertyID = u.PropertyID
	}

	if att.Stage.Before(models.StageProfileCreated) {
		if err := o.ensureProfile(ctx, att, inv); err != nil {
			return nil, o.stall(ctx, att, models.StageProfileCreated, err)
		}
		if err := o.advance(ctx, att, models.StageProfileCreated); err != nil {
			return nil, o.stall(ctx, att, models.StageProfileCreated, err)
		}
	}

	var tenant *models.Tenant
	if att.Stage.Before(models.StageTenantCreated) {
		t, err := o.ensureTenant(ctx, att, inv, propertyID)
		if err != nil {
			return nil, o.stall(ctx, att, models.StageTenantCreated, err)
		}
		tenant = t
		if err := o.attempts.SetTenant(ctx, att.ID, t.ID); err != nil {
			return nil, o.stall(ctx, att, models.StageTenantCreated, err)
		}
		if err := o.advance(ctx, att, models.StageTenantCreated); err != nil {
			return nil, o.stall(ctx, att, models.StageTenantCreated, err)
		}
	} else {
		t, err := o.tenants.GetByInvitation(ctx, inv.ID)
		if err != nil {
			return nil, o.stall(ctx, att, models.StageTenantCreated, err)
		}
		tenant = t
	}

	if att.Stage.Before(models.StageOccupancyUpdated) {
		// Skipped entirely for whole-property tenants; counters only track
		// unit-level occupancy.
		if unit != nil {
			if err := o.properties.SetUnitStatus(ctx, unit.ID, models.UnitStatusOccupied); err != nil {
				return nil, o.stall(ctx, att, models.StageOccupancyUpdated, err)
			}
			if _, err := o.accountant.RecomputeAvailability(ctx, propertyID); err != nil {
				return nil, o.stall(ctx, att, models.StageOccupancyUpdated, err)
			}
		}
		if err := o.advance(ctx, att, models.StageOccupancyUpdated); err != nil {
			return nil, o.stall(ctx, att, models.StageOccupancyUpdated, err)
		}
	}

	// Best-effort welcome mail: a delivery failure never fails onboarding.
	if err := o.notifyWelcome(ctx, inv, propertyID); err != nil {
		o.log.Warn().
			Err(err).
			Str("invitation_id", inv.ID.String()).
			Msg("welcome notification failed")
	}
	if err := o.attempts.MarkSucceeded(ctx, att.ID); err != nil {
		return nil, o.stall(ctx, att, models.StageNotified, err)
	}
	att.Stage = models.StageNotified
	att.Status = models.AttemptSucceeded

	return tenant, nil
}

func (o *Orchestrator) ensureProfile(ctx context.Context, att *models.OnboardingAttempt, inv *models.Invitation) error {
	_, err := o.profiles.GetByIdentity(ctx, att.IdentityID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return o.profiles.Create(ctx, &models.Profile{
		IdentityID: att.IdentityID,
		Email:      inv.Email,
		FirstName:  inv.FirstName,
		LastName:   inv.LastName,
		Phone:      inv.Phone,
		Role:       models.RoleTenant,
	})
}

func (o *Orchestrator) ensureTenant(ctx context.Context, att *models.OnboardingAttempt, inv *models.Invitation, propertyID uuid.UUID) (*models.Tenant, error) {
	existing, err := o.tenants.GetByInvitation(ctx, inv.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	t := &models.Tenant{
		IdentityID:      att.IdentityID,
		InvitationID:    inv.ID,
		LandlordID:      inv.LandlordID,
		PropertyID:      propertyID,
		UnitID:          inv.UnitID,
		Email:           inv.Email,
		FirstName:       inv.FirstName,
		LastName:        inv.LastName,
		Phone:           inv.Phone,
		LeaseStart:      inv.LeaseStart,
		LeaseEnd:        inv.LeaseEnd,
		RentAmount:      inv.RentAmount,
		SecurityDeposit: inv.SecurityDeposit,
		Status:          models.TenantStatusActive,
	}
	if err := o.tenants.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (o *Orchestrator) notifyWelcome(ctx context.Context, inv *models.Invitation, propertyID uuid.UUID) error {
	propertyName := ""
	if prop, err := o.properties.GetProperty(ctx, propertyID); err == nil {
		propertyName = prop.Name
	}
	return o.notifier.Send(ctx, mailer.KindWelcome, mailer.Payload{
		To:           inv.Email,
		FirstName:    inv.FirstName,
		PropertyName: propertyName,
	})
}

// advance persists a completed stage and mirrors it on the in-memory record.
func (o *Orchestrator) advance(ctx context.Context, att *models.OnboardingAttempt, stage models.OnboardingStage) error {
	if err := o.attempts.SetStage(ctx, att.ID, stage); err != nil {
		return err
	}
	att.Stage = stage
	return nil
}

// stall records the failure on the attempt and returns the stage-tagged
// error. The attempt stays RUNNING: the invitation is already consumed, so
// rolling forward via the reconciler is the only safe direction.
func (o *Orchestrator) stall(ctx context.Context, att *models.OnboardingAttempt, stage models.OnboardingStage, err error) error {
	if recErr := o.attempts.RecordError(ctx, att.ID, err); recErr != nil {
		o.log.Error().Err(recErr).Str("attempt_id", att.ID.String()).Msg("failed to record attempt error")
	}
	o.log.Error().
		Err(err).
		Str("attempt_id", att.ID.String()).
		Str("invitation_id", att.InvitationID.String()).
		Str("stage", string(stage)).
		Msg("onboarding stage failed")
	return &StageError{Stage: stage, Err: err}
}
