package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/beesaferoot/tenantflow/internal/models"
	"github.com/beesaferoot/tenantflow/internal/store"
)

// Reconciler finishes onboarding attempts that consumed their invitation and
// then stopped making progress (crashed process, abandoned request, failed
// downstream write). Once the token is spent it only rolls forward, because
// completing the tenant is the only way out of the orphan state. Attempts
// still at TOKEN_VALID are ambiguous and are settled against the
// invitation's verified flag first.
type Reconciler struct {
	attempts     AttemptStore
	invitations  InvitationReader
	orchestrator *Orchestrator
	log          zerolog.Logger
	// stalledAfter is how long an attempt must sit without progress before
	// the reconciler touches it, to keep out of the way of live requests.
	stalledAfter time.Duration
	now          func() time.Time
}

func NewReconciler(orchestrator *Orchestrator, stalledAfter time.Duration, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		attempts:     orchestrator.attempts,
		invitations:  orchestrator.invitations,
		orchestrator: orchestrator,
		log:          log,
		stalledAfter: stalledAfter,
		now:          time.Now,
	}
}

// Run performs one reconciliation sweep and returns how many attempts were
// driven to success.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.stalledAfter)
	stalled, err := r.attempts.ListStalled(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reconcile: %w", err)
	}

	finished := 0
	for i := range stalled {
		att := stalled[i]
		inv, err := r.invitations.Get(ctx, att.InvitationID)
		if errors.Is(err, store.ErrNotFound) {
			// The invitation was explicitly deleted out from under the
			// attempt. There is nothing left to roll forward.
			_ = r.attempts.MarkFailed(ctx, att.ID, fmt.Errorf("invitation %s deleted mid-attempt", att.InvitationID))
			r.log.Warn().
				Str("attempt_id", att.ID.String()).
				Str("invitation_id", att.InvitationID.String()).
				Msg("abandoning attempt: invitation deleted")
			continue
		}
		if err != nil {
			r.log.Error().Err(err).Str("attempt_id", att.ID.String()).Msg("reconcile: load invitation")
			continue
		}

		// An attempt stuck at TOKEN_VALID crashed around the mark-verified
		// write, so its CAS outcome is unknown. The invitation's verified
		// flag settles it: unverified means the CAS never fired and the
		// token is still spendable, so the attempt is dead; verified means
		// the token is spent and rolling forward is the only way a tenant
		// ever materializes.
		if att.Stage == models.StageTokenValid {
			if !inv.IsVerified {
				_ = r.attempts.MarkFailed(ctx, att.ID, fmt.Errorf("invitation %s was never consumed", att.InvitationID))
				r.log.Warn().
					Str("attempt_id", att.ID.String()).
					Str("invitation_id", att.InvitationID.String()).
					Msg("abandoning attempt: token never spent")
				continue
			}
			if err := r.attempts.SetStage(ctx, att.ID, models.StageInvitationMarked); err != nil {
				r.log.Error().Err(err).Str("attempt_id", att.ID.String()).Msg("reconcile: record consumed invitation")
				continue
			}
			att.Stage = models.StageInvitationMarked
		}

		if _, err := r.orchestrator.resume(ctx, &att, inv); err != nil {
			r.log.Error().Err(err).Str("attempt_id", att.ID.String()).Msg("reconcile: resume failed")
			continue
		}
		finished++
		r.log.Info().
			Str("attempt_id", att.ID.String()).
			Str("invitation_id", att.InvitationID.String()).
			Msg("stalled onboarding attempt completed")
	}
	return finished, nil
}

// RunEvery sweeps on a fixed interval until the context is cancelled.
func (r *Reconciler) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Run(ctx); err != nil {
				r.log.Error().Err(err).Msg("reconcile sweep failed")
			}
		}
	}
}
