package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/beesaferoot/tenantflow/internal/models"
	"github.com/beesaferoot/tenantflow/internal/store"
)

// InvitationReader is the read side of the invitation store the verifier
// needs. Lookups that match nothing return store.ErrNotFound.
type InvitationReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Invitation, error)
}

// Verifier validates a (token, invitation id) pair against the stored
// invitation. It never mutates anything; consuming the token is the
// orchestrator's job.
type Verifier struct {
	invitations InvitationReader
	now         func() time.Time
}

func NewVerifier(invitations InvitationReader) *Verifier {
	return &Verifier{invitations: invitations, now: time.Now}
}

// Verify checks the pair and returns the invitation on success. Failure
// kinds, in precedence order: ErrInvitationNotFound, ErrTokenMismatch,
// ErrAlreadyVerified, ErrInvitationExpired. An already-verified invitation
// reports ErrAlreadyVerified even when its expiry has also passed.
func (v *Verifier) Verify(ctx context.Context, invitationID uuid.UUID, token string) (*models.Invitation, error) {
	inv, err := v.invitations.Get(ctx, invitationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load invitation: %w", err)
	}

	// Exact equality only; no partial-match leniency.
	if inv.VerificationToken != token {
		return nil, ErrTokenMismatch
	}
	if inv.IsVerified {
		return nil, ErrAlreadyVerified
	}
	if inv.IsExpired(v.now()) {
		return nil, ErrInvitationExpired
	}
	return inv, nil
}
