package onboarding

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/beesaferoot/tenantflow/internal/mailer"
	"github.com/beesaferoot/tenantflow/internal/models"
	"github.com/beesaferoot/tenantflow/internal/random"
)

// InvitationCRUD is the invitation lifecycle surface used by the inviter.
type InvitationCRUD interface {
	InvitationReader
	Create(ctx context.Context, inv *models.Invitation) error
	RotateToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]models.Invitation, error)
}

// Inviter issues and re-issues invitations on behalf of a landlord.
type Inviter struct {
	invitations InvitationCRUD
	properties  PropertyStore
	notifier    mailer.Notifier
	baseURL     string
	log         zerolog.Logger
	now         func() time.Time
}

func NewInviter(invitations InvitationCRUD, properties PropertyStore, notifier mailer.Notifier, baseURL string, log zerolog.Logger) *Inviter {
	return &Inviter{
		invitations: invitations,
		properties:  properties,
		notifier:    notifier,
		baseURL:     baseURL,
		log:         log,
		now:         time.Now,
	}
}

// Invite persists a fresh invitation with a newly minted token and a
// seven-day expiry, then sends the invitation email best-effort.
func (s *Inviter) Invite(ctx context.Context, inv *models.Invitation) (*models.Invitation, error) {
	token, err := random.NewToken()
	if err != nil {
		return nil, err
	}
	inv.VerificationToken = token
	inv.ExpiresAt = s.now().Add(models.DefaultInvitationTTL)
	inv.IsVerified = false
	inv.VerifiedAt = nil

	if err := s.invitations.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.sendInviteMail(ctx, inv)
	return inv, nil
}

// Resend rotates the invitation's token and pushes its expiry out another
// seven days, then re-sends the email. It never touches is_verified: a spent
// invitation stays spent.
func (s *Inviter) Resend(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	token, err := random.NewToken()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(models.DefaultInvitationTTL)
	if err := s.invitations.RotateToken(ctx, id, token, expiresAt); err != nil {
		return nil, err
	}

	inv, err := s.invitations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.sendInviteMail(ctx, inv)
	return inv, nil
}

func (s *Inviter) sendInviteMail(ctx context.Context, inv *models.Invitation) {
	propertyName := ""
	if prop, err := s.properties.GetProperty(ctx, inv.PropertyID); err == nil {
		propertyName = prop.Name
	}

	err := s.notifier.Send(ctx, mailer.KindInvitation, mailer.Payload{
		To:           inv.Email,
		FirstName:    inv.FirstName,
		PropertyName: propertyName,
		InviteURL:    s.inviteURL(inv),
	})
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("invitation_id", inv.ID.String()).
			Msg("invitation notification failed")
	}
}

func (s *Inviter) inviteURL(inv *models.Invitation) string {
	q := url.Values{}
	q.Set("invitationId", inv.ID.String())
	q.Set("token", inv.VerificationToken)
	return fmt.Sprintf("%s/onboard?%s", s.baseURL, q.Encode())
}
