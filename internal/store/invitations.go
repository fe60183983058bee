package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beesaferoot/tenantflow/internal/models"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("record not found")

// InvitationStore persists invitations.
type InvitationStore struct {
	db *gorm.DB
}

func NewInvitationStore(db *gorm.DB) *InvitationStore {
	return &InvitationStore{db: db}
}

func (s *InvitationStore) Create(ctx context.Context, inv *models.Invitation) error {
	if err := s.db.WithContext(ctx).Create(inv).Error; err != nil {
		return fmt.Errorf("create invitation: %w", err)
	}
	return nil
}

func (s *InvitationStore) Get(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	var inv models.Invitation
	err := s.db.WithContext(ctx).First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	return &inv, nil
}

// MarkVerified consumes the invitation's token with a single conditional
// update: it only fires where is_verified is still false and the stored token
// matches. The returned bool reports whether this caller won; a false return
// with nil error means another call got there first (or the token rotated
// under us), which the verifier surfaces as AlreadyVerified.
func (s *InvitationStore) MarkVerified(ctx context.Context, id uuid.UUID, token string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ? AND is_verified = ? AND verification_token = ?", id, false, token).
		Updates(map[string]interface{}{
			"is_verified": true,
			"verified_at": at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("mark invitation verified: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// RotateToken replaces the verification token and pushes the expiry window
// forward. It deliberately leaves is_verified untouched: resending an
// already-consumed invitation does not resurrect it.
func (s *InvitationStore) RotateToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&models.Invitation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verification_token": token,
			"expires_at":         expiresAt,
		})
	if res.Error != nil {
		return fmt.Errorf("rotate invitation token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *InvitationStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Invitation{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete invitation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *InvitationStore) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]models.Invitation, error) {
	var invs []models.Invitation
	err := s.db.WithContext(ctx).
		Where("landlord_id = ?", landlordID).
		Order("created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invs, nil
}
