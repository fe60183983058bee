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

// AttemptStore persists onboarding attempt records, the durable trail that
// lets a stalled onboarding be rolled forward instead of orphaned.
type AttemptStore struct {
	db *gorm.DB
}

func NewAttemptStore(db *gorm.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) Create(ctx context.Context, a *models.OnboardingAttempt) error {
	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("create onboarding attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) Get(ctx context.Context, id uuid.UUID) (*models.OnboardingAttempt, error) {
	var a models.OnboardingAttempt
	err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get onboarding attempt: %w", err)
	}
	return &a, nil
}

// SetStage records a completed stage. The stage write must land before the
// next stage's side effects run, so resume never skips work.
func (s *AttemptStore) SetStage(ctx context.Context, id uuid.UUID, stage models.OnboardingStage) error {
	return s.update(ctx, id, map[string]interface{}{"stage": stage})
}

func (s *AttemptStore) SetTenant(ctx context.Context, id, tenantID uuid.UUID) error {
	return s.update(ctx, id, map[string]interface{}{"tenant_id": tenantID})
}

func (s *AttemptStore) RecordError(ctx context.Context, id uuid.UUID, stageErr error) error {
	return s.update(ctx, id, map[string]interface{}{"last_error": stageErr.Error()})
}

func (s *AttemptStore) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, map[string]interface{}{
		"status":     models.AttemptSucceeded,
		"stage":      models.StageNotified,
		"last_error": "",
	})
}

// MarkFailed is terminal and only valid before the invitation was consumed;
// afterwards the attempt stays RUNNING so the reconciler can finish it.
func (s *AttemptStore) MarkFailed(ctx context.Context, id uuid.UUID, stageErr error) error {
	return s.update(ctx, id, map[string]interface{}{
		"status":     models.AttemptFailed,
		"last_error": stageErr.Error(),
	})
}

func (s *AttemptStore) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := s.db.WithContext(ctx).
		Model(&models.OnboardingAttempt{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update onboarding attempt: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListStalled returns running attempts that have not progressed since the
// cutoff. Attempts still at TOKEN_VALID are included: a crash around the
// mark-verified write leaves the CAS outcome unknown, and the reconciler
// settles it by reading the invitation's verified flag.
func (s *AttemptStore) ListStalled(ctx context.Context, updatedBefore time.Time) ([]models.OnboardingAttempt, error) {
	var attempts []models.OnboardingAttempt
	err := s.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.AttemptRunning, updatedBefore).
		Order("updated_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("list stalled attempts: %w", err)
	}
	return attempts, nil
}
