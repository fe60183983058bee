package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OnboardingStage marks how far an onboarding attempt has progressed. Stages
// are recorded after the corresponding write is durably acknowledged, so a
// resumed attempt restarts at the first stage it never completed.
type OnboardingStage string

const (
	StageStarted          OnboardingStage = "STARTED"
	StageTokenValid       OnboardingStage = "TOKEN_VALID"
	StageInvitationMarked OnboardingStage = "INVITATION_MARKED"
	StageProfileCreated   OnboardingStage = "PROFILE_CREATED"
	StageTenantCreated    OnboardingStage = "TENANT_CREATED"
	StageOccupancyUpdated OnboardingStage = "OCCUPANCY_UPDATED"
	StageNotified         OnboardingStage = "NOTIFIED"
)

var stageRank = map[OnboardingStage]int{
	StageStarted:          0,
	StageTokenValid:       1,
	StageInvitationMarked: 2,
	StageProfileCreated:   3,
	StageTenantCreated:    4,
	StageOccupancyUpdated: 5,
	StageNotified:         6,
}

// Before reports whether s precedes other in the onboarding sequence.
func (s OnboardingStage) Before(other OnboardingStage) bool {
	return stageRank[s] < stageRank[other]
}

// AttemptStatus is the overall outcome of an onboarding attempt.
type AttemptStatus string

const (
	// AttemptRunning means the attempt has consumed (or is about to consume)
	// the invitation and has not reached a terminal state. Running attempts
	// that stop making progress are picked up by the reconciler and rolled
	// forward.
	AttemptRunning AttemptStatus = "RUNNING"
	// AttemptSucceeded means a tenant exists and counters are consistent.
	AttemptSucceeded AttemptStatus = "SUCCEEDED"
	// AttemptFailed means the attempt stopped before consuming the
	// invitation; a fresh call may retry from scratch.
	AttemptFailed AttemptStatus = "FAILED"
)

// OnboardingAttempt is the durable saga record for one onboarding call. It
// exists so that a failure between the mark-verified write and tenant
// creation leaves a trail a worker can finish, instead of a silent orphan.
type OnboardingAttempt struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvitationID uuid.UUID       `gorm:"type:uuid;not null;index" json:"invitation_id"`
	IdentityID   string          `gorm:"size:128;not null" json:"identity_id"`
	TenantID     *uuid.UUID      `gorm:"type:uuid" json:"tenant_id,omitempty"`
	Stage        OnboardingStage `gorm:"size:30;not null" json:"stage"`
	Status       AttemptStatus   `gorm:"size:20;not null;index" json:"status"`
	LastError    string          `gorm:"size:1000" json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
}

func (OnboardingAttempt) TableName() string {
	return "onboarding_attempts"
}

func (a *OnboardingAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
