package onboarding

import (
	"errors"
	"fmt"

	"github.com/beesaferoot/tenantflow/internal/models"
)

// Verification failure kinds. These are all rejected after read-only checks,
// with no side effects, so a caller may correct its input and retry.
var (
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrTokenMismatch      = errors.New("invalid verification token")
	ErrAlreadyVerified    = errors.New("invitation already verified")
	ErrInvitationExpired  = errors.New("invitation has expired")
)

// StageError tags a failure with the onboarding stage that could not be
// completed. Past INVITATION_MARKED the caller cannot distinguish "nothing
// happened" from "partially happened"; the stage is for operator diagnosis,
// and the attempt record carries the rest.
type StageError struct {
	Stage models.OnboardingStage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("onboarding stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
