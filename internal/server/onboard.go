package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/beesaferoot/tenantflow/internal/identity"
	"github.com/beesaferoot/tenantflow/internal/onboarding"
)

type onboardRequest struct {
	Token        string `json:"token"`
	InvitationID string `json:"invitationId"`
	IdentityID   string `json:"identityId"`
	Password     string `json:"password"`
}

func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	var req onboardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Token, invitation ID, and identity are required")
		return
	}
	if req.Token == "" || req.InvitationID == "" || (req.IdentityID == "" && req.Password == "") {
		writeError(w, http.StatusBadRequest, "Token, invitation ID, and identity are required")
		return
	}

	invitationID, err := uuid.Parse(req.InvitationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Invitation not found")
		return
	}

	tenant, err := s.orchestrator.Onboard(r.Context(), onboarding.OnboardRequest{
		InvitationID: invitationID,
		Token:        req.Token,
		IdentityID:   req.IdentityID,
		Password:     req.Password,
	})
	if err != nil {
		s.writeOnboardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tenant": tenant})
}

// writeOnboardError maps workflow failures to the API contract. Verification
// failures are actionable by the user; anything past the mark-verified write
// is a stage-tagged server error the user can only escalate.
func (s *Server) writeOnboardError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, onboarding.ErrInvitationNotFound):
		writeError(w, http.StatusNotFound, "Invitation not found")
	case errors.Is(err, onboarding.ErrTokenMismatch):
		writeError(w, http.StatusBadRequest, "Invalid verification token")
	case errors.Is(err, onboarding.ErrAlreadyVerified):
		writeError(w, http.StatusBadRequest, "Invitation already verified")
	case errors.Is(err, onboarding.ErrInvitationExpired):
		writeError(w, http.StatusBadRequest, "Invitation has expired")
	case errors.Is(err, identity.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "An account already exists for this email")
	case errors.Is(err, identity.ErrWeakCredential):
		writeError(w, http.StatusBadRequest, "Password does not meet requirements")
	default:
		var stageErr *onboarding.StageError
		if errors.As(err, &stageErr) {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Onboarding failed at stage %s; contact your property manager", stageErr.Stage))
			return
		}
		writeError(w, http.StatusInternalServerError, "Onboarding failed; contact your property manager")
	}
}
