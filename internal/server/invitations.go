package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/beesaferoot/tenantflow/internal/models"
	"github.com/beesaferoot/tenantflow/internal/store"
)

type createInvitationRequest struct {
	LandlordID string `json:"landlordId"`
	PropertyID string `json:"propertyId"`
	UnitID     string `json:"unitId"`

	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`

	LeaseStart      time.Time `json:"leaseStart"`
	LeaseEnd        time.Time `json:"leaseEnd"`
	RentAmount      string    `json:"rentAmount"`
	SecurityDeposit string    `json:"securityDeposit"`
}

func (s *Server) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		writeError(w, http.StatusBadRequest, "Email, first name, and last name are required")
		return
	}

	landlordID, err := uuid.Parse(req.LandlordID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valid landlord ID is required")
		return
	}
	propertyID, err := uuid.Parse(req.PropertyID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valid property ID is required")
		return
	}

	var unitID *uuid.UUID
	if req.UnitID != "" {
		id, err := uuid.Parse(req.UnitID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Valid unit ID is required")
			return
		}
		unitID = &id
	}

	rent, err := parseAmount(req.RentAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rent amount")
		return
	}
	deposit, err := parseAmount(req.SecurityDeposit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid security deposit")
		return
	}

	inv := &models.Invitation{
		LandlordID:      landlordID,
		PropertyID:      propertyID,
		UnitID:          unitID,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		LeaseStart:      req.LeaseStart,
		LeaseEnd:        req.LeaseEnd,
		RentAmount:      rent,
		SecurityDeposit: deposit,
	}

	created, err := s.inviter.Invite(r.Context(), inv)
	if err != nil {
		s.log.Error().Err(err).Msg("create invitation failed")
		writeError(w, http.StatusInternalServerError, "Could not create invitation")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"invitation": created})
}

func parseAmount(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	landlordID, err := uuid.Parse(r.URL.Query().Get("landlordId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valid landlord ID is required")
		return
	}

	invs, err := s.invitations.ListByLandlord(r.Context(), landlordID)
	if err != nil {
		s.log.Error().Err(err).Msg("list invitations failed")
		writeError(w, http.StatusInternalServerError, "Could not list invitations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invitations": invs})
}

func (s *Server) handleResendInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Invitation not found")
		return
	}

	inv, err := s.inviter.Resend(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Invitation not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("resend invitation failed")
		writeError(w, http.StatusInternalServerError, "Could not resend invitation")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"invitation": inv})
}

func (s *Server) handleDeleteInvitation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Invitation not found")
		return
	}

	err = s.invitations.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Invitation not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("delete invitation failed")
		writeError(w, http.StatusInternalServerError, "Could not delete invitation")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
