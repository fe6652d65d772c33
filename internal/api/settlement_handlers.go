package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evenlyhq/evenly/internal/events"
	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/money"
	"github.com/evenlyhq/evenly/internal/storage"
)

type settlementRequest struct {
	GroupID  string  `json:"groupId" validate:"required"`
	PaidTo   string  `json:"paidTo" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"omitempty,len=3,alpha"`
	Note     string  `json:"notes" validate:"max=500"`
	Date     int64   `json:"date"`
}

// handleCreateSettlement records the caller paying another member.
func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req settlementRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	group := s.memberGroup(w, r, models.GroupID(req.GroupID), userID)
	if group == nil {
		return
	}

	paidTo := models.UserID(req.PaidTo)
	if !group.HasMember(paidTo) {
		respondError(w, http.StatusBadRequest, "Recipient is not a group member")
		return
	}
	if paidTo == userID {
		respondError(w, http.StatusBadRequest, "Cannot settle with yourself")
		return
	}

	currency := group.Currency
	if req.Currency != "" {
		currency = req.Currency
	}
	date := req.Date
	if date == 0 {
		date = time.Now().Unix()
	}

	settlement := &models.Settlement{
		GroupID:   group.ID,
		PaidBy:    userID,
		PaidTo:    paidTo,
		Amount:    money.FromFloat(req.Amount),
		Currency:  currency,
		Note:      req.Note,
		Date:      date,
		CreatedBy: userID,
	}
	if err := s.store.CreateSettlement(r.Context(), settlement); err != nil {
		internalError(w, r, err)
		return
	}

	s.publish(r.Context(), events.NewEvent(events.TypeSettlementCreated, group.ID, string(settlement.ID), userID))

	users, err := s.loadUsers(r.Context(), []models.UserID{settlement.PaidBy, settlement.PaidTo})
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, payload{"settlement": viewSettlement(settlement, users)})
}

func (s *Server) handleGroupSettlements(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	groupID := models.GroupID(chi.URLParam(r, "groupId"))

	group := s.memberGroup(w, r, groupID, userID)
	if group == nil {
		return
	}

	settlements, err := s.store.ListSettlementsByGroup(r.Context(), groupID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	var ids []models.UserID
	for _, st := range settlements {
		ids = append(ids, st.PaidBy, st.PaidTo)
	}
	users, err := s.loadUsers(r.Context(), ids)
	if err != nil {
		internalError(w, r, err)
		return
	}

	views := make([]settlementView, 0, len(settlements))
	for _, st := range settlements {
		views = append(views, viewSettlement(st, users))
	}
	respond(w, http.StatusOK, payload{"settlements": views})
}

func (s *Server) handleDeleteSettlement(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	settlementID := models.SettlementID(chi.URLParam(r, "id"))

	settlement, err := s.store.GetSettlement(r.Context(), settlementID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Settlement not found")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	if settlement.CreatedBy != userID {
		respondError(w, http.StatusForbidden, "Not authorized")
		return
	}

	if err := s.store.DeleteSettlement(r.Context(), settlementID); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, payload{"message": "Settlement deleted"})
}
