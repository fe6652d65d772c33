package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evenlyhq/evenly/internal/events"
	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/money"
	"github.com/evenlyhq/evenly/internal/storage"
)

const (
	defaultPageLimit = 20
	myExpensesLimit  = 50
)

type participantInput struct {
	UserID string  `json:"user" validate:"required"`
	Share  float64 `json:"share" validate:"gte=0"`
}

type expenseRequest struct {
	GroupID      string             `json:"groupId" validate:"required"`
	Title        string             `json:"title" validate:"required,min=1,max=200"`
	Amount       float64            `json:"amount" validate:"required,gt=0"`
	Currency     string             `json:"currency" validate:"omitempty,len=3,alpha"`
	PaidBy       string             `json:"paidBy"`
	Participants []participantInput `json:"participants" validate:"required,min=1,dive"`
	SplitType    string             `json:"splitType" validate:"required,oneof=equal exact percentage shares"`
	Category     string             `json:"category" validate:"required"`
	Notes        string             `json:"notes" validate:"max=1000"`
	Date         int64              `json:"date"`
}

// buildParticipants converts the request's participant list into stored
// shares. Equal splits are computed server-side so shares always sum to
// the amount; other split types take the caller's shares as given.
func buildParticipants(req *expenseRequest, amount money.Cents) []models.Participant {
	participants := make([]models.Participant, len(req.Participants))
	if req.SplitType == models.SplitEqual {
		shares := money.SplitEqual(amount, len(req.Participants))
		for i, p := range req.Participants {
			participants[i] = models.Participant{
				UserID: models.UserID(p.UserID),
				Share:  shares[i],
			}
		}
		return participants
	}
	for i, p := range req.Participants {
		participants[i] = models.Participant{
			UserID: models.UserID(p.UserID),
			Share:  money.FromFloat(p.Share),
		}
	}
	return participants
}

func (s *Server) validateExpenseRequest(group *models.Group, req *expenseRequest) string {
	if !models.ValidCategory(req.Category) {
		return "Unknown category"
	}
	for _, p := range req.Participants {
		if !group.HasMember(models.UserID(p.UserID)) {
			return "Participant is not a group member"
		}
	}
	if req.PaidBy != "" && !group.HasMember(models.UserID(req.PaidBy)) {
		return "Payer is not a group member"
	}
	return ""
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req expenseRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	group := s.memberGroup(w, r, models.GroupID(req.GroupID), userID)
	if group == nil {
		return
	}
	if msg := s.validateExpenseRequest(group, &req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	paidBy := userID
	if req.PaidBy != "" {
		paidBy = models.UserID(req.PaidBy)
	}
	currency := group.Currency
	if req.Currency != "" {
		currency = req.Currency
	}
	date := req.Date
	if date == 0 {
		date = time.Now().Unix()
	}

	amount := money.FromFloat(req.Amount)
	expense := &models.Expense{
		GroupID:      group.ID,
		Title:        req.Title,
		Amount:       amount,
		Currency:     currency,
		PaidBy:       paidBy,
		Participants: buildParticipants(&req, amount),
		SplitType:    req.SplitType,
		Category:     req.Category,
		Notes:        req.Notes,
		Date:         date,
		CreatedBy:    userID,
	}
	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		internalError(w, r, err)
		return
	}

	s.publish(r.Context(), events.NewEvent(events.TypeExpenseAdded, group.ID, string(expense.ID), userID))

	view, err := s.expenseViewFor(r, expense)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, payload{"expense": view})
}

func (s *Server) expenseViewFor(r *http.Request, e *models.Expense) (expenseView, error) {
	ids := []models.UserID{e.PaidBy}
	for _, p := range e.Participants {
		ids = append(ids, p.UserID)
	}
	users, err := s.loadUsers(r.Context(), ids)
	if err != nil {
		return expenseView{}, err
	}
	return viewExpense(e, users), nil
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	expenseID := models.ExpenseID(chi.URLParam(r, "id"))

	expense, err := s.store.GetExpense(r.Context(), expenseID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	if group := s.memberGroup(w, r, expense.GroupID, userID); group == nil {
		return
	}

	view, err := s.expenseViewFor(r, expense)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, payload{"expense": view})
}

func parseExpenseFilter(r *http.Request) storage.ExpenseFilter {
	q := r.URL.Query()
	filter := storage.ExpenseFilter{
		Category: q.Get("category"),
		Page:     1,
		Limit:    defaultPageLimit,
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if from, err := strconv.ParseInt(q.Get("startDate"), 10, 64); err == nil {
		filter.From = from
	}
	if to, err := strconv.ParseInt(q.Get("endDate"), 10, 64); err == nil {
		filter.To = to
	}
	return filter
}

func (s *Server) handleGroupExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	groupID := models.GroupID(chi.URLParam(r, "groupId"))

	group := s.memberGroup(w, r, groupID, userID)
	if group == nil {
		return
	}

	filter := parseExpenseFilter(r)
	expenses, err := s.store.ListExpensesByGroup(r.Context(), groupID, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}
	total, err := s.store.CountExpensesByGroup(r.Context(), groupID, filter)
	if err != nil {
		internalError(w, r, err)
		return
	}

	var ids []models.UserID
	for _, e := range expenses {
		ids = append(ids, e.PaidBy)
		for _, p := range e.Participants {
			ids = append(ids, p.UserID)
		}
	}
	users, err := s.loadUsers(r.Context(), ids)
	if err != nil {
		internalError(w, r, err)
		return
	}

	views := make([]expenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, viewExpense(e, users))
	}

	pages := 0
	if filter.Limit > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}
	respond(w, http.StatusOK, payload{
		"expenses": views,
		"pagination": map[string]int{
			"page":  filter.Page,
			"limit": filter.Limit,
			"total": total,
			"pages": pages,
		},
	})
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	expenseID := models.ExpenseID(chi.URLParam(r, "id"))

	expense, err := s.store.GetExpense(r.Context(), expenseID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	if expense.CreatedBy != userID {
		respondError(w, http.StatusForbidden, "Only creator can edit expense")
		return
	}

	var req expenseRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if models.GroupID(req.GroupID) != expense.GroupID {
		respondError(w, http.StatusBadRequest, "Expense cannot move between groups")
		return
	}

	group := s.memberGroup(w, r, expense.GroupID, userID)
	if group == nil {
		return
	}
	if msg := s.validateExpenseRequest(group, &req); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	amount := money.FromFloat(req.Amount)
	expense.Title = req.Title
	expense.Amount = amount
	expense.SplitType = req.SplitType
	expense.Category = req.Category
	expense.Notes = req.Notes
	expense.Participants = buildParticipants(&req, amount)
	if req.PaidBy != "" {
		expense.PaidBy = models.UserID(req.PaidBy)
	}
	if req.Currency != "" {
		expense.Currency = req.Currency
	}
	if req.Date != 0 {
		expense.Date = req.Date
	}

	if err := s.store.UpdateExpense(r.Context(), expense); err != nil {
		internalError(w, r, err)
		return
	}

	s.publish(r.Context(), events.NewEvent(events.TypeExpenseUpdated, expense.GroupID, string(expense.ID), userID))

	view, err := s.expenseViewFor(r, expense)
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, payload{"expense": view})
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	expenseID := models.ExpenseID(chi.URLParam(r, "id"))

	expense, err := s.store.GetExpense(r.Context(), expenseID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Expense not found")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	if expense.CreatedBy != userID {
		respondError(w, http.StatusForbidden, "Only creator can delete expense")
		return
	}

	if err := s.store.DeleteExpense(r.Context(), expenseID); err != nil {
		internalError(w, r, err)
		return
	}

	s.publish(r.Context(), events.NewEvent(events.TypeExpenseDeleted, expense.GroupID, string(expense.ID), userID))

	respond(w, http.StatusOK, payload{"message": "Expense deleted"})
}

// handleMyExpenses lists the caller's recent expenses across all their
// groups, newest first.
func (s *Server) handleMyExpenses(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	groups, err := s.store.ListGroupsByMember(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	groupIDs := make([]models.GroupID, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}

	expenses, err := s.store.ListExpensesByGroups(r.Context(), groupIDs)
	if err != nil {
		internalError(w, r, err)
		return
	}

	var mine []*models.Expense
	for _, e := range expenses {
		if _, ok := e.ShareOf(userID); ok {
			mine = append(mine, e)
			if len(mine) == myExpensesLimit {
				break
			}
		}
	}

	var ids []models.UserID
	for _, e := range mine {
		ids = append(ids, e.PaidBy)
		for _, p := range e.Participants {
			ids = append(ids, p.UserID)
		}
	}
	users, err := s.loadUsers(r.Context(), ids)
	if err != nil {
		internalError(w, r, err)
		return
	}

	views := make([]expenseView, 0, len(mine))
	for _, e := range mine {
		views = append(views, viewExpense(e, users))
	}
	respond(w, http.StatusOK, payload{"expenses": views})
}
