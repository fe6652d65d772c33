package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evenlyhq/evenly/internal/events"
	"github.com/evenlyhq/evenly/internal/ledger"
	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/money"
	"github.com/evenlyhq/evenly/internal/storage"
)

type createGroupRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=500"`
	Icon        string `json:"icon" validate:"max=8"`
	Category    string `json:"category" validate:"omitempty,oneof=trip home couple friends work other"`
	Currency    string `json:"currency" validate:"omitempty,len=3,alpha"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req createGroupRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Icon == "" {
		req.Icon = "💸"
	}
	if req.Category == "" {
		req.Category = "other"
	}
	if req.Currency == "" {
		req.Currency = "USD"
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Category:    req.Category,
		Currency:    strings.ToUpper(req.Currency),
		CreatedBy:   userID,
		Members: []models.GroupMember{
			{UserID: userID, Role: models.RoleAdmin, JoinedAt: time.Now().Unix()},
		},
	}
	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		internalError(w, r, err)
		return
	}

	s.publish(r.Context(), events.NewEvent(events.TypeGroupCreated, group.ID, "", userID))

	users, err := s.loadUsers(r.Context(), group.MemberIDs())
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, payload{"group": viewGroup(group, users)})
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	groups, err := s.store.ListGroupsByMember(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	var memberIDs []models.UserID
	for _, g := range groups {
		memberIDs = append(memberIDs, g.MemberIDs()...)
	}
	users, err := s.loadUsers(r.Context(), memberIDs)
	if err != nil {
		internalError(w, r, err)
		return
	}

	views := make([]groupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, viewGroup(g, users))
	}
	respond(w, http.StatusOK, payload{"groups": views})
}

// memberGroup loads a group and checks membership. Writes the error
// response itself and returns nil when the caller should stop.
func (s *Server) memberGroup(w http.ResponseWriter, r *http.Request, groupID models.GroupID, userID models.UserID) *models.Group {
	group, err := s.store.GetGroup(r.Context(), groupID)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Group not found")
		return nil
	}
	if err != nil {
		internalError(w, r, err)
		return nil
	}
	if !group.HasMember(userID) {
		respondError(w, http.StatusForbidden, "Access denied")
		return nil
	}
	return group
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	groupID := models.GroupID(chi.URLParam(r, "id"))

	group := s.memberGroup(w, r, groupID, userID)
	if group == nil {
		return
	}

	users, err := s.loadUsers(r.Context(), group.MemberIDs())
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, payload{"group": viewGroup(group, users)})
}

func (s *Server) handleArchiveGroup(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	groupID := models.GroupID(chi.URLParam(r, "id"))

	group := s.memberGroup(w, r, groupID, userID)
	if group == nil {
		return
	}
	if group.CreatedBy != userID {
		respondError(w, http.StatusForbidden, "Only the creator can delete the group")
		return
	}

	if err := s.store.ArchiveGroup(r.Context(), groupID); err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, payload{"message": "Group deleted"})
}

type addMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	groupID := models.GroupID(chi.URLParam(r, "id"))

	var req addMemberRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	group := s.memberGroup(w, r, groupID, userID)
	if group == nil {
		return
	}
	if !group.IsAdmin(userID) {
		respondError(w, http.StatusForbidden, "Only admins can add members")
		return
	}

	newUser, err := s.store.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		internalError(w, r, err)
		return
	}
	if newUser == nil {
		respondError(w, http.StatusNotFound, "User not found with that email")
		return
	}
	if group.HasMember(newUser.ID) {
		respondError(w, http.StatusBadRequest, "User is already a member")
		return
	}

	member := models.GroupMember{
		UserID:   newUser.ID,
		Role:     models.RoleMember,
		JoinedAt: time.Now().Unix(),
	}
	if err := s.store.AddGroupMembers(r.Context(), groupID, []models.GroupMember{member}); err != nil {
		internalError(w, r, err)
		return
	}
	group.Members = append(group.Members, member)

	s.publish(r.Context(), events.NewEvent(events.TypeMemberAdded, groupID, string(newUser.ID), userID))

	users, err := s.loadUsers(r.Context(), group.MemberIDs())
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, payload{"group": viewGroup(group, users)})
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	groupID := models.GroupID(chi.URLParam(r, "id"))
	removeID := models.UserID(chi.URLParam(r, "userId"))

	group := s.memberGroup(w, r, groupID, userID)
	if group == nil {
		return
	}
	if !group.IsAdmin(userID) {
		respondError(w, http.StatusForbidden, "Only admins can remove members")
		return
	}

	if err := s.store.RemoveGroupMember(r.Context(), groupID, removeID); err != nil {
		internalError(w, r, err)
		return
	}
	kept := group.Members[:0]
	for _, m := range group.Members {
		if m.UserID != removeID {
			kept = append(kept, m)
		}
	}
	group.Members = kept

	s.publish(r.Context(), events.NewEvent(events.TypeMemberRemoved, groupID, string(removeID), userID))

	users, err := s.loadUsers(r.Context(), group.MemberIDs())
	if err != nil {
		internalError(w, r, err)
		return
	}
	respond(w, http.StatusOK, payload{"group": viewGroup(group, users)})
}

type memberBalanceView struct {
	User    userView    `json:"user"`
	Balance money.Cents `json:"balance"`
}

type transferView struct {
	From   userView    `json:"from"`
	To     userView    `json:"to"`
	Amount money.Cents `json:"amount"`
}

// handleGroupBalances returns each member's net balance and the
// simplified transfer list that settles the group.
func (s *Server) handleGroupBalances(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	groupID := models.GroupID(chi.URLParam(r, "id"))

	group := s.memberGroup(w, r, groupID, userID)
	if group == nil {
		return
	}

	expenses, err := s.store.ListExpensesByGroup(r.Context(), groupID, storage.ExpenseFilter{})
	if err != nil {
		internalError(w, r, err)
		return
	}
	settlements, err := s.store.ListSettlementsByGroup(r.Context(), groupID)
	if err != nil {
		internalError(w, r, err)
		return
	}

	expenseInputs := make([]ledger.Expense, 0, len(expenses))
	for _, e := range expenses {
		expenseInputs = append(expenseInputs, ledger.ExpenseInput(e))
	}
	settlementInputs := make([]ledger.Settlement, 0, len(settlements))
	for _, st := range settlements {
		settlementInputs = append(settlementInputs, ledger.SettlementInput(st))
	}

	memberIDs := group.MemberIDs()
	balances := ledger.ComputeBalances(memberIDs, expenseInputs, settlementInputs)
	transfers := ledger.SimplifyDebts(memberIDs, balances)
	if s.metrics != nil {
		s.metrics.ObserveBalanceComputation(len(transfers))
	}

	users, err := s.loadUsers(r.Context(), memberIDs)
	if err != nil {
		internalError(w, r, err)
		return
	}
	resolve := func(id models.UserID) userView {
		if u, ok := users[id]; ok {
			return viewUser(u)
		}
		return userView{ID: id}
	}

	memberBalances := make([]memberBalanceView, 0, len(memberIDs))
	for _, id := range memberIDs {
		memberBalances = append(memberBalances, memberBalanceView{
			User:    resolve(id),
			Balance: balances[id],
		})
	}

	simplified := make([]transferView, 0, len(transfers))
	for _, t := range transfers {
		simplified = append(simplified, transferView{
			From:   resolve(t.From),
			To:     resolve(t.To),
			Amount: t.Amount,
		})
	}

	respond(w, http.StatusOK, payload{
		"memberBalances":  memberBalances,
		"simplifiedDebts": simplified,
	})
}
