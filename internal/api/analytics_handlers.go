package api

import (
	"net/http"
	"time"

	"github.com/evenlyhq/evenly/internal/analytics"
	"github.com/evenlyhq/evenly/internal/models"
)

// handleDashboard aggregates the caller's spending across all their
// groups into dashboard stats, category totals, and a six month trend.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
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
	settlements, err := s.store.ListSettlementsByGroups(r.Context(), groupIDs)
	if err != nil {
		internalError(w, r, err)
		return
	}

	summary := analytics.Summarize(userID, expenses, settlements, len(groups), time.Now())

	respond(w, http.StatusOK, payload{
		"stats":        summary.Stats,
		"categoryData": summary.CategoryData,
		"monthlyData":  summary.MonthlyData,
	})
}
