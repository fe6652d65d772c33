package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/evenlyhq/evenly/internal/models"
	"github.com/evenlyhq/evenly/internal/money"
)

// payload is a success response body. The success flag is injected by
// respond so handlers only list their own keys.
type payload map[string]any

func respond(w http.ResponseWriter, status int, body payload) {
	body["success"] = true
	writeJSON(w, status, body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	respondError(w, http.StatusInternalServerError, "Server error")
}

// userView is the public projection of a user embedded in responses.
// The password hash never leaves the server.
type userView struct {
	ID          models.UserID `json:"id"`
	DisplayName string        `json:"displayName"`
	Email       string        `json:"email"`
	AvatarURL   string        `json:"avatarUrl,omitempty"`
}

func viewUser(u *models.User) userView {
	return userView{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		AvatarURL:   u.AvatarURL,
	}
}

// profileView extends userView with the owner-only preference fields,
// returned from /auth/me and profile updates.
type profileView struct {
	userView
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
}

func viewProfile(u *models.User) profileView {
	return profileView{
		userView: viewUser(u),
		Currency: u.Currency,
		Theme:    u.Theme,
	}
}

type memberView struct {
	User     userView `json:"user"`
	Role     string   `json:"role"`
	JoinedAt int64    `json:"joinedAt"`
}

type groupView struct {
	ID          models.GroupID `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	Category    string         `json:"category"`
	Currency    string         `json:"currency"`
	Members     []memberView   `json:"members"`
	CreatedBy   models.UserID  `json:"createdBy"`
	CreatedAt   int64          `json:"createdAt"`
}

// viewGroup resolves member ids against the users map; members whose
// account has been deleted are shown with just the id.
func viewGroup(g *models.Group, users map[models.UserID]*models.User) groupView {
	members := make([]memberView, 0, len(g.Members))
	for _, m := range g.Members {
		mv := memberView{Role: m.Role, JoinedAt: m.JoinedAt}
		if u, ok := users[m.UserID]; ok {
			mv.User = viewUser(u)
		} else {
			mv.User = userView{ID: m.UserID}
		}
		members = append(members, mv)
	}
	return groupView{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Icon:        g.Icon,
		Category:    g.Category,
		Currency:    g.Currency,
		Members:     members,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
	}
}

type participantView struct {
	User  userView    `json:"user"`
	Share money.Cents `json:"share"`
}

type expenseView struct {
	ID           models.ExpenseID  `json:"id"`
	GroupID      models.GroupID    `json:"groupId"`
	Title        string            `json:"title"`
	Amount       money.Cents       `json:"amount"`
	Currency     string            `json:"currency"`
	PaidBy       userView          `json:"paidBy"`
	Participants []participantView `json:"participants"`
	SplitType    string            `json:"splitType"`
	Category     string            `json:"category"`
	Notes        string            `json:"notes,omitempty"`
	Date         int64             `json:"date"`
	CreatedBy    models.UserID     `json:"createdBy"`
	CreatedAt    int64             `json:"createdAt"`
}

func viewExpense(e *models.Expense, users map[models.UserID]*models.User) expenseView {
	view := expenseView{
		ID:        e.ID,
		GroupID:   e.GroupID,
		Title:     e.Title,
		Amount:    e.Amount,
		Currency:  e.Currency,
		SplitType: e.SplitType,
		Category:  e.Category,
		Notes:     e.Notes,
		Date:      e.Date,
		CreatedBy: e.CreatedBy,
		CreatedAt: e.CreatedAt,
	}
	view.PaidBy = userView{ID: e.PaidBy}
	if u, ok := users[e.PaidBy]; ok {
		view.PaidBy = viewUser(u)
	}
	for _, p := range e.Participants {
		pv := participantView{Share: p.Share, User: userView{ID: p.UserID}}
		if u, ok := users[p.UserID]; ok {
			pv.User = viewUser(u)
		}
		view.Participants = append(view.Participants, pv)
	}
	return view
}

type settlementView struct {
	ID        models.SettlementID `json:"id"`
	GroupID   models.GroupID      `json:"groupId"`
	PaidBy    userView            `json:"paidBy"`
	PaidTo    userView            `json:"paidTo"`
	Amount    money.Cents         `json:"amount"`
	Currency  string              `json:"currency"`
	Note      string              `json:"note,omitempty"`
	Date      int64               `json:"date"`
	CreatedAt int64               `json:"createdAt"`
}

func viewSettlement(s *models.Settlement, users map[models.UserID]*models.User) settlementView {
	view := settlementView{
		ID:        s.ID,
		GroupID:   s.GroupID,
		Amount:    s.Amount,
		Currency:  s.Currency,
		Note:      s.Note,
		Date:      s.Date,
		CreatedAt: s.CreatedAt,
	}
	view.PaidBy = userView{ID: s.PaidBy}
	if u, ok := users[s.PaidBy]; ok {
		view.PaidBy = viewUser(u)
	}
	view.PaidTo = userView{ID: s.PaidTo}
	if u, ok := users[s.PaidTo]; ok {
		view.PaidTo = viewUser(u)
	}
	return view
}
