package api

import (
	"net/http"
	"strings"
	"time"
)

const searchResultLimit = 10

type updateProfileRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url"`
	Currency  *string `json:"currency" validate:"omitempty,len=3,alpha"`
	Theme     *string `json:"theme" validate:"omitempty,oneof=light dark"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Account no longer exists")
		return
	}

	if req.Name != nil {
		user.DisplayName = *req.Name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}
	if req.Currency != nil {
		user.Currency = strings.ToUpper(*req.Currency)
	}
	if req.Theme != nil {
		user.Theme = *req.Theme
	}
	user.UpdatedAt = time.Now().Unix()

	if err := s.store.UpdateUser(r.Context(), user); err != nil {
		internalError(w, r, err)
		return
	}

	respond(w, http.StatusOK, payload{"user": viewProfile(user)})
}

// handleSearchUsers finds accounts by email fragment, for inviting members
// to a group. The caller never shows up in their own results.
func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	fragment := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	if fragment == "" {
		respondError(w, http.StatusBadRequest, "email query parameter required")
		return
	}

	matches, err := s.store.SearchUsersByEmail(r.Context(), fragment, userID, searchResultLimit)
	if err != nil {
		internalError(w, r, err)
		return
	}

	users := make([]userView, 0, len(matches))
	for _, u := range matches {
		users = append(users, viewUser(u))
	}
	respond(w, http.StatusOK, payload{"users": users})
}
