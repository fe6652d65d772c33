package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/evenlyhq/evenly/internal/auth"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.auth.Register(r.Context(), email, req.Name, req.Password)
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		respondError(w, http.StatusBadRequest, "Email already registered")
		return
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		internalError(w, r, err)
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		internalError(w, r, err)
		return
	}

	respond(w, http.StatusCreated, payload{
		"token": token,
		"user":  viewProfile(user),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.auth.Authenticate(r.Context(), email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		internalError(w, r, err)
		return
	}

	respond(w, http.StatusOK, payload{
		"token": token,
		"user":  viewProfile(user),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Account no longer exists")
		return
	}

	respond(w, http.StatusOK, payload{"user": viewProfile(user)})
}
