package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/banksync/internal/adapter/http/dto"
	"github.com/iho/banksync/internal/adapter/http/middleware"
	"github.com/iho/banksync/internal/domain"
	"github.com/iho/banksync/internal/infrastructure/auth"
)

// UserRepository is the persistence surface the auth handler needs.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// IDGenerator generates user IDs.
type IDGenerator interface {
	Generate() string
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users      UserRepository
	ids        IDGenerator
	jwtManager *auth.JWTManager
	attempts   func(status string)
}

// NewAuthHandler creates a new auth handler. attempts may be nil.
func NewAuthHandler(users UserRepository, ids IDGenerator, jwtManager *auth.JWTManager, attempts func(status string)) *AuthHandler {
	if attempts == nil {
		attempts = func(string) {}
	}
	return &AuthHandler{
		users:      users,
		ids:        ids,
		jwtManager: jwtManager,
		attempts:   attempts,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password", "")
		return
	}

	user := &domain.User{
		ID:           h.ids.Generate(),
		Username:     req.Username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		writeError(w, mapDomainError(err), "failed to create user", err.Error())
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TokenResponse{
		Token: token,
		User:  dto.UserInfo{ID: user.ID, Username: user.Username},
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	user, err := h.users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			h.attempts("failure")
			writeError(w, http.StatusUnauthorized, "invalid credentials", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user", "")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		h.attempts("failure")
		writeError(w, http.StatusUnauthorized, "invalid credentials", "")
		return
	}

	token, err := h.jwtManager.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token", err.Error())
		return
	}

	h.attempts("success")
	writeJSON(w, http.StatusOK, dto.TokenResponse{
		Token: token,
		User:  dto.UserInfo{ID: user.ID, Username: user.Username},
	})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to load user", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.UserInfo{ID: user.ID, Username: user.Username})
}
