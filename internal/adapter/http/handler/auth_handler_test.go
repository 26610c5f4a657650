package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/iho/banksync/internal/domain"
	"github.com/iho/banksync/internal/infrastructure/auth"
)

type fakeUserRepo struct {
	byUsername map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byUsername: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, ok := r.byUsername[user.Username]; ok {
		return domain.ErrUserExists
	}
	r.byUsername[user.Username] = user
	return nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, user := range r.byUsername {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type seqIDs struct{ n int }

func (g *seqIDs) Generate() string {
	g.n++
	return fmt.Sprintf("user-%d", g.n)
}

func newAuthFixture() (*AuthHandler, *fakeUserRepo) {
	repo := newFakeUserRepo()
	manager := auth.NewJWTManager("test-secret", time.Minute)
	return NewAuthHandler(repo, &seqIDs{}, manager, nil), repo
}

func TestAuthHandler_Register(t *testing.T) {
	h, repo := newAuthFixture()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username":"alice","password":"secret-pass"}`))
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Token == "" || body.User.Username != "alice" {
		t.Fatalf("unexpected body: %+v", body)
	}

	stored, ok := repo.byUsername["alice"]
	if !ok {
		t.Fatalf("expected user to be stored")
	}
	if stored.PasswordHash == "secret-pass" {
		t.Fatalf("password stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret-pass")) != nil {
		t.Fatalf("stored hash does not match password")
	}
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	h, _ := newAuthFixture()

	tests := []struct {
		name string
		body string
	}{
		{"missing username", `{"password":"secret-pass"}`},
		{"short password", `{"username":"alice","password":"short"}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			h.Register(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	h, _ := newAuthFixture()

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			strings.NewReader(`{"username":"alice","password":"secret-pass"}`))
		h.Register(rec, req)

		if rec.Code != want {
			t.Fatalf("attempt %d: expected %d, got %d", i, want, rec.Code)
		}
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h, repo := newAuthFixture()
	repo.byUsername["alice"] = &domain.User{ID: "user-1", Username: "alice"}

	rec := httptest.NewRecorder()
	h.Me(rec, authedRequest(http.MethodGet, "/api/auth/me", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var info struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if info.ID != "user-1" || info.Username != "alice" {
		t.Fatalf("unexpected body: %+v", info)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	h, repo := newAuthFixture()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret-pass"), bcrypt.MinCost)
	repo.byUsername["alice"] = &domain.User{ID: "user-1", Username: "alice", PasswordHash: string(hash)}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"success", `{"username":"alice","password":"secret-pass"}`, http.StatusOK},
		{"wrong password", `{"username":"alice","password":"wrong"}`, http.StatusUnauthorized},
		{"unknown user", `{"username":"bob","password":"secret-pass"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			h.Login(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}
