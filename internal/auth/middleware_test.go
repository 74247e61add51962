package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/mnavarro/notas-api/internal/apperror"
	"github.com/mnavarro/notas-api/internal/model"
)

// mockUserRepo implements the one lookup the middleware performs.
type mockUserRepo struct {
	users map[string]*model.User
}

func (m *mockUserRepo) CreateUser(_ context.Context, _ *model.User) error { return nil }

func (m *mockUserRepo) GetUserByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, apperror.NotFound("Usuario no encontrado")
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("Usuario no encontrado")
}

// gateFixture wires the middleware around a probe handler that records
// whether it ran and what user ID it saw.
type gateFixture struct {
	tokens  *TokenService
	handler http.Handler

	reached bool
	userID  string
}

func newGateFixture(t *testing.T, knownUsers ...string) *gateFixture {
	t.Helper()

	tokens, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	repo := &mockUserRepo{users: make(map[string]*model.User)}
	for _, id := range knownUsers {
		repo.users[id] = &model.User{ID: id, Nombre: "Ana", Email: id + "@example.com"}
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	f := &gateFixture{tokens: tokens}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.reached = true
		f.userID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	f.handler = RequireAuth(tokens, repo, logger)(next)
	return f
}

func (f *gateFixture) do(t *testing.T, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/alumnos", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func TestRequireAuth_ValidToken(t *testing.T) {
	f := newGateFixture(t, "user-1")

	token, err := f.tokens.Generate("user-1", "user-1@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	rr := f.do(t, "Bearer "+token)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !f.reached {
		t.Fatal("handler was not reached")
	}
	if f.userID != "user-1" {
		t.Errorf("userID in context = %q, want %q", f.userID, "user-1")
	}
}

func TestRequireAuth_RejectsUniformly(t *testing.T) {
	f := newGateFixture(t, "user-1")

	validToken, err := f.tokens.Generate("user-1", "user-1@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	expiredToken, err := f.tokens.GenerateWithDuration("user-1", "user-1@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration: %v", err)
	}
	ghostToken, err := f.tokens.Generate("deleted-user", "ghost@example.com")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	tests := []struct {
		name          string
		authorization string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc123"},
		{"bearer without token", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expiredToken},
		{"unknown subject", "Bearer " + ghostToken},
		{"token without scheme", validToken},
	}

	// Every failure mode must produce the exact same status AND body, so
	// the response leaks nothing about why authentication failed.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.reached = false
			rr := f.do(t, tt.authorization)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rr.Code)
			}
			if f.reached {
				t.Error("handler ran despite rejected authentication")
			}

			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if ok, _ := body["ok"].(bool); ok {
				t.Error(`body "ok" = true, want false`)
			}
			if body["mensaje"] != "No autorizado" {
				t.Errorf(`mensaje = %v, want "No autorizado"`, body["mensaje"])
			}
		})
	}
}

func TestUserIDFromContext_Absent(t *testing.T) {
	if id, ok := UserIDFromContext(context.Background()); ok || id != "" {
		t.Errorf("UserIDFromContext() = (%q, %v), want (\"\", false)", id, ok)
	}
}
