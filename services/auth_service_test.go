package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/postboard/config"
	"github.com/cppla/postboard/store"
	"github.com/cppla/postboard/utils"
)

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	cfg := config.AppConfig{StoreDriver: config.DriverSQLite, SQLitePath: ":memory:", LogLevel: "silent"}
	db, err := config.OpenDatabase(cfg, zap.NewNop(), store.Models...)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	st := store.NewGormStore(db)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	tm := utils.NewTokenManager("access", "refresh", time.Hour, 24*time.Hour)
	return NewAuthService(st, tm, nil)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *utils.AppError, got %v", err)
	}
	return appErr.Status
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	user, err := s.Register(ctx, "T", " T@T.com ", "p")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "t@t.com" || user.PasswordHash == "p" || user.PasswordHash == "" {
		t.Fatalf("unexpected user %+v", user)
	}

	tests := []struct {
		name               string
		uname, email, pass string
		status             int
	}{
		{"missing name", "", "a@a.com", "p", http.StatusBadRequest},
		{"missing email", "A", "", "p", http.StatusBadRequest},
		{"missing password", "A", "a@a.com", "", http.StatusBadRequest},
		{"no at sign", "A", "aa.com", "p", http.StatusBadRequest},
		{"password over 72 bytes", "A", "long@a.com", strings.Repeat("x", 80), http.StatusBadRequest},
		{"duplicate", "Other", "t@t.com", "q", http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Register(ctx, tt.uname, tt.email, tt.pass)
			if got := statusOf(t, err); got != tt.status {
				t.Fatalf("status = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	user, err := s.Register(ctx, "T", "t@t.com", "p")
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Login(ctx, "T@t.com", "p")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.UserID != user.ID || res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("unexpected result %+v", res)
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := s.Login(ctx, "t@t.com", "nope")
		if got := statusOf(t, err); got != http.StatusBadRequest {
			t.Fatalf("status = %d", got)
		}
	})
	t.Run("unknown email", func(t *testing.T) {
		_, err := s.Login(ctx, "x@t.com", "p")
		if got := statusOf(t, err); got != http.StatusNotFound {
			t.Fatalf("status = %d", got)
		}
	})
	t.Run("missing fields", func(t *testing.T) {
		_, err := s.Login(ctx, "", "")
		if got := statusOf(t, err); got != http.StatusBadRequest {
			t.Fatalf("status = %d", got)
		}
	})
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if _, err := s.Register(ctx, "T", "t@t.com", "p"); err != nil {
		t.Fatal(err)
	}
	login, err := s.Login(ctx, "t@t.com", "p")
	if err != nil {
		t.Fatal(err)
	}

	pair, err := s.Refresh(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if pair.RefreshToken == login.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// Replaying the rotated token fails and revokes the fresh one too
	if _, err := s.Refresh(ctx, login.RefreshToken); statusOf(t, err) != http.StatusUnauthorized {
		t.Fatalf("replay: %v", err)
	}
	if _, err := s.Refresh(ctx, pair.RefreshToken); statusOf(t, err) != http.StatusUnauthorized {
		t.Fatalf("token survived reuse detection: %v", err)
	}
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if _, err := s.Register(ctx, "T", "t@t.com", "p"); err != nil {
		t.Fatal(err)
	}
	login, err := s.Login(ctx, "t@t.com", "p")
	if err != nil {
		t.Fatal(err)
	}

	for name, tok := range map[string]string{
		"empty":        "",
		"garbage":      "invalid_token",
		"access token": login.AccessToken,
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Refresh(ctx, tok); statusOf(t, err) != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %v", err)
			}
		})
	}

	// The valid token is untouched by the failed attempts
	if _, err := s.Refresh(ctx, login.RefreshToken); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if _, err := s.Register(ctx, "T", "t@t.com", "p"); err != nil {
		t.Fatal(err)
	}
	login, err := s.Login(ctx, "t@t.com", "p")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Logout(ctx, ""); err != nil {
		t.Fatalf("empty logout: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Logout(ctx, login.RefreshToken); err != nil {
			t.Fatalf("logout #%d: %v", i+1, err)
		}
	}
	if err := s.Logout(ctx, "not-a-jwt"); err != nil {
		t.Fatalf("malformed logout: %v", err)
	}
	if _, err := s.Refresh(ctx, login.RefreshToken); statusOf(t, err) != http.StatusUnauthorized {
		t.Fatalf("refresh after logout: %v", err)
	}
}
