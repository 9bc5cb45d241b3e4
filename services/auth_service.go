// Package services holds the authentication flow: registration, login and
// refresh-token rotation on top of the store interfaces.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cppla/postboard/models"
	"github.com/cppla/postboard/store"
	"github.com/cppla/postboard/utils"
)

// AuthStore is the slice of the store the auth flow needs.
type AuthStore interface {
	store.UserStore
	store.RefreshTokenStore
}

// LoginResult is returned by Login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	UserID       string
}

// AuthService issues, validates and rotates token pairs.
type AuthService struct {
	store  AuthStore
	tokens *utils.TokenManager
	log    *zap.Logger
}

// NewAuthService wires the service. log may be nil.
func NewAuthService(st AuthStore, tokens *utils.TokenManager, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{store: st, tokens: tokens, log: log.Named("auth")}
}

// Register creates an account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, utils.ValidationError("Name, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, utils.ValidationError("Invalid email address")
	}
	if len(password) > utils.MaxPasswordBytes {
		return nil, utils.ValidationError("Password must be at most 72 bytes")
	}

	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, utils.ConflictError("Email already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, utils.InternalError(err)
	}

	hash, err := utils.HashPassword(password)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return nil, utils.ValidationError("Password must be at most 72 bytes")
	}
	if err != nil {
		return nil, utils.InternalError(fmt.Errorf("hash password: %w", err))
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email
		if errors.Is(err, store.ErrDuplicate) {
			return nil, utils.ConflictError("Email already registered")
		}
		return nil, utils.InternalError(err)
	}
	s.log.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login verifies credentials and issues a fresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, utils.ValidationError("Email and password are required")
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.InternalError(err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, invalidCredentials()
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, UserID: user.ID}, nil
}

// Refresh exchanges a stored refresh token for a new pair. The presented token is
// consumed atomically; presenting one that is validly signed but no longer stored
// revokes every refresh token of its owner.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, utils.AuthError("Refresh token is required")
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, utils.AuthError("Invalid refresh token")
	}

	consumed, err := s.store.ConsumeRefreshToken(ctx, claims.UserID, claims.ID)
	if err != nil {
		return nil, utils.InternalError(err)
	}
	if !consumed {
		s.log.Warn("refresh token reuse detected, revoking all sessions", zap.String("user_id", claims.UserID))
		if err := s.store.RevokeUserRefreshTokens(ctx, claims.UserID); err != nil {
			return nil, utils.InternalError(err)
		}
		return nil, utils.AuthError("Invalid refresh token")
	}

	return s.issue(ctx, claims.UserID)
}

// Logout removes the refresh token if it is stored. Missing, unknown or unparsable
// tokens are ignored, so logout always succeeds unless the store fails.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.store.RevokeRefreshToken(ctx, claims.ID); err != nil {
		return utils.InternalError(err)
	}
	return nil
}

func (s *AuthService) issue(ctx context.Context, userID string) (*utils.TokenPair, error) {
	pair, err := s.tokens.IssuePair(userID)
	if err != nil {
		return nil, utils.InternalError(fmt.Errorf("sign tokens: %w", err))
	}
	record := &models.RefreshToken{ID: pair.RefreshID, UserID: userID, ExpiresAt: pair.RefreshExpiresAt}
	if err := s.store.SaveRefreshToken(ctx, record); err != nil {
		return nil, utils.InternalError(err)
	}
	return pair, nil
}

// invalidCredentials is reported as 400 to match the login endpoint's documented failure codes.
func invalidCredentials() *utils.AppError {
	return &utils.AppError{Status: http.StatusBadRequest, Code: utils.CodeAuthFailed, Message: "Invalid credentials"}
}
