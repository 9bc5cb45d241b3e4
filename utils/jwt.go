package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "typ" claim so one kind cannot stand in for the other.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers malformed, wrongly signed, expired and wrong-typed tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims defines JWT claims used in the application.
type Claims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// RefreshID and RefreshExpiresAt describe the refresh token for server-side storage.
	RefreshID        string
	RefreshExpiresAt time.Time
}

// TokenManager signs and verifies access and refresh tokens with separate secrets.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenManager builds a manager. Both secrets must be non-empty.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// IssuePair generates a new access token and refresh token for userID.
func (m *TokenManager) IssuePair(userID string) (*TokenPair, error) {
	access, _, _, err := m.sign(userID, TokenTypeAccess, m.accessSecret, m.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, jti, exp, err := m.sign(userID, TokenTypeRefresh, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshID:        jti,
		RefreshExpiresAt: exp,
	}, nil
}

func (m *TokenManager) sign(userID, typ string, secret []byte, ttl time.Duration) (string, string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	jti := uuid.NewString()
	claims := Claims{
		UserID:    userID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, exp, nil
}

// ParseAccess validates an access token and returns its claims.
func (m *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TokenTypeAccess, m.accessSecret)
}

// ParseRefresh validates a refresh token's signature, expiry and type.
// Whether it is still stored server-side is the caller's concern.
func (m *TokenManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, TokenTypeRefresh, m.refreshSecret)
}

func (m *TokenManager) parse(tokenStr, typ string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != typ || claims.UserID == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
