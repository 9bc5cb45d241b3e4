package store

import (
	"context"

	"github.com/cppla/postboard/models"
)

// tokenOverride serves refresh-token operations from a dedicated backend and everything else from base.
type tokenOverride struct {
	Store
	tokens RefreshTokenStore
}

// WithTokenStore returns base with its refresh-token set replaced by tokens.
func WithTokenStore(base Store, tokens RefreshTokenStore) Store {
	return &tokenOverride{Store: base, tokens: tokens}
}

func (s *tokenOverride) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	return s.tokens.SaveRefreshToken(ctx, token)
}

func (s *tokenOverride) ConsumeRefreshToken(ctx context.Context, userID, tokenID string) (bool, error) {
	return s.tokens.ConsumeRefreshToken(ctx, userID, tokenID)
}

func (s *tokenOverride) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	return s.tokens.RevokeRefreshToken(ctx, tokenID)
}

func (s *tokenOverride) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	return s.tokens.RevokeUserRefreshTokens(ctx, userID)
}

// Close closes base, then the token backend when it holds its own connection.
func (s *tokenOverride) Close(ctx context.Context) error {
	err := s.Store.Close(ctx)
	if c, ok := s.tokens.(interface{ Close(context.Context) error }); ok {
		if cerr := c.Close(ctx); err == nil {
			err = cerr
		}
	}
	return err
}
