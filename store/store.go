// Package store persists users, posts, comments and refresh-token records.
//
// Every backend hands out application-generated UUID ids and reports
// missing records as ErrNotFound, so callers never see driver errors for
// expected outcomes.
package store

import (
	"context"
	"errors"

	"github.com/cppla/postboard/models"
)

var (
	// ErrNotFound is returned when no record matches the id or filter.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a unique field (user email, token id) already exists.
	ErrDuplicate = errors.New("store: duplicate record")
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PostStore persists posts. ListPosts returns records in insertion order.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListPostsByUser(ctx context.Context, userID string) ([]models.Post, error)
	FindPostByID(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
}

// CommentStore persists comments.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context) ([]models.Comment, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error)
	FindCommentByID(ctx context.Context, id string) (*models.Comment, error)
	UpdateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByPost(ctx context.Context, postID string) error
}

// RefreshTokenStore is the per-user set of currently valid refresh tokens, keyed by token id.
type RefreshTokenStore interface {
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error
	// ConsumeRefreshToken atomically removes the token if it is stored for userID and
	// not expired. It reports whether this call removed it.
	ConsumeRefreshToken(ctx context.Context, userID, tokenID string) (bool, error)
	// RevokeRefreshToken removes the token; absent tokens are not an error.
	RevokeRefreshToken(ctx context.Context, tokenID string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error
}

// Store is a complete backend.
type Store interface {
	UserStore
	PostStore
	CommentStore
	RefreshTokenStore
	Close(ctx context.Context) error
}
