package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/postboard/models"
)

// Models lists every table GormStore needs, in creation order.
var Models = []interface{}{&models.User{}, &models.RefreshToken{}, &models.Post{}, &models.Comment{}}

// GormStore implements Store on a SQL database through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an opened gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle for health checks.
func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

func (s *GormStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) CreatePost(ctx context.Context, post *models.Post) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("create post: %w", translate(err))
	}
	return nil
}

func (s *GormStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (s *GormStore) ListPostsByUser(ctx context.Context, userID string) ([]models.Post, error) {
	posts := []models.Post{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	return posts, nil
}

func (s *GormStore) FindPostByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

func (s *GormStore) UpdatePost(ctx context.Context, post *models.Post) error {
	post.UpdatedAt = time.Now()
	res := s.db.WithContext(ctx).Model(post).Updates(map[string]interface{}{
		"content":    post.Content,
		"updated_at": post.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("update post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeletePost(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return fmt.Errorf("create comment: %w", translate(err))
	}
	return nil
}

func (s *GormStore) ListComments(ctx context.Context) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (s *GormStore) ListCommentsByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("created_at ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list post comments: %w", err)
	}
	return comments, nil
}

func (s *GormStore) FindCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (s *GormStore) UpdateComment(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now()
	res := s.db.WithContext(ctx).Model(comment).Updates(map[string]interface{}{
		"content":    comment.Content,
		"updated_at": comment.UpdatedAt,
	})
	if res.Error != nil {
		return fmt.Errorf("update comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteComment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.Comment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) DeleteCommentsByPost(ctx context.Context, postID string) error {
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}
	return nil
}

func (s *GormStore) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	now := time.Now()
	if token.Expired(now) {
		return nil
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = now
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Drop the user's expired records while we are here
		if err := tx.Where("user_id = ? AND expires_at <= ?", token.UserID, now).Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		if err := tx.Create(token).Error; err != nil {
			return fmt.Errorf("save refresh token: %w", translate(err))
		}
		return nil
	})
}

func (s *GormStore) ConsumeRefreshToken(ctx context.Context, userID, tokenID string) (bool, error) {
	// Single DELETE so two concurrent refreshes cannot both observe the token
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ? AND expires_at > ?", tokenID, userID, time.Now()).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		return false, fmt.Errorf("consume refresh token: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	if err := s.db.WithContext(ctx).Delete(&models.RefreshToken{}, "id = ?", tokenID).Error; err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (s *GormStore) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{}).Error; err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}
