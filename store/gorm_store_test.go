package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/postboard/config"
	"github.com/cppla/postboard/models"
)

func newTestGormStore(t *testing.T) *GormStore {
	t.Helper()
	cfg := config.AppConfig{StoreDriver: config.DriverSQLite, SQLitePath: ":memory:", LogLevel: "silent"}
	db, err := config.OpenDatabase(cfg, zap.NewNop(), Models...)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	s := NewGormStore(db)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func createUser(t *testing.T, s Store, email string) *models.User {
	t.Helper()
	u := &models.User{Name: "T", Email: email, PasswordHash: "x"}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestGormUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestGormStore(t)

	u := createUser(t, s, "t@t.com")
	if u.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := s.FindUserByEmail(ctx, "t@t.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("FindUserByEmail = %+v, %v", got, err)
	}
	if _, err := s.FindUserByID(ctx, u.ID); err != nil {
		t.Fatalf("FindUserByID: %v", err)
	}
	if _, err := s.FindUserByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	err = s.CreateUser(ctx, &models.User{Name: "U", Email: "t@t.com", PasswordHash: "x"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGormPostLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestGormStore(t)

	posts, err := s.ListPosts(ctx)
	if err != nil || posts == nil || len(posts) != 0 {
		t.Fatalf("empty ListPosts = %v, %v", posts, err)
	}

	first := &models.Post{UserID: "u1", Content: "first"}
	second := &models.Post{UserID: "u2", Content: "second"}
	if err := s.CreatePost(ctx, first); err != nil {
		t.Fatal(err)
	}
	second.CreatedAt = first.CreatedAt.Add(time.Millisecond)
	if err := s.CreatePost(ctx, second); err != nil {
		t.Fatal(err)
	}

	posts, err = s.ListPosts(ctx)
	if err != nil || len(posts) != 2 || posts[0].ID != first.ID {
		t.Fatalf("ListPosts = %+v, %v", posts, err)
	}
	mine, err := s.ListPostsByUser(ctx, "u2")
	if err != nil || len(mine) != 1 || mine[0].ID != second.ID {
		t.Fatalf("ListPostsByUser = %+v, %v", mine, err)
	}

	first.Content = "edited"
	if err := s.UpdatePost(ctx, first); err != nil {
		t.Fatal(err)
	}
	got, err := s.FindPostByID(ctx, first.ID)
	if err != nil || got.Content != "edited" {
		t.Fatalf("FindPostByID = %+v, %v", got, err)
	}

	if err := s.DeletePost(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeletePost(ctx, first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if err := s.UpdatePost(ctx, first); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update after delete: %v", err)
	}
}

func TestGormComments(t *testing.T) {
	ctx := context.Background()
	s := newTestGormStore(t)

	c1 := &models.Comment{PostID: "p1", UserID: "u1", Content: "a"}
	c2 := &models.Comment{PostID: "p2", UserID: "u1", Content: "b"}
	for _, c := range []*models.Comment{c1, c2} {
		if err := s.CreateComment(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	byPost, err := s.ListCommentsByPost(ctx, "p1")
	if err != nil || len(byPost) != 1 || byPost[0].ID != c1.ID {
		t.Fatalf("ListCommentsByPost = %+v, %v", byPost, err)
	}

	c2.Content = "changed"
	if err := s.UpdateComment(ctx, c2); err != nil {
		t.Fatal(err)
	}
	got, err := s.FindCommentByID(ctx, c2.ID)
	if err != nil || got.Content != "changed" {
		t.Fatalf("FindCommentByID = %+v, %v", got, err)
	}

	if err := s.DeleteCommentsByPost(ctx, "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteComment(ctx, c2.ID); err != nil {
		t.Fatal(err)
	}
	all, err := s.ListComments(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("ListComments = %+v, %v", all, err)
	}
}

func TestGormRefreshTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestGormStore(t)
	u := createUser(t, s, "t@t.com")
	exp := time.Now().Add(time.Hour)

	for _, id := range []string{"jti-1", "jti-2", "jti-3"} {
		if err := s.SaveRefreshToken(ctx, &models.RefreshToken{ID: id, UserID: u.ID, ExpiresAt: exp}); err != nil {
			t.Fatalf("SaveRefreshToken %s: %v", id, err)
		}
	}

	ok, err := s.ConsumeRefreshToken(ctx, "someone-else", "jti-1")
	if err != nil || ok {
		t.Fatalf("consume with wrong owner = %v, %v", ok, err)
	}
	ok, err = s.ConsumeRefreshToken(ctx, u.ID, "jti-1")
	if err != nil || !ok {
		t.Fatalf("first consume = %v, %v", ok, err)
	}
	ok, err = s.ConsumeRefreshToken(ctx, u.ID, "jti-1")
	if err != nil || ok {
		t.Fatalf("second consume = %v, %v", ok, err)
	}

	if err := s.RevokeRefreshToken(ctx, "jti-2"); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.ConsumeRefreshToken(ctx, u.ID, "jti-2"); ok {
		t.Fatal("revoked token consumed")
	}

	if err := s.RevokeUserRefreshTokens(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.ConsumeRefreshToken(ctx, u.ID, "jti-3"); ok {
		t.Fatal("token survived bulk revocation")
	}
}

func TestGormConsumeIsExclusive(t *testing.T) {
	ctx := context.Background()
	s := newTestGormStore(t)
	u := createUser(t, s, "t@t.com")
	if err := s.SaveRefreshToken(ctx, &models.RefreshToken{ID: "jti", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.ConsumeRefreshToken(ctx, u.ID, "jti")
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("token consumed %d times", wins)
	}
}

func TestGormSkipsExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestGormStore(t)
	u := createUser(t, s, "t@t.com")

	if err := s.SaveRefreshToken(ctx, &models.RefreshToken{ID: "old", UserID: u.ID, ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.ConsumeRefreshToken(ctx, u.ID, "old"); ok {
		t.Fatal("expired token consumed")
	}
}
