package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cppla/postboard/models"
)

func newTestRedisTokens(t *testing.T) (*RedisTokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisTokenStore(rc)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, mr
}

func TestRedisConsumeOnce(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisTokens(t)

	tok := &models.RefreshToken{ID: "jti-1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.SaveRefreshToken(ctx, tok); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRefreshToken(ctx, tok); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if ok, err := s.ConsumeRefreshToken(ctx, "u2", "jti-1"); err != nil || ok {
		t.Fatalf("consume with wrong owner = %v, %v", ok, err)
	}
	if ok, err := s.ConsumeRefreshToken(ctx, "u1", "jti-1"); err != nil || !ok {
		t.Fatalf("first consume = %v, %v", ok, err)
	}
	if ok, err := s.ConsumeRefreshToken(ctx, "u1", "jti-1"); err != nil || ok {
		t.Fatalf("second consume = %v, %v", ok, err)
	}
}

func TestRedisTokensExpire(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisTokens(t)

	tok := &models.RefreshToken{ID: "jti-1", UserID: "u1", ExpiresAt: time.Now().Add(time.Minute)}
	if err := s.SaveRefreshToken(ctx, tok); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	if ok, err := s.ConsumeRefreshToken(ctx, "u1", "jti-1"); err != nil || ok {
		t.Fatalf("expired token consume = %v, %v", ok, err)
	}
}

func TestRedisRevocation(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedisTokens(t)
	exp := time.Now().Add(time.Hour)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.SaveRefreshToken(ctx, &models.RefreshToken{ID: id, UserID: "u1", ExpiresAt: exp}); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.RevokeRefreshToken(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	// unknown ids are ignored
	if err := s.RevokeRefreshToken(ctx, "nope"); err != nil {
		t.Fatal(err)
	}
	members, err := mr.Members(userRefreshKey("u1"))
	if err != nil || len(members) != 2 {
		t.Fatalf("index members = %v, %v", members, err)
	}

	if err := s.RevokeUserRefreshTokens(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"b", "c"} {
		if mr.Exists(refreshKey(id)) {
			t.Fatalf("token %s survived bulk revocation", id)
		}
	}
	if mr.Exists(userRefreshKey("u1")) {
		t.Fatal("user index survived bulk revocation")
	}
}

func TestWithTokenStoreRoutesTokenCalls(t *testing.T) {
	ctx := context.Background()
	base := newTestGormStore(t)
	tokens, mr := newTestRedisTokens(t)
	st := WithTokenStore(base, tokens)

	u := createUser(t, st, "t@t.com")
	if err := st.SaveRefreshToken(ctx, &models.RefreshToken{ID: "jti", UserID: u.ID, ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(refreshKey("jti")) {
		t.Fatal("token not written to redis")
	}
	if ok, err := base.ConsumeRefreshToken(ctx, u.ID, "jti"); err != nil || ok {
		t.Fatalf("token leaked into sql store: %v, %v", ok, err)
	}
	if ok, err := st.ConsumeRefreshToken(ctx, u.ID, "jti"); err != nil || !ok {
		t.Fatalf("consume through override = %v, %v", ok, err)
	}
}
