package redisstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"shortener.local/internal/app/shortlink"
	"shortener.local/internal/platform/redisdb"
)

// newTestStore needs a scratch Redis in TEST_REDIS_ADDR. Each test gets its
// own key prefix and removes its keys afterwards.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := redisdb.New(ctx, addr, "", 0)
	if err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	prefix := "test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return New(client, prefix)
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := shortlink.User{Username: "alice", PasswordHash: "h1", CreatedAt: time.Now()}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := s.CreateUser(ctx, u); !errors.Is(err, shortlink.ErrDuplicateUser) {
		t.Fatalf("duplicate: got %v", err)
	}
	if err := s.UpdatePasswordHash(ctx, "alice", "h2"); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}
	got, err := s.FindUser(ctx, "alice")
	if err != nil || got.PasswordHash != "h2" {
		t.Fatalf("FindUser: %+v, %v", got, err)
	}
	if err := s.UpdatePasswordHash(ctx, "bob", "x"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("missing user: got %v", err)
	}
}

func TestLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	l := shortlink.Link{ID: "abc1234", URL: "https://a.example", Owner: "alice", CreatedAt: base, UpdatedAt: base}
	if err := s.InsertLink(ctx, l); err != nil {
		t.Fatalf("InsertLink: %v", err)
	}
	if err := s.InsertLink(ctx, l); !errors.Is(err, shortlink.ErrIDTaken) {
		t.Fatalf("duplicate id: got %v", err)
	}
	got, err := s.FindLink(ctx, "abc1234")
	if err != nil || got.URL != l.URL || got.Owner != "alice" || !got.CreatedAt.Equal(base) {
		t.Fatalf("FindLink: %+v, %v", got, err)
	}

	if _, err := s.UpdateLinkURL(ctx, "abc1234", "bob", "https://evil.example"); !errors.Is(err, shortlink.ErrForbidden) {
		t.Fatalf("non-owner update: got %v", err)
	}
	if err := s.DeleteLink(ctx, "abc1234", "bob"); !errors.Is(err, shortlink.ErrForbidden) {
		t.Fatalf("non-owner delete: got %v", err)
	}
	updated, err := s.UpdateLinkURL(ctx, "abc1234", "alice", "https://b.example")
	if err != nil || updated.URL != "https://b.example" {
		t.Fatalf("UpdateLinkURL: %+v, %v", updated, err)
	}

	s.InsertLink(ctx, shortlink.Link{ID: "def5678", URL: "https://c.example", Owner: "alice", CreatedAt: base.Add(time.Second), UpdatedAt: base})
	ids, err := s.ListLinkIDs(ctx, "alice")
	if err != nil || fmt.Sprint(ids) != "[abc1234 def5678]" {
		t.Fatalf("ListLinkIDs: %v, %v", ids, err)
	}

	if err := s.DeleteLink(ctx, "abc1234", "alice"); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if _, err := s.FindLink(ctx, "abc1234"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("after delete: got %v", err)
	}
	if _, err := s.UpdateLinkURL(ctx, "abc1234", "alice", "https://x.example"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("update deleted: got %v", err)
	}
	if ids, _ := s.ListLinkIDs(ctx, "alice"); fmt.Sprint(ids) != "[def5678]" {
		t.Fatalf("ids after delete: %v", ids)
	}
}
