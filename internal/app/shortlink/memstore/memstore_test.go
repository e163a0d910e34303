package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"shortener.local/internal/app/shortlink"
)

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.CreateUser(ctx, shortlink.User{Username: "alice", PasswordHash: "h1"}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	err := s.CreateUser(ctx, shortlink.User{Username: "alice", PasswordHash: "h2"})
	if !errors.Is(err, shortlink.ErrDuplicateUser) {
		t.Fatalf("duplicate: got %v", err)
	}
	u, err := s.FindUser(ctx, "alice")
	if err != nil || u.PasswordHash != "h1" {
		t.Fatalf("FindUser: got %+v, %v", u, err)
	}

	if err := s.UpdatePasswordHash(ctx, "alice", "h3"); err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}
	if u, _ := s.FindUser(ctx, "alice"); u.PasswordHash != "h3" {
		t.Fatalf("hash not updated: %q", u.PasswordHash)
	}
	if _, err := s.FindUser(ctx, "bob"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("missing user: got %v", err)
	}
	if err := s.UpdatePasswordHash(ctx, "bob", "x"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("update missing user: got %v", err)
	}
}

func TestLinksOwnerConditional(t *testing.T) {
	ctx := context.Background()
	s := New()

	l := shortlink.Link{ID: "abc1234", URL: "https://a.example", Owner: "alice", CreatedAt: time.Now()}
	if err := s.InsertLink(ctx, l); err != nil {
		t.Fatalf("InsertLink: %v", err)
	}
	if err := s.InsertLink(ctx, l); !errors.Is(err, shortlink.ErrIDTaken) {
		t.Fatalf("duplicate id: got %v", err)
	}

	if _, err := s.UpdateLinkURL(ctx, "abc1234", "bob", "https://evil.example"); !errors.Is(err, shortlink.ErrForbidden) {
		t.Fatalf("update by non-owner: got %v", err)
	}
	if err := s.DeleteLink(ctx, "abc1234", "bob"); !errors.Is(err, shortlink.ErrForbidden) {
		t.Fatalf("delete by non-owner: got %v", err)
	}
	if got, _ := s.FindLink(ctx, "abc1234"); got.URL != "https://a.example" {
		t.Fatalf("record changed by non-owner: %+v", got)
	}

	updated, err := s.UpdateLinkURL(ctx, "abc1234", "alice", "https://b.example")
	if err != nil || updated.URL != "https://b.example" {
		t.Fatalf("UpdateLinkURL: got %+v, %v", updated, err)
	}
	if err := s.DeleteLink(ctx, "abc1234", "alice"); err != nil {
		t.Fatalf("DeleteLink: %v", err)
	}
	if _, err := s.FindLink(ctx, "abc1234"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("after delete: got %v", err)
	}
	if _, err := s.UpdateLinkURL(ctx, "abc1234", "alice", "https://c.example"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("update deleted: got %v", err)
	}
	if err := s.DeleteLink(ctx, "abc1234", "alice"); !errors.Is(err, shortlink.ErrNotFound) {
		t.Fatalf("delete deleted: got %v", err)
	}
}

func TestListLinkIDsOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"zzz0001", "aaa0002", "mmm0003"} {
		s.InsertLink(ctx, shortlink.Link{ID: id, URL: "https://x.example", Owner: "alice", CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	s.InsertLink(ctx, shortlink.Link{ID: "bob0001", URL: "https://x.example", Owner: "bob", CreatedAt: base})

	ids, err := s.ListLinkIDs(ctx, "alice")
	if err != nil {
		t.Fatalf("ListLinkIDs: %v", err)
	}
	if fmt.Sprint(ids) != "[zzz0001 aaa0002 mmm0003]" {
		t.Fatalf("ids: got %v", ids)
	}
	if ids, _ := s.ListLinkIDs(ctx, "carol"); len(ids) != 0 {
		t.Fatalf("carol: got %v", ids)
	}
}

func TestConcurrentInsertSameIDHasOneWinner(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.InsertLink(ctx, shortlink.Link{ID: "same001", Owner: fmt.Sprintf("u%d", i)})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("winners: got %d, want 1", wins)
	}
}
