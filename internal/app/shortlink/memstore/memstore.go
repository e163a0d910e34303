// Package memstore keeps users and links in process memory. It backs tests
// and STORE_DRIVER=memory.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"shortener.local/internal/app/shortlink"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]shortlink.User
	links map[string]shortlink.Link
	now   func() time.Time
}

func New() *Store {
	return &Store{
		users: make(map[string]shortlink.User),
		links: make(map[string]shortlink.Link),
		now:   time.Now,
	}
}

func (s *Store) CreateUser(_ context.Context, u shortlink.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return fmt.Errorf("%w: %s", shortlink.ErrDuplicateUser, u.Username)
	}
	s.users[u.Username] = u
	return nil
}

func (s *Store) FindUser(_ context.Context, username string) (shortlink.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return shortlink.User{}, fmt.Errorf("%w: user %s", shortlink.ErrNotFound, username)
	}
	return u, nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, username, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return fmt.Errorf("%w: user %s", shortlink.ErrNotFound, username)
	}
	u.PasswordHash = hash
	s.users[username] = u
	return nil
}

func (s *Store) InsertLink(_ context.Context, l shortlink.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.links[l.ID]; ok {
		return shortlink.ErrIDTaken
	}
	s.links[l.ID] = l
	return nil
}

func (s *Store) FindLink(_ context.Context, id string) (shortlink.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[id]
	if !ok {
		return shortlink.Link{}, fmt.Errorf("%w: link %s", shortlink.ErrNotFound, id)
	}
	return l, nil
}

// ownedLocked returns the link when owner holds it. s.mu must be held.
func (s *Store) ownedLocked(id, owner string) (shortlink.Link, error) {
	l, ok := s.links[id]
	if !ok {
		return shortlink.Link{}, fmt.Errorf("%w: link %s", shortlink.ErrNotFound, id)
	}
	if l.Owner != owner {
		return shortlink.Link{}, fmt.Errorf("%w: link %s", shortlink.ErrForbidden, id)
	}
	return l, nil
}

func (s *Store) UpdateLinkURL(_ context.Context, id, owner, url string) (shortlink.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.ownedLocked(id, owner)
	if err != nil {
		return shortlink.Link{}, err
	}
	l.URL = url
	l.UpdatedAt = s.now().UTC()
	s.links[id] = l
	return l, nil
}

func (s *Store) DeleteLink(_ context.Context, id, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ownedLocked(id, owner); err != nil {
		return err
	}
	delete(s.links, id)
	return nil
}

func (s *Store) ListLinkIDs(_ context.Context, owner string) ([]string, error) {
	s.mu.RLock()
	owned := make([]shortlink.Link, 0)
	for _, l := range s.links {
		if l.Owner == owner {
			owned = append(owned, l)
		}
	}
	s.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID < owned[j].ID
		}
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	ids := make([]string, len(owned))
	for i, l := range owned {
		ids[i] = l.ID
	}
	return ids, nil
}

func (s *Store) Ping(context.Context) error { return nil }
