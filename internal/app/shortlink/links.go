package shortlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shortener.local/internal/app/shortlink/audit"
	"shortener.local/internal/platform/metrics"
)

// Links manages short links. Every method except Get takes the resolved
// owner; an empty owner is ErrForbidden.
type Links struct {
	store       LinkStore
	ids         IDGenerator
	maxAttempts int
	audit       *audit.Recorder
	now         func() time.Time
}

func NewLinks(store LinkStore, ids IDGenerator, maxAttempts int, rec *audit.Recorder) *Links {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Links{
		store:       store,
		ids:         ids,
		maxAttempts: maxAttempts,
		audit:       rec,
		now:         time.Now,
	}
}

func requireOwner(owner string) error {
	if owner == "" {
		return fmt.Errorf("%w: no identity", ErrForbidden)
	}
	return nil
}

func (s *Links) Create(ctx context.Context, owner, rawURL string) (l Link, err error) {
	defer func() { metrics.Operations.WithLabelValues("create", outcome(err)).Inc() }()

	if err := requireOwner(owner); err != nil {
		return Link{}, err
	}
	if err := ValidateURL(rawURL); err != nil {
		return Link{}, err
	}

	now := s.now().UTC()
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		id, err := s.ids.NewID()
		if err != nil {
			return Link{}, fmt.Errorf("generate id: %w", err)
		}
		if IsReservedID(id) {
			metrics.IDCollisions.Inc()
			continue
		}
		l = Link{ID: id, URL: rawURL, Owner: owner, CreatedAt: now, UpdatedAt: now}
		err = s.store.InsertLink(ctx, l)
		if errors.Is(err, ErrIDTaken) {
			metrics.IDCollisions.Inc()
			slog.Debug("short id collision", "id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return Link{}, err
		}
		s.audit.Record(ctx, audit.LinkCreated, owner, id, rawURL)
		return l, nil
	}
	return Link{}, fmt.Errorf("%w: %d attempts", ErrIDSpaceExhausted, s.maxAttempts)
}

// Get is public. A malformed id is reported as ErrNotFound.
func (s *Links) Get(ctx context.Context, id string) (Link, error) {
	if ValidateID(id) != nil {
		return Link{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.store.FindLink(ctx, id)
}

// authorize runs the checks shared by Update and Delete in their fixed
// order: id syntax, existence, ownership.
func (s *Links) authorize(ctx context.Context, owner, id string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}
	l, err := s.store.FindLink(ctx, id)
	if err != nil {
		return err
	}
	if l.Owner != owner {
		return fmt.Errorf("%w: link %s", ErrForbidden, id)
	}
	return nil
}

func (s *Links) Update(ctx context.Context, owner, id, rawURL string) (l Link, err error) {
	defer func() { metrics.Operations.WithLabelValues("update", outcome(err)).Inc() }()

	if err := s.authorize(ctx, owner, id); err != nil {
		return Link{}, err
	}
	if err := ValidateURL(rawURL); err != nil {
		return Link{}, err
	}
	l, err = s.store.UpdateLinkURL(ctx, id, owner, rawURL)
	if err != nil {
		return Link{}, err
	}
	s.audit.Record(ctx, audit.LinkUpdated, owner, id, rawURL)
	return l, nil
}

func (s *Links) Delete(ctx context.Context, owner, id string) (err error) {
	defer func() { metrics.Operations.WithLabelValues("delete", outcome(err)).Inc() }()

	if err := s.authorize(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.DeleteLink(ctx, id, owner); err != nil {
		return err
	}
	s.audit.Record(ctx, audit.LinkDeleted, owner, id, "")
	return nil
}

func (s *Links) ListOwned(ctx context.Context, owner string) ([]string, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	ids, err := s.store.ListLinkIDs(ctx, owner)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// DeleteAll authenticates and then reports ErrNotFound without deleting
// anything; existing clients rely on the 404.
func (s *Links) DeleteAll(ctx context.Context, owner string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	return fmt.Errorf("%w: bulk delete is not supported", ErrNotFound)
}
