// Package redisstore keeps users and links in Redis hashes. Every
// check-and-write runs as a Lua script so it is atomic on the server.
//
// Only a single Redis node is supported: the link scripts touch a link hash
// and its owner's index, which hash to different slots under Redis Cluster.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"shortener.local/internal/app/shortlink"
)

// Script results.
const (
	resMissing   = 0
	resOK        = 1
	resNotOwner  = -1
	resDuplicate = -2
)

var createUserScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return -2
end
redis.call("HSET", KEYS[1], "password_hash", ARGV[1], "created_at", ARGV[2])
return 1
`)

var updatePasswordScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "password_hash", ARGV[1])
return 1
`)

// KEYS: link hash, owner index. ARGV: id, url, owner, created_at, updated_at, score.
var insertLinkScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return -2
end
redis.call("HSET", KEYS[1], "url", ARGV[2], "owner", ARGV[3], "created_at", ARGV[4], "updated_at", ARGV[5])
redis.call("ZADD", KEYS[2], ARGV[6], ARGV[1])
return 1
`)

// KEYS: link hash. ARGV: owner, url, updated_at.
var updateLinkScript = redis.NewScript(`
local owner = redis.call("HGET", KEYS[1], "owner")
if not owner then
  return 0
end
if owner ~= ARGV[1] then
  return -1
end
redis.call("HSET", KEYS[1], "url", ARGV[2], "updated_at", ARGV[3])
return 1
`)

// KEYS: link hash, owner index. ARGV: owner, id.
var deleteLinkScript = redis.NewScript(`
local owner = redis.call("HGET", KEYS[1], "owner")
if not owner then
  return 0
end
if owner ~= ARGV[1] then
  return -1
end
redis.call("DEL", KEYS[1])
redis.call("ZREM", KEYS[2], ARGV[2])
return 1
`)

type Store struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// New uses prefix (e.g. "shortener:") for every key it touches.
func New(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix, now: time.Now}
}

func (s *Store) userKey(name string) string   { return s.prefix + "user:" + name }
func (s *Store) linkKey(id string) string     { return s.prefix + "link:" + id }
func (s *Store) ownerKey(owner string) string { return s.prefix + "owner:" + owner + ":links" }

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *Store) CreateUser(ctx context.Context, u shortlink.User) error {
	res, err := createUserScript.Run(ctx, s.client, []string{s.userKey(u.Username)},
		u.PasswordHash, formatTime(u.CreatedAt)).Int()
	if err != nil {
		slog.Error("redis create user failed", "err", err)
		return err
	}
	if res == resDuplicate {
		return fmt.Errorf("%w: %s", shortlink.ErrDuplicateUser, u.Username)
	}
	return nil
}

func (s *Store) FindUser(ctx context.Context, username string) (shortlink.User, error) {
	m, err := s.client.HGetAll(ctx, s.userKey(username)).Result()
	if err != nil {
		slog.Error("redis find user failed", "err", err)
		return shortlink.User{}, err
	}
	if len(m) == 0 {
		return shortlink.User{}, fmt.Errorf("%w: user %s", shortlink.ErrNotFound, username)
	}
	return shortlink.User{
		Username:     username,
		PasswordHash: m["password_hash"],
		CreatedAt:    parseTime(m["created_at"]),
	}, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	res, err := updatePasswordScript.Run(ctx, s.client, []string{s.userKey(username)}, hash).Int()
	if err != nil {
		slog.Error("redis update password failed", "err", err)
		return err
	}
	if res == resMissing {
		return fmt.Errorf("%w: user %s", shortlink.ErrNotFound, username)
	}
	return nil
}

func (s *Store) InsertLink(ctx context.Context, l shortlink.Link) error {
	res, err := insertLinkScript.Run(ctx, s.client,
		[]string{s.linkKey(l.ID), s.ownerKey(l.Owner)},
		l.ID, l.URL, l.Owner, formatTime(l.CreatedAt), formatTime(l.UpdatedAt), l.CreatedAt.UnixMilli()).Int()
	if err != nil {
		slog.Error("redis insert link failed", "err", err)
		return err
	}
	if res == resDuplicate {
		return shortlink.ErrIDTaken
	}
	return nil
}

func (s *Store) FindLink(ctx context.Context, id string) (shortlink.Link, error) {
	m, err := s.client.HGetAll(ctx, s.linkKey(id)).Result()
	if err != nil {
		slog.Error("redis find link failed", "err", err)
		return shortlink.Link{}, err
	}
	if len(m) == 0 {
		return shortlink.Link{}, fmt.Errorf("%w: link %s", shortlink.ErrNotFound, id)
	}
	return shortlink.Link{
		ID:        id,
		URL:       m["url"],
		Owner:     m["owner"],
		CreatedAt: parseTime(m["created_at"]),
		UpdatedAt: parseTime(m["updated_at"]),
	}, nil
}

func ownerResult(res int, id string) error {
	switch res {
	case resOK:
		return nil
	case resMissing:
		return fmt.Errorf("%w: link %s", shortlink.ErrNotFound, id)
	case resNotOwner:
		return fmt.Errorf("%w: link %s", shortlink.ErrForbidden, id)
	default:
		return fmt.Errorf("unexpected script result %d", res)
	}
}

func (s *Store) UpdateLinkURL(ctx context.Context, id, owner, url string) (shortlink.Link, error) {
	res, err := updateLinkScript.Run(ctx, s.client, []string{s.linkKey(id)},
		owner, url, formatTime(s.now())).Int()
	if err != nil {
		slog.Error("redis update link failed", "err", err)
		return shortlink.Link{}, err
	}
	if err := ownerResult(res, id); err != nil {
		return shortlink.Link{}, err
	}
	return s.FindLink(ctx, id)
}

func (s *Store) DeleteLink(ctx context.Context, id, owner string) error {
	res, err := deleteLinkScript.Run(ctx, s.client, []string{s.linkKey(id), s.ownerKey(owner)},
		owner, id).Int()
	if err != nil {
		slog.Error("redis delete link failed", "err", err)
		return err
	}
	return ownerResult(res, id)
}

// ListLinkIDs orders by creation millisecond, then id.
func (s *Store) ListLinkIDs(ctx context.Context, owner string) ([]string, error) {
	ids, err := s.client.ZRange(ctx, s.ownerKey(owner), 0, -1).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		slog.Error("redis list links failed", "err", err)
		return nil, err
	}
	return ids, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
