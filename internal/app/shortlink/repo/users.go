package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shortener.local/internal/app/shortlink"
)

// queryTimeout bounds every statement in this package.
const queryTimeout = 3 * time.Second

// UsersRepo stores accounts in Postgres.
type UsersRepo struct {
	db *pgxpool.Pool
}

func NewUsersRepo(db *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{db: db}
}

// CreateUser inserts an account; the username primary key decides duplicates.
func (r *UsersRepo) CreateUser(ctx context.Context, u shortlink.User) error {
	dbctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(dbctx,
		`INSERT INTO users (username, password_hash, created_at, updated_at) VALUES ($1, $2, $3, $3)
		 ON CONFLICT (username) DO NOTHING`,
		u.Username, u.PasswordHash, u.CreatedAt)
	if err != nil {
		slog.Error("insert user failed", "err", err)
		return err
	}
	// ON CONFLICT DO NOTHING: 0 rows means the name is taken
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", shortlink.ErrDuplicateUser, u.Username)
	}
	return nil
}

func (r *UsersRepo) FindUser(ctx context.Context, username string) (shortlink.User, error) {
	dbctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u shortlink.User
	err := r.db.QueryRow(dbctx,
		`SELECT username, password_hash, created_at FROM users WHERE username=$1`, username).
		Scan(&u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shortlink.User{}, fmt.Errorf("%w: user %s", shortlink.ErrNotFound, username)
		}
		slog.Error("select user failed", "err", err)
		return shortlink.User{}, err
	}
	return u, nil
}

func (r *UsersRepo) UpdatePasswordHash(ctx context.Context, username, hash string) error {
	dbctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(dbctx,
		`UPDATE users SET password_hash=$2, updated_at=NOW() WHERE username=$1`, username, hash)
	if err != nil {
		slog.Error("update password failed", "err", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %s", shortlink.ErrNotFound, username)
	}
	return nil
}
