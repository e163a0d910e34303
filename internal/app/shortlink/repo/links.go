package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shortener.local/internal/app/shortlink"
)

// Postgres error codes.
const pgForeignKeyViolation = "23503"

// LinksRepo stores links in Postgres. Every statement runs under queryTimeout.
type LinksRepo struct {
	db *pgxpool.Pool
}

func NewLinksRepo(db *pgxpool.Pool) *LinksRepo {
	return &LinksRepo{db: db}
}

// InsertLink writes a new link. An id clash is reported as ErrIDTaken so the
// caller can draw another id; a missing owner row is ErrForbidden.
func (r *LinksRepo) InsertLink(ctx context.Context, l shortlink.Link) error {
	dbctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// ON CONFLICT keeps an id clash out of the error path; it shows up as 0 rows.
	tag, err := r.db.Exec(dbctx,
		`INSERT INTO links (id, url, owner, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO NOTHING`,
		l.ID, l.URL, l.Owner, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		// owner was deleted between token check and insert
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("%w: owner %s does not exist", shortlink.ErrForbidden, l.Owner)
		}
		slog.Error("insert link failed", "err", err)
		return err
	}
	// nothing inserted: id already taken
	if tag.RowsAffected() == 0 {
		return shortlink.ErrIDTaken
	}
	return nil
}

// FindLink loads one link by id.
func (r *LinksRepo) FindLink(ctx context.Context, id string) (shortlink.Link, error) {
	dbctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var l shortlink.Link
	err := r.db.QueryRow(dbctx,
		`SELECT id, url, owner, created_at, updated_at FROM links WHERE id=$1`, id).
		Scan(&l.ID, &l.URL, &l.Owner, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shortlink.Link{}, fmt.Errorf("%w: link %s", shortlink.ErrNotFound, id)
		}
		slog.Error("select link failed", "err", err)
		return shortlink.Link{}, err
	}
	return l, nil
}

// missOrForeign explains why an owner-conditional statement touched no row.
func (r *LinksRepo) missOrForeign(ctx context.Context, id string) error {
	if _, err := r.FindLink(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: link %s", shortlink.ErrForbidden, id)
}

// UpdateLinkURL replaces the target URL of a link owned by owner and returns
// the updated row.
func (r *LinksRepo) UpdateLinkURL(ctx context.Context, id, owner, url string) (shortlink.Link, error) {
	dbctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// owner is part of the WHERE clause, so the check and the write are one statement
	var l shortlink.Link
	err := r.db.QueryRow(dbctx,
		`UPDATE links SET url=$3, updated_at=NOW() WHERE id=$1 AND owner=$2
		 RETURNING id, url, owner, created_at, updated_at`, id, owner, url).
		Scan(&l.ID, &l.URL, &l.Owner, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		// no row matched: absent or someone else's
		if errors.Is(err, pgx.ErrNoRows) {
			return shortlink.Link{}, r.missOrForeign(ctx, id)
		}
		slog.Error("update link failed", "err", err)
		return shortlink.Link{}, err
	}
	return l, nil
}

// DeleteLink removes a link owned by owner.
func (r *LinksRepo) DeleteLink(ctx context.Context, id, owner string) error {
	dbctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tag, err := r.db.Exec(dbctx, `DELETE FROM links WHERE id=$1 AND owner=$2`, id, owner)
	if err != nil {
		slog.Error("delete link failed", "err", err)
		return err
	}
	// 0 rows: tell 404 from 403
	if tag.RowsAffected() == 0 {
		return r.missOrForeign(ctx, id)
	}
	return nil
}

// ListLinkIDs returns owner's ids in creation order. links_owner_idx covers
// the query.
func (r *LinksRepo) ListLinkIDs(ctx context.Context, owner string) ([]string, error) {
	dbctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.Query(dbctx, `SELECT id FROM links WHERE owner=$1 ORDER BY created_at, id`, owner)
	if err != nil {
		slog.Error("list links failed", "err", err)
		return nil, err
	}
	// CollectRows closes rows
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		slog.Error("scan link ids failed", "err", err)
		return nil, err
	}
	return ids, nil
}

// Ping backs /readyz.
func (r *LinksRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
