package main

import (
	"context"
	"fmt"
	"log/slog"

	"shortener.local/internal/app/shortlink"
	"shortener.local/internal/app/shortlink/memstore"
	"shortener.local/internal/app/shortlink/redisstore"
	"shortener.local/internal/app/shortlink/repo"
	"shortener.local/internal/platform/config"
	"shortener.local/internal/platform/db"
	"shortener.local/internal/platform/migrate"
	"shortener.local/internal/platform/redisdb"
)

type stores struct {
	users shortlink.UserStore
	links shortlink.LinkStore
	ready func(context.Context) error
	close func()
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := db.New(ctx, cfg.DBDSN)
		if err != nil {
			return stores{}, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("ping postgres: %w", err)
		}
		slog.Info("postgres connected")
		if cfg.MigrateOnStart {
			res, err := migrate.Up(ctx, pool, migrate.Schema())
			if err != nil {
				pool.Close()
				return stores{}, fmt.Errorf("migrate: %w", err)
			}
			slog.Info("migrations done", "applied", len(res.AppliedFiles), "skipped", len(res.SkippedFiles))
		}
		return withReadiness(stores{
			users: repo.NewUsersRepo(pool),
			links: repo.NewLinksRepo(pool),
			close: pool.Close,
		}), nil

	case config.StoreDriverRedis:
		client, err := redisdb.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return stores{}, err
		}
		slog.Info("redis connected", "addr", cfg.RedisAddr)
		s := redisstore.New(client, cfg.ServiceName+":")
		return withReadiness(stores{
			users: s,
			links: s,
			close: func() { client.Close() },
		}), nil

	case config.StoreDriverMemory:
		slog.Warn("in-memory store: data is lost on restart")
		s := memstore.New()
		return withReadiness(stores{users: s, links: s, close: func() {}}), nil
	}
	return stores{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// withReadiness backs /readyz with the link store's Ping. Stores that cannot
// be pinged are always ready.
func withReadiness(st stores) stores {
	if p, ok := st.links.(shortlink.Pinger); ok {
		st.ready = p.Ping
		return st
	}
	st.ready = func(context.Context) error { return nil }
	return st
}
