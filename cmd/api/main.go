package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"shortener.local/gee"
	"shortener.local/gee/middleware"
	"shortener.local/internal/app/shortlink"
	"shortener.local/internal/app/shortlink/audit"
	"shortener.local/internal/app/shortlink/httpapi"
	"shortener.local/internal/platform/auth"
	"shortener.local/internal/platform/config"
	"shortener.local/internal/platform/httpmiddleware"
	"shortener.local/internal/platform/httpserver"
	"shortener.local/internal/platform/metrics"
	"shortener.local/internal/platform/trace"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.CheckJWTSecret(); err != nil {
		log.Fatal(err)
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	slog.SetDefault(slog.New(h).With("service", cfg.ServiceName))

	if err := run(cfg); err != nil {
		slog.Error("exit", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := openStores(startCtx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	ts, err := auth.NewHS256Service(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		return err
	}

	rec := audit.NewRecorder(newAuditSink(cfg))
	defer func() {
		if err := rec.Close(); err != nil {
			slog.Error("audit sink close failed", "err", err)
		}
	}()

	accounts, err := shortlink.NewAccounts(st.users, ts, rec, cfg.BcryptCost)
	if err != nil {
		return err
	}
	ids, err := shortlink.NewSqidsGenerator(cfg.IDMinLength)
	if err != nil {
		return err
	}
	links := shortlink.NewLinks(st.links, ids, cfg.IDMaxAttempts, rec)

	metrics.Init()

	if cfg.TracingEnabled {
		shutdown, err := trace.Init(cfg.OtlpGrpcEndpoint, cfg.OtlpServiceName, version)
		if err != nil {
			slog.Error("trace init failed, continuing without tracing", "err", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					slog.Error("trace shutdown failed", "err", err)
				}
			}()
		}
	} else {
		slog.Info("tracing disabled", "TRACING_ENABLED", false)
	}

	r := gee.New()
	r.Use(gee.Recovery(), middleware.ReqID(), middleware.AccessLog(), httpmiddleware.Metrics(), httpmiddleware.TraceName())
	httpapi.RegisterRoutes(r, httpapi.Deps{
		Accounts:      accounts,
		Links:         links,
		PublicBaseURL: cfg.PublicBaseURL,
	})

	publicHandler := http.Handler(r)
	if cfg.TracingEnabled {
		publicHandler = otelhttp.NewHandler(r, "http")
	}
	publicSrv := httpserver.New(cfg, publicHandler)
	adminSrv := httpserver.NewAdmin(cfg, newAdminMux(cfg, st.ready))

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errch := make(chan error, 2)
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(publicSrv, cfg.ShutdownTimeout, stopCtx)
	}()
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(adminSrv, cfg.ShutdownTimeout, stopCtx)
	}()

	// Either server failing stops the other.
	err = <-errch
	stop()
	select {
	case err2 := <-errch:
		if err == nil {
			err = err2
		}
	case <-time.After(cfg.ShutdownTimeout + time.Second):
	}
	return err
}

func newAuditSink(cfg config.Config) audit.Sink {
	switch cfg.AuditSink {
	case config.AuditSinkKafka:
		slog.Info("audit to kafka", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
		return audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	case config.AuditSinkNone:
		return audit.NopSink{}
	default:
		return audit.NewLogSink(slog.Default())
	}
}
