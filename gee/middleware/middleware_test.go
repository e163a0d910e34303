package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"shortener.local/gee"
)

func TestRequestIDPreservesIncoming(t *testing.T) {
	r := gee.New()
	r.Use(ReqID())
	r.GET("/id", func(ctx *gee.Context) {
		ctx.String(http.StatusOK, "%s", ctx.Req.Header.Get(RequestIDHeader))
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc" {
		t.Fatalf("response X-Request-ID: got %q, want %q", got, "abc")
	}
	if got := rec.Body.String(); got != "abc" {
		t.Fatalf("body: got %q, want %q", got, "abc")
	}
}

func TestRequestIDGeneratesWhenMissingOrOversized(t *testing.T) {
	for _, incoming := range []string{"", strings.Repeat("x", maxRequestIDLen+1)} {
		r := gee.New()
		r.Use(ReqID())
		r.GET("/id", func(ctx *gee.Context) { ctx.Status(http.StatusOK) })

		req := httptest.NewRequest(http.MethodGet, "/id", nil)
		if incoming != "" {
			req.Header.Set(RequestIDHeader, incoming)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		got := rec.Header().Get(RequestIDHeader)
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("generated id %q is not a uuid: %v", got, err)
		}
	}
}

func TestAccessLogEmitsJSONFields(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(old) })

	r := gee.New()
	r.Use(gee.Recovery(), ReqID(), AccessLog())
	r.GET("/:id", func(ctx *gee.Context) {
		ctx.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest(http.MethodGet, "/abc", nil)
	req.Header.Set(RequestIDHeader, "rid")
	r.ServeHTTP(httptest.NewRecorder(), req)

	dec := json.NewDecoder(&buf)
	for {
		var m map[string]any
		if err := dec.Decode(&m); err != nil {
			t.Fatal("no access log line found")
		}
		if m["msg"] != "access" {
			continue
		}
		if m["request_id"] != "rid" {
			t.Fatalf("request_id: got %v", m["request_id"])
		}
		if m["route"] != "/:id" || m["path"] != "/abc" {
			t.Fatalf("route/path: got %v %v", m["route"], m["path"])
		}
		if m["status"] != float64(http.StatusOK) {
			t.Fatalf("status: got %v", m["status"])
		}
		return
	}
}
