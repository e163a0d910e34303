package gee

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAbort(t *testing.T) {
	c := &Context{index: -1}
	if c.IsAborted() {
		t.Fatal("new context should not be aborted")
	}
	c.Abort()
	if !c.IsAborted() {
		t.Fatal("context should be aborted after Abort()")
	}
}

func TestAbortStopsHandlerChain(t *testing.T) {
	var executed []int
	c := newContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	c.handlers = []HandlerFunc{
		func(c *Context) {
			executed = append(executed, 1)
			c.Next()
		},
		func(c *Context) {
			executed = append(executed, 2)
			c.Abort()
			c.Next()
		},
		func(c *Context) {
			executed = append(executed, 3)
		},
	}

	c.Next()

	if len(executed) != 2 || executed[0] != 1 || executed[1] != 2 {
		t.Fatalf("executed: got %v, want [1 2]", executed)
	}
}

func TestMiddlewareExecutionOrder(t *testing.T) {
	var order []string
	c := newContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	c.handlers = []HandlerFunc{
		func(c *Context) {
			order = append(order, "m1-before")
			c.Next()
			order = append(order, "m1-after")
		},
		func(c *Context) {
			order = append(order, "m2-before")
			c.Next()
			order = append(order, "m2-after")
		},
		func(c *Context) {
			order = append(order, "handler")
		},
	}

	c.Next()

	want := "m1-before,m2-before,handler,m2-after,m1-after"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("order: got %s, want %s", got, want)
	}
}

func TestAbortWithError(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	c := newContext(w, req)

	c.AbortWithError(http.StatusForbidden, "forbidden")

	if !c.IsAborted() {
		t.Fatal("context should be aborted")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusForbidden)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type: got %q", ct)
	}
	var body ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != http.StatusForbidden || body.Detail != "forbidden" || body.RequestID != "req-1" {
		t.Fatalf("body: got %+v", body)
	}
}

func TestAbortWithErrorAfterWriteKeepsFirstStatus(t *testing.T) {
	w := httptest.NewRecorder()
	c := newContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

	c.String(http.StatusCreated, "done")
	c.AbortWithError(http.StatusInternalServerError, "internal")

	if w.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Body.String() != "done" {
		t.Fatalf("body: got %q", w.Body.String())
	}
}

func TestRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	c := newContext(w, httptest.NewRequest(http.MethodGet, "/", nil))

	c.Redirect(http.StatusMovedPermanently, "https://example.com")

	if w.Code != http.StatusMovedPermanently {
		t.Fatalf("status: got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "https://example.com" {
		t.Fatalf("Location: got %q", loc)
	}
}

func TestShouldBindJSON(t *testing.T) {
	type payload struct {
		URL string `json:"url"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr error
		wantURL string
	}{
		{"valid", `{"url":"https://example.com"}`, nil, "https://example.com"},
		{"empty", ``, ErrEmptyBody, ""},
		{"trailing", `{"url":"a"}{"url":"b"}`, ErrTrailingValues, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c := newContext(httptest.NewRecorder(), req)
			var p payload
			err := c.ShouldBindJSON(&p)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if p.URL != tt.wantURL && tt.wantErr == nil {
				t.Fatalf("url: got %q, want %q", p.URL, tt.wantURL)
			}
		})
	}
}

func TestShouldBindJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"url":"x","extra":1}`))
	c := newContext(httptest.NewRecorder(), req)
	var p struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&p); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestBindJSONWritesBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	c := newContext(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{")))
	var p map[string]string
	if err := c.BindJSON(&p); err == nil {
		t.Fatal("expected error")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", w.Code, http.StatusBadRequest)
	}
	if !c.IsAborted() {
		t.Fatal("context should be aborted")
	}
}
