// Package audit records who changed what. Events go to a Sink; a failing
// sink is logged and counted but never fails the request that caused it.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"shortener.local/internal/platform/metrics"
)

type EventType string

const (
	UserRegistered  EventType = "user.registered"
	PasswordChanged EventType = "user.password_changed"
	LinkCreated     EventType = "link.created"
	LinkUpdated     EventType = "link.updated"
	LinkDeleted     EventType = "link.deleted"
)

type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     string    `json:"actor"`
	LinkID    string    `json:"link_id,omitempty"`
	URL       string    `json:"url,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	At        time.Time `json:"at"`
}

type Sink interface {
	Write(ctx context.Context, e Event) error
	Close() error
}

// Meta is the per-request data stamped onto every event.
type Meta struct {
	RequestID string
	ClientIP  string
}

type metaKey struct{}

func WithMeta(ctx context.Context, m Meta) context.Context {
	return context.WithValue(ctx, metaKey{}, m)
}

func MetaFrom(ctx context.Context) Meta {
	m, _ := ctx.Value(metaKey{}).(Meta)
	return m
}

// Recorder builds events and hands them to a Sink. The zero value and a nil
// *Recorder both drop events.
type Recorder struct {
	sink Sink
	now  func() time.Time
}

func NewRecorder(sink Sink) *Recorder {
	return &Recorder{sink: sink, now: time.Now}
}

func (r *Recorder) Record(ctx context.Context, typ EventType, actor, linkID, url string) {
	if r == nil || r.sink == nil {
		return
	}
	meta := MetaFrom(ctx)
	e := Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Actor:     actor,
		LinkID:    linkID,
		URL:       url,
		RequestID: meta.RequestID,
		ClientIP:  meta.ClientIP,
		At:        r.now().UTC(),
	}
	if err := r.sink.Write(ctx, e); err != nil {
		metrics.AuditDropped.Inc()
		slog.Warn("audit write failed", "type", string(typ), "event_id", e.ID, "err", err)
	}
}

func (r *Recorder) Close() error {
	if r == nil || r.sink == nil {
		return nil
	}
	return r.sink.Close()
}
