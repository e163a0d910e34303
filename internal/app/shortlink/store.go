package shortlink

import "context"

// UserStore persists accounts. Username uniqueness is enforced by the store.
type UserStore interface {
	// CreateUser returns ErrDuplicateUser when the username exists.
	CreateUser(ctx context.Context, u User) error
	// FindUser returns ErrNotFound when absent.
	FindUser(ctx context.Context, username string) (User, error)
	// UpdatePasswordHash returns ErrNotFound when absent.
	UpdatePasswordHash(ctx context.Context, username, hash string) error
}

// LinkStore persists short links. Update and delete are conditional on the
// owner in a single store operation.
type LinkStore interface {
	// InsertLink returns ErrIDTaken when the id exists.
	InsertLink(ctx context.Context, l Link) error
	// FindLink returns ErrNotFound when absent.
	FindLink(ctx context.Context, id string) (Link, error)
	// UpdateLinkURL sets url and updated_at only if owner matches. It returns
	// ErrNotFound when the id is absent and ErrForbidden when owned by
	// someone else.
	UpdateLinkURL(ctx context.Context, id, owner, url string) (Link, error)
	// DeleteLink follows the UpdateLinkURL contract.
	DeleteLink(ctx context.Context, id, owner string) error
	// ListLinkIDs returns owner's ids, oldest first.
	ListLinkIDs(ctx context.Context, owner string) ([]string, error)
}

// Pinger is implemented by stores that can report readiness. /readyz uses
// the link store's Ping.
type Pinger interface {
	Ping(ctx context.Context) error
}
