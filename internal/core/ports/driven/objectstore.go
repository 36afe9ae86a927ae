package driven

import (
	"context"
	"net/url"
	"time"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
)

// ObjectStore holds source documents and their derived highlighted copies.
// It is the only mutable state shared between requests and the sweeper.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Exists reports whether an object is present.
	Exists(ctx context.Context, name string) (bool, error)

	// Read returns the full object contents.
	// Returns domain.ErrNotFound if the object does not exist.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write stores data under name.
	// Returns domain.ErrAlreadyExists when the object exists and Overwrite is false.
	// An overwrite replaces the object and resets its creation time.
	Write(ctx context.Context, name string, data []byte, opts domain.WriteOptions) error

	// Delete removes an object.
	// Returns domain.ErrNotFound if the object does not exist.
	Delete(ctx context.Context, name string) error

	// List returns every object whose name starts with prefix.
	// An empty prefix lists everything.
	List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error)

	// Properties returns metadata of one object.
	// Returns domain.ErrNotFound if the object does not exist.
	Properties(ctx context.Context, name string) (*domain.ObjectInfo, error)

	// Sign issues an access URL for name.
	// The object is not required to exist.
	Sign(ctx context.Context, name string, opts domain.SignOptions) (string, error)

	// Close releases resources.
	Close() error
}

// URLSigner issues and verifies access URLs.
type URLSigner interface {
	// Sign returns an absolute URL for name valid from now until now+opts.TTL.
	Sign(name string, opts domain.SignOptions, now time.Time) string

	// Verify checks the signature and expiry carried in query.
	// Returns the signed options on success, or domain.ErrInvalidSignature / domain.ErrExpired.
	Verify(name string, query url.Values, now time.Time) (domain.SignOptions, error)
}
