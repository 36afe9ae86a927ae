package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedFormat indicates a document layout a highlighter cannot rewrite.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrRenderFailed indicates a highlighter could not decode or re-encode a document.
	// Callers fall back to the unmodified source.
	ErrRenderFailed = errors.New("render failed")

	// ErrNoMatches indicates no keyword occurs in a document, so there is nothing to render.
	ErrNoMatches = errors.New("no keyword occurrences")

	// ErrSearchUnavailable indicates the search engine failed or is not configured.
	// Distinct from an empty result set.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrStoreUnavailable indicates the object store could not be reached.
	ErrStoreUnavailable = errors.New("object store unavailable")

	// Access URL Errors.

	// ErrInvalidSignature indicates an access URL signature does not match.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrExpired indicates an access URL is past its expiry.
	ErrExpired = errors.New("access url expired")

	// ErrReservedName indicates a source name inside the derived-artifact namespace.
	ErrReservedName = errors.New("reserved object name")
)
