package domain

import (
	"fmt"
	"strings"
	"time"
)

// DerivedPrefix marks the reserved namespace of highlighted copies.
const DerivedPrefix = "highlighted_"

// DerivedName returns the object name of the highlighted copy of a source.
func DerivedName(source string) string {
	return DerivedPrefix + source
}

// IsDerivedName reports whether name lives in the derived namespace.
// The check is case-sensitive.
func IsDerivedName(name string) bool {
	return strings.HasPrefix(name, DerivedPrefix)
}

// ValidateSourceName rejects names a source object may not use.
func ValidateSourceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty object name", ErrInvalidInput)
	}
	if IsDerivedName(name) {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	return nil
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	// Name is the object key.
	Name string

	// Size is the uncompressed length in bytes.
	Size int64

	// ContentType is the MIME type recorded at write time.
	ContentType string

	// ETag is a content hash.
	ETag string

	// CreatedAt is when the current version of the object was written.
	CreatedAt time.Time

	// LastModified is the last write time.
	LastModified time.Time
}

// WriteOptions controls an object write.
type WriteOptions struct {
	// Overwrite replaces an existing object instead of failing.
	Overwrite bool

	// ContentType is recorded with the object.
	ContentType string
}

// Permission is an access URL capability.
type Permission string

// PermissionRead allows reading a single object.
const PermissionRead Permission = "r"

// SignOptions describes an access URL.
type SignOptions struct {
	// Permission granted by the URL.
	Permission Permission

	// TTL is how long the URL stays valid.
	TTL time.Duration

	// ContentDisposition is returned with the object, e.g. "inline".
	ContentDisposition string

	// ContentType overrides the stored content type when set.
	ContentType string

	// ExpiresAt is filled in when verifying a URL.
	ExpiresAt time.Time
}

// ReadInline returns read-only inline sign options valid for ttl.
func ReadInline(ttl time.Duration) SignOptions {
	return SignOptions{
		Permission:         PermissionRead,
		TTL:                ttl,
		ContentDisposition: "inline",
	}
}

// TitleFromName derives a searchable title from an object name by dropping
// the extension and splitting on separators: "q3_sales-report.pdf" becomes
// "q3 sales report".
func TitleFromName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		switch r {
		case '.', '_', '-', '/', '\\', ' ', '\t':
			return true
		}
		return false
	}), " ")
}
