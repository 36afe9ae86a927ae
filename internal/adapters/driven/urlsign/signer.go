// Package urlsign issues and verifies HMAC-signed access URLs for stored
// objects. A URL carries the object name in its path and its grants in the
// query string:
//
//	sp    permission
//	se    expiry, Unix seconds
//	rscd  response Content-Disposition
//	rsct  response Content-Type override (optional)
//	sig   base64url HMAC-SHA256 over the canonical string
package urlsign

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// Query parameter names.
const (
	ParamPermission  = "sp"
	ParamExpiry      = "se"
	ParamDisposition = "rscd"
	ParamContentType = "rsct"
	ParamSignature   = "sig"
)

// ObjectPath is the URL path prefix objects are served under.
const ObjectPath = "/objects/"

// KeySize is the length in bytes of generated signing keys.
const KeySize = 32

// Ensure Signer implements the interface.
var _ driven.URLSigner = (*Signer)(nil)

// Signer signs URLs rooted at a public base URL.
type Signer struct {
	base string
	key  []byte
}

// New creates a Signer. baseURL is the externally reachable server root,
// e.g. "http://127.0.0.1:8080". key must not be empty.
func New(baseURL string, key []byte) (*Signer, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("%w: empty signing key", domain.ErrInvalidInput)
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", domain.ErrInvalidInput, baseURL)
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Signer{base: strings.TrimRight(baseURL, "/"), key: k}, nil
}

// GenerateKey returns a random hex-encoded signing key.
func GenerateKey() (string, error) {
	b := make([]byte, KeySize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating signing key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Sign returns an absolute URL for name valid until now+opts.TTL.
func (s *Signer) Sign(name string, opts domain.SignOptions, now time.Time) string {
	perm := opts.Permission
	if perm == "" {
		perm = domain.PermissionRead
	}
	expiry := now.Add(opts.TTL).Unix()

	q := url.Values{}
	q.Set(ParamPermission, string(perm))
	q.Set(ParamExpiry, strconv.FormatInt(expiry, 10))
	if opts.ContentDisposition != "" {
		q.Set(ParamDisposition, opts.ContentDisposition)
	}
	if opts.ContentType != "" {
		q.Set(ParamContentType, opts.ContentType)
	}
	q.Set(ParamSignature, s.mac(name, string(perm), expiry, opts.ContentDisposition, opts.ContentType))

	return s.base + ObjectPath + url.PathEscape(name) + "?" + q.Encode()
}

// Verify checks the signature and expiry of a URL's query for name.
func (s *Signer) Verify(name string, query url.Values, now time.Time) (domain.SignOptions, error) {
	sig := query.Get(ParamSignature)
	if sig == "" {
		return domain.SignOptions{}, fmt.Errorf("%w: missing signature", domain.ErrInvalidSignature)
	}
	expiry, err := strconv.ParseInt(query.Get(ParamExpiry), 10, 64)
	if err != nil {
		return domain.SignOptions{}, fmt.Errorf("%w: bad expiry", domain.ErrInvalidSignature)
	}
	opts := domain.SignOptions{
		Permission:         domain.Permission(query.Get(ParamPermission)),
		ContentDisposition: query.Get(ParamDisposition),
		ContentType:        query.Get(ParamContentType),
		ExpiresAt:          time.Unix(expiry, 0),
	}

	want := s.mac(name, string(opts.Permission), expiry, opts.ContentDisposition, opts.ContentType)
	if !hmac.Equal([]byte(sig), []byte(want)) {
		return domain.SignOptions{}, domain.ErrInvalidSignature
	}
	if opts.Permission != domain.PermissionRead {
		return domain.SignOptions{}, fmt.Errorf("%w: permission %q", domain.ErrInvalidSignature, opts.Permission)
	}
	if now.After(opts.ExpiresAt) {
		return domain.SignOptions{}, domain.ErrExpired
	}
	opts.TTL = opts.ExpiresAt.Sub(now)
	return opts, nil
}

func (s *Signer) mac(name, perm string, expiry int64, disposition, contentType string) string {
	canonical := strings.Join([]string{
		name,
		perm,
		strconv.FormatInt(expiry, 10),
		disposition,
		contentType,
	}, "\n")
	h := hmac.New(sha256.New, s.key)
	h.Write([]byte(canonical))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// NameFromPath extracts the object name from a signed URL path.
func NameFromPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, ObjectPath)
	if !ok || rest == "" {
		return "", false
	}
	name, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return name, true
}
