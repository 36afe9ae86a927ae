package memory

import (
	"context"
	"encoding/hex"
	"sort"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/zeebo/blake3"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// Ensure ObjectStore implements the interface.
var _ driven.ObjectStore = (*ObjectStore)(nil)

type object struct {
	data []byte
	info domain.ObjectInfo
}

// ObjectStore is an in-memory implementation of driven.ObjectStore.
// Contents are lost when the process exits.
type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]object
	clock   clock.Clock
	signer  driven.URLSigner
}

// NewObjectStore creates an empty in-memory object store.
// A nil clk uses the wall clock.
func NewObjectStore(signer driven.URLSigner, clk clock.Clock) *ObjectStore {
	if clk == nil {
		clk = clock.New()
	}
	return &ObjectStore{
		objects: make(map[string]object),
		clock:   clk,
		signer:  signer,
	}
}

// Exists reports whether name is stored.
func (s *ObjectStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[name]
	return ok, nil
}

// Read returns a copy of the object contents.
func (s *ObjectStore) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

// Write stores a copy of data under name.
func (s *ObjectStore) Write(_ context.Context, name string, data []byte, opts domain.WriteOptions) error {
	if name == "" {
		return domain.ErrInvalidInput
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	sum := blake3.Sum256(buf)
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[name]; ok && !opts.Overwrite {
		return domain.ErrAlreadyExists
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = domain.ContentTypeFromName(name)
	}
	s.objects[name] = object{
		data: buf,
		info: domain.ObjectInfo{
			Name:         name,
			Size:         int64(len(buf)),
			ContentType:  contentType,
			ETag:         hex.EncodeToString(sum[:]),
			CreatedAt:    now,
			LastModified: now,
		},
	}
	return nil
}

// Delete removes an object.
func (s *ObjectStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.objects, name)
	return nil
}

// List returns objects whose name starts with prefix, sorted by name.
func (s *ObjectStore) List(_ context.Context, prefix string) ([]domain.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.ObjectInfo
	for name, obj := range s.objects {
		if strings.HasPrefix(name, prefix) {
			out = append(out, obj.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Properties returns the metadata of one object.
func (s *ObjectStore) Properties(_ context.Context, name string) (*domain.ObjectInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	info := obj.info
	return &info, nil
}

// Sign issues an access URL for name.
func (s *ObjectStore) Sign(_ context.Context, name string, opts domain.SignOptions) (string, error) {
	if s.signer == nil {
		return "", domain.ErrNotImplemented
	}
	return s.signer.Sign(name, opts, s.clock.Now()), nil
}

// Close is a no-op.
func (s *ObjectStore) Close() error {
	return nil
}
