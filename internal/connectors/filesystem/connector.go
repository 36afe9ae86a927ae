// Package filesystem reads source documents from a local directory tree
// and watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-view/internal/logger"
)

// Type is the connector type identifier.
const Type = "filesystem"

// DefaultMaxFileSize skips files larger than this.
const DefaultMaxFileSize = 64 << 20

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// Connector yields every regular, non-hidden file below a root directory.
// Object names are root-relative and slash-separated.
type Connector struct {
	rootPath    string
	maxFileSize int64

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a connector for rootPath. The path is checked by Validate.
func New(rootPath string) *Connector {
	return &Connector{
		rootPath:    rootPath,
		maxFileSize: DefaultMaxFileSize,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return Type
}

// Root returns the watched directory.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks the root exists and is a directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("root path error: %s does not exist", c.rootPath)
		}
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// FullSync walks the tree and sends each file. Both channels are closed
// when the walk ends. Unreadable files are reported on the error channel.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 16)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				c.report(ctx, errs, fmt.Errorf("walk %s: %w", path, err))
				return nil
			}
			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}

			doc, err := c.readDocument(path)
			if err != nil {
				c.report(ctx, errs, err)
				return nil
			}
			select {
			case docs <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			c.report(ctx, errs, err)
		}
	}()

	return docs, errs
}

// Watch reports file changes below the root until ctx is cancelled or the
// connector is closed. New subdirectories are watched as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("connector is closed")
	}
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		watcher.Close()
		return nil, err
	}
	c.watcher = watcher

	changes := make(chan domain.RawDocumentChange, 64)
	go c.watchLoop(ctx, watcher, changes)
	return changes, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, changes chan<- domain.RawDocumentChange) {
	defer close(changes)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			change, ok := c.translate(watcher, event)
			if !ok {
				continue
			}
			select {
			case changes <- change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("filesystem: watch error: %v", err)
		}
	}
}

// translate turns an fsnotify event into a document change.
func (c *Connector) translate(watcher *fsnotify.Watcher, event fsnotify.Event) (domain.RawDocumentChange, bool) {
	name, ok := c.objectName(event.Name)
	if !ok || hasHiddenPart(name) {
		return domain.RawDocumentChange{}, false
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return domain.RawDocumentChange{
			Type:     domain.ChangeDeleted,
			Document: domain.RawDocument{Name: name, URI: event.Name},
		}, true

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			return domain.RawDocumentChange{}, false
		}
		if info.IsDir() {
			if event.Has(fsnotify.Create) {
				if err := c.addTree(watcher, event.Name); err != nil {
					logger.Warn("filesystem: %v", err)
				}
			}
			return domain.RawDocumentChange{}, false
		}
		if !info.Mode().IsRegular() {
			return domain.RawDocumentChange{}, false
		}
		doc, err := c.readDocument(event.Name)
		if err != nil {
			logger.Warn("filesystem: %v", err)
			return domain.RawDocumentChange{}, false
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return domain.RawDocumentChange{Type: changeType, Document: doc}, true
	}
	return domain.RawDocumentChange{}, false
}

// addTree watches dir and every non-hidden directory below it.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// Close stops any watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// readDocument loads one file.
func (c *Connector) readDocument(path string) (domain.RawDocument, error) {
	name, ok := c.objectName(path)
	if !ok {
		return domain.RawDocument{}, fmt.Errorf("%s is outside %s", path, c.rootPath)
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.Size() > c.maxFileSize {
		return domain.RawDocument{}, fmt.Errorf("skip %s: %d bytes exceeds limit", name, info.Size())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("read %s: %w", name, err)
	}

	ext := domain.Extension(name)
	return domain.RawDocument{
		Name:     name,
		URI:      path,
		MIMEType: detectMIME(name),
		Content:  content,
		Metadata: map[string]any{
			"filename":  filepath.Base(path),
			"extension": ext,
			"size":      info.Size(),
			"modified":  info.ModTime().UTC().Format(time.RFC3339),
		},
	}, nil
}

// objectName maps an absolute path to its slash-separated name below the root.
func (c *Connector) objectName(path string) (string, bool) {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (c *Connector) report(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}

// detectMIME prefers the store's extension table and falls back to the
// system MIME database.
func detectMIME(name string) string {
	ct := domain.ContentTypeFromName(name)
	if ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
			ct = byExt
		}
	}
	return ct
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func hasHiddenPart(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if isHidden(part) {
			return true
		}
	}
	return false
}
