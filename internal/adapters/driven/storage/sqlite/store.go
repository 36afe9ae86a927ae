package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-view/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// DefaultFileName is the database file created inside the data directory.
const DefaultFileName = "objects.db"

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// zstd coders are safe for concurrent use.
var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("sqlite: zstd encoder initialization failed: " + err.Error())
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("sqlite: zstd decoder initialization failed: " + err.Error())
	}
}

// Store is a SQLite-backed object store.
type Store struct {
	db     *sql.DB
	path   string
	clock  clock.Clock
	signer driven.URLSigner
}

// NewStore opens or creates the object database at path.
// If path is empty, defaults to ~/.sercha-view/objects.db.
// A nil clk uses the wall clock.
func NewStore(path string, signer driven.URLSigner, clk clock.Clock) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".sercha-view", DefaultFileName)
	}
	if clk == nil {
		clk = clock.New()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL lets the sweeper delete while requests read.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:     db,
		path:   path,
		clock:  clk,
		signer: signer,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_objects.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}

// Exists reports whether name is stored.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM objects WHERE name = ?", name).Scan(&n)
	if err != nil {
		return false, unavailable("checking object", err)
	}
	return n > 0, nil
}

// Read returns the decompressed object contents.
func (s *Store) Read(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	var compressed bool
	var size int64
	err := s.db.QueryRowContext(ctx,
		"SELECT data, compressed, size FROM objects WHERE name = ?", name,
	).Scan(&data, &compressed, &size)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("reading object", err)
	}
	if !compressed {
		return data, nil
	}
	out, err := decoder.DecodeAll(data, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress %s: %w", name, err)
	}
	if int64(len(out)) != size {
		return nil, fmt.Errorf("zstd decompress %s: got %d bytes, expected %d", name, len(out), size)
	}
	return out, nil
}

// Write stores data under name. Blobs that shrink under zstd are stored compressed.
func (s *Store) Write(ctx context.Context, name string, data []byte, opts domain.WriteOptions) error {
	if name == "" {
		return domain.ErrInvalidInput
	}
	contentType := opts.ContentType
	if contentType == "" {
		contentType = domain.ContentTypeFromName(name)
	}
	sum := blake3.Sum256(data)
	etag := hex.EncodeToString(sum[:])

	blob, compressed := data, false
	if c := encoder.EncodeAll(data, nil); len(c) < len(data) {
		blob, compressed = c, true
	}
	if blob == nil {
		blob = []byte{}
	}
	now := s.clock.Now().UnixNano()

	query := `
		INSERT INTO objects (name, data, compressed, size, content_type, etag, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`
	if opts.Overwrite {
		query = `
		INSERT INTO objects (name, data, compressed, size, content_type, etag, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			compressed = excluded.compressed,
			size = excluded.size,
			content_type = excluded.content_type,
			etag = excluded.etag,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at
	`
	}
	res, err := s.db.ExecContext(ctx, query,
		name, blob, compressed, len(data), contentType, etag, now, now)
	if err != nil {
		return unavailable("writing object", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("writing object", err)
	}
	if n == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

// Delete removes an object.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM objects WHERE name = ?", name)
	if err != nil {
		return unavailable("deleting object", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("deleting object", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns objects whose name starts with prefix, sorted by name.
func (s *Store) List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, size, content_type, etag, created_at, modified_at
		FROM objects WHERE substr(CAST(name AS BLOB), 1, ?) = CAST(? AS BLOB)
		ORDER BY name
	`, len(prefix), prefix)
	if err != nil {
		return nil, unavailable("listing objects", err)
	}
	defer rows.Close()

	var out []domain.ObjectInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *info)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating objects", err)
	}
	return out, nil
}

// Properties returns the metadata of one object.
func (s *Store) Properties(ctx context.Context, name string) (*domain.ObjectInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, size, content_type, etag, created_at, modified_at
		FROM objects WHERE name = ?
	`, name)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return info, err
}

// Sign issues an access URL for name.
func (s *Store) Sign(_ context.Context, name string, opts domain.SignOptions) (string, error) {
	if s.signer == nil {
		return "", domain.ErrNotImplemented
	}
	return s.signer.Sign(name, opts, s.clock.Now()), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (*domain.ObjectInfo, error) {
	var info domain.ObjectInfo
	var created, modified int64
	err := row.Scan(&info.Name, &info.Size, &info.ContentType, &info.ETag, &created, &modified)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, unavailable("scanning object", err)
	}
	info.CreatedAt = time.Unix(0, created)
	info.LastModified = time.Unix(0, modified)
	return &info, nil
}
