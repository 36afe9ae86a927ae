// Package config builds the immutable runtime settings from a ConfigStore.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-view/internal/adapters/driven/urlsign"
	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyPalette       = "highlight.palette"
	KeyWorkers       = "highlight.workers"
	KeyScratchDir    = "highlight.scratch_dir"
	KeyURLTTL        = "artifacts.url_ttl"
	KeyRetention     = "artifacts.retention"
	KeySweepInterval = "artifacts.sweep_interval"
	KeyDeleteRate    = "artifacts.delete_rate"
	KeySearchLimit   = "search.limit"
	KeyConcurrency   = "search.concurrency"
	KeyIndexPath     = "search.index_path"
	KeyStorageDriver = "storage.driver"
	KeyStoragePath   = "storage.path"
	KeySigningKey    = "storage.signing_key"
	KeyServerAddr    = "server.addr"
	KeyPublicURL     = "server.public_url"
	KeyCorpusDir     = "corpus.dir"
	KeyLogFormat     = "log.format"
)

// Storage drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// DefaultServerAddr is the listen address when none is configured.
const DefaultServerAddr = "127.0.0.1:8080"

// Settings is everything a process needs to wire its components.
type Settings struct {
	// Core is passed to the services.
	Core domain.Config

	// StorageDriver selects the object store: "memory" or "sqlite".
	StorageDriver string

	// StoragePath is the SQLite database file.
	StoragePath string

	// IndexPath is the on-disk search index. Empty keeps the index in memory.
	IndexPath string

	// SigningKey authenticates access URLs.
	SigningKey []byte

	// ServerAddr is the HTTP listen address.
	ServerAddr string

	// PublicURL is the externally reachable root used in access URLs.
	PublicURL string

	// CorpusDir is ingested and watched by serve when set.
	CorpusDir string

	// LogFormat is "console" or "json". Empty means console.
	LogFormat string
}

// Build reads store into Settings, filling defaults for absent keys.
// A missing signing key is generated and persisted to store.
func Build(store driven.ConfigStore) (Settings, error) {
	core := domain.DefaultConfig()

	if hexes := store.GetStringSlice(KeyPalette); len(hexes) > 0 {
		palette := make([]domain.Color, 0, len(hexes))
		for _, h := range hexes {
			c, err := domain.ParseColor("", h)
			if err != nil {
				return Settings{}, fmt.Errorf("%s: %w", KeyPalette, err)
			}
			palette = append(palette, c)
		}
		core.Palette = palette
	}
	if n, ok := intValue(store, KeyWorkers); ok {
		core.RenderWorkers = n
	}
	if core.RenderWorkers == 0 {
		core.RenderWorkers = runtime.NumCPU()
	}
	core.ScratchDir = expandHome(store.GetString(KeyScratchDir))

	for key, dst := range map[string]*time.Duration{
		KeyURLTTL:        &core.URLTTL,
		KeyRetention:     &core.Retention,
		KeySweepInterval: &core.SweepInterval,
	} {
		if err := durationValue(store, key, dst); err != nil {
			return Settings{}, err
		}
	}
	if _, ok := store.Get(KeyDeleteRate); ok {
		core.DeleteRate = store.GetFloat(KeyDeleteRate)
	}
	if n, ok := intValue(store, KeySearchLimit); ok {
		core.SearchLimit = n
	}
	if n, ok := intValue(store, KeyConcurrency); ok {
		core.EnrichConcurrency = n
	}
	if err := core.Validate(); err != nil {
		return Settings{}, err
	}

	s := Settings{
		Core:          core,
		StorageDriver: strings.ToLower(store.GetString(KeyStorageDriver)),
		StoragePath:   expandHome(store.GetString(KeyStoragePath)),
		IndexPath:     expandHome(store.GetString(KeyIndexPath)),
		ServerAddr:    store.GetString(KeyServerAddr),
		PublicURL:     strings.TrimRight(store.GetString(KeyPublicURL), "/"),
		CorpusDir:     expandHome(store.GetString(KeyCorpusDir)),
		LogFormat:     store.GetString(KeyLogFormat),
	}
	switch s.StorageDriver {
	case "":
		s.StorageDriver = DriverSQLite
	case DriverMemory, DriverSQLite:
	default:
		return Settings{}, fmt.Errorf("%w: %s: unknown driver %q", domain.ErrInvalidInput, KeyStorageDriver, s.StorageDriver)
	}
	if s.StoragePath == "" && s.StorageDriver == DriverSQLite {
		s.StoragePath = filepath.Join(filepath.Dir(store.Path()), "objects.db")
	}
	if s.ServerAddr == "" {
		s.ServerAddr = DefaultServerAddr
	}
	if s.PublicURL == "" {
		s.PublicURL = publicURL(s.ServerAddr)
	}

	key := store.GetString(KeySigningKey)
	if key == "" {
		generated, err := urlsign.GenerateKey()
		if err != nil {
			return Settings{}, err
		}
		if err := store.Set(KeySigningKey, generated); err != nil {
			return Settings{}, fmt.Errorf("persisting signing key: %w", err)
		}
		key = generated
	}
	s.SigningKey = []byte(key)

	return s, nil
}

// durationValue overwrites dst when key is set. A value that is not a
// duration is an error rather than a silent default.
func durationValue(store driven.ConfigStore, key string, dst *time.Duration) error {
	v, ok := store.Get(key)
	if !ok {
		return nil
	}
	d, ok := store.GetDuration(key)
	if !ok {
		return fmt.Errorf("%w: %s: bad duration %v", domain.ErrInvalidInput, key, v)
	}
	*dst = d
	return nil
}

// intValue reports an integer key, distinguishing absent from zero.
func intValue(store driven.ConfigStore, key string) (int, bool) {
	if _, ok := store.Get(key); !ok {
		return 0, false
	}
	return store.GetInt(key), true
}

// publicURL derives a browsable root from a listen address.
// Wildcard hosts are replaced by localhost.
func publicURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
