// Package updateconfig persists the auto-update state inside the shared
// Zotero MCP JSON config file, under semantic_search.update_config.
// Everything else in the file belongs to other tools and is carried over
// untouched on save.
package updateconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	jsonparser "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kailas-cloud/zotsearch/internal/domain/update"
)

// delim separates koanf key paths. A double colon keeps dotted keys written
// by other tools from being split into nested objects.
const delim = "::"

var section = "semantic_search" + delim + "update_config"

// naiveLayouts are accepted for last_update values written without an offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Store reads and writes the update config file.
type Store struct {
	path string
	mu   sync.Mutex
}

// New returns a store for the JSON file at path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the config file location.
func (s *Store) Path() string { return s.path }

// Load returns the stored config with defaults for anything missing.
// A missing file is not an error.
func (s *Store) Load() (update.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := update.Defaults()
	k, err := s.read()
	if err != nil {
		return cfg, err
	}
	if k == nil {
		return cfg, nil
	}

	key := func(name string) string { return section + delim + name }
	if k.Exists(key("auto_update")) {
		cfg.AutoUpdate = k.Bool(key("auto_update"))
	}
	if f := k.String(key("update_frequency")); f != "" {
		cfg.Frequency = f
	}
	if days := k.Int(key("update_days")); days > 0 {
		cfg.UpdateDays = days
	}
	if raw := k.String(key("last_update")); raw != "" {
		if t, ok := parseTimestamp(raw); ok {
			cfg.LastUpdate = &t
		}
	}
	return cfg, nil
}

// Save merges cfg into the file. The parent directory is created when needed.
// If the existing file cannot be parsed it is left untouched and an error is returned.
func (s *Store) Save(cfg update.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	k, err := s.read()
	if err != nil {
		return err
	}
	if k == nil {
		k = koanf.New(delim)
	}

	var last any
	if cfg.LastUpdate != nil {
		last = cfg.LastUpdate.Format(time.RFC3339Nano)
	}
	err = k.Set(section, map[string]any{
		"auto_update":      cfg.AutoUpdate,
		"update_frequency": cfg.Frequency,
		"update_days":      cfg.UpdateDays,
		"last_update":      last,
	})
	if err != nil {
		return fmt.Errorf("merge update config: %w", err)
	}

	data, err := json.MarshalIndent(k.Raw(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return writeAtomic(s.path, append(data, '\n'))
}

// read loads the file into koanf. It returns nil, nil when the file does not exist.
func (s *Store) read() (*koanf.Koanf, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat config %s: %w", s.path, err)
	}

	k := koanf.New(delim)
	if err := k.Load(file.Provider(s.path), jsonparser.Parser()); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", s.path, err)
	}
	return k, nil
}

func parseTimestamp(raw string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// writeAtomic replaces path with data via a temp file in the same directory.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}
