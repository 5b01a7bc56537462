package updateconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/zotsearch/internal/domain/update"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nope", "config.json"))

	cfg, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, update.Defaults(), cfg)
}

func TestLoad_PartialSectionKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"semantic_search": {"update_config": {"auto_update": true}}}`)

	cfg, err := New(path).Load()
	require.NoError(t, err)
	assert.True(t, cfg.AutoUpdate)
	assert.Equal(t, update.FrequencyManual, cfg.Frequency)
	assert.Equal(t, update.DefaultUpdateDays, cfg.UpdateDays)
	assert.Nil(t, cfg.LastUpdate)
}

func TestLoad_AllFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{
  "semantic_search": {
    "update_config": {
      "auto_update": true,
      "update_frequency": "every_3",
      "update_days": 3,
      "last_update": "2024-05-01T10:00:00Z"
    }
  }
}`)

	cfg, err := New(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "every_3", cfg.Frequency)
	assert.Equal(t, 3, cfg.UpdateDays)
	require.NotNil(t, cfg.LastUpdate)
	assert.True(t, cfg.LastUpdate.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestLoad_NaiveTimestampIsLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"semantic_search": {"update_config": {"last_update": "2024-05-01T10:00:00.123456"}}}`)

	cfg, err := New(path).Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.LastUpdate)
	want := time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.Local)
	assert.True(t, cfg.LastUpdate.Equal(want), "got %v", cfg.LastUpdate)
}

func TestLoad_GarbageTimestampIsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{"semantic_search": {"update_config": {"last_update": "yesterday"}}}`)

	cfg, err := New(path).Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.LastUpdate)
}

func TestLoad_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{not json`)

	_, err := New(path).Load()
	require.Error(t, err)
}

func TestSave_CreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zotero-mcp", "config.json")
	s := New(path)

	last := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	cfg := update.Defaults().WithLastUpdate(last)
	cfg.AutoUpdate = true
	cfg.Frequency = update.FrequencyDaily
	require.NoError(t, s.Save(cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := s.Load()
	require.NoError(t, err)
	assert.True(t, got.AutoUpdate)
	assert.Equal(t, update.FrequencyDaily, got.Frequency)
	require.NotNil(t, got.LastUpdate)
	assert.True(t, got.LastUpdate.Equal(last))
}

func TestSave_PreservesSiblingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{
  "client_env": {"ZOTERO_LOCAL": "true", "log.level": "debug"},
  "semantic_search": {
    "embedding_model": "openai",
    "extraction": {"pdf_max_pages": 10},
    "update_config": {"auto_update": false, "custom": "kept"}
  }
}`)

	require.NoError(t, New(path).Save(update.Defaults().WithLastUpdate(time.Now())))

	raw := readJSON(t, path)
	env := raw["client_env"].(map[string]any)
	assert.Equal(t, "true", env["ZOTERO_LOCAL"])
	assert.Equal(t, "debug", env["log.level"], "dotted keys must not be split")

	sem := raw["semantic_search"].(map[string]any)
	assert.Equal(t, "openai", sem["embedding_model"])
	assert.Equal(t, float64(10), sem["extraction"].(map[string]any)["pdf_max_pages"])

	uc := sem["update_config"].(map[string]any)
	assert.Equal(t, "manual", uc["update_frequency"])
	assert.Equal(t, "kept", uc["custom"])
	assert.NotNil(t, uc["last_update"])
}

func TestSave_NilLastUpdateWritesNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, New(path).Save(update.Defaults()))

	uc := readJSON(t, path)["semantic_search"].(map[string]any)["update_config"].(map[string]any)
	v, ok := uc["last_update"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestSave_UnparseableFileIsLeftAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	writeFile(t, path, `{broken`)

	err := New(path).Save(update.Defaults())
	require.Error(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, `{broken`, string(data))
}
