package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Logging(t *testing.T) {
	t.Run("SURVKIT_LOG_LEVEL overrides level", func(t *testing.T) {
		t.Setenv("SURVKIT_LOG_LEVEL", "DEBUG")
		t.Setenv("SURVKIT_LOG_FORMAT", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "console", cfg.Logging.Format)
	})

	t.Run("SURVKIT_LOG_FORMAT overrides format", func(t *testing.T) {
		t.Setenv("SURVKIT_LOG_LEVEL", "")
		t.Setenv("SURVKIT_LOG_FORMAT", "json")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("SURVKIT_LOG_LEVEL", "warn")
		t.Setenv("SURVKIT_LOG_FORMAT", "")

		path := filepath.Join(t.TempDir(), "survkit.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: debug\n  format: json\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})
}
