package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg := LoadFromEnv()

	assert.Equal(t, "badger://./data", cfg.Persistence.URI)
	assert.Equal(t, 2*time.Second, cfg.Layout.Timeout)
	assert.Equal(t, 200, cfg.Optimizer.MaxIterations)
	assert.Equal(t, 5, cfg.Optimizer.ParetoCapacity)
	assert.True(t, cfg.Cache.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Run("zero layout timeout", func(t *testing.T) {
		cfg := LoadFromEnv()
		cfg.Layout.Timeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero max iterations", func(t *testing.T) {
		cfg := LoadFromEnv()
		cfg.Optimizer.MaxIterations = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("encryption enabled without key", func(t *testing.T) {
		cfg := LoadFromEnv()
		cfg.Persistence.EncryptionAtRest = true
		cfg.Persistence.EncryptionKey = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative cache size", func(t *testing.T) {
		cfg := LoadFromEnv()
		cfg.Cache.Size = -1
		assert.Error(t, cfg.Validate())
	})
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("ARCHENGINE_TEST_DURATION", "1500")
	d := getEnvDuration("ARCHENGINE_TEST_DURATION", time.Second)
	assert.Equal(t, 1500*time.Millisecond, d)
}

func TestStringRedactsSecrets(t *testing.T) {
	cfg := LoadFromEnv()
	cfg.Persistence.Password = "supersecret"
	cfg.Persistence.EncryptionKey = "keymaterial"
	s := cfg.String()
	assert.NotContains(t, s, "supersecret")
	assert.NotContains(t, s, "keymaterial")
}
