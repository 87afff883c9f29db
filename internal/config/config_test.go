package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8090, cfg.Port)
	require.Equal(t, "./.warden-store", cfg.StorePath)
	require.Equal(t, 0.6, cfg.DefaultMutationThreshold)
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("WARDEN_PORT", "9100")
	t.Setenv("WARDEN_STORE_PATH", "/tmp/warden-evidence")
	t.Setenv("WARDEN_MUTATION_TIMEOUT", "2m")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.Port)
	require.Equal(t, "/tmp/warden-evidence", cfg.StorePath)
	require.Equal(t, 2*time.Minute, cfg.MutationRunnerTimeout)
}

func TestValidate_RejectsOutOfRangeThreshold(t *testing.T) {
	cfg := Config{StorePath: "x", DefaultMutationThreshold: 1.5, MaxRequestBodyBytes: 1}
	require.Error(t, cfg.Validate())
}

