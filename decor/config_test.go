package decor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfig_Defaults verifies an empty environment yields DefaultConfig.
func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DECOR_STRATEGY", "")
	t.Setenv("DECOR_ISOLATION", "")
	t.Setenv("DECOR_LOG_MODE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StrategyAuto, cfg.Strategy)
	assert.Equal(t, IsolationSerialized, cfg.Isolation)
	require.NoError(t, cfg.Validate())
}

// TestLoadConfig_FromEnv verifies every variable is honored.
func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("DECOR_STRATEGY", "locked")
	t.Setenv("DECOR_ISOLATION", "none")
	t.Setenv("DECOR_LOG_MODE", "prod")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Config{Strategy: StrategyLocked, Isolation: IsolationNone, LogMode: "prod"}, cfg)
}

// TestLoadConfig_Invalid verifies bad values are rejected with the variable context.
func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		val     string
		wantErr string
	}{
		{name: "strategy", key: "DECOR_STRATEGY", val: "fastest", wantErr: "unknown strategy"},
		{name: "isolation", key: "DECOR_ISOLATION", val: "partial", wantErr: "unknown isolation"},
		{name: "log_mode", key: "DECOR_LOG_MODE", val: "verbose", wantErr: "DECOR_LOG_MODE must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// TestNewFromEnv_AppliesConfig verifies the environment drives the probe preference.
func TestNewFromEnv_AppliesConfig(t *testing.T) {
	t.Setenv("DECOR_STRATEGY", "locked")
	t.Setenv("DECOR_ISOLATION", "")
	t.Setenv("DECOR_LOG_MODE", "")

	host := &fakeBothHost{fakeCellHost{NewAtomicCell[[]Descriptor](nil)}, fakeListHost{&fakeList{}}}

	o, err := NewFromEnv(host)
	require.NoError(t, err)
	assert.Equal(t, LockedCopyAvailable, o.Capability().Strategy())

	o, err = NewFromEnv(host, WithStrategy(StrategyAuto))
	require.NoError(t, err)
	assert.Equal(t, AtomicSwapAvailable, o.Capability().Strategy())
}

// TestPreference_UnmarshalText verifies accepted spellings.
func TestPreference_UnmarshalText(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]StrategyPreference{
		"":            StrategyAuto,
		"AUTO":        StrategyAuto,
		"atomic":      StrategyAtomic,
		"atomic-swap": StrategyAtomic,
		" locked ":    StrategyLocked,
		"locked-copy": StrategyLocked,
	} {
		var p StrategyPreference
		require.NoError(t, p.UnmarshalText([]byte(in)), in)
		assert.Equal(t, want, p, in)
		assert.NotEmpty(t, p.String())
	}

	var i Isolation
	require.NoError(t, i.UnmarshalText([]byte("None")))
	assert.Equal(t, IsolationNone, i)
	assert.Equal(t, "none", i.String())
	assert.Equal(t, "serialized", IsolationSerialized.String())
}

// TestNewLogger verifies each mode builds a logger.
func TestNewLogger(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"", "nop", "dev", "prod"} {
		l, err := NewLogger(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l, mode)
	}
}
