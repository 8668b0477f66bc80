package decor

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// StrategyPreference restricts which strategies the probe may settle on.
type StrategyPreference int

const (
	// StrategyAuto prefers AtomicSwap and falls back to LockedCopy.
	StrategyAuto StrategyPreference = iota
	// StrategyAtomic accepts AtomicSwap only.
	StrategyAtomic
	// StrategyLocked accepts LockedCopy only, even when AtomicSwap is possible.
	StrategyLocked
)

func (p StrategyPreference) accepts(s Strategy) bool {
	switch p {
	case StrategyAtomic:
		return s == AtomicSwapAvailable
	case StrategyLocked:
		return s == LockedCopyAvailable
	default:
		return s != Unavailable
	}
}

// String implements fmt.Stringer.
func (p StrategyPreference) String() string {
	switch p {
	case StrategyAtomic:
		return "atomic"
	case StrategyLocked:
		return "locked"
	default:
		return "auto"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *StrategyPreference) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "auto":
		*p = StrategyAuto
	case "atomic", "atomic-swap":
		*p = StrategyAtomic
	case "locked", "locked-copy":
		*p = StrategyLocked
	default:
		return fmt.Errorf("decor: unknown strategy %q (want auto|atomic|locked)", string(b))
	}
	return nil
}

// Isolation controls how AtomicSwap overrides interact with concurrent callers.
type Isolation int

const (
	// IsolationSerialized brackets each exchange pair with the process-wide
	// override lock so concurrent calls never see each other's decorations.
	IsolationSerialized Isolation = iota

	// IsolationNone performs the exchange pair without any lock. Concurrent
	// callers can observe, and on restore clobber, each other's lists; callers
	// must serialize externally.
	IsolationNone
)

// String implements fmt.Stringer.
func (i Isolation) String() string {
	if i == IsolationNone {
		return "none"
	}
	return "serialized"
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Isolation) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "serialized":
		*i = IsolationSerialized
	case "none":
		*i = IsolationNone
	default:
		return fmt.Errorf("decor: unknown isolation %q (want serialized|none)", string(b))
	}
	return nil
}

// Config holds environment-driven defaults for new Overriders.
type Config struct {
	Strategy  StrategyPreference `env:"DECOR_STRATEGY" envDefault:"auto"`
	Isolation Isolation          `env:"DECOR_ISOLATION" envDefault:"serialized"`
	LogMode   string             `env:"DECOR_LOG_MODE" envDefault:"nop"`
}

// DefaultConfig returns the configuration used when the environment is empty.
func DefaultConfig() Config {
	return Config{Strategy: StrategyAuto, Isolation: IsolationSerialized, LogMode: "nop"}
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field values that the env tags cannot.
func (c Config) Validate() error {
	switch strings.ToLower(c.LogMode) {
	case "", "nop", "dev", "development", "prod", "production":
		return nil
	default:
		return fmt.Errorf("decor: DECOR_LOG_MODE must be one of nop|dev|prod, got %q", c.LogMode)
	}
}
