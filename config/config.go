package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lixenwraith/rigkit/parameter"
)

// EnvPrefix prefixes every environment override, e.g. RIGKIT_ENGINE_TICK_INTERVAL
const EnvPrefix = "RIGKIT"

var ErrInvalidConfig = errors.New("invalid config")

// Config holds runtime configuration
type Config struct {
	Engine     EngineConfig     `mapstructure:"engine"`
	Pose       PoseConfig       `mapstructure:"pose"`
	Animator   AnimatorConfig   `mapstructure:"animator"`
	Constraint ConstraintConfig `mapstructure:"constraint"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        LogConfig        `mapstructure:"log"`
}

// EngineConfig holds tick loop settings
type EngineConfig struct {
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// PoseConfig holds default transition durations
type PoseConfig struct {
	StartTransition time.Duration `mapstructure:"start_transition"`
	EndTransition   time.Duration `mapstructure:"end_transition"`
}

// AnimatorConfig holds watch loop settings
type AnimatorConfig struct {
	WatchPeriod   time.Duration `mapstructure:"watch_period"`
	FixedDuration time.Duration `mapstructure:"fixed_duration"`
}

// ConstraintConfig holds floor constraint defaults
type ConstraintConfig struct {
	FloorHeight float64 `mapstructure:"floor_height"`
}

// StoreConfig holds Redis pose store settings; empty address disables the store
type StoreConfig struct {
	RedisAddr string `mapstructure:"redis_addr"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	Dir   string `mapstructure:"dir"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.tick_interval", parameter.TickInterval)
	v.SetDefault("pose.start_transition", parameter.StartTransitionDuration)
	v.SetDefault("pose.end_transition", parameter.EndTransitionDuration)
	v.SetDefault("animator.watch_period", parameter.WatchPeriod)
	v.SetDefault("animator.fixed_duration", time.Duration(0))
	v.SetDefault("constraint.floor_height", 0.0)
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.key_prefix", parameter.DefaultKeyPrefix)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.dir", parameter.LogDir)
}

// Default returns the built-in configuration
func Default() Config {
	c, _ := decode(newViper())
	return c
}

// Load reads configuration from path (optional, yaml or toml by extension) and the environment
func Load(path string) (Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			v.SetConfigType("toml")
		default:
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	c, err := decode(v)
	if err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Validate rejects settings the runtime cannot run with
func (c Config) Validate() error {
	if c.Engine.TickInterval <= 0 {
		return fmt.Errorf("%w: engine.tick_interval must be positive", ErrInvalidConfig)
	}
	if c.Animator.WatchPeriod <= 0 {
		return fmt.Errorf("%w: animator.watch_period must be positive", ErrInvalidConfig)
	}
	if c.Pose.StartTransition < 0 || c.Pose.EndTransition < 0 {
		return fmt.Errorf("%w: pose transitions cannot be negative", ErrInvalidConfig)
	}
	return nil
}
