package chanlog

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/lixenwraith/config"
)

// Config holds all engine configuration values
type Config struct {
	// Filtering
	Level       int64 `toml:"level"`        // Global threshold, see Level constants
	MaxChannels int64 `toml:"max_channels"` // Distinct channel cap (0=unbounded)

	// Queue and worker
	QueueInitialCapacity int64 `toml:"queue_initial_capacity"` // Pre-reserved records per buffer
	WorkerPeriodMs       int64 `toml:"worker_period_ms"`       // Time between drain cycles

	// File logging
	LogFilePath     string `toml:"log_file_path"`    // Empty disables SaveAllLogFiles
	ClearAtStart    bool   `toml:"clear_at_start"`   // Truncate opener sinks at Start
	BackupDirectory string `toml:"backup_directory"` // Relative to the log file directory

	// Formatting
	Format          string `toml:"format"`           // "txt" or "json"
	TimestampFormat string `toml:"timestamp_format"` // Time layout for rendered lines
	Sanitize        bool   `toml:"sanitize"`         // Hex-encode non-printable message bytes in txt

	// Heartbeat configuration
	HeartbeatLevel     int64 `toml:"heartbeat_level"`      // 0=disabled, 1=engine stats, 2=engine+runtime stats
	HeartbeatIntervalS int64 `toml:"heartbeat_interval_s"` // Interval seconds for heartbeat
	HeartbeatChannel   int64 `toml:"heartbeat_channel"`    // Channel receiving heartbeat records

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"` // Write internal errors to stderr
}

// defaultConfig is the single source for all configurable default values
var defaultConfig = Config{
	Level:       int64(LevelTrace),
	MaxChannels: 0,

	QueueInitialCapacity: 1024,
	WorkerPeriodMs:       100,

	LogFilePath:     "",
	ClearAtStart:    false,
	BackupDirectory: "backup",

	Format:          "txt",
	TimestampFormat: time.ANSIC,
	Sanitize:        true,

	HeartbeatLevel:     0,
	HeartbeatIntervalS: 60,
	HeartbeatChannel:   DefaultChannel,

	InternalErrorsToStderr: false,
}

// DefaultConfig returns a copy of the default configuration
func DefaultConfig() *Config {
	copiedConfig := defaultConfig
	return &copiedConfig
}

// NewConfigFromFile loads configuration from the [log] table of a TOML file
// and returns a validated Config. A missing file yields the defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	loader := config.New()

	if err := loader.RegisterStruct("log.", *cfg); err != nil {
		return nil, fmtErrorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, "log.", cfg); err != nil {
		return nil, fmtErrorf("failed to extract config values: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewConfigFromDefaults creates a Config with default values and applies
// overrides keyed by toml name
func NewConfigFromDefaults(overrides map[string]any) (*Config, error) {
	cfg := DefaultConfig()

	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// tomlFields indexes the settable fields of cfg by their toml tag
func tomlFields(cfg *Config) map[string]reflect.Value {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	fields := make(map[string]reflect.Value, t.NumField())
	for i := range t.NumField() {
		if tag := t.Field(i).Tag.Get("toml"); tag != "" {
			fields[tag] = v.Field(i)
		}
	}
	return fields
}

// extractConfig copies values registered under prefix into cfg
func extractConfig(loader *config.Config, prefix string, cfg *Config) error {
	for tag, field := range tomlFields(cfg) {
		val, found := loader.Get(prefix + tag)
		if !found {
			continue
		}
		if err := setFieldValue(field, val); err != nil {
			return fmt.Errorf("%s: %w", tag, err)
		}
	}
	return nil
}

// applyOverrides sets the fields named by the keys of overrides
func applyOverrides(cfg *Config, overrides map[string]any) error {
	fields := tomlFields(cfg)
	for key, value := range overrides {
		field, ok := fields[key]
		if !ok {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := setFieldValue(field, value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	return nil
}

// setFieldValue assigns value to field, converting the numeric kinds a
// decoder may produce
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("want string, have %T", value)
		}
		field.SetString(s)

	case reflect.Int64:
		switch n := value.(type) {
		case int64:
			field.SetInt(n)
		case int:
			field.SetInt(int64(n))
		case Level:
			field.SetInt(int64(n))
		case float64:
			if n != float64(int64(n)) {
				return fmt.Errorf("want integer, have %v", n)
			}
			field.SetInt(int64(n))
		default:
			return fmt.Errorf("want integer, have %T", value)
		}

	case reflect.Bool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("want bool, have %T", value)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field kind %v", field.Kind())
	}

	return nil
}

// Validate rejects out-of-range values; nothing is clamped
func (c *Config) Validate() error {
	if !Level(c.Level).Valid() {
		return fmtErrorf("invalid level: %d (use %d..%d)", c.Level, LevelTrace, LevelError)
	}

	if c.MaxChannels < 0 {
		return fmtErrorf("max_channels cannot be negative: %d", c.MaxChannels)
	}

	if c.QueueInitialCapacity <= 0 {
		return fmtErrorf("queue_initial_capacity must be positive: %d", c.QueueInitialCapacity)
	}

	if c.WorkerPeriodMs <= 0 {
		return fmtErrorf("worker_period_ms must be positive: %d", c.WorkerPeriodMs)
	}

	if c.Format != "txt" && c.Format != "json" {
		return fmtErrorf("invalid format: '%s' (use txt or json)", c.Format)
	}

	if strings.TrimSpace(c.TimestampFormat) == "" {
		return fmtErrorf("timestamp_format cannot be empty")
	}

	if c.LogFilePath != "" && strings.TrimSpace(c.BackupDirectory) == "" {
		return fmtErrorf("backup_directory cannot be empty when log_file_path is set")
	}

	if c.HeartbeatLevel < heartbeatOff || c.HeartbeatLevel > maxHeartbeatLv {
		return fmtErrorf("heartbeat_level must be between %d and %d: %d", heartbeatOff, maxHeartbeatLv, c.HeartbeatLevel)
	}

	if c.HeartbeatLevel > heartbeatOff && c.HeartbeatIntervalS <= 0 {
		return fmtErrorf("heartbeat_interval_s must be positive when heartbeat is enabled: %d",
			c.HeartbeatIntervalS)
	}

	return nil
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	copiedConfig := *c
	return &copiedConfig
}

// configRequiresRestart reports whether moving from oldCfg to newCfg needs
// the worker rebuilt
func configRequiresRestart(oldCfg, newCfg *Config) bool {
	return oldCfg.WorkerPeriodMs != newCfg.WorkerPeriodMs ||
		oldCfg.QueueInitialCapacity != newCfg.QueueInitialCapacity ||
		oldCfg.Format != newCfg.Format ||
		oldCfg.TimestampFormat != newCfg.TimestampFormat ||
		oldCfg.Sanitize != newCfg.Sanitize ||
		oldCfg.HeartbeatLevel != newCfg.HeartbeatLevel ||
		oldCfg.HeartbeatIntervalS != newCfg.HeartbeatIntervalS ||
		oldCfg.HeartbeatChannel != newCfg.HeartbeatChannel
}
