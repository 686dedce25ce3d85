package chanlog

import (
	"fmt"
	"strconv"
	"strings"
)

// ApplyConfigString applies string key-value overrides to the engine's
// current configuration. Each override should be in the format "key=value".
//
// Example:
//
//	logger := chanlog.NewLogger()
//	err := logger.ApplyConfigString(
//	    "level=warning",
//	    "worker_period_ms=50",
//	    "log_file_path=./logs/app.log",
//	)
func (l *Logger) ApplyConfigString(overrides ...string) error {
	cfg := l.getConfig().Clone()

	var errs []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if err := applyConfigField(cfg, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return combineConfigErrors(errs)
	}

	return l.ApplyConfig(cfg)
}

// combineConfigErrors combines multiple configuration errors into a single error
func combineConfigErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString(errorPrefix + "multiple configuration errors:")
	for i, err := range errs {
		errMsg := strings.TrimPrefix(err.Error(), errorPrefix)
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField applies a single key-value override to a Config
func applyConfigField(cfg *Config, key, value string) error {
	switch key {
	case "level":
		// Accept both numeric and named values
		if numVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			cfg.Level = numVal
		} else {
			levelVal, err := ParseLevel(value)
			if err != nil {
				return fmtErrorf("invalid level value '%s': %w", value, err)
			}
			cfg.Level = int64(levelVal)
		}
	case "max_channels":
		return parseInt64Field(&cfg.MaxChannels, key, value)
	case "queue_initial_capacity":
		return parseInt64Field(&cfg.QueueInitialCapacity, key, value)
	case "worker_period_ms":
		return parseInt64Field(&cfg.WorkerPeriodMs, key, value)

	case "log_file_path":
		cfg.LogFilePath = value
	case "clear_at_start":
		return parseBoolField(&cfg.ClearAtStart, key, value)
	case "backup_directory":
		cfg.BackupDirectory = value

	case "format":
		cfg.Format = value
	case "timestamp_format":
		cfg.TimestampFormat = value
	case "sanitize":
		return parseBoolField(&cfg.Sanitize, key, value)

	case "heartbeat_level":
		return parseInt64Field(&cfg.HeartbeatLevel, key, value)
	case "heartbeat_interval_s":
		return parseInt64Field(&cfg.HeartbeatIntervalS, key, value)
	case "heartbeat_channel":
		return parseInt64Field(&cfg.HeartbeatChannel, key, value)

	case "internal_errors_to_stderr":
		return parseBoolField(&cfg.InternalErrorsToStderr, key, value)

	default:
		return fmtErrorf("unknown configuration key '%s'", key)
	}

	return nil
}

func parseInt64Field(dst *int64, key, value string) error {
	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
	}
	*dst = intVal
	return nil
}

func parseBoolField(dst *bool, key, value string) error {
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
	}
	*dst = boolVal
	return nil
}
