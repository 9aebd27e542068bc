package config

import (
	"strconv"
	"strings"
	"time"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	cfg.Session = cfg.Session.clone()
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "provider":
			cfg.Provider = val
		case "url":
			cfg.URL = val
		case "token":
			cfg.Token = val
		case "model":
			cfg.Model = val
		case "log_level", "log-level":
			cfg.LogLevel = val
		case "max_file_size", "session.max_file_size":
			if n, err := strconv.ParseInt(val, 10, 64); err == nil && n > 0 {
				cfg.Session.MaxFileSize = n
			}
		case "timeout", "session.timeout":
			if d, err := time.ParseDuration(val); err == nil && d > 0 {
				cfg.Session.Timeout = Duration{d}
			}
		case "allow_hidden", "session.allow_hidden":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.Session.AllowHidden = b
			}
		}
	}
	return cfg
}
