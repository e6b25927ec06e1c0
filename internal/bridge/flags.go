package bridge

import (
	"context"
	"os"
	"strings"
)

// Feature flag naming. The storage override outranks the environment; the
// flag defaults to on.
const (
	FlagName    = "grove-event-system"
	OverrideKey = "grove-event-system-override"
	EnvVar      = "GROVE_EVENT_SYSTEM"
)

// Enabled reports whether the event system is switched on. Check order:
// storage override key, then environment variable, then default true.
// Storage read failures fall through to the next source.
func Enabled(ctx context.Context, storage Storage) bool {
	if storage != nil {
		if raw, ok, err := storage.Get(ctx, OverrideKey); err == nil && ok {
			return parseFlag(raw, true)
		}
	}
	if raw, ok := os.LookupEnv(EnvVar); ok {
		return parseFlag(raw, true)
	}
	return true
}

func parseFlag(raw string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes", "enabled":
		return true
	case "0", "false", "off", "no", "disabled":
		return false
	default:
		return fallback
	}
}
