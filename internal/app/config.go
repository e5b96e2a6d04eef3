package app

import "errors"

// Config holds everything one generation pass needs.
type Config struct {
	// ADLPath is a .hcl composition file or a directory of them.
	ADLPath string
	// OverlayPath optionally names a YAML settings overlay merged over the
	// declared settings.
	OverlayPath string
	// Arch is the target architecture tag, e.g. "aarch64".
	Arch string
	// OutPath is the report destination; empty means stdout.
	OutPath string

	LogFormat string
	LogLevel  string

	DefaultStackSize   int64
	DebugFaultHandlers bool
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ADLPath == "" {
		return nil, errors.New("ADLPath is a required configuration field and cannot be empty")
	}
	if cfg.Arch == "" {
		return nil, errors.New("Arch is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
