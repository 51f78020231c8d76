package config

import "time"

// Config represents the complete curfewd configuration.
type Config struct {
	Service    ServiceConfig              `yaml:"service"`
	State      StateConfig                `yaml:"state"`
	API        APIConfig                  `yaml:"api,omitempty"`
	Workspaces map[string]WorkspacePolicy `yaml:"workspaces"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name         string        `yaml:"name"`
	TickInterval time.Duration `yaml:"tick_interval"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	// CallsPerSecond is the external throughput budget used for pacing.
	CallsPerSecond float64 `yaml:"calls_per_second"`
	// WorkspacePacing is the delay inserted between workspaces in one
	// scheduled tick.
	WorkspacePacing time.Duration `yaml:"workspace_pacing"`
}

// StateConfig defines state storage settings.
type StateConfig struct {
	Path string `yaml:"path"`
}

// APIConfig defines HTTP API server settings.
type APIConfig struct {
	Enabled bool          `yaml:"enabled"`
	Listen  string        `yaml:"listen"`
	Auth    APIAuthConfig `yaml:"auth"`
}

// APIAuthConfig defines API authentication settings.
type APIAuthConfig struct {
	// APIKey is the single bearer token accepted on protected routes.
	APIKey string `yaml:"api_key"`
}

// WorkspacePolicy is the per-workspace curfew policy. It is read-only from
// the core's perspective: the engine and scheduler consume it, nothing
// writes it back.
type WorkspacePolicy struct {
	// UseCalendar opts the workspace into scheduled lockdown/reopen.
	UseCalendar bool `yaml:"use_calendar"`
	// TargetRoles are denied in addition to the catch-all role.
	TargetRoles []string `yaml:"target_roles,omitempty"`
	// IgnoredRoles are never denied, even if listed as targets.
	IgnoredRoles []string `yaml:"ignored_roles,omitempty"`
	// IgnoredChannels are left untouched by lockdown.
	IgnoredChannels []string `yaml:"ignored_channels,omitempty"`
	// IgnoreNeutral leaves rules with no explicit prior opinion alone.
	IgnoreNeutral bool `yaml:"ignore_neutral"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:            "curfewd",
			TickInterval:    600 * time.Second,
			LogLevel:        "info",
			LogFormat:       "json",
			CallsPerSecond:  2,
			WorkspacePacing: 2 * time.Second,
		},
		State: StateConfig{
			Path: "./data/curfewd.db",
		},
		API: APIConfig{
			Enabled: false,
			Listen:  "127.0.0.1:8080",
			Auth: APIAuthConfig{
				APIKey: "",
			},
		},
		Workspaces: make(map[string]WorkspacePolicy),
	}
}

// ChecksumManifest is the on-disk shape of the .checksums file.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}
