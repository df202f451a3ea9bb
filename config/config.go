// Package config provides configuration loading for burrow using TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Start is the page opened when no address is given.
type Start struct {
	Host     string `toml:"host"`
	Selector string `toml:"selector"`
	Port     int    `toml:"port"`
}

// Fetcher settings
type Fetcher struct {
	TimeoutSeconds   int `toml:"timeoutSeconds"`
	MaxResponseBytes int `toml:"maxResponseBytes"`
}

// History settings
type History struct {
	MaxDepth int `toml:"maxDepth"`
}

// Display settings. Booleans are pointers so an explicit false in the user
// file can be told apart from an omitted key.
type Display struct {
	Width          int   `toml:"width"` // 0 = detect terminal width
	ShowTypePrefix *bool `toml:"showTypePrefix"`
	RenderHTML     *bool `toml:"renderHTML"`
}

// TypePrefix reports whether item type prefixes are shown.
func (d Display) TypePrefix() bool {
	return d.ShowTypePrefix == nil || *d.ShowTypePrefix
}

// HTML reports whether HTML documents are converted to text.
func (d Display) HTML() bool {
	return d.RenderHTML != nil && *d.RenderHTML
}

// Log settings
type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // empty = stderr
}

// Config is the main configuration struct
type Config struct {
	Start   Start   `toml:"start"`
	Fetcher Fetcher `toml:"fetcher"`
	History History `toml:"history"`
	Display Display `toml:"display"`
	Log     Log     `toml:"log"`
}

func boolPtr(b bool) *bool { return &b }

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Start: Start{
			Host:     "gopher.floodgap.com",
			Selector: "/",
			Port:     70,
		},
		Fetcher: Fetcher{
			TimeoutSeconds:   15,
			MaxResponseBytes: 512 * 1024,
		},
		History: History{
			MaxDepth: 50,
		},
		Display: Display{
			Width:          0,
			ShowTypePrefix: boolPtr(true),
			RenderHTML:     boolPtr(false),
		},
		Log: Log{
			Level: "info",
		},
	}
}

// configDir returns the configuration directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "burrow"), nil
}

// ConfigPath returns the path to the user's config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads configuration, layering user config on top of defaults.
// Returns the default config if no user config exists.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(configPath)
}

// LoadFile layers the TOML file at path over the defaults. A missing file
// yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	userCfg, err := loadFromTOML(path)
	if err != nil {
		return nil, fmt.Errorf("loading config from %s: %w", path, err)
	}

	return merge(cfg, userCfg), nil
}

// loadFromTOML loads a TOML config file and returns the config.
func loadFromTOML(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return &cfg, nil
}

// merge layers user config on top of defaults.
// Only non-zero values from user config override defaults.
func merge(defaults, user *Config) *Config {
	result := *defaults

	// Start
	if user.Start.Host != "" {
		result.Start.Host = user.Start.Host
		// A new host without a selector starts at its root.
		result.Start.Selector = ""
	}
	if user.Start.Selector != "" {
		result.Start.Selector = user.Start.Selector
	}
	if user.Start.Port > 0 {
		result.Start.Port = user.Start.Port
	}

	// Fetcher
	if user.Fetcher.TimeoutSeconds > 0 {
		result.Fetcher.TimeoutSeconds = user.Fetcher.TimeoutSeconds
	}
	if user.Fetcher.MaxResponseBytes > 0 {
		result.Fetcher.MaxResponseBytes = user.Fetcher.MaxResponseBytes
	}

	// History
	if user.History.MaxDepth > 0 {
		result.History.MaxDepth = user.History.MaxDepth
	}

	// Display
	if user.Display.Width > 0 {
		result.Display.Width = user.Display.Width
	}
	if user.Display.ShowTypePrefix != nil {
		result.Display.ShowTypePrefix = user.Display.ShowTypePrefix
	}
	if user.Display.RenderHTML != nil {
		result.Display.RenderHTML = user.Display.RenderHTML
	}

	// Log
	if user.Log.Level != "" {
		result.Log.Level = user.Log.Level
	}
	if user.Log.File != "" {
		result.Log.File = user.Log.File
	}

	return &result
}

// DefaultTOML returns the default configuration as a TOML string.
// Used for init-config to generate a user config file.
func DefaultTOML() string {
	return `# burrow configuration
# Save to ~/.config/burrow/config.toml and customize
# Only include settings you want to change from defaults

# Page opened when no address is given
[start]
host = "gopher.floodgap.com"
selector = "/"
port = 70

# Network settings
[fetcher]
timeoutSeconds = 15           # Applied to connect, send and each read
maxResponseBytes = 524288     # Longer responses are truncated

# History settings
[history]
maxDepth = 50                 # Oldest entries are dropped beyond this

# Display settings
[display]
width = 0                     # 0 = terminal width, 80 when piped
showTypePrefix = true         # Show [D], [T], [?] ... before items
renderHTML = false            # Convert "h" items from HTML to text

# Logging
[log]
level = "info"                # trace, debug, info, warn, error, disabled
file = ""                     # Empty = stderr
`
}
