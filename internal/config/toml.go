// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/tapcount/internal/model"
)

// Themes lists the accepted theme names in cycle order.
var Themes = []string{"default", "dark", "ocean", "forest"}

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play PlayConfig `toml:"play"`
}

// PlayConfig maps counter-related settings.
type PlayConfig struct {
	Step      *int    `toml:"step"`
	Theme     *string `toml:"theme"`
	Sound     *bool   `toml:"sound"`
	Animate   *bool   `toml:"animate"`
	ExportDir *string `toml:"export-dir"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() model.Settings {
	return model.Settings{
		Step:      1,
		Theme:     Themes[0],
		Sound:     true,
		Animate:   true,
		ExportDir: DefaultExportDir(),
	}
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Apply overlays the configured values onto settings.
func (c PlayConfig) Apply(settings *model.Settings) error {
	if c.Step != nil {
		if *c.Step < 1 {
			return fmt.Errorf("config step must be >= 1")
		}
		settings.Step = *c.Step
	}
	if c.Theme != nil {
		theme, err := NormalizeTheme(*c.Theme)
		if err != nil {
			return fmt.Errorf("config %w", err)
		}
		settings.Theme = theme
	}
	if c.Sound != nil {
		settings.Sound = *c.Sound
	}
	if c.Animate != nil {
		settings.Animate = *c.Animate
	}
	if c.ExportDir != nil {
		if strings.TrimSpace(*c.ExportDir) == "" {
			return fmt.Errorf("config export-dir is empty")
		}
		settings.ExportDir = *c.ExportDir
	}
	return nil
}

// NormalizeTheme lowercases name and checks it against Themes.
func NormalizeTheme(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range Themes {
		if t == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("theme must be one of %s", strings.Join(Themes, ", "))
}

// NextTheme returns the theme after current in cycle order.
func NextTheme(current string) string {
	for i, t := range Themes {
		if t == current {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
