//go:build !tinygo

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"knobmenu/app"
	"knobmenu/nav"
)

// Settings is the yaml settings file. Zero fields keep the built-in
// defaults.
type Settings struct {
	MainItems     int    `yaml:"main_items"`
	SubItems      int    `yaml:"sub_items"`
	Return        string `yaml:"return"`
	TapSelects    bool   `yaml:"tap_selects"`
	DebounceMs    int    `yaml:"debounce_ms"`
	FrameMs       int    `yaml:"frame_ms"`
	InvertEncoder bool   `yaml:"invert_encoder"`
	Trace         bool   `yaml:"trace"`
	Flash         string `yaml:"flash"`
	Mode          string `yaml:"mode"`
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "knobmenu", "config.yaml")
}

// loadSettings reads path. A missing default file yields empty settings; a
// missing file named on the command line is an error.
func loadSettings(path string) (Settings, error) {
	var s Settings
	explicit := path != ""
	if !explicit {
		path = defaultSettingsPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return s, nil
		}
		return s, fmt.Errorf("settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// apply overlays s on cfg.
func (s Settings) apply(cfg app.Config) (app.Config, error) {
	if s.MainItems < 0 || s.SubItems < 0 || s.DebounceMs < 0 || s.FrameMs < 0 {
		return cfg, fmt.Errorf("settings: negative value in %+v", s)
	}
	if s.MainItems > 0 {
		cfg.MainItems = s.MainItems
	}
	if s.SubItems > 0 {
		cfg.SubItems = s.SubItems
	}
	if s.Return != "" {
		pos, err := nav.ParseTerminalPosition(s.Return)
		if err != nil {
			return cfg, fmt.Errorf("settings: return: %w", err)
		}
		cfg.Terminal = pos
	}
	if s.DebounceMs > 0 {
		cfg.DebounceDelay = time.Duration(s.DebounceMs) * time.Millisecond
	}
	if s.FrameMs > 0 {
		cfg.FrameDelay = time.Duration(s.FrameMs) * time.Millisecond
	}
	cfg.TapSelects = cfg.TapSelects || s.TapSelects
	cfg.InvertEncoder = cfg.InvertEncoder || s.InvertEncoder
	cfg.Trace = cfg.Trace || s.Trace
	return cfg, nil
}
