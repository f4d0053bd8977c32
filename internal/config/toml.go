// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Race RaceConfig `toml:"race"`
}

// RaceConfig maps race-related settings.
type RaceConfig struct {
	Opponents *int     `toml:"opponents"`
	Pace      *float64 `toml:"pace"`
	Passages  *string  `toml:"passages"`
	WordsFile *string  `toml:"words-file"`
	Words     *int     `toml:"words"`
	CapsPct   *float64 `toml:"caps"`
	PunctPct  *float64 `toml:"punct"`
	Seed      *int64   `toml:"seed"`
	History   *bool    `toml:"history"`
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
