// Package config loads the engine's crpg.toml.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/crpg/engine/core"
)

type Config struct {
	LogLevel string       `toml:"log_level"`
	Assets   AssetsConfig `toml:"assets"`
	Window   WindowConfig `toml:"window"`
}

type AssetsConfig struct {
	// LibraryPath is the library index file resolving asset ids to
	// packed files.
	LibraryPath string `toml:"library_path"`
	// IDStorePath is the strid interner store shared with the offline
	// tools.
	IDStorePath string `toml:"id_store_path"`
	// WatchDirs are directories watched for changed packed files;
	// empty disables the watcher.
	WatchDirs []string `toml:"watch_dirs"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	X      uint32 `toml:"x"`
	Y      uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

// Default returns the configuration used when no crpg.toml exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Assets: AssetsConfig{
			LibraryPath: "assets/library.bin",
			IDStorePath: ".iddb",
		},
		Window: WindowConfig{
			Title:  "crpg",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
		},
	}
}

// Load reads and parses the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogError("failed to read config '%s': %s", path, err.Error())
		return nil, err
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		core.LogError("failed to parse config '%s': %s", path, err.Error())
		return nil, err
	}
	return cfg, nil
}
