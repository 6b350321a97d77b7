package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/weldbuild/weld/pkg/errors"
)

// configFile is the workspace configuration file, relative to the root.
const configFile = "weld.toml"

// Config holds the workspace settings read from weld.toml. All fields are
// optional; a missing file yields the defaults.
type Config struct {
	// Name identifies the workspace. Used to scope shared cache backends.
	Name string `toml:"name"`

	// Workers is the parallelism for build walks. Zero means the default.
	Workers int `toml:"workers"`

	// Description overrides the build description path, relative to the
	// workspace root.
	Description string `toml:"description"`

	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects the description cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis" or "none". Empty means "file".
	Backend string `toml:"backend"`

	// RedisURL is the connection URL for the redis backend.
	RedisURL string `toml:"redis_url"`

	// Dir overrides the file backend's directory.
	Dir string `toml:"dir"`
}

// LoadConfig reads weld.toml from the workspace root. A missing file is not
// an error; the returned config then holds only defaults.
func LoadConfig(root string) (Config, error) {
	return LoadConfigFile(root, filepath.Join(root, configFile))
}

// LoadConfigFile reads the configuration from an explicit path,
// defaulting names against root as LoadConfig does.
func LoadConfigFile(root, path string) (Config, error) {
	cfg := Config{
		Name: filepath.Base(root),
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInternal, err, "reading %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeBadDescription, err, "parsing %s", path)
	}
	if cfg.Workers < 0 {
		return cfg, errors.New(errors.ErrCodeUsage, "workers must not be negative, got %d", cfg.Workers)
	}
	if cfg.Name == "" {
		cfg.Name = filepath.Base(root)
	}
	return cfg, nil
}
