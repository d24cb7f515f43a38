package config

import (
	"fmt"
	"sync"
)

var (
	globalConfig *Config
	configPath   string
	configMutex  sync.RWMutex
	initOnce     sync.Once
)

// Initialize loads configuration from path with environment overrides and
// stores it as the global snapshot. Subsequent calls are ignored.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configPath = path
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the current snapshot, or nil before Initialize. A
// snapshot is never mutated; reloads replace it. Request handlers call this
// once and use the result for the whole request.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the global snapshot. Intended for tests and for
// callers that build configuration themselves.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig reloads from path, or from the path given to Initialize when
// path is empty. On failure the current snapshot stays in place.
func ReloadConfig(path string) error {
	configMutex.RLock()
	if path == "" {
		path = configPath
	}
	configMutex.RUnlock()

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configPath = path
	configMutex.Unlock()

	return nil
}

// MustGetConfig returns the global snapshot and panics if it is unset.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
