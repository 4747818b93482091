// Package config loads server configuration from a YAML file and the
// STACKSORT_* environment, with tuned defaults for the concurrency-sensitive
// buffer sizes.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds everything the server needs at startup.
type Config struct {
	// Network
	ListenAddr string

	// Files
	DBPath   string
	TreePath string

	// Channel buffer sizes - larger = more memory, less blocking
	BroadcastBuffer  int
	ClientSendBuffer int

	// Database connections
	DBMaxOpenConns int
	DBMaxIdleConns int
}

// Load reads configuration from (in precedence order) environment variables,
// an explicit config file, and defaults. An empty cfgFile falls back to
// ./config.yaml and ~/.config/stacksort/config.yaml.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "stacksort"))
		}
	}

	v.SetEnvPrefix("STACKSORT")
	v.AutomaticEnv()

	numCPU := runtime.NumCPU()
	v.SetDefault("listen_addr", ":8420")
	v.SetDefault("db_path", "stacksort.db")
	v.SetDefault("tree_path", "tree.yaml")
	v.SetDefault("broadcast_buffer", 256)
	v.SetDefault("client_send_buffer", 64)
	v.SetDefault("db_max_open_conns", numCPU*4)
	v.SetDefault("db_max_idle_conns", numCPU*2)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, err
		}
	}

	return &Config{
		ListenAddr:       v.GetString("listen_addr"),
		DBPath:           v.GetString("db_path"),
		TreePath:         v.GetString("tree_path"),
		BroadcastBuffer:  v.GetInt("broadcast_buffer"),
		ClientSendBuffer: v.GetInt("client_send_buffer"),
		DBMaxOpenConns:   v.GetInt("db_max_open_conns"),
		DBMaxIdleConns:   v.GetInt("db_max_idle_conns"),
	}, nil
}
