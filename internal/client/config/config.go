package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds runtime settings for the filevault CLI.
//
// Fields:
//   - ServerURL: base URL of the REST API, without the /api suffix.
//   - RequestTimeout: upper bound for a single API call.
//   - SessionDB: SQLite file that remembers the signed-in user between runs.
//   - DownloadDir: directory downloads are written to.
type Config struct {
	ServerURL      string
	RequestTimeout time.Duration
	SessionDB      string
	DownloadDir    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:3000"
	c.RequestTimeout = 30 * time.Second
	c.SessionDB = "filevault-session.db"
	c.DownloadDir = "downloads"
}

// Load applies defaults, environment, the optional JSON file and flags from
// args, in that order.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg, os.LookupEnv)
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	cfg.ServerURL = strings.TrimRight(cfg.ServerURL, "/")
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server url is required")
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args and panics on error.
func LoadConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("FILEVAULT_SERVER"); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := lookup("FILEVAULT_SESSION_DB"); ok && v != "" {
		cfg.SessionDB = v
	}
}
