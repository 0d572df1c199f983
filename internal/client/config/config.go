package config

import "time"

// Config holds runtime settings for the course CLI.
//
// Fields:
//   - ServerGRPCAddr: host:port of the backend gRPC endpoint (credential reveal).
//   - ServerHTTPURL: base URL of the backend HTTP API.
//   - RequestTimeout: upper bound for a single HTTP call.
//   - DataFile: SQLite file keeping the session and the cached course overview.
//   - LogLevel: level of the diagnostic log written to stderr.
type Config struct {
	ServerGRPCAddr string
	ServerHTTPURL  string
	RequestTimeout time.Duration
	DataFile       string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerGRPCAddr = "127.0.0.1:50051"
	c.ServerHTTPURL = "http://127.0.0.1:8080"
	c.RequestTimeout = 15 * time.Second
	c.DataFile = "gophcourse.db"
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config from defaults, then the JSON file at
// jsonPath (if any), then the flags the user actually set.
func LoadConfig(jsonPath string, f *Flags) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, jsonPath); err != nil {
		return nil, err
	}
	if f != nil {
		f.apply(cfg)
	}
	return cfg, nil
}
