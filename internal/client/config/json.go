package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophcourse/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty values
// leave the corresponding Config field untouched.
type JsonConfig struct {
	ServerGRPCAddr string         `json:"server_grpc_addr"`
	ServerHTTPURL  string         `json:"server_http_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	DataFile       string         `json:"data_file"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays cfg with values from the JSON file at path. An empty
// path is a no-op.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerGRPCAddr != "" {
		cfg.ServerGRPCAddr = jc.ServerGRPCAddr
	}
	if jc.ServerHTTPURL != "" {
		cfg.ServerHTTPURL = jc.ServerHTTPURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DataFile != "" {
		cfg.DataFile = jc.DataFile
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
