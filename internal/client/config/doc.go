// Package config loads runtime configuration for the course CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / --config.
//  3. Command-line flags, which override earlier values when set.
//
// Supported flags
//
//	-a, --grpc-addr string   address:port of the backend gRPC endpoint
//	-u, --http-url string    base URL of the backend HTTP API
//	-t, --timeout duration   HTTP request timeout
//	-d, --data string        local SQLite file for the session
//	-v, --verbose            debug logging on stderr
//
// # JSON schema
//
// Durations use timex.Duration, so they may be strings like "15s" or integer
// nanoseconds:
//
//	{
//	  "server_grpc_addr": "127.0.0.1:50051",
//	  "server_http_url": "http://127.0.0.1:8080",
//	  "request_timeout": "15s",
//	  "data_file": "gophcourse.db",
//	  "log_level": "warn"
//	}
//
// The CLI does not read environment variables; use the JSON file or flags.
package config
