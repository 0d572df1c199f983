package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flags are the command-line overrides. Register binds them to a flag set;
// only flags the user changed are applied over the loaded Config.
type Flags struct {
	ConfigPath     string
	ServerGRPCAddr string
	ServerHTTPURL  string
	RequestTimeout time.Duration
	DataFile       string
	Verbose        bool

	fs *pflag.FlagSet
}

func (f *Flags) Register(fs *pflag.FlagSet) {
	var d Config
	d.LoadDefaults()

	fs.StringVarP(&f.ConfigPath, "config", "c", "", "path to a JSON config file")
	fs.StringVarP(&f.ServerGRPCAddr, "grpc-addr", "a", d.ServerGRPCAddr, "address and port of the gRPC endpoint")
	fs.StringVarP(&f.ServerHTTPURL, "http-url", "u", d.ServerHTTPURL, "base URL of the HTTP API")
	fs.DurationVarP(&f.RequestTimeout, "timeout", "t", d.RequestTimeout, "HTTP request timeout")
	fs.StringVarP(&f.DataFile, "data", "d", d.DataFile, "local session database file")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "debug logging on stderr")

	f.fs = fs
}

func (f *Flags) apply(cfg *Config) {
	if f.fs == nil {
		return
	}
	if f.fs.Changed("grpc-addr") {
		cfg.ServerGRPCAddr = f.ServerGRPCAddr
	}
	if f.fs.Changed("http-url") {
		cfg.ServerHTTPURL = f.ServerHTTPURL
	}
	if f.fs.Changed("timeout") {
		cfg.RequestTimeout = f.RequestTimeout
	}
	if f.fs.Changed("data") {
		cfg.DataFile = f.DataFile
	}
	if f.Verbose {
		cfg.LogLevel = "debug"
	}
}
