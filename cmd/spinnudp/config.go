// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config contains the spinnudp configuration.
//
// Values are loaded from the optional YAML file and then overridden
// by the command line flags that have been explicitly set.
type Config struct {
	LocalHost      string        `yaml:"local_host"`
	LocalPort      uint16        `yaml:"local_port"`
	RemoteHost     string        `yaml:"remote_host"`
	RemotePort     uint16        `yaml:"remote_port"`
	ReceiveTimeout time.Duration `yaml:"receive_timeout"` // e.g. 500ms
	TTL            int           `yaml:"ttl"`
	Resolver       string        `yaml:"resolver"` // ip:port of a DNS server
	LogLevel       string        `yaml:"log_level"`  // debug, info, warn, error
	LogFormat      string        `yaml:"log_format"` // text, json
	MetricsAddress string        `yaml:"metrics_address"`
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// loadConfig reads the YAML file at path into cfg.
func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// registerFlags binds the configuration flags to cfg.
func registerFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.StringVar(&cfg.LocalHost, "local-host", cfg.LocalHost, "local address to bind (empty: all interfaces)")
	flags.Uint16Var(&cfg.LocalPort, "local-port", cfg.LocalPort, "local port to bind (0: ephemeral)")
	flags.StringVar(&cfg.RemoteHost, "remote-host", cfg.RemoteHost, "remote host to connect to")
	flags.Uint16Var(&cfg.RemotePort, "remote-port", cfg.RemotePort, "remote port to connect to")
	flags.DurationVar(&cfg.ReceiveTimeout, "receive-timeout", cfg.ReceiveTimeout, "time each receive waits (0: 500ms)")
	flags.IntVar(&cfg.TTL, "ttl", cfg.TTL, "IPv4 time-to-live of outgoing datagrams (0: system default)")
	flags.StringVar(&cfg.Resolver, "resolver", cfg.Resolver, "DNS server ip:port used to resolve host names")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text, json")
	flags.StringVar(&cfg.MetricsAddress, "metrics-address", cfg.MetricsAddress, "address to serve Prometheus metrics on")
}

// mergeFlags copies the flags set on the command line from src into dst.
func mergeFlags(flags *pflag.FlagSet, dst *Config, src *Config) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "local-host":
			dst.LocalHost = src.LocalHost
		case "local-port":
			dst.LocalPort = src.LocalPort
		case "remote-host":
			dst.RemoteHost = src.RemoteHost
		case "remote-port":
			dst.RemotePort = src.RemotePort
		case "receive-timeout":
			dst.ReceiveTimeout = src.ReceiveTimeout
		case "ttl":
			dst.TTL = src.TTL
		case "resolver":
			dst.Resolver = src.Resolver
		case "log-level":
			dst.LogLevel = src.LogLevel
		case "log-format":
			dst.LogFormat = src.LogFormat
		case "metrics-address":
			dst.MetricsAddress = src.MetricsAddress
		}
	})
}

// errNoRemote indicates that a command needs a remote peer.
var errNoRemote = errors.New("a remote peer is required: set --remote-host and --remote-port")

// validate returns an error if the configuration is not valid.
func (cfg *Config) validate() error {
	if cfg.ReceiveTimeout < 0 {
		return fmt.Errorf("invalid receive timeout: %s", cfg.ReceiveTimeout)
	}
	if cfg.TTL < 0 || cfg.TTL > 255 {
		return fmt.Errorf("invalid ttl: %d", cfg.TTL)
	}
	if cfg.Resolver != "" {
		if _, err := netip.ParseAddrPort(cfg.Resolver); err != nil {
			return fmt.Errorf("invalid resolver: %w", err)
		}
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", cfg.LogLevel)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format: %q", cfg.LogFormat)
	}
	return nil
}

// hasRemote returns whether a remote peer is configured.
func (cfg *Config) hasRemote() bool {
	return cfg.RemoteHost != "" && cfg.RemotePort != 0
}
