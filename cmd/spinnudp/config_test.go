// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "spinnudp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		path := writeConfig(t, `
local_host: 127.0.0.1
local_port: 17893
remote_host: spinn-4.local
remote_port: 17892
receive_timeout: 250ms
ttl: 8
resolver: 127.0.0.1:53
log_level: debug
log_format: json
metrics_address: 127.0.0.1:9100
`)
		cfg := defaultConfig()
		require.NoError(t, loadConfig(path, &cfg))
		assert.Equal(t, Config{
			LocalHost:      "127.0.0.1",
			LocalPort:      17893,
			RemoteHost:     "spinn-4.local",
			RemotePort:     17892,
			ReceiveTimeout: 250 * time.Millisecond,
			TTL:            8,
			Resolver:       "127.0.0.1:53",
			LogLevel:       "debug",
			LogFormat:      "json",
			MetricsAddress: "127.0.0.1:9100",
		}, cfg)
	})

	t.Run("empty file keeps the defaults", func(t *testing.T) {
		cfg := defaultConfig()
		require.NoError(t, loadConfig(writeConfig(t, ""), &cfg))
		assert.Equal(t, defaultConfig(), cfg)
	})

	t.Run("unknown field", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadConfig(writeConfig(t, "bogus: 1\n"), &cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "field bogus not found")
	})

	t.Run("port overflow", func(t *testing.T) {
		cfg := defaultConfig()
		assert.Error(t, loadConfig(writeConfig(t, "local_port: 70000\n"), &cfg))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestMergeFlags(t *testing.T) {
	var flagValues = defaultConfig()
	flags := pflag.NewFlagSet("spinnudp", pflag.ContinueOnError)
	registerFlags(flags, &flagValues)
	require.NoError(t, flags.Parse([]string{"--remote-port", "9", "--log-level", "info"}))

	cfg := defaultConfig()
	cfg.RemoteHost = "127.0.0.1"
	cfg.RemotePort = 17893
	cfg.TTL = 4
	mergeFlags(flags, &cfg, &flagValues)

	assert.Equal(t, "127.0.0.1", cfg.RemoteHost)
	assert.Equal(t, uint16(9), cfg.RemotePort)
	assert.Equal(t, 4, cfg.TTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "negative receive timeout",
			mutate:  func(cfg *Config) { cfg.ReceiveTimeout = -time.Second },
			wantErr: "invalid receive timeout",
		},
		{
			name:    "ttl too large",
			mutate:  func(cfg *Config) { cfg.TTL = 256 },
			wantErr: "invalid ttl: 256",
		},
		{
			name:    "resolver without port",
			mutate:  func(cfg *Config) { cfg.Resolver = "8.8.8.8" },
			wantErr: "invalid resolver",
		},
		{
			name:   "resolver with port",
			mutate: func(cfg *Config) { cfg.Resolver = "8.8.8.8:53" },
		},
		{
			name:    "unknown level",
			mutate:  func(cfg *Config) { cfg.LogLevel = "verbose" },
			wantErr: `invalid log level: "verbose"`,
		},
		{
			name:    "empty level",
			mutate:  func(cfg *Config) { cfg.LogLevel = "" },
			wantErr: "invalid log level",
		},
		{
			name:   "upper case level",
			mutate: func(cfg *Config) { cfg.LogLevel = "DEBUG" },
		},
		{
			name:   "upper case format",
			mutate: func(cfg *Config) { cfg.LogFormat = "JSON" },
		},
		{
			name:    "unknown format",
			mutate:  func(cfg *Config) { cfg.LogFormat = "xml" },
			wantErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigHasRemote(t *testing.T) {
	cfg := defaultConfig()
	assert.False(t, cfg.hasRemote())
	cfg.RemoteHost = "127.0.0.1"
	assert.False(t, cfg.hasRemote())
	cfg.RemotePort = 17893
	assert.True(t, cfg.hasRemote())
}
