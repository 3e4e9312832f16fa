// SPDX-License-Identifier: GPL-3.0-or-later

// Command spinnudp sends and receives UDP datagrams, including SDP
// messages, using the udpconn package.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spinnhost/x/closepool"
	"github.com/spinnhost/x/udpconn"
)

// Version is set at build time.
var Version = "dev"

func main() {
	os.Exit(Main())
}

// Main runs spinnudp and returns the process exit code.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "spinnudp:", err)
		return 1
	}
	return 0
}

// session contains the state shared by the subcommands.
type session struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics
	pool    closepool.Pool
}

// newRootCmd creates the root command.
func newRootCmd() *cobra.Command {
	var (
		configPath string
		flagValues = defaultConfig()
		sess       = &session{}
	)

	rootCmd := &cobra.Command{
		Use:   "spinnudp",
		Short: "Send and receive UDP datagrams",
		Long: `spinnudp sends and receives raw UDP datagrams and SDP messages.

Each receive waits for the receive timeout (500ms by default) and then
polls again, so that listening can be interrupted at any time.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := defaultConfig()
			if configPath != "" {
				if err := loadConfig(configPath, &cfg); err != nil {
					return err
				}
			}
			mergeFlags(cmd.Flags(), &cfg, &flagValues)
			if err := cfg.validate(); err != nil {
				return err
			}
			return sess.setup(cfg, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML configuration file")
	registerFlags(rootCmd.PersistentFlags(), &flagValues)

	rootCmd.AddCommand(newSendCmd(sess))
	rootCmd.AddCommand(newListenCmd(sess))
	rootCmd.AddCommand(newSDPCmd(sess))
	rootCmd.AddCommand(newInfoCmd(sess))

	// release connections and servers even when a command fails
	for _, sub := range rootCmd.Commands() {
		runE := sub.RunE
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			err := runE(cmd, args)
			return errors.Join(err, sess.pool.Close())
		}
	}

	return rootCmd
}

// setup initializes the logger and the metrics.
func (s *session) setup(cfg Config, stderr io.Writer) error {
	s.cfg = cfg
	s.logger = newLogger(cfg.LogLevel, cfg.LogFormat, stderr)

	registry := prometheus.NewRegistry()
	s.metrics = newMetrics(registry)
	if cfg.MetricsAddress != "" {
		srv, err := serveMetrics(cfg.MetricsAddress, registry, s.logger)
		if err != nil {
			return fmt.Errorf("failed to serve metrics: %w", err)
		}
		s.pool.AddFunc(func() error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
	}
	return nil
}

// network returns the [*udpconn.Network] for the configuration.
func (s *session) network() *udpconn.Network {
	nx := &udpconn.Network{
		Logger:         s.logger,
		ReceiveTimeout: s.cfg.ReceiveTimeout,
		TTL:            s.cfg.TTL,
	}
	if s.cfg.Resolver != "" {
		nx.LookupHostFunc = newLookupHostFunc(s.cfg.Resolver)
	}
	return nx
}

// open opens a connection using the configured endpoints and registers
// it for closing when the command completes.
func (s *session) open(ctx context.Context) (*udpconn.Conn, error) {
	conn, err := s.network().Open(ctx,
		s.cfg.LocalPort, s.cfg.LocalHost, s.cfg.RemotePort, s.cfg.RemoteHost)
	if err != nil {
		return nil, err
	}
	s.pool.Add(conn)
	return conn, nil
}
