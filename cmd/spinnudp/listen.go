// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/netip"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spinnhost/x/udpconn"
)

// maxDatagramSize is the largest UDP payload over IPv4.
const maxDatagramSize = 65507

// newListenCmd creates the listen command.
func newListenCmd(sess *session) *cobra.Command {
	var (
		bufferSize int
		count      int
		echo       bool
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Receive and print datagrams",
		Long: `Receive datagrams on the local endpoint and print, for each of them,
the sender address, the size, and the hex encoded payload.

Listening stops after --count datagrams, or when interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bufferSize < 1 || bufferSize > maxDatagramSize {
				return fmt.Errorf("invalid buffer size: %d", bufferSize)
			}

			ctx := cmd.Context()
			conn, err := sess.open(ctx)
			if err != nil {
				return err
			}
			sess.logger.Info("listening", "localAddr", conn.LocalAddr().String())

			buf := make([]byte, bufferSize)
			for received := 0; count <= 0 || received < count; received++ {
				data, addr, err := receiveOne(ctx, conn, buf, sess.metrics)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				if err != nil {
					return err
				}
				printDatagram(cmd.OutOrStdout(), addr, data)
				if echo {
					err := conn.SendTo(data, addr)
					sess.metrics.observeSend(len(data), err)
					if err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&bufferSize, "buffer-size", maxDatagramSize, "receive buffer size in bytes")
	cmd.Flags().IntVarP(&count, "count", "c", 0, "stop after receiving this many datagrams (0: never)")
	cmd.Flags().BoolVar(&echo, "echo", false, "send each datagram back to its sender")

	return cmd
}

// receiveOne polls conn until a non-empty datagram arrives or ctx is done.
// The returned slice aliases buf.
func receiveOne(ctx context.Context,
	conn *udpconn.Conn, buf []byte, m *metrics) ([]byte, netip.AddrPort, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, netip.AddrPort{}, err
		}
		data := buf
		ok, addr, err := conn.ReceiveResizeFrom(&data)
		if err != nil {
			m.observeReceive(0, err)
			return nil, netip.AddrPort{}, err
		}
		if !ok {
			m.observeReceive(0, nil)
			continue
		}
		m.observeReceive(len(data), nil)
		return data, addr, nil
	}
}

// printDatagram writes a line describing a datagram to w.
func printDatagram(w io.Writer, addr netip.AddrPort, data []byte) {
	fmt.Fprintf(w, "%s %s %s\n", addr, humanize.Bytes(uint64(len(data))), hex.EncodeToString(data))
}
