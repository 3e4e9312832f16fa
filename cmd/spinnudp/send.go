// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// newSendCmd creates the send command.
func newSendCmd(sess *session) *cobra.Command {
	var (
		count       int
		hexPayload  bool
		rateLimit   float64
		wait        bool
		waitTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send [payload...]",
		Short: "Send datagrams to the remote peer",
		Long: `Send the payload as one datagram to the remote peer, --count times.

The arguments are joined with spaces to form the payload. Without
arguments, the payload is read from the standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !sess.cfg.hasRemote() {
				return errNoRemote
			}
			if count < 1 {
				return fmt.Errorf("invalid count: %d", count)
			}
			payload, err := readPayload(cmd.InOrStdin(), args, hexPayload)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			conn, err := sess.open(ctx)
			if err != nil {
				return err
			}

			limiter := newLimiter(rateLimit)
			for idx := 0; idx < count; idx++ {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
				err := conn.Send(payload)
				sess.metrics.observeSend(len(payload), err)
				if err != nil {
					return err
				}
			}

			if !wait {
				return nil
			}
			waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
			defer cancel()
			reply, addr, err := receiveOne(waitCtx, conn, make([]byte, maxDatagramSize), sess.metrics)
			if errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("no reply within %s", waitTimeout)
			}
			if err != nil {
				return err
			}
			printDatagram(cmd.OutOrStdout(), addr, reply)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 1, "number of datagrams to send")
	cmd.Flags().BoolVar(&hexPayload, "hex", false, "decode the payload from hexadecimal")
	cmd.Flags().Float64Var(&rateLimit, "rate", 0, "maximum datagrams per second (0: unlimited)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "wait for a reply and print it")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 5*time.Second, "how long to wait for a reply")

	return cmd
}

// readPayload returns the payload from args or, when args is empty, from r.
func readPayload(r io.Reader, args []string, isHex bool) ([]byte, error) {
	text := strings.Join(args, " ")
	if len(args) <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		text = string(data)
	}
	if !isHex {
		return []byte(text), nil
	}
	payload, err := hex.DecodeString(strings.Join(strings.Fields(text), ""))
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	return payload, nil
}

// newLimiter returns a limiter allowing perSecond events per second,
// or an unlimited one when perSecond is not positive.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}
