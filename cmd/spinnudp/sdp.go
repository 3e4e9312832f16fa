// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spinnhost/x/sdp"
)

// newSDPCmd creates the sdp command.
func newSDPCmd(sess *session) *cobra.Command {
	var (
		data    string
		dataHex string
		dryRun  bool
		header  = sdp.Header{
			Flags:      sdp.FlagReplyNotExpected,
			SourcePort: sdp.MaxPort,
			SourceCPU:  sdp.MaxCPU,
		}
	)

	cmd := &cobra.Command{
		Use:   "sdp",
		Short: "Send an SDP message to the remote peer",
		Long: `Encode an SDP message from the header flags and the payload and send
it to the remote peer as a single datagram.

With --dry-run, print the hex encoded message instead of sending it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg := &sdp.Message{Header: header, Data: []byte(data)}
			if cmd.Flags().Changed("data-hex") {
				if cmd.Flags().Changed("data") {
					return fmt.Errorf("--data and --data-hex are mutually exclusive")
				}
				payload, err := hex.DecodeString(dataHex)
				if err != nil {
					return fmt.Errorf("invalid hex payload: %w", err)
				}
				msg.Data = payload
			}

			if dryRun {
				encoded, err := msg.MarshalBinary()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(encoded))
				return nil
			}

			if !sess.cfg.hasRemote() {
				return errNoRemote
			}
			conn, err := sess.open(cmd.Context())
			if err != nil {
				return err
			}
			sess.logger.Info("sending SDP message", "header", msg.Header.String())
			err = conn.SendMessage(msg)
			sess.metrics.observeSend(sdp.HeaderLen+len(msg.Data), err)
			return err
		},
	}

	flags := cmd.Flags()
	flags.Uint8Var(&header.Flags, "flags", header.Flags, "SDP flags byte")
	flags.Uint8Var(&header.Tag, "tag", header.Tag, "IP tag")
	flags.Uint8Var(&header.DestinationChipX, "dest-x", 0, "destination chip X coordinate")
	flags.Uint8Var(&header.DestinationChipY, "dest-y", 0, "destination chip Y coordinate")
	flags.Uint8Var(&header.DestinationCPU, "dest-cpu", 0, "destination CPU (0-31)")
	flags.Uint8Var(&header.DestinationPort, "dest-port", 0, "destination port (0-7)")
	flags.Uint8Var(&header.SourceChipX, "src-x", 0, "source chip X coordinate")
	flags.Uint8Var(&header.SourceChipY, "src-y", 0, "source chip Y coordinate")
	flags.Uint8Var(&header.SourceCPU, "src-cpu", header.SourceCPU, "source CPU (0-31)")
	flags.Uint8Var(&header.SourcePort, "src-port", header.SourcePort, "source port (0-7)")
	flags.StringVar(&data, "data", "", "payload as text")
	flags.StringVar(&dataHex, "data-hex", "", "payload as hexadecimal")
	flags.BoolVar(&dryRun, "dry-run", false, "print the encoded message instead of sending it")

	return cmd
}
