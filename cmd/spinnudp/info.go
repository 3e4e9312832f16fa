// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spinnhost/x/netipx"
)

// newInfoCmd creates the info command.
func newInfoCmd(sess *session) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Open a connection and print its endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := sess.open(cmd.Context())
			if err != nil {
				return err
			}
			remote := "-"
			if conn.CanSend() {
				remote = conn.RemoteAddr().String()
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "local_addr %s\n", conn.LocalAddr())
			ipv4 := conn.LocalIPv4()
			fmt.Fprintf(w, "local_ipv4 0x%08x %s\n", ipv4, netipx.Uint32ToIPv4(ipv4))
			fmt.Fprintf(w, "remote_addr %s\n", remote)
			fmt.Fprintf(w, "can_send %t\n", conn.CanSend())
			fmt.Fprintf(w, "receive_timeout %s\n", conn.ReceiveTimeout())
			return nil
		},
	}
}
