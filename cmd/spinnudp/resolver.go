// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"

	"github.com/rbmk-project/dnscore"
)

// newLookupHostFunc returns a function resolving domain names by
// querying server (an ip:port endpoint) over UDP.
func newLookupHostFunc(server string) func(ctx context.Context, domain string) ([]string, error) {
	reso := &dnscore.Resolver{}
	reso.Config = dnscore.NewConfig()
	reso.Config.AddServer(dnscore.NewServerAddr(dnscore.ProtocolUDP, server))
	return reso.LookupHost
}
