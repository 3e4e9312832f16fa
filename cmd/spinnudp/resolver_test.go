// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/spinnhost/x/udpconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startDNSServer serves A records from names on a loopback UDP port
// and returns the server endpoint. Names mapped to "" and queries for
// other types get a NOERROR reply without answers.
func startDNSServer(t *testing.T, names map[string]string) string {
	conn, err := udpconn.Open(context.Background(), 0, "127.0.0.1", 0, "")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t.Cleanup(func() {
		cancel()
		conn.Close()
		<-done
	})

	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		for ctx.Err() == nil {
			count, addr, err := conn.ReceiveFrom(buf)
			if err != nil {
				return
			}
			if count <= 0 {
				continue
			}
			query := &dns.Msg{}
			if err := query.Unpack(buf[:count]); err != nil || len(query.Question) != 1 {
				continue
			}
			resp := &dns.Msg{}
			resp.SetReply(query)
			q0 := query.Question[0]
			ip, found := names[dns.CanonicalName(q0.Name)]
			switch {
			case !found:
				resp.Rcode = dns.RcodeNameError
			case q0.Qtype == dns.TypeA && ip != "":
				resp.Answer = append(resp.Answer, &dns.A{
					Hdr: dns.RR_Header{
						Name:   q0.Name,
						Rrtype: dns.TypeA,
						Class:  dns.ClassINET,
						Ttl:    3600,
					},
					A: net.ParseIP(ip),
				})
			}
			rawResp, err := resp.Pack()
			if err != nil {
				continue
			}
			_ = conn.SendTo(rawResp, addr)
		}
	}()

	return conn.LocalAddr().String()
}

func TestNewLookupHostFunc(t *testing.T) {
	server := startDNSServer(t, map[string]string{
		"spinn-4.local.": "10.11.194.17",
		"board.local.":   "127.0.0.1",
		"empty.local.":   "",
	})
	lookup := newLookupHostFunc(server)

	t.Run("A record", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		addrs, err := lookup(ctx, "spinn-4.local")
		require.NoError(t, err)
		assert.Equal(t, []string{"10.11.194.17"}, addrs)
	})

	t.Run("NXDOMAIN", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		addrs, err := lookup(ctx, "missing.local")
		assert.Error(t, err)
		assert.Empty(t, addrs)
	})

	t.Run("no answer", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		addrs, err := lookup(ctx, "empty.local")
		assert.Error(t, err)
		assert.Empty(t, addrs)
	})

	t.Run("open fails on an empty answer", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		nx := &udpconn.Network{LookupHostFunc: lookup}
		conn, err := nx.Open(ctx, 0, "127.0.0.1", 17893, "empty.local")
		assert.ErrorIs(t, err, udpconn.KindResolve)
		assert.Nil(t, conn)
	})

	t.Run("open resolves the remote host", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		nx := &udpconn.Network{LookupHostFunc: lookup}
		conn, err := nx.Open(ctx, 0, "127.0.0.1", 17893, "board.local")
		require.NoError(t, err)
		defer conn.Close()
		assert.True(t, conn.CanSend())
		assert.Equal(t, netip.MustParseAddrPort("127.0.0.1:17893"), conn.RemoteAddr())
	})
}
