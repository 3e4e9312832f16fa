//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Definition of Network.
//

package udpconn

import (
	"context"
	"log/slog"
	"time"
)

// DefaultReceiveTimeout is the default time a receive waits for a datagram.
const DefaultReceiveTimeout = 500 * time.Millisecond

// Network allows opening UDP connections.
//
// The zero value is ready to use.
//
// A [*Network] is safe for concurrent use by multiple goroutines as long as
// you don't modify its fields after construction and the underlying fields you
// may set (e.g., LookupHostFunc) are also safe.
type Network struct {
	// Logger is the optional structured logger for emitting
	// structured diagnostic events. If this field is nil, we
	// will not be emitting structured logs.
	Logger *slog.Logger

	// LookupHostFunc is the optional function to resolve a domain
	// name to IP addresses. If this field is nil, we use the
	// default [*net.Resolver] from the [net] package.
	LookupHostFunc func(ctx context.Context, domain string) ([]string, error)

	// ReceiveTimeout is the optional time a receive waits for a
	// datagram. If this field is zero or negative, we use
	// [DefaultReceiveTimeout]. The value is copied into each [*Conn]
	// when it is opened and cannot be changed afterwards.
	ReceiveTimeout time.Duration

	// TimeNow is an optional function that returns the current time.
	// If this field is nil, the [time.Now] function will be used.
	TimeNow func() time.Time

	// TTL is the optional IPv4 time-to-live of outgoing datagrams. If
	// this field is zero, we use the system default.
	TTL int
}

// DefaultNetwork is the default [*Network] used by this package.
var DefaultNetwork = &Network{}

// Open opens a new [*Conn] using the [DefaultNetwork].
func Open(ctx context.Context,
	localPort uint16, localHost string, remotePort uint16, remoteHost string) (*Conn, error) {
	return DefaultNetwork.Open(ctx, localPort, localHost, remotePort, remoteHost)
}

// timeNow is a function that returns the current time.
func (nx *Network) timeNow() time.Time {
	if nx.TimeNow != nil {
		return nx.TimeNow()
	}
	return time.Now()
}

// receiveTimeout returns the receive timeout to use.
func (nx *Network) receiveTimeout() time.Duration {
	if nx.ReceiveTimeout > 0 {
		return nx.ReceiveTimeout
	}
	return DefaultReceiveTimeout
}
