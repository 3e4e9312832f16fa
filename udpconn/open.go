//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Opening UDP connections.
//

package udpconn

import (
	"context"
	"log/slog"
	"net"
	"net/netip"
	"strconv"
	"syscall"
	"time"

	"github.com/spinnhost/x/errclass"
	"github.com/spinnhost/x/netipx"
	"golang.org/x/net/ipv4"
)

// Open opens a new IPv4 UDP [*Conn].
//
// The socket is bound to localHost and localPort. An empty localHost means
// the wildcard address and a zero localPort means an ephemeral port chosen
// by the system. When remoteHost is not empty and remotePort is not zero,
// the socket is also connected to that peer and [*Conn.CanSend] is true.
//
// The context is used for host name resolution and, when the connection
// emits structured logs, as the logging context of the returned [*Conn].
//
// On failure, Open returns an [*Error] and releases the socket.
func (nx *Network) Open(ctx context.Context,
	localPort uint16, localHost string, remotePort uint16, remoteHost string) (*Conn, error) {
	t0 := nx.emitOpenStart(ctx, localPort, localHost, remotePort, remoteHost)
	conn, err := nx.open(ctx, localPort, localHost, remotePort, remoteHost)
	nx.emitOpenDone(ctx, t0, conn, err)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// open implements Open.
func (nx *Network) open(ctx context.Context,
	localPort uint16, localHost string, remotePort uint16, remoteHost string) (*Conn, error) {
	if err := initSocketLibrary(); err != nil {
		return nil, newError(KindSocketCreation, "init", err)
	}

	// resolve the address to bind to
	localAddr := netip.IPv4Unspecified()
	if localHost != "" {
		addr, err := nx.lookupIPv4(ctx, localHost)
		if err != nil {
			return nil, newError(KindResolve, "lookup", err)
		}
		localAddr = addr
	}
	laddr := netip.AddrPortFrom(localAddr, localPort)

	// create, configure, bind, and possibly connect the socket
	timeout := nx.receiveTimeout()
	var (
		udpConn *net.UDPConn
		err     error
	)
	canSend := remoteHost != "" && remotePort != 0
	if canSend {
		udpConn, err = nx.dial(ctx, laddr, remotePort, remoteHost, timeout)
	} else {
		udpConn, err = nx.listen(ctx, laddr, timeout)
	}
	if err != nil {
		return nil, err
	}

	// honour the optional TTL
	if nx.TTL > 0 {
		if err := ipv4.NewConn(udpConn).SetTTL(nx.TTL); err != nil {
			udpConn.Close()
			return nil, newError(KindSocketConfig, "setsockopt", err)
		}
	}

	// read back the address the system actually assigned
	boundAddr, ok := netipx.AddrToIPv4AddrPort(udpConn.LocalAddr())
	if !ok || boundAddr.Port() == 0 {
		udpConn.Close()
		return nil, newError(KindAddressQuery, "getsockname", ErrAddressFamily)
	}
	var remoteAddr netip.AddrPort
	if canSend {
		remoteAddr, ok = netipx.AddrToIPv4AddrPort(udpConn.RemoteAddr())
		if !ok {
			udpConn.Close()
			return nil, newError(KindAddressQuery, "getpeername", ErrAddressFamily)
		}
	}

	conn := &Conn{
		canSend: canSend,
		conn:    udpConn,
		ctx:     ctx,
		laddr:   boundAddr,
		netx:    nx,
		raddr:   remoteAddr,
		timeout: timeout,
	}
	return conn, nil
}

// listen creates a socket bound to laddr that is not connected.
func (nx *Network) listen(ctx context.Context, laddr netip.AddrPort, timeout time.Duration) (*net.UDPConn, error) {
	lc := &net.ListenConfig{Control: controlFunc(timeout)}
	pconn, err := lc.ListenPacket(ctx, "udp4", laddr.String())
	if err != nil {
		return nil, classifyOpenError(KindBind, err)
	}
	return pconn.(*net.UDPConn), nil
}

// dial creates a socket bound to laddr and connected to the remote peer.
func (nx *Network) dial(ctx context.Context, laddr netip.AddrPort,
	remotePort uint16, remoteHost string, timeout time.Duration) (*net.UDPConn, error) {
	remoteAddr, err := nx.lookupIPv4(ctx, remoteHost)
	if err != nil {
		return nil, newError(KindResolve, "lookup", err)
	}
	raddr := netip.AddrPortFrom(remoteAddr, remotePort)
	dialer := &net.Dialer{
		LocalAddr: net.UDPAddrFromAddrPort(laddr),
		Control:   controlFunc(timeout),
	}
	conn, err := dialer.DialContext(ctx, "udp4", raddr.String())
	if err != nil {
		return nil, classifyOpenError(KindConnect, err)
	}
	return conn.(*net.UDPConn), nil
}

// controlFunc returns the function that configures a new socket before
// it is bound and connected.
func controlFunc(timeout time.Duration) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var operr error
		if err := c.Control(func(fd uintptr) {
			operr = setReceiveTimeout(fd, timeout)
		}); err != nil {
			return newError(KindSocketConfig, "control", err)
		}
		if operr != nil {
			return newError(KindSocketConfig, "setsockopt", operr)
		}
		return nil
	}
}

// emitOpenStart emits a structured event before opening the socket.
func (nx *Network) emitOpenStart(ctx context.Context,
	localPort uint16, localHost string, remotePort uint16, remoteHost string) time.Time {
	t0 := nx.timeNow()
	if nx.Logger != nil {
		nx.Logger.InfoContext(
			ctx,
			"openStart",
			slog.String("localEndpoint", net.JoinHostPort(localHost, strconv.Itoa(int(localPort)))),
			slog.String("protocol", "udp"),
			slog.String("remoteEndpoint", net.JoinHostPort(remoteHost, strconv.Itoa(int(remotePort)))),
			slog.Time("t", t0),
		)
	}
	return t0
}

// emitOpenDone emits a structured event after opening the socket.
func (nx *Network) emitOpenDone(ctx context.Context, t0 time.Time, conn *Conn, err error) {
	if nx.Logger != nil {
		var laddr, raddr string
		if conn != nil {
			laddr = conn.laddr.String()
			raddr = conn.remoteAddrString()
		}
		nx.Logger.InfoContext(
			ctx,
			"openDone",
			slog.Bool("canSend", conn != nil && conn.canSend),
			slog.Any("err", err),
			slog.String("errClass", errclass.New(err)),
			slog.String("localAddr", laddr),
			slog.String("protocol", "udp"),
			slog.String("remoteAddr", raddr),
			slog.Time("t0", t0),
			slog.Time("t", nx.timeNow()),
		)
	}
}
