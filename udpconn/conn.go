//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// UDP connection.
//

package udpconn

import (
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/spinnhost/x/errclass"
	"github.com/spinnhost/x/netipx"
)

// Conn is an IPv4 UDP connection.
//
// The zero value is invalid; construct using [*Network.Open] or [Open].
type Conn struct {
	canSend   bool
	closeonce sync.Once
	conn      *net.UDPConn
	ctx       context.Context // only used for logging
	laddr     netip.AddrPort
	netx      *Network // may contain nil logger!
	raddr     netip.AddrPort
	timeout   time.Duration
}

// CanSend returns whether the connection has a remote peer, in which
// case [*Conn.Send] and [*Conn.SendMessage] may be used.
func (c *Conn) CanSend() bool {
	return c.canSend
}

// LocalAddr returns the local address and port the socket is bound to.
func (c *Conn) LocalAddr() netip.AddrPort {
	return c.laddr
}

// LocalIP returns the local IPv4 address the socket is bound to, which
// is the unspecified address when bound to the wildcard address.
func (c *Conn) LocalIP() netip.Addr {
	return c.laddr.Addr()
}

// LocalIPv4 returns [*Conn.LocalIP] as a 32-bit value whose most
// significant byte is the first octet.
func (c *Conn) LocalIPv4() uint32 {
	value, _ := netipx.IPv4ToUint32(c.laddr.Addr())
	return value
}

// LocalPort returns the local port the socket is bound to. When the
// connection was opened with a zero local port, this is the ephemeral
// port chosen by the system.
func (c *Conn) LocalPort() uint16 {
	return c.laddr.Port()
}

// RemoteAddr returns the address of the remote peer, or the zero
// [netip.AddrPort] when the connection has no remote peer.
func (c *Conn) RemoteAddr() netip.AddrPort {
	return c.raddr
}

// ReceiveTimeout returns the time each receive waits for a datagram.
func (c *Conn) ReceiveTimeout() time.Duration {
	return c.timeout
}

// remoteAddrString returns the remote address for logging.
func (c *Conn) remoteAddrString() string {
	if !c.canSend {
		return ""
	}
	return c.raddr.String()
}

// Receive reads a single datagram into buf and returns the number of
// bytes read. Bytes beyond len(buf) are discarded. When no datagram
// arrives within the receive timeout, Receive returns zero and a nil error.
func (c *Conn) Receive(buf []byte) (int, error) {
	count, _, err := c.receive(buf)
	return count, err
}

// ReceiveResize is like [*Conn.Receive] but truncates *buf to the number
// of bytes received. It returns whether any bytes were received. On
// error, *buf is left unchanged.
func (c *Conn) ReceiveResize(buf *[]byte) (bool, error) {
	count, _, err := c.receive(*buf)
	if err != nil {
		return false, err
	}
	*buf = (*buf)[:count]
	return count > 0, nil
}

// ReceiveFrom is like [*Conn.Receive] but also returns the address of
// the sender. The address is the zero [netip.AddrPort] on timeout.
func (c *Conn) ReceiveFrom(buf []byte) (int, netip.AddrPort, error) {
	return c.receive(buf)
}

// ReceiveResizeFrom is like [*Conn.ReceiveResize] but also returns the
// address of the sender.
func (c *Conn) ReceiveResizeFrom(buf *[]byte) (bool, netip.AddrPort, error) {
	count, addr, err := c.receive(*buf)
	if err != nil {
		return false, netip.AddrPort{}, err
	}
	*buf = (*buf)[:count]
	return count > 0, addr, nil
}

// receive implements all the receive methods.
func (c *Conn) receive(buf []byte) (int, netip.AddrPort, error) {
	t0 := c.emitIOStart("receiveStart", len(buf))

	count, addr, err := c.doReceive(buf)

	c.emitIODone("receiveDone", t0, count, addr, err)
	return count, addr, err
}

// doReceive performs the receive and maps timeouts to zero bytes.
func (c *Conn) doReceive(buf []byte) (int, netip.AddrPort, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, netip.AddrPort{}, newError(KindReceive, "recvfrom", err)
	}
	count, addr, err := c.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		if errclass.IsWouldBlock(err) {
			return 0, netip.AddrPort{}, nil
		}
		return 0, netip.AddrPort{}, newError(KindReceive, "recvfrom", err)
	}
	return count, netipx.UnmapAddrPort(addr), nil
}

// Send sends data as a single datagram to the remote peer.
//
// The connection must have been opened with a remote peer (see
// [*Conn.CanSend]); otherwise Send fails with [ErrNotConnected].
func (c *Conn) Send(data []byte) error {
	t0 := c.emitIOStart("sendStart", len(data))

	count, err := c.doSend(data)

	c.emitIODone("sendDone", t0, count, c.raddr, err)
	return err
}

// doSend implements Send.
func (c *Conn) doSend(data []byte) (int, error) {
	if !c.canSend {
		return 0, newError(KindSend, "send", ErrNotConnected)
	}
	count, err := c.conn.Write(data)
	if err != nil {
		return 0, newError(KindSend, "send", err)
	}
	return count, nil
}

// SendMessage serializes msg by appending it to an empty buffer and
// sends the result as a single datagram using [*Conn.Send].
func (c *Conn) SendMessage(msg encoding.BinaryAppender) error {
	data, err := msg.AppendBinary(nil)
	if err != nil {
		return newError(KindSend, "serialize", err)
	}
	return c.Send(data)
}

// SendTo sends data as a single datagram to addr. SendTo works whether
// or not the connection has a remote peer.
func (c *Conn) SendTo(data []byte, addr netip.AddrPort) error {
	t0 := c.emitIOStart("sendStart", len(data))

	count, err := c.doSendTo(data, addr)

	c.emitIODone("sendDone", t0, count, addr, err)
	return err
}

// doSendTo implements SendTo.
func (c *Conn) doSendTo(data []byte, addr netip.AddrPort) (int, error) {
	addr = netipx.UnmapAddrPort(addr)
	if !addr.IsValid() || !addr.Addr().Is4() {
		return 0, newError(KindSend, "sendto", fmt.Errorf("%w: %s", ErrAddressFamily, addr))
	}
	if c.canSend {
		if err := sendToConnected(c.conn, c.raddr, data, addr); err != nil {
			return 0, newError(KindSend, "sendto", err)
		}
		return len(data), nil
	}
	count, err := c.conn.WriteToUDPAddrPort(data, addr)
	if err != nil {
		return 0, newError(KindSend, "sendto", err)
	}
	return count, nil
}

// Close closes the socket. Close is idempotent and always returns nil:
// errors closing the socket are only reported via structured logs.
func (c *Conn) Close() error {
	c.closeonce.Do(func() {
		t0 := c.netx.timeNow()
		if c.netx.Logger != nil {
			c.netx.Logger.InfoContext(
				c.ctx,
				"closeStart",
				slog.String("localAddr", c.laddr.String()),
				slog.String("protocol", "udp"),
				slog.String("remoteAddr", c.remoteAddrString()),
				slog.Time("t", t0),
			)
		}

		err := c.conn.Close()

		if c.netx.Logger != nil {
			c.netx.Logger.InfoContext(
				c.ctx,
				"closeDone",
				slog.Any("err", err),
				slog.String("errClass", errclass.New(err)),
				slog.String("localAddr", c.laddr.String()),
				slog.String("protocol", "udp"),
				slog.String("remoteAddr", c.remoteAddrString()),
				slog.Time("t0", t0),
				slog.Time("t", c.netx.timeNow()),
			)
		}
	})
	return nil
}

// emitIOStart emits a structured event before sending or receiving.
func (c *Conn) emitIOStart(event string, bufferSize int) time.Time {
	t0 := c.netx.timeNow()
	if c.netx.Logger != nil {
		c.netx.Logger.InfoContext(
			c.ctx,
			event,
			slog.Int("ioBufferSize", bufferSize),
			slog.String("localAddr", c.laddr.String()),
			slog.String("protocol", "udp"),
			slog.String("remoteAddr", c.remoteAddrString()),
			slog.Time("t", t0),
		)
	}
	return t0
}

// emitIODone emits a structured event after sending or receiving.
func (c *Conn) emitIODone(event string, t0 time.Time, count int, peer netip.AddrPort, err error) {
	if c.netx.Logger != nil {
		var peerAddr string
		if peer.IsValid() {
			peerAddr = peer.String()
		}
		c.netx.Logger.InfoContext(
			c.ctx,
			event,
			slog.Int("ioBytesCount", count),
			slog.Any("err", err),
			slog.String("errClass", errclass.New(err)),
			slog.String("localAddr", c.laddr.String()),
			slog.String("peerAddr", peerAddr),
			slog.String("protocol", "udp"),
			slog.String("remoteAddr", c.remoteAddrString()),
			slog.Time("t0", t0),
			slog.Time("t", c.netx.timeNow()),
		)
	}
}
