//go:build unix

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// UNIX socket options and system calls.
//

package udpconn

import (
	"net"
	"net/netip"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// startupSocketLibrary is a no-op on UNIX.
func startupSocketLibrary() error {
	return nil
}

// setReceiveTimeout sets SO_RCVTIMEO using a timeval.
func setReceiveTimeout(fd uintptr, timeout time.Duration) error {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	return os.NewSyscallError("setsockopt",
		unix.SetsockoptTimeval(int(fd), unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv))
}

// sendToConnected sends a datagram to an explicit destination using a
// socket that is already connected to another peer. The [net] package
// refuses WriteTo on connected sockets, so we call sendto(2) directly.
//
// Linux honours the explicit destination. BSD-derived systems fail
// with EISCONN, which we return as is.
func sendToConnected(conn *net.UDPConn, _ netip.AddrPort, data []byte, addr netip.AddrPort) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	sa := &unix.SockaddrInet4{Port: int(addr.Port()), Addr: addr.Addr().As4()}
	var operr error
	err = rawConn.Write(func(fd uintptr) bool {
		operr = unix.Sendto(int(fd), data, 0, sa)
		return operr != unix.EAGAIN && operr != unix.EWOULDBLOCK
	})
	if err != nil {
		return err
	}
	return os.NewSyscallError("sendto", operr)
}
