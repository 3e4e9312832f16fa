//go:build windows

//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Windows socket options and system calls.
//

package udpconn

import (
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// soRcvTimeo is the Winsock SO_RCVTIMEO option.
const soRcvTimeo = 0x1006

// startupSocketLibrary initializes Winsock 2.2. The [net] package
// initializes Winsock as well and WSAStartup is reference counted, so
// calling it once more is harmless and we never call WSACleanup.
func startupSocketLibrary() error {
	var data windows.WSAData
	return os.NewSyscallError("WSAStartup", windows.WSAStartup(uint32(0x202), &data))
}

// setReceiveTimeout sets SO_RCVTIMEO using a DWORD of milliseconds.
func setReceiveTimeout(fd uintptr, timeout time.Duration) error {
	return os.NewSyscallError("setsockopt", windows.SetsockoptInt(
		windows.Handle(fd), windows.SOL_SOCKET, soRcvTimeo, int(timeout.Milliseconds())))
}

// sendToConnected sends a datagram using a socket connected to remote.
// Winsock ignores the destination of sendto on connected datagram
// sockets, so we only accept the connected peer.
func sendToConnected(conn *net.UDPConn, remote netip.AddrPort, data []byte, addr netip.AddrPort) error {
	if addr != remote {
		return fmt.Errorf("%w: %s", net.ErrWriteToConnected, addr)
	}
	_, err := conn.Write(data)
	return err
}
