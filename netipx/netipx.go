// SPDX-License-Identifier: GPL-3.0-or-later

// Package netipx contains [net/netip] extensions.
package netipx

import (
	"encoding/binary"
	"net"
	"net/netip"
)

// AddrToAddrPort converts a [net.Addr] to a [netip.AddrPort].
//
// If the input is nil or neither a [*net.TCPAddr] nor [*net.UDPAddr],
// returns an unspecified IPv6 address with port 0.
//
// For [*net.TCPAddr] and [*net.UDPAddr] addresses, returns their
// corresponding [netip.AddrPort] representation.
func AddrToAddrPort(addr net.Addr) netip.AddrPort {
	if addr == nil {
		return netip.AddrPortFrom(netip.IPv6Unspecified(), 0)
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.AddrPort()
	}
	if udp, ok := addr.(*net.UDPAddr); ok {
		return udp.AddrPort()
	}
	return netip.AddrPortFrom(netip.IPv6Unspecified(), 0)
}

// AddrToIPv4AddrPort is like [AddrToAddrPort] but unmaps IPv4-mapped
// IPv6 addresses and reports whether the result is an IPv4 endpoint.
func AddrToIPv4AddrPort(addr net.Addr) (netip.AddrPort, bool) {
	epnt := UnmapAddrPort(AddrToAddrPort(addr))
	return epnt, epnt.Addr().Is4()
}

// UnmapAddrPort returns epnt with any IPv4-mapped IPv6 address
// converted to the plain IPv4 form.
func UnmapAddrPort(epnt netip.AddrPort) netip.AddrPort {
	return netip.AddrPortFrom(epnt.Addr().Unmap(), epnt.Port())
}

// IPv4ToUint32 returns the 32-bit value of an IPv4 address, with the
// first octet in the most significant byte (i.e., the value that is
// stored in network byte order inside a sockaddr_in).
//
// The boolean is false when addr is not an IPv4 (or IPv4-mapped) address.
func IPv4ToUint32(addr netip.Addr) (uint32, bool) {
	addr = addr.Unmap()
	if !addr.Is4() {
		return 0, false
	}
	octets := addr.As4()
	return binary.BigEndian.Uint32(octets[:]), true
}

// Uint32ToIPv4 is the inverse of [IPv4ToUint32].
func Uint32ToIPv4(value uint32) netip.Addr {
	var octets [4]byte
	binary.BigEndian.PutUint32(octets[:], value)
	return netip.AddrFrom4(octets)
}
