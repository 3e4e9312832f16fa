// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package udpconn provides a minimal IPv4 UDP socket wrapper.

A [*Conn] owns exactly one datagram socket. [*Network.Open] creates the
socket, sets the receive timeout, binds it to a local address (the
wildcard address when no local host is given, an ephemeral port when
the local port is zero) and, when both a remote host and a remote port
are given, connects it to that peer so that [*Conn.Send] needs no
explicit destination.

# Receive Timeout

Every receive waits at most the receive timeout configured when the
connection was opened ([DefaultReceiveTimeout] unless overridden by
[Network.ReceiveTimeout]). When the timeout expires without data, the
receive methods return zero bytes and a nil error: callers are expected
to poll. Any other failure is returned as an [*Error].

# Errors

All errors returned by this package are [*Error] values whose [Kind]
tells which step failed. Use [errors.Is] with a [Kind] to check the
step and with a [syscall.Errno] to check the underlying system error:

	if errors.Is(err, udpconn.KindReceive) && errors.Is(err, syscall.ECONNREFUSED) {
		// the peer is not listening
	}

# Concurrency

A [*Conn] is not safe for concurrent use, except for [*Conn.Close],
which may be called from any goroutine to unblock a pending receive.

# Structured Logging

When [Network.Logger] is set, the connection emits structured events
via [log/slog] around each operation (openStart/openDone,
lookupHostStart/lookupHostDone, sendStart/sendDone, receiveStart/receiveDone,
closeStart/closeDone). Errors are classified with the errclass package.
*/
package udpconn
