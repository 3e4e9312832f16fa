//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Error taxonomy.
//

package udpconn

import (
	"errors"
	"os"
	"syscall"
)

// Kind identifies the step that produced an [*Error].
//
// A Kind is also an error, so that errors.Is(err, KindSend) reports
// whether err is an [*Error] with that Kind.
type Kind int

const (
	// KindSocketCreation means the datagram socket could not be created.
	KindSocketCreation Kind = iota + 1

	// KindSocketConfig means a socket option (e.g., the receive timeout)
	// was rejected by the system.
	KindSocketConfig

	// KindBind means the socket could not be bound to the local address.
	KindBind

	// KindResolve means a local or remote host name could not be resolved.
	KindResolve

	// KindConnect means the socket could not be connected to the remote peer.
	KindConnect

	// KindAddressQuery means the bound local address could not be read back.
	KindAddressQuery

	// KindSend means a datagram could not be sent.
	KindSend

	// KindReceive means a datagram could not be received.
	KindReceive
)

// kindNames maps each [Kind] to its name.
var kindNames = map[Kind]string{
	KindSocketCreation: "socket creation",
	KindSocketConfig:   "socket config",
	KindBind:           "bind",
	KindResolve:        "resolve",
	KindConnect:        "connect",
	KindAddressQuery:   "address query",
	KindSend:           "send",
	KindReceive:        "receive",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error implements error.
func (k Kind) Error() string {
	return "udpconn: " + k.String() + " error"
}

var (
	// ErrNotConnected is returned by [*Conn.Send] when the connection
	// was opened without a remote peer.
	ErrNotConnected = errors.New("connection has no remote peer")

	// ErrAddressFamily is returned when an address is not IPv4.
	ErrAddressFamily = errors.New("address is not IPv4")

	// ErrNoIPv4Address is returned when a host name has no IPv4 address.
	ErrNoIPv4Address = errors.New("no IPv4 address")
)

// Error is the error returned by [*Network.Open] and [*Conn] methods.
type Error struct {
	// Kind is the step that failed.
	Kind Kind

	// Op is the system call or operation that failed (e.g., "bind").
	Op string

	// Err is the underlying error.
	Err error
}

// newError constructs a new [*Error].
func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Error implements error.
func (e *Error) Error() string {
	return "udpconn: " + e.Kind.String() + ": " + e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows matching an [*Error] against its [Kind].
func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

// Errno returns the underlying system error number, if any.
func (e *Error) Errno() (syscall.Errno, bool) {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return errno, true
	}
	return 0, false
}

// classifyOpenError maps an error returned while creating, binding
// or connecting a socket to an [*Error]. The fallback kind is used
// when the error does not name the failing system call.
func classifyOpenError(fallback Kind, err error) *Error {
	var uerr *Error
	if errors.As(err, &uerr) {
		return uerr
	}
	var serr *os.SyscallError
	if errors.As(err, &serr) {
		switch serr.Syscall {
		case "socket":
			return newError(KindSocketCreation, serr.Syscall, err)
		case "setsockopt":
			return newError(KindSocketConfig, serr.Syscall, err)
		case "bind":
			return newError(KindBind, serr.Syscall, err)
		case "connect":
			return newError(KindConnect, serr.Syscall, err)
		case "getsockname":
			return newError(KindAddressQuery, serr.Syscall, err)
		}
	}
	return newError(fallback, fallback.String(), err)
}
