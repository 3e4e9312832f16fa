// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package errclass implements error classification.

The general idea is to classify golang errors to an enum of strings
with names resembling standard Unix error names, and to recognize the
would-block conditions that a datagram socket reports when a receive
times out without data.

# Design Principles

1. Preserve original error in `err` in the structured logs.

2. Add the classified error as the `errClass` field.

3. Use [errors.Is] and [errors.As] for classification.

4. Map the nil error to an empty string.

# Classification

[New] delegates to `github.com/rbmk-project/common/errclass`, so the
classes are the same ones used across the rbmk ecosystem, for example:

- [ETIMEDOUT] for [context.DeadlineExceeded], [os.ErrDeadlineExceeded]

- [EINTR] for [context.Canceled], [net.ErrClosed]

- [ECONNREFUSED], [EHOSTUNREACH], ... for respective syscall errors

- [EGENERIC] for unclassified errors

# Would-Block Conditions

[IsWouldBlock] reports whether an error means "no data within the
receive timeout" rather than a transport failure. The system error
constants it checks are defined in platform-specific files:

- unix.go for Unix-like systems using x/sys/unix

- windows.go for Windows systems using x/sys/windows
*/
package errclass

import (
	"errors"
	"os"

	"github.com/rbmk-project/common/errclass"
)

const (
	// EADDRNOTAVAIL is the address not available error.
	EADDRNOTAVAIL = errclass.EADDRNOTAVAIL

	// EADDRINUSE is the address in use error.
	EADDRINUSE = errclass.EADDRINUSE

	// ECONNREFUSED is the connection refused error.
	ECONNREFUSED = errclass.ECONNREFUSED

	// EHOSTUNREACH is the host unreachable error.
	EHOSTUNREACH = errclass.EHOSTUNREACH

	// EINVAL is the invalid argument error.
	EINVAL = errclass.EINVAL

	// EINTR is the interrupted system call error.
	EINTR = errclass.EINTR

	// ENETUNREACH is the network unreachable error.
	ENETUNREACH = errclass.ENETUNREACH

	// ENOBUFS is the no buffer space available error.
	ENOBUFS = errclass.ENOBUFS

	// ENOTCONN is the not connected error.
	ENOTCONN = errclass.ENOTCONN

	// ETIMEDOUT is the operation timed out error.
	ETIMEDOUT = errclass.ETIMEDOUT

	// EDNS_NONAME is the DNS error for "no such host".
	EDNS_NONAME = errclass.EDNS_NONAME

	// EGENERIC is the generic, unclassified error.
	EGENERIC = errclass.EGENERIC
)

// New is an alias for [errclass.New].
var New = errclass.New

// IsWouldBlock returns whether err signals that no datagram arrived
// within the configured receive timeout.
//
// The Go runtime reports expired read deadlines as [os.ErrDeadlineExceeded],
// while a blocking socket with SO_RCVTIMEO reports the platform errno.
func IsWouldBlock(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	for _, candidate := range wouldBlockErrnos {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
