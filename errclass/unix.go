//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later

package errclass

import "golang.org/x/sys/unix"

// wouldBlockErrnos contains the errors returned by recv(2) when
// SO_RCVTIMEO expires without data.
var wouldBlockErrnos = []error{
	unix.EAGAIN,
	unix.EWOULDBLOCK,
}
