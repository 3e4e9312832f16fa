//go:build windows

// SPDX-License-Identifier: GPL-3.0-or-later

package errclass

import "golang.org/x/sys/windows"

// wouldBlockErrnos contains the errors returned by recv when
// SO_RCVTIMEO expires without data.
var wouldBlockErrnos = []error{
	windows.WSAEWOULDBLOCK,
	windows.WSAETIMEDOUT,
}
