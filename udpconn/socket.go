//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Process-wide socket library initialization.
//

package udpconn

import "sync"

// initSocketLibrary performs the one-time platform initialization
// required before creating the first socket. It runs at most once per
// process and is never torn down, so every later call returns the same
// result.
var initSocketLibrary = sync.OnceValue(startupSocketLibrary)
