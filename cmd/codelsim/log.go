// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

package main

import "fmt"

// logf logs a message at the given virtual time, for the given node.
func logf(now Clock, id nodeID, format string, a ...any) {
	logger.Infof("%s [%d] %s", now, id, fmt.Sprintf(format, a...))
}
