// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright 2026 Pete Heist

// Package logging is a thin wrapper of the zap logging library.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var root = func() *zap.Logger {
	level := zapcore.InfoLevel
	if v, ok := os.LookupEnv("CODEL_LOG"); ok {
		if l, e := zapcore.ParseLevel(strings.ToLower(v)); e == nil {
			level = l
		}
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		os.Stderr,
		level,
	)
	return zap.New(core)
}()

// New creates a named logger.  By repo convention, this appears in the same
// .go file as the package docstring:
//
//	var logger = logging.New("foo")
func New(pkg string) *zap.Logger {
	return root.Named(pkg)
}
