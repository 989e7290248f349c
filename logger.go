// Copyright 2024-present the taskqueue authors. All rights reserved.
// Use of this source code is governed by a MIT-license.
// See LICENSE.txt for details.

package taskqueue

import "log"

// Logger defines an interface that implementers can use to redirect
// logging into their own application. *logrus.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...interface{})
}

// stdLogger implements the Logger interface by wrapping the Go log package.
type stdLogger struct{}

func (stdLogger) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}
