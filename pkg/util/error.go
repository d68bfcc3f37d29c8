// pkg/util/error.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"strings"
)

// ErrorLogger is a small utility class used to accumulate per-record
// errors while decoding a batch of missions without aborting
// the batch, per spec §7's MalformedMission policy: a bad record is
// skipped and logged, not rejected outright.
type ErrorLogger struct {
	errors []string
}

// ErrorString records a printf-formatted error and keeps decoding the
// rest of the batch.
func (e *ErrorLogger) ErrorString(format string, args ...interface{}) {
	e.errors = append(e.errors, fmt.Sprintf(format, args...))
}

func (e *ErrorLogger) HaveErrors() bool {
	return e != nil && len(e.errors) > 0
}

func (e *ErrorLogger) String() string {
	if e == nil {
		return ""
	}
	return strings.Join(e.errors, "\n")
}
