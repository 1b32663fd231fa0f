// Package geoslog provides the two diagnostic sinks spec.md §7 requires:
// structured diagnostics to standard error, and build/query timing lines to
// standard output. Both are logrus.Logger instances so callers get
// structured fields, leveled output, and the usual formatter choices for
// free.
package geoslog

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Diagnostics is the standard-error sink for open-failure, metadata-missing,
// decode-failure, and upstream-reader-failure diagnostics (spec.md §7).
var Diagnostics = newLogger(os.Stderr)

// Timing is the standard-output sink for stage duration lines (spec.md §7,
// "User-visible behavior"). The CLI logs one line per whole build or query
// run via Stage; open, read and persist phases are not timed separately.
var Timing = newLogger(os.Stdout)

func newLogger(out *os.File) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Stage times a build/query stage, logging its duration to Timing on
// completion. Usage: defer geoslog.Stage("build")().
func Stage(name string) func() {
	start := time.Now()
	return func() {
		Timing.WithFields(logrus.Fields{
			"stage":       name,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("stage complete")
	}
}
