// Package slablog adapts logrus to the slab.Logger interface, the same
// ambient logging stack wiring a *logrus.Logger (or any FieldLogger, e.g.
// one already carrying request-scoped fields) into a slab.Pool as its
// Critf/Alertf collaborator.
package slablog

import "github.com/sirupsen/logrus"

// Logrus adapts a logrus.FieldLogger to slab.Logger. CRIT-level events
// (pool exhaustion) map to Error; ALERT-level events (misuse such as a
// double free or a misaligned pointer) map to Warn, since they are
// recoverable caller bugs rather than operational failures.
type Logrus struct {
	log logrus.FieldLogger
}

// New wraps log, or the package-level standard logger if log is nil.
func New(log logrus.FieldLogger) *Logrus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Logrus{log: log}
}

func (l *Logrus) Critf(format string, args ...interface{}) {
	l.log.Errorf(format, args...)
}

func (l *Logrus) Alertf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}
