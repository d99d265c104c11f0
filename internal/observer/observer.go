// Package observer defines run lifecycle notifications and their logrus
// implementation.
package observer

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Unit identifies one evaluation unit in lifecycle events.
type Unit struct {
	SampleID   string
	Condition  string
	Repetition int
}

// Observer receives run lifecycle events. Implementations must be safe for
// concurrent use; workers call them without coordination.
type Observer interface {
	RunStarted(runID string, samples, conditions, repetitions, maxConcurrent int)
	UnitStarted(u Unit)
	UnitRetry(u Unit, attempt int, backoff time.Duration, reason string)
	UnitCompleted(u Unit)
	UnitFailed(u Unit, stage, reason string)
	Progress(completed, total int)
	RunCompleted(runID string, succeeded, failed int, elapsed time.Duration)
}

// Log emits every event as a structured logrus entry.
type Log struct {
	Logger *logrus.Logger
}

func NewLog(logger *logrus.Logger) *Log { return &Log{Logger: logger} }

func (l *Log) RunStarted(runID string, samples, conditions, repetitions, maxConcurrent int) {
	l.Logger.WithFields(logrus.Fields{
		"run_id":         runID,
		"samples":        samples,
		"conditions":     conditions,
		"repetitions":    repetitions,
		"max_concurrent": maxConcurrent,
	}).Info("run started")
}

func (l *Log) UnitStarted(u Unit) {
	l.unitLog(u).Debug("unit started")
}

func (l *Log) UnitRetry(u Unit, attempt int, backoff time.Duration, reason string) {
	l.unitLog(u).WithFields(logrus.Fields{
		"attempt": attempt,
		"backoff": backoff.String(),
		"reason":  reason,
	}).Warn("retrying")
}

func (l *Log) UnitCompleted(u Unit) {
	l.unitLog(u).Debug("unit completed")
}

func (l *Log) UnitFailed(u Unit, stage, reason string) {
	l.unitLog(u).WithFields(logrus.Fields{
		"stage":  stage,
		"reason": reason,
	}).Error("unit failed")
}

func (l *Log) Progress(completed, total int) {
	l.Logger.WithFields(logrus.Fields{
		"completed": completed,
		"total":     total,
	}).Info("progress")
}

func (l *Log) RunCompleted(runID string, succeeded, failed int, elapsed time.Duration) {
	l.Logger.WithFields(logrus.Fields{
		"run_id":    runID,
		"succeeded": succeeded,
		"failed":    failed,
		"elapsed":   elapsed.Round(time.Millisecond).String(),
	}).Info("run completed")
}

func (l *Log) unitLog(u Unit) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"sample":     u.SampleID,
		"condition":  u.Condition,
		"repetition": u.Repetition,
	})
}

// Multi fans each event out to every wrapped observer in order.
type Multi []Observer

func (m Multi) RunStarted(runID string, samples, conditions, repetitions, maxConcurrent int) {
	for _, o := range m {
		o.RunStarted(runID, samples, conditions, repetitions, maxConcurrent)
	}
}

func (m Multi) UnitStarted(u Unit) {
	for _, o := range m {
		o.UnitStarted(u)
	}
}

func (m Multi) UnitRetry(u Unit, attempt int, backoff time.Duration, reason string) {
	for _, o := range m {
		o.UnitRetry(u, attempt, backoff, reason)
	}
}

func (m Multi) UnitCompleted(u Unit) {
	for _, o := range m {
		o.UnitCompleted(u)
	}
}

func (m Multi) UnitFailed(u Unit, stage, reason string) {
	for _, o := range m {
		o.UnitFailed(u, stage, reason)
	}
}

func (m Multi) Progress(completed, total int) {
	for _, o := range m {
		o.Progress(completed, total)
	}
}

func (m Multi) RunCompleted(runID string, succeeded, failed int, elapsed time.Duration) {
	for _, o := range m {
		o.RunCompleted(runID, succeeded, failed, elapsed)
	}
}

// Nop discards all events.
type Nop struct{}

func (Nop) RunStarted(string, int, int, int, int)        {}
func (Nop) UnitStarted(Unit)                             {}
func (Nop) UnitRetry(Unit, int, time.Duration, string)   {}
func (Nop) UnitCompleted(Unit)                           {}
func (Nop) UnitFailed(Unit, string, string)              {}
func (Nop) Progress(int, int)                            {}
func (Nop) RunCompleted(string, int, int, time.Duration) {}
