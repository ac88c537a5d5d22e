package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Reporter forwards unexpected failures to an error tracker.
type Reporter interface {
	Report(err error, tags map[string]string)
	Flush(timeout time.Duration) bool
}

// NopReporter drops every report.
type NopReporter struct{}

func (NopReporter) Report(error, map[string]string) {}
func (NopReporter) Flush(time.Duration) bool        { return true }

var (
	mu      sync.RWMutex
	current Reporter = NopReporter{}
)

// SetReporter installs r as the process-wide reporter and returns a
// function restoring the previous one.
func SetReporter(r Reporter) (restore func()) {
	if r == nil {
		r = NopReporter{}
	}
	mu.Lock()
	prev := current
	current = r
	mu.Unlock()
	return func() {
		mu.Lock()
		current = prev
		mu.Unlock()
	}
}

func reporter() Reporter {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Report sends err to the installed reporter. Nil errors and cancellations
// are ignored.
func Report(err error, tags map[string]string) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	reporter().Report(err, tags)
}

// Flush waits up to timeout for queued reports to be delivered.
func Flush(timeout time.Duration) bool {
	return reporter().Flush(timeout)
}

// PanicError wraps a value recovered from a panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Guard runs fn, turning a panic into a *PanicError, and reports any
// resulting error tagged with the operation name.
func Guard(operation string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
		Report(err, map[string]string{"operation": operation})
	}()
	return fn()
}
