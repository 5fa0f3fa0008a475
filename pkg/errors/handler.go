package errors

import (
	"runtime/debug"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type handlerBox struct{ h Handler }

var current atomic.Pointer[handlerBox]

func init() {
	current.Store(&handlerBox{h: NewLogHandler(zap.NewNop())})
}

// SetHandler installs the process-wide handler and returns the previous
// one. Nil installs a handler that discards everything.
func SetHandler(h Handler) Handler {
	if h == nil {
		h = NewLogHandler(zap.NewNop())
	}
	return current.Swap(&handlerBox{h: h}).h
}

// Report sends err to the installed handler, stamping it if Timestamp is
// zero.
func Report(err *Error) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	current.Load().h.HandleError(err)
}

// ReportPanic sends a recovered panic to the installed handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	current.Load().h.HandlePanic(err)
}

// Recover reports a panic in the deferring function instead of letting it
// unwind further:
//
//	defer errors.Recover("visibility.Tracker.listener")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{
			Op:         op,
			Value:      r,
			StackTrace: string(debug.Stack()),
			Timestamp:  time.Now(),
		})
	}
}
