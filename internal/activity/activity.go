// Package activity records one append-only entry per received command.
// Writes are best effort: a failed write is reported to the operator console
// and returned as a Result, never propagated into the reply path.
package activity

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"
)

// DefaultWriteTimeout bounds a single asynchronous write
const DefaultWriteTimeout = 5 * time.Second

// Entry is one durable record of a command invocation
type Entry struct {
	CommandID string    // decimal Unix-nanosecond write time, unique per Logger
	Command   string
	User      string
	Guild     string
	Channel   string
	Content   string
	Timestamp time.Time
}

// NewCommandID derives an entry id from a high-resolution timestamp
func NewCommandID(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

// Sink appends entries to a log store
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// Result is the outcome of one write
type Result struct {
	Entry Entry
	Err   error
}

// OK reports whether the entry was written
func (r Result) OK() bool {
	return r.Err == nil
}

// Logger writes entries to a sink
type Logger struct {
	sink      Sink
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time
	onFailure func(error)
	lastID    atomic.Int64
}

// Option configures a Logger
type Option func(*Logger)

// WithTimeout overrides DefaultWriteTimeout for asynchronous writes
func WithTimeout(d time.Duration) Option {
	return func(l *Logger) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithFailureHook is called once for every failed write
func WithFailureHook(fn func(error)) Option {
	return func(l *Logger) {
		l.onFailure = fn
	}
}

// NewLogger creates a Logger. A nil sink makes every write a no-op success.
func NewLogger(sink Sink, logger *slog.Logger, opts ...Option) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Logger{
		sink:    sink,
		logger:  logger,
		timeout: DefaultWriteTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record writes one entry and returns the outcome. A missing timestamp is
// set to now; a missing id is assigned from the write time, so two writes of
// the same command never share an id.
func (l *Logger) Record(ctx context.Context, e Entry) Result {
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}
	if e.CommandID == "" {
		e.CommandID = NewCommandID(time.Unix(0, l.nextID()))
	}

	if l.sink == nil {
		return Result{Entry: e}
	}

	if err := l.sink.Append(ctx, e); err != nil {
		l.logger.Warn("Failed to write activity log", "command", e.Command, "commandID", e.CommandID, "error", err)
		if l.onFailure != nil {
			l.onFailure(err)
		}
		return Result{Entry: e, Err: err}
	}

	l.logger.Debug("Activity logged", "command", e.Command, "commandID", e.CommandID)
	return Result{Entry: e}
}

// nextID returns the current Unix-nanosecond time, bumped past the last id
// handed out when the clock has not advanced
func (l *Logger) nextID() int64 {
	n := l.now().UnixNano()
	for {
		last := l.lastID.Load()
		id := n
		if id <= last {
			id = last + 1
		}
		if l.lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}

// RecordAsync runs Record on its own goroutine, detached from ctx
// cancellation and bounded by the write timeout. The returned channel
// receives exactly one Result and is buffered, so callers may drop it.
func (l *Logger) RecordAsync(ctx context.Context, e Entry) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		out <- l.Record(writeCtx, e)
	}()
	return out
}

// MultiSink appends to every sink and joins their errors
type MultiSink []Sink

// Append writes e to each sink in order
func (m MultiSink) Append(ctx context.Context, e Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
