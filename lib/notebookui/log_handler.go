// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package notebookui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// logRecordMsg delivers a slog record to the model for display in the
// status bar.
type logRecordMsg struct {
	Summary string
	Level   slog.Level
}

// logRecordFadeMsg clears the status bar message with the matching
// sequence number. Later records bump the sequence, so an old fade
// never clears a newer message.
type logRecordFadeMsg struct {
	sequence int
}

// logRecordFadeDelay is how long a log message stays in the status
// bar before the key help returns.
const logRecordFadeDelay = 5 * time.Second

// MessageSender is the part of *tea.Program the log handler needs.
type MessageSender interface {
	Send(tea.Msg)
}

// logQueueSize bounds the records waiting for the program. Records
// logged while the queue is full are dropped.
const logQueueSize = 64

// logQueue carries formatted records from any goroutine to the
// program. Handle never blocks on the program: Update itself logs, and
// Program.Send from inside Update waits on the event loop that is
// running it.
type logQueue struct {
	program atomic.Pointer[MessageSender]
	records chan logRecordMsg
	start   sync.Once
}

// drain forwards queued records to the program for the life of the
// process.
func (queue *logQueue) drain() {
	for record := range queue.records {
		(*queue.program.Load()).Send(record)
	}
}

// LogHandler is a slog.Handler that shows records in the viewer's
// status bar. Records below the configured level are dropped, as are
// records that arrive before SetProgram is called.
//
// Handlers derived via WithAttrs/WithGroup share one queue, so one
// SetProgram call reaches all of them.
type LogHandler struct {
	level  slog.Level
	queue  *logQueue
	attrs  []string
	prefix string
}

// NewLogHandler creates a handler that delivers records at or above
// level.
func NewLogHandler(level slog.Level) *LogHandler {
	return &LogHandler{
		level: level,
		queue: &logQueue{records: make(chan logRecordMsg, logQueueSize)},
	}
}

// SetProgram sets the receiver of log messages and starts delivery.
// Safe to call from any goroutine.
func (handler *LogHandler) SetProgram(program MessageSender) {
	handler.queue.program.Store(&program)
	handler.queue.start.Do(func() { go handler.queue.drain() })
}

// Enabled reports whether records at level are delivered.
func (handler *LogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= handler.level
}

// Handle formats the record as "message (key=value, ...)" and queues
// it for the program. It never blocks.
func (handler *LogHandler) Handle(_ context.Context, record slog.Record) error {
	if handler.queue.program.Load() == nil {
		return nil
	}

	parts := append([]string(nil), handler.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		parts = append(parts, handler.formatAttr(attr))
		return true
	})
	summary := record.Message
	if len(parts) > 0 {
		summary += " (" + strings.Join(parts, ", ") + ")"
	}

	select {
	case handler.queue.records <- logRecordMsg{Summary: summary, Level: record.Level}:
	default:
	}
	return nil
}

// WithAttrs returns a handler that prepends attrs to every record.
func (handler *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *handler
	derived.attrs = append([]string(nil), handler.attrs...)
	for _, attr := range attrs {
		derived.attrs = append(derived.attrs, handler.formatAttr(attr))
	}
	return &derived
}

// WithGroup returns a handler that qualifies later attribute keys
// with name.
func (handler *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return handler
	}
	derived := *handler
	derived.attrs = append([]string(nil), handler.attrs...)
	derived.prefix = handler.prefix + name + "."
	return &derived
}

func (handler *LogHandler) formatAttr(attr slog.Attr) string {
	return fmt.Sprintf("%s%s=%s", handler.prefix, attr.Key, attr.Value)
}
