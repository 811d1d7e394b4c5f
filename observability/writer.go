package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// writerLogger is a minimal line-oriented Logger for CLI and test use.
type writerLogger struct {
	mu    *sync.Mutex
	w     io.Writer
	debug bool
	bound []Field
}

// NewWriterLogger returns a Logger that writes one line per entry to w.
// Debug entries are dropped unless debug is set.
func NewWriterLogger(w io.Writer, debug bool) Logger {
	return &writerLogger{mu: &sync.Mutex{}, w: w, debug: debug}
}

func (l *writerLogger) Debug(msg string, fields ...Field) {
	if l.debug {
		l.emit("DEBUG", msg, fields)
	}
}

func (l *writerLogger) Info(msg string, fields ...Field)  { l.emit("INFO", msg, fields) }
func (l *writerLogger) Warn(msg string, fields ...Field)  { l.emit("WARN", msg, fields) }
func (l *writerLogger) Error(msg string, fields ...Field) { l.emit("ERROR", msg, fields) }

func (l *writerLogger) With(fields ...Field) Logger {
	bound := make([]Field, 0, len(l.bound)+len(fields))
	bound = append(bound, l.bound...)
	bound = append(bound, fields...)
	return &writerLogger{mu: l.mu, w: l.w, debug: l.debug, bound: bound}
}

func (l *writerLogger) emit(level, msg string, fields []Field) {
	var sb strings.Builder
	sb.WriteString(level)
	sb.WriteByte(' ')
	sb.WriteString(msg)

	all := make([]Field, 0, len(l.bound)+len(fields))
	all = append(all, l.bound...)
	all = append(all, fields...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Key() < all[j].Key() })
	for _, f := range all {
		fmt.Fprintf(&sb, " %s=%v", f.Key(), f.Value())
	}
	sb.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.w, sb.String())
}
