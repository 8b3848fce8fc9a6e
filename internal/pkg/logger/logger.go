package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync/atomic"
)

// StdLogger is a lightweight implementation backed by Go's log package.
// Nothing is written unless verbose is set.
type StdLogger struct {
	verbose atomic.Bool
	out     *log.Logger
}

// NewStd creates a StdLogger writing to stderr.
func NewStd(verbose bool) *StdLogger {
	return New(os.Stderr, verbose)
}

// New creates a StdLogger writing to w.
func New(w io.Writer, verbose bool) *StdLogger {
	l := &StdLogger{out: log.New(w, "widgera ", log.LstdFlags)}
	l.verbose.Store(verbose)
	return l
}

// SetVerbose switches output on or off, e.g. after flags are parsed.
func (l *StdLogger) SetVerbose(verbose bool) {
	l.verbose.Store(verbose)
}

func (l *StdLogger) Debug(msg string, fields map[string]interface{}) {
	l.write("DEBUG", msg, nil, fields)
}

func (l *StdLogger) Info(msg string, fields map[string]interface{}) {
	l.write("INFO", msg, nil, fields)
}

func (l *StdLogger) Warn(msg string, fields map[string]interface{}) {
	l.write("WARN", msg, nil, fields)
}

func (l *StdLogger) Error(msg string, err error, fields map[string]interface{}) {
	l.write("ERROR", msg, err, fields)
}

func (l *StdLogger) write(level, msg string, err error, fields map[string]interface{}) {
	if !l.verbose.Load() {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", level, msg)
	if err != nil {
		fmt.Fprintf(&b, " error=%q", err.Error())
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	l.out.Println(b.String())
}
