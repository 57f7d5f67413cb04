// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/internal/helper/gc"
)

// ErrUnknownFormat indicates an unsupported log format name.
var ErrUnknownFormat = errors.New("logger: unknown format")

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger defines the interface for logging operations.
//
// The verifier library only logs through this interface, so embedding
// applications can route its diagnostics wherever they like.
type Logger interface {
	// Printf formats and prints a log message.
	Printf(format string, v ...any)
	// Println prints a log message with a newline.
	Println(v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// New returns a logger for the named format writing to w.
//
// Parameters:
//   - format: FormatText or FormatJSON (case-insensitive); empty means text
//   - w: Destination; nil means os.Stderr
//
// Returns:
//   - Logger: The logger
//   - error: ErrUnknownFormat for any other name
func New(format string, w io.Writer) (Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	switch strings.ToLower(format) {
	case "", FormatText:
		l := NewCLILogger()
		l.SetOutput(w)
		return l, nil
	case FormatJSON:
		return NewJSONLogger(w, false), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
type CLILogger struct{ logger *log.Logger }

// NewCLILogger creates a new CLI logger with timestamps disabled,
// writing to stdout.
func NewCLILogger() *CLILogger {
	return &CLILogger{logger: log.New(os.Stdout, "", 0)}
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logger.Printf(format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) { c.logger.Println(v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// JSONLogger writes one JSON object per line:
//
//	{"time":"2026-01-02T15:04:05Z","level":"info","message":"..."}
//
// Lines are assembled in a pooled buffer and written with a single call.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	silent bool
	now    func() time.Time
}

// NewJSONLogger creates a JSON logger writing to writer. A nil writer
// discards output, and silent suppresses it entirely.
func NewJSONLogger(writer io.Writer, silent bool) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		writer: writer,
		silent: silent,
		now:    time.Now,
	}
}

// Printf formats and logs a message.
func (j *JSONLogger) Printf(format string, v ...any) {
	if j.silent {
		return
	}
	j.write(fmt.Sprintf(format, v...))
}

// Println logs its operands joined by spaces, like fmt.Sprintln without the
// trailing newline.
func (j *JSONLogger) Println(v ...any) {
	if j.silent {
		return
	}
	j.write(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (j *JSONLogger) write(msg string) {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	ts, _ := json.Marshal(j.now().UTC().Format(time.RFC3339))
	text, _ := json.Marshal(msg)

	buf.WriteString(`{"time":`)
	buf.Write(ts)
	buf.WriteString(`,"level":"info","message":`)
	buf.Write(text)
	buf.WriteString("}\n")

	j.mu.Lock()
	buf.WriteTo(j.writer)
	j.mu.Unlock()
}

// SetOutput sets the output destination. A nil writer discards output.
func (j *JSONLogger) SetOutput(w io.Writer) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if w == nil {
		j.writer = io.Discard
	} else {
		j.writer = w
	}
}

// Discard is a Logger that drops everything.
var Discard Logger = discard{}

type discard struct{}

func (discard) Printf(string, ...any) {}
func (discard) Println(...any)        {}
func (discard) SetOutput(io.Writer)   {}
