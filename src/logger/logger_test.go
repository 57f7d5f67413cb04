// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/bip70-chain-verifier/src/logger"
)

type entry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func decodeLines(t *testing.T, out string) []entry {
	t.Helper()
	var entries []entry
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var e entry
		require.NoError(t, json.Unmarshal([]byte(line), &e), "line %q", line)
		entries = append(entries, e)
	}
	return entries
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantType any
		wantErr  bool
	}{
		{name: "Empty Is Text", format: "", wantType: &logger.CLILogger{}},
		{name: "Text", format: "text", wantType: &logger.CLILogger{}},
		{name: "JSON Any Case", format: "JSON", wantType: &logger.JSONLogger{}},
		{name: "Unknown", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log, err := logger.New(tt.format, &buf)
			if tt.wantErr {
				assert.ErrorIs(t, err, logger.ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, log)

			log.Printf("chain %d verified", 1)
			assert.Contains(t, buf.String(), "chain 1 verified")
		})
	}
}

func TestCLILogger(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Printf",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				log.Printf("fingerprint: %s", "ab12")
				assert.Equal(t, "fingerprint: ab12\n", buf.String())
			},
		},
		{
			name: "Println",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				log.Println("chain", "ok")
				assert.Equal(t, "chain ok\n", buf.String())
			},
		},
		{
			name: "SetOutput",
			testFunc: func(t *testing.T) {
				var buf1, buf2 bytes.Buffer
				log := logger.NewCLILogger()

				log.SetOutput(&buf1)
				log.Println("first")
				log.SetOutput(&buf2)
				log.Println("second")

				assert.Equal(t, "first\n", buf1.String())
				assert.Equal(t, "second\n", buf2.String())
			},
		},
		{
			name: "Concurrent Usage",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewCLILogger()
				log.SetOutput(&buf)

				const goroutines, perGoroutine = 50, 10
				var wg sync.WaitGroup
				for i := range goroutines {
					wg.Add(1)
					go func(id int) {
						defer wg.Done()
						for j := range perGoroutine {
							log.Printf("goroutine %d message %d", id, j)
						}
					}(i)
				}
				wg.Wait()

				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				assert.Len(t, lines, goroutines*perGoroutine)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

func TestJSONLogger(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Silent",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				log := logger.NewJSONLogger(&buf, true)
				log.Printf("hidden %d", 1)
				log.Println("hidden")
				assert.Zero(t, buf.Len())
			},
		},
		{
			name: "Printf",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				logger.NewJSONLogger(&buf, false).Printf("stage %s failed", "signatures")

				entries := decodeLines(t, buf.String())
				require.Len(t, entries, 1)
				assert.Equal(t, "info", entries[0].Level)
				assert.Equal(t, "stage signatures failed", entries[0].Message)
				assert.NotEmpty(t, entries[0].Time)
			},
		},
		{
			name: "Println Joins Operands",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				logger.NewJSONLogger(&buf, false).Println("chain", 3, "certificates")

				entries := decodeLines(t, buf.String())
				require.Len(t, entries, 1)
				assert.Equal(t, "chain 3 certificates", entries[0].Message)
			},
		},
		{
			name: "Escaping",
			testFunc: func(t *testing.T) {
				var buf bytes.Buffer
				msg := "subject \"CN=Test\"\n\tO=Example\\Org"
				logger.NewJSONLogger(&buf, false).Printf("%s", msg)

				assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "one line per entry")
				entries := decodeLines(t, buf.String())
				assert.Equal(t, msg, entries[0].Message)
			},
		},
		{
			name: "Nil Writer",
			testFunc: func(t *testing.T) {
				log := logger.NewJSONLogger(nil, false)
				assert.NotPanics(t, func() { log.Println("discarded") })
			},
		},
		{
			name: "SetOutput",
			testFunc: func(t *testing.T) {
				var buf1, buf2 bytes.Buffer
				log := logger.NewJSONLogger(&buf1, false)

				log.Println("first")
				log.SetOutput(&buf2)
				log.Println("second")
				log.SetOutput(nil)
				log.Println("third")

				assert.Contains(t, buf1.String(), "first")
				assert.NotContains(t, buf1.String(), "second")
				assert.Contains(t, buf2.String(), "second")
				assert.NotContains(t, buf2.String(), "third")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}

// lockedBuffer serializes writes so the test only observes the logger's
// own line atomicity.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func TestJSONLogger_Concurrent(t *testing.T) {
	var out lockedBuffer
	log := logger.NewJSONLogger(&out, false)

	const goroutines, perGoroutine = 64, 20
	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range perGoroutine {
				if j%2 == 0 {
					log.Printf("verifier %d chain %d", id, j)
				} else {
					log.Println("verifier", id, "chain", j)
				}
			}
		}(i)
	}
	wg.Wait()

	entries := decodeLines(t, out.buf.String())
	assert.Len(t, entries, goroutines*perGoroutine)
}

func TestJSONLogger_WriteToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verifier.log")
	f, err := os.Create(path)
	require.NoError(t, err)

	log := logger.NewJSONLogger(f, false)
	for i := range 5 {
		log.Printf("entry %d", i)
	}
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	entries := decodeLines(t, string(data))
	require.Len(t, entries, 5)
	assert.Equal(t, "entry 4", entries[4].Message)
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		logger.Discard.Printf("x %d", 1)
		logger.Discard.Println("x")
		logger.Discard.SetOutput(os.Stdout)
	})
}
