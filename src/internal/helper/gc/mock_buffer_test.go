// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc

import "bytes"

// foreignBuffer satisfies Buffer without being a pooled buffer.
type foreignBuffer struct{ bytes.Buffer }

func (f *foreignBuffer) Set(p []byte) {
	f.Buffer.Reset()
	f.Buffer.Write(p)
}

func (f *foreignBuffer) SetString(s string) { f.Set([]byte(s)) }

// failingReader fails every read with err.
type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
