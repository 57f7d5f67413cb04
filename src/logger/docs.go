// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package logger provides abstraction and implementation for logging operations.
// It defines the Logger interface with two implementations: CLILogger for
// human-readable command-line output and JSONLogger for structured, one object
// per line output. JSONLogger builds each line in a pooled buffer, which keeps
// allocation low when many chains are verified concurrently.
package logger
