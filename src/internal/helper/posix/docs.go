// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package posix provides helpers for presenting the running program the
// same way on [POSIX] and Windows systems.
//
// ExecutableName derives the command name shown in usage and example text:
//
//	rootCmd := &cobra.Command{
//	    Use: posix.ExecutableName("bip70-chain-verifier"),
//	}
//
// "/usr/local/bin/verifier" and "C:\bin\verifier.exe" both yield "verifier".
//
// [POSIX]: https://grokipedia.com/page/POSIX
package posix
