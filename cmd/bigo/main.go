// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command bigo estimates the time and space complexity of code snippets
// from the terminal.
//
// Snippets are analyzed in-process by default. With --server (or
// BIGO_SERVER) requests go to a running complexity server instead, which
// also enables the history commands.
//
// Usage:
//
//	bigo analyze sort.py
//	cat search.js | bigo analyze - --dialect js
//	bigo analyze Main.java --json --features
//	bigo --server http://localhost:12218 history
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
