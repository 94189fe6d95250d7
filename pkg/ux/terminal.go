// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"os"

	"github.com/mattn/go-isatty"
)

// interactive caches the TTY check; tests override it via
// SetInteractive.
var interactive = detectInteractive()

func detectInteractive() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive reports whether output goes to a human terminal.
// Non-interactive output switches every helper to plain, parseable
// text.
func IsInteractive() bool { return interactive }

// SetInteractive forces the interactivity flag and returns a restore
// func.
func SetInteractive(v bool) func() {
	prev := interactive
	interactive = v
	return func() { interactive = prev }
}
