// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"strings"
	"testing"
)

func capture(t *testing.T, interactive bool, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	restoreOut := SetOutput(&buf)
	restoreTTY := SetInteractive(interactive)
	t.Cleanup(restoreOut)
	t.Cleanup(restoreTTY)
	fn()
	return buf.String()
}

func TestSuccess_MachineMode(t *testing.T) {
	got := capture(t, false, func() { Success("done") })
	if got != "OK: done\n" {
		t.Errorf("Success() = %q, want %q", got, "OK: done\n")
	}
}

func TestError_MachineMode(t *testing.T) {
	got := capture(t, false, func() { Error("broke") })
	if got != "ERROR: broke\n" {
		t.Errorf("Error() = %q, want %q", got, "ERROR: broke\n")
	}
}

func TestMuted_MachineModeSilent(t *testing.T) {
	got := capture(t, false, func() { Muted("aside") })
	if got != "" {
		t.Errorf("Muted() in machine mode printed %q", got)
	}
}

func TestWelcome_MachineMode(t *testing.T) {
	got := capture(t, false, Welcome)
	if !strings.Contains(got, WelcomeMessage) {
		t.Errorf("Welcome() output %q missing message", got)
	}
	if !strings.Contains(got, WelcomeHint) {
		t.Errorf("Welcome() output %q missing hint", got)
	}
}

func TestWelcome_InteractiveContainsMessage(t *testing.T) {
	got := capture(t, true, Welcome)
	if !strings.Contains(got, "Kodiak") {
		t.Errorf("Welcome() output %q missing brand", got)
	}
}

func TestTitle_InteractiveVsMachine(t *testing.T) {
	machine := capture(t, false, func() { Title("Jobs") })
	if machine != "Jobs\n" {
		t.Errorf("Title() machine mode = %q", machine)
	}
	interactive := capture(t, true, func() { Title("Jobs") })
	if !strings.Contains(interactive, "Jobs") {
		t.Errorf("Title() interactive = %q", interactive)
	}
}
