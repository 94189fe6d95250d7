// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import "fmt"

const (
	// WelcomeMessage is the canonical greeting shared by the CLI and
	// the REST welcome endpoint.
	WelcomeMessage = "Welcome to Kodiak!"

	// WelcomeHint points new users at the help output.
	WelcomeHint = "Type --help for more information"
)

// Welcome prints the greeting, styled for a terminal and plain
// otherwise.
func Welcome() {
	if !IsInteractive() {
		fmt.Fprintln(out, WelcomeMessage)
		fmt.Fprintln(out, WelcomeHint)
		return
	}
	banner := Styles.Title.Render(string(IconBear)+" "+WelcomeMessage) + "\n" +
		Styles.Muted.Render(WelcomeHint)
	fmt.Fprintln(out, Styles.Box.Render(banner))
}
