// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"github.com/AleutianAI/Kodiak/pkg/logging"
	"github.com/AleutianAI/Kodiak/pkg/settings"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads settings and brings up the logging pipeline. A
// configuration error here is fatal: the process refuses to start.
func setup() error {
	if err := settings.Load(); err != nil {
		return err
	}
	cfg, err := settings.Global.ToExportConfig()
	if err != nil {
		return err
	}
	if _, err := logging.Init(cfg); err != nil {
		return err
	}
	return nil
}

func teardown() {
	if err := logging.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "kodiak: logging shutdown: %v\n", err)
	}
}
