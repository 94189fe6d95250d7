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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/Kodiak/pkg/logging"
	"github.com/AleutianAI/Kodiak/pkg/settings"
	"github.com/AleutianAI/Kodiak/pkg/ux"
	"github.com/AleutianAI/Kodiak/services/jobs"
	"github.com/AleutianAI/Kodiak/services/restapi"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var serveAddr string

var (
	rootCmd = &cobra.Command{
		Use:   "kodiak",
		Short: "A CLI and REST front-end over the Kodiak observability pipeline",
		Long: `Kodiak is an application scaffold with dual front-ends (CLI and REST)
built on a structured logging pipeline that exports to a local file,
an OpenTelemetry collector, or both.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
		// A bare invocation runs whichever front-end the settings
		// select.
		RunE: func(cmd *cobra.Command, args []string) error {
			if settings.Global.Interface.Type == settings.InterfaceRESTAPI {
				return runServe(cmd, args)
			}
			return runWelcome(cmd, args)
		},
	}

	welcomeCmd = &cobra.Command{
		Use:   "welcome",
		Short: "Print the welcome message",
		RunE:  runWelcome,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		Long: `Starts the HTTP front-end with the health, welcome, and background
jobs endpoints. The server drains in-flight requests on SIGINT/SIGTERM
and flushes the logging pipeline before exit.`,
		RunE: runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the Kodiak version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kodiak %s\n", Version)
		},
		// Version must work even with a broken config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		PersistentPostRun: func(cmd *cobra.Command, args []string) {},
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address, e.g. :8000 (default from KODIAK_ADDR or :8000)")
	rootCmd.AddCommand(welcomeCmd, serveCmd, versionCmd)
}

func runWelcome(cmd *cobra.Command, args []string) error {
	log := logging.GetLogger("cli")
	log.Debug("welcome command invoked", nil)
	ux.Welcome()
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := serveAddr
	if addr == "" {
		addr = os.Getenv("KODIAK_ADDR")
	}
	if addr == "" {
		addr = ":8000"
	}

	log := logging.GetLogger("restapi")
	server := restapi.NewServer(addr, log)
	registerExecutors(server.Manager())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ux.Info(fmt.Sprintf("Kodiak REST API listening on %s", addr))
	if err := server.Run(ctx); err != nil {
		ux.Error(err.Error())
		return err
	}
	ux.Success("server stopped cleanly")
	return nil
}

// registerExecutors installs the built-in job executors.
func registerExecutors(m *jobs.Manager) {
	// echo returns its payload untouched; useful for smoke tests.
	m.RegisterExecutor("echo", func(_ context.Context, j jobs.Job) (map[string]any, error) {
		return j.Payload, nil
	})

	// sleep waits payload["duration_ms"] milliseconds, honoring
	// cancellation.
	m.RegisterExecutor("sleep", func(ctx context.Context, j jobs.Job) (map[string]any, error) {
		ms, _ := j.Payload["duration_ms"].(float64)
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
			return map[string]any{"slept_ms": ms}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}
