// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package restapi runs the HTTP front-end: health, welcome, and the
// background jobs API with a websocket event stream.
package restapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/Kodiak/pkg/logging"
	"github.com/AleutianAI/Kodiak/services/jobs"
	"github.com/AleutianAI/Kodiak/services/restapi/routes"
)

const shutdownGrace = 10 * time.Second

// Server owns the gin engine, the job manager, and the HTTP listener.
type Server struct {
	log     *logging.Handle
	manager *jobs.Manager
	httpSrv *http.Server
}

// NewServer builds the server on the given address, e.g. ":8000".
//
// The job manager is created here but not started; Run starts and
// stops it around the listener's lifetime.
func NewServer(addr string, log *logging.Handle) *Server {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	manager := jobs.NewManager(log.Bind(logging.Fields{"subsystem": "jobs"}), jobs.DefaultManagerConfig())

	router := gin.New()
	router.Use(gin.Recovery())
	routes.SetupRoutes(router, manager, log)

	return &Server{
		log:     log,
		manager: manager,
		httpSrv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Manager exposes the job manager for executor registration.
func (s *Server) Manager() *jobs.Manager { return s.manager }

// Run serves until ctx is cancelled, then drains in-flight requests
// and stops the job manager.
func (s *Server) Run(ctx context.Context) error {
	s.manager.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()
	s.log.Info("rest api listening", logging.Fields{"addr": s.httpSrv.Addr})

	select {
	case err := <-errCh:
		s.manager.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("rest api serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("rest api shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	err := s.httpSrv.Shutdown(shutdownCtx)
	s.manager.Stop()
	if err != nil {
		return fmt.Errorf("rest api shutdown: %w", err)
	}
	return nil
}
