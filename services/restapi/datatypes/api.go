// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes holds the REST API request and response shapes.
package datatypes

import (
	"time"

	"github.com/AleutianAI/Kodiak/services/jobs"
)

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// WelcomeResponse is the landing payload of the API.
type WelcomeResponse struct {
	Message   string `json:"message"`
	Hint      string `json:"hint"`
	Interface string `json:"interface"`
}

// CreateJobRequest creates a new job in pending state.
type CreateJobRequest struct {
	Name    string         `json:"name" binding:"required"`
	Type    jobs.Type      `json:"type" binding:"required"`
	Payload map[string]any `json:"payload"`
}

// JobResponse is one job snapshot.
type JobResponse struct {
	Job jobs.Job `json:"job"`
}

// JobListResponse pages job snapshots, newest first.
type JobListResponse struct {
	Jobs  []jobs.Job `json:"jobs"`
	Count int        `json:"count"`
}

// ErrorResponse carries a client-facing error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
