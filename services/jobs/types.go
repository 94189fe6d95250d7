// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package jobs provides an in-memory background job manager.
//
// Jobs are created in pending state, submitted to a bounded queue, and
// executed by a small worker pool. Every state transition is logged
// through the observability pipeline and published to subscribers, which
// is how the REST websocket streams job progress.
package jobs

import (
	"time"
)

// Type distinguishes how a job is executed.
type Type string

const (
	// TypeAsync jobs run on the worker pool after SubmitJob.
	TypeAsync Type = "async"

	// TypeSync jobs run inline during SubmitJob; the call returns when
	// the job has finished.
	TypeSync Type = "sync"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// terminal reports whether no further transitions are possible.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Job is a unit of background work.
//
// Jobs are value snapshots: methods on Manager return copies, so a
// caller never observes a job mutating under it.
type Job struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      Type           `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Status    Status         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	StartedAt *time.Time     `json:"started_at,omitempty"`
	EndedAt   *time.Time     `json:"ended_at,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// EventType names a job lifecycle transition.
type EventType string

const (
	EventCreated   EventType = "job_created"
	EventQueued    EventType = "job_queued"
	EventStarted   EventType = "job_started"
	EventCompleted EventType = "job_completed"
	EventFailed    EventType = "job_failed"
	EventCancelled EventType = "job_cancelled"
)

// Event is published to subscribers on every transition.
type Event struct {
	Type EventType `json:"type"`
	Job  Job       `json:"job"`
	Time time.Time `json:"time"`
}

// ListOptions filters and pages ListJobs results.
type ListOptions struct {
	// Status restricts results to one lifecycle state when non-empty.
	Status Status

	// Limit caps the number of results; zero means no cap.
	Limit int

	// Offset skips results from the newest end.
	Offset int
}
