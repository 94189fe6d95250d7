// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package jobs

import "errors"

var (
	// ErrJobNotFound indicates the job id is unknown to the manager.
	ErrJobNotFound = errors.New("job not found")

	// ErrEmptyName indicates a job was created without a name.
	ErrEmptyName = errors.New("job name must not be empty")

	// ErrUnknownType indicates an unrecognized job type.
	ErrUnknownType = errors.New("unknown job type")

	// ErrNoExecutor indicates no executor is registered for the job's
	// name.
	ErrNoExecutor = errors.New("no executor registered")

	// ErrInvalidTransition indicates the requested operation is not
	// valid from the job's current state, e.g. submitting a job twice.
	ErrInvalidTransition = errors.New("invalid job state transition")

	// ErrManagerStopped indicates the manager is no longer accepting
	// work.
	ErrManagerStopped = errors.New("job manager stopped")
)
