// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/Kodiak/services/jobs"
	"github.com/AleutianAI/Kodiak/services/restapi/datatypes"
)

// CreateJob registers a new pending job.
func CreateJob(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateJobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "Invalid request body"})
			return
		}

		job, err := manager.CreateJob(req.Name, req.Type, req.Payload)
		if err != nil {
			c.JSON(jobErrorStatus(err), datatypes.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusCreated, datatypes.JobResponse{Job: job})
	}
}

// ListJobs returns job snapshots, optionally filtered by status.
func ListJobs(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := jobs.ListOptions{
			Status: jobs.Status(c.Query("status")),
			Limit:  intQuery(c, "limit"),
			Offset: intQuery(c, "offset"),
		}
		list := manager.ListJobs(opts)
		c.JSON(http.StatusOK, datatypes.JobListResponse{Jobs: list, Count: len(list)})
	}
}

// GetJob returns one job snapshot by id.
func GetJob(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := manager.GetJob(c.Param("id"))
		if err != nil {
			c.JSON(jobErrorStatus(err), datatypes.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, datatypes.JobResponse{Job: job})
	}
}

// SubmitJob queues a pending job for execution.
func SubmitJob(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := manager.SubmitJob(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(jobErrorStatus(err), datatypes.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, datatypes.JobResponse{Job: job})
	}
}

// CancelJob cancels a job that has not finished.
func CancelJob(manager *jobs.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		job, err := manager.CancelJob(c.Param("id"))
		if err != nil {
			c.JSON(jobErrorStatus(err), datatypes.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, datatypes.JobResponse{Job: job})
	}
}

// jobErrorStatus maps manager errors onto HTTP status codes.
func jobErrorStatus(err error) int {
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, jobs.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, jobs.ErrManagerStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func intQuery(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
