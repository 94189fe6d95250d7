// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/Kodiak/pkg/logging"
	"github.com/AleutianAI/Kodiak/services/jobs"
	"github.com/AleutianAI/Kodiak/services/restapi/handlers"
	"github.com/AleutianAI/Kodiak/services/restapi/middleware"
)

// SetupRoutes wires every endpoint onto the router.
func SetupRoutes(router *gin.Engine, manager *jobs.Manager, log *logging.Handle) {
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", handlers.HealthCheck)

	// API version 1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/welcome", handlers.Welcome)

		jobsGroup := v1.Group("/jobs")
		{
			jobsGroup.POST("", handlers.CreateJob(manager))
			jobsGroup.GET("", handlers.ListJobs(manager))
			jobsGroup.GET("/ws", handlers.JobEvents(manager, log))
			jobsGroup.GET("/:id", handlers.GetJob(manager))
			jobsGroup.POST("/:id/submit", handlers.SubmitJob(manager))
			jobsGroup.DELETE("/:id", handlers.CancelJob(manager))
		}
	}
}
