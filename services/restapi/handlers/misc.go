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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/Kodiak/pkg/ux"
	"github.com/AleutianAI/Kodiak/services/restapi/datatypes"
)

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, datatypes.HealthResponse{
		Status:    "healthy",
		Service:   "kodiak",
		Timestamp: time.Now().UTC(),
	})
}

// Welcome returns the landing payload.
func Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, datatypes.WelcomeResponse{
		Message:   ux.WelcomeMessage,
		Hint:      ux.WelcomeHint,
		Interface: "restapi",
	})
}
