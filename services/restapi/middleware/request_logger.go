// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/Kodiak/pkg/logging"
)

// RequestLogger emits one structured record per request through the
// observability pipeline.
//
// Server errors (5xx) log at error level, client errors (4xx) at
// warning, everything else at info. Trace correlation identifiers are
// attached when the request context carries an active span.
func RequestLogger(log *logging.Handle) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := logging.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      status,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields["gin_errors"] = c.Errors.String()
		}

		scoped := log.WithTrace(c.Request.Context())
		switch {
		case status >= 500:
			scoped.Error("request failed", fields)
		case status >= 400:
			scoped.Warning("request rejected", fields)
		default:
			scoped.Info("request handled", fields)
		}
	}
}
