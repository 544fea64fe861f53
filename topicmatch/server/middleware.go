// Copyright 2010-2025 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/golang/glog"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// requestID tags every request with the caller's X-Request-Id or a new UUID and
// echoes it in the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger logs one line per request, at a level that follows the status.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		id := c.GetString(requestIDKey)
		elapsed := time.Since(start)
		switch {
		case status >= 500:
			log.Errorf("request %s: %s %s -> %d in %v", id, c.Request.Method, path, status, elapsed)
		case status >= 400:
			log.Warningf("request %s: %s %s -> %d in %v", id, c.Request.Method, path, status, elapsed)
		default:
			log.V(1).Infof("request %s: %s %s -> %d in %v", id, c.Request.Method, path, status, elapsed)
		}
	}
}
