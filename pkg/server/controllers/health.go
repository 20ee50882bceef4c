/* Copyright 2025 Dreambuilder Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package controllers

import (
	"net/http"

	"github.com/dreambuilder/dreambuilder/pkg/server/app"
	mw "github.com/dreambuilder/dreambuilder/pkg/server/middleware"
)

// NewHealth creates a new Health controller
func NewHealth(app *app.App) *Health {
	return &Health{app: app}
}

// Health is a health controller.
type Health struct {
	app *app.App
}

// HealthResponse is the response for GET /v1/health
type HealthResponse struct {
	Status string `json:"status"`
}

// Index handles GET /v1/health. It reports unavailable if the database
// cannot be reached.
func (h *Health) Index(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.app.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		mw.DoError(w, "pinging database", err, http.StatusServiceUnavailable)
		return
	}

	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
