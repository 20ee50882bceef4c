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
	"github.com/dreambuilder/dreambuilder/pkg/server/context"
	mw "github.com/dreambuilder/dreambuilder/pkg/server/middleware"
	"github.com/dreambuilder/dreambuilder/pkg/server/presenters"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// NewAreas creates a new Areas controller
func NewAreas(app *app.App) *Areas {
	return &Areas{
		app: app,
	}
}

// Areas is a controller for areas and their tasks
type Areas struct {
	app *app.App
}

// SnapshotQuery is the query for GET /v1/snapshot
type SnapshotQuery struct {
	UserUUID string   `schema:"user_uuid"`
	Areas    []string `schema:"areas"`
}

// SnapshotResponse is the response for GET /v1/snapshot
type SnapshotResponse struct {
	Areas map[string]presenters.Area `json:"areas"`
}

// GetSnapshot handles GET /v1/snapshot
func (a *Areas) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	var q SnapshotQuery
	if err := parseQuery(r, &q); err != nil {
		handleHTTPError(w, err, "parsing query")
		return
	}
	if q.UserUUID != "" && q.UserUUID != user.UUID {
		handleHTTPError(w, errors.Wrap(ErrForbidden, "user_uuid does not match the session"), "checking user")
		return
	}

	keys := splitList(q.Areas)
	for _, k := range keys {
		if err := app.ValidateAreaKey(k); err != nil {
			handleHTTPError(w, err, "validating area keys")
			return
		}
	}

	areas, err := a.app.GetSnapshot(*user, keys)
	if err != nil {
		handleHTTPError(w, err, "getting snapshot")
		return
	}

	respondJSON(w, http.StatusOK, SnapshotResponse{Areas: presenters.PresentSnapshot(areas)})
}

// UpsertAreaResponse is the response for PUT /v1/areas/{areaKey}
type UpsertAreaResponse struct {
	Area presenters.Area `json:"area"`
}

// Upsert handles PUT /v1/areas/{areaKey}
func (a *Areas) Upsert(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	key := mux.Vars(r)["areaKey"]

	var fields app.AreaFields
	if err := parseRequestData(r, &fields); err != nil {
		handleHTTPError(w, err, "parsing payload")
		return
	}

	area, err := a.app.UpsertArea(*user, key, fields)
	if err != nil {
		handleHTTPError(w, err, "upserting area")
		return
	}

	respondJSON(w, http.StatusOK, UpsertAreaResponse{Area: presenters.PresentArea(area)})
}

// ReplaceTasksPayload is the payload for PUT /v1/areas/{areaUUID}/tasks
type ReplaceTasksPayload struct {
	Tasks []app.TaskInput `json:"tasks"`
}

// ReplaceTasksResponse is the response for PUT /v1/areas/{areaUUID}/tasks
type ReplaceTasksResponse struct {
	Count int `json:"count"`
}

// ReplaceTasks handles PUT /v1/areas/{areaUUID}/tasks
func (a *Areas) ReplaceTasks(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	areaUUID := mux.Vars(r)["areaUUID"]

	var p ReplaceTasksPayload
	if err := parseRequestData(r, &p); err != nil {
		handleHTTPError(w, err, "parsing payload")
		return
	}
	if p.Tasks == nil {
		handleHTTPError(w, errors.Wrap(ErrInvalidPayload, "tasks is required"), "parsing payload")
		return
	}

	count, err := a.app.ReplaceTasks(*user, areaUUID, p.Tasks)
	if err != nil {
		handleHTTPError(w, err, "replacing tasks")
		return
	}

	respondJSON(w, http.StatusOK, ReplaceTasksResponse{Count: count})
}
