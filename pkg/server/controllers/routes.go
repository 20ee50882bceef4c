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
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// Route represents a single route
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// RouteConfig is the configuration for routes
type RouteConfig struct {
	Controllers *Controllers
	APIRoutes   []Route
	// RateLimiter limits requests per IP. Nil turns off rate limiting.
	RateLimiter *mw.RateLimiter
}

// NewAPIRoutes returns the routes served under /api
func NewAPIRoutes(a *app.App, c *Controllers) []Route {
	auth := func(h http.HandlerFunc) http.HandlerFunc {
		return mw.Auth(a.DB, a.Clock, h)
	}

	return []Route{
		{"POST", "/v1/signin", c.Users.Signin},
		{"POST", "/v1/signout", c.Users.Signout},
		{"POST", "/v1/register", c.Users.Register},
		{"GET", "/v1/me", auth(c.Users.Me)},
		{"GET", "/v1/snapshot", auth(c.Areas.GetSnapshot)},
		{"PUT", "/v1/areas/{areaKey}", auth(c.Areas.Upsert)},
		{"PUT", "/v1/areas/{areaUUID}/tasks", auth(c.Areas.ReplaceTasks)},
		{"GET", "/v1/friends", auth(c.Friends.List)},
		{"GET", "/v1/friends/feed", auth(c.Friends.Feed)},
		{"GET", "/v1/friends/requests", auth(c.Friends.ListRequests)},
		{"POST", "/v1/friends/requests", auth(c.Friends.CreateRequest)},
		{"POST", "/v1/friends/requests/{requestUUID}/accept", auth(c.Friends.AcceptRequest)},
		{"POST", "/v1/friends/requests/{requestUUID}/decline", auth(c.Friends.DeclineRequest)},
		{"DELETE", "/v1/friends/{userUUID}", auth(c.Friends.Remove)},
		{"GET", "/v1/users/search", auth(c.Friends.SearchUsers)},
		{"GET", "/v1/health", c.Health.Index},
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	mw.RespondNotFound(w)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	mw.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// NewRouter creates and returns a new router
func NewRouter(app *app.App, rc RouteConfig) (http.Handler, error) {
	if err := app.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating the app parameters")
	}

	router := mux.NewRouter().StrictSlash(true)
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.NotFoundHandler = http.HandlerFunc(notFound)
	apiRouter.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	for _, route := range rc.APIRoutes {
		apiRouter.
			Handle(route.Pattern, route.Handler).
			Methods(route.Method)
	}

	return mw.Global(router, rc.RateLimiter), nil
}
