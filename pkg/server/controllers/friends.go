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
	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	mw "github.com/dreambuilder/dreambuilder/pkg/server/middleware"
	"github.com/dreambuilder/dreambuilder/pkg/server/presenters"
	"github.com/gorilla/mux"
)

// NewFriends creates a new Friends controller
func NewFriends(app *app.App) *Friends {
	return &Friends{
		app: app,
	}
}

// Friends is a controller for friendships and the friends feed
type Friends struct {
	app *app.App
}

// ListFriendsResponse is the response for GET /v1/friends
type ListFriendsResponse struct {
	Friends []presenters.User `json:"friends"`
}

// List handles GET /v1/friends
func (f *Friends) List(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	friends, err := f.app.Friends(*user)
	if err != nil {
		handleHTTPError(w, err, "listing friends")
		return
	}

	respondJSON(w, http.StatusOK, ListFriendsResponse{Friends: presenters.PresentUsers(friends)})
}

// Remove handles DELETE /v1/friends/{userUUID}
func (f *Friends) Remove(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	if err := f.app.RemoveFriend(*user, mux.Vars(r)["userUUID"]); err != nil {
		handleHTTPError(w, err, "removing friend")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRequestsResponse is the response for GET /v1/friends/requests
type ListRequestsResponse struct {
	Requests []presenters.FriendRequest `json:"requests"`
}

// ListRequests handles GET /v1/friends/requests
func (f *Friends) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	reqs, err := f.app.PendingFriendRequests(*user)
	if err != nil {
		handleHTTPError(w, err, "listing requests")
		return
	}

	ret := make([]presenters.FriendRequest, 0, len(reqs))
	for _, req := range reqs {
		ret = append(ret, presenters.PresentFriendRequest(req.Friendship, req.From))
	}

	respondJSON(w, http.StatusOK, ListRequestsResponse{Requests: ret})
}

// CreateRequestPayload is the payload for POST /v1/friends/requests
type CreateRequestPayload struct {
	Email string `json:"email"`
}

// FriendshipResponse is the response for the endpoints creating or accepting
// a friendship
type FriendshipResponse struct {
	Friendship presenters.Friendship `json:"friendship"`
}

// CreateRequest handles POST /v1/friends/requests. It responds with 201 for
// a new request, and with 200 when it accepted a request from the other user.
func (f *Friends) CreateRequest(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	var p CreateRequestPayload
	if err := parseRequestData(r, &p); err != nil {
		handleHTTPError(w, err, "parsing payload")
		return
	}

	friendship, err := f.app.RequestFriend(*user, p.Email)
	if err != nil {
		handleHTTPError(w, err, "requesting friendship")
		return
	}

	friend, err := f.app.GetUserByEmail(p.Email)
	if err != nil {
		handleHTTPError(w, err, "finding friend")
		return
	}

	statusCode := http.StatusCreated
	if friendship.Status == database.FriendshipAccepted {
		statusCode = http.StatusOK
	}

	respondJSON(w, statusCode, FriendshipResponse{Friendship: presenters.PresentFriendship(friendship, *friend)})
}

// AcceptRequest handles POST /v1/friends/requests/{requestUUID}/accept
func (f *Friends) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	friendship, err := f.app.AcceptFriendRequest(*user, mux.Vars(r)["requestUUID"])
	if err != nil {
		handleHTTPError(w, err, "accepting request")
		return
	}

	friend, err := f.app.GetUserByID(friendship.FriendID)
	if err != nil {
		handleHTTPError(w, err, "finding friend")
		return
	}

	respondJSON(w, http.StatusOK, FriendshipResponse{Friendship: presenters.PresentFriendship(friendship, *friend)})
}

// DeclineRequest handles POST /v1/friends/requests/{requestUUID}/decline
func (f *Friends) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	if err := f.app.DeclineFriendRequest(*user, mux.Vars(r)["requestUUID"]); err != nil {
		handleHTTPError(w, err, "declining request")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// FeedResponse is the response for GET /v1/friends/feed
type FeedResponse struct {
	Friends []presenters.FeedEntry `json:"friends"`
}

// Feed handles GET /v1/friends/feed
func (f *Friends) Feed(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	entries, err := f.app.FriendsFeed(*user)
	if err != nil {
		handleHTTPError(w, err, "getting feed")
		return
	}

	ret := make([]presenters.FeedEntry, 0, len(entries))
	for _, e := range entries {
		ret = append(ret, presenters.PresentFeedEntry(e.Friend, e.Areas))
	}

	respondJSON(w, http.StatusOK, FeedResponse{Friends: ret})
}

// SearchQuery is the query for GET /v1/users/search
type SearchQuery struct {
	Query string `schema:"q"`
}

// SearchUsersResponse is the response for GET /v1/users/search
type SearchUsersResponse struct {
	Users []presenters.User `json:"users"`
}

// SearchUsers handles GET /v1/users/search
func (f *Friends) SearchUsers(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	var q SearchQuery
	if err := parseQuery(r, &q); err != nil {
		handleHTTPError(w, err, "parsing query")
		return
	}

	users, err := f.app.SearchUsers(*user, q.Query)
	if err != nil {
		handleHTTPError(w, err, "searching users")
		return
	}

	respondJSON(w, http.StatusOK, SearchUsersResponse{Users: presenters.PresentUsers(users)})
}
