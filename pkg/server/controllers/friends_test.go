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
	"fmt"
	"net/http"
	"testing"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	"github.com/dreambuilder/dreambuilder/pkg/server/testutils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func friendshipCount(t *testing.T, db *gorm.DB, userID, friendID int, status string) int64 {
	var count int64
	if err := db.Model(&database.Friendship{}).Where("user_id = ? AND friend_id = ? AND status = ?", userID, friendID, status).Count(&count).Error; err != nil {
		t.Fatal(errors.Wrap(err, "counting friendships"))
	}

	return count
}

func TestFriends_unauthenticated(t *testing.T) {
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/friends"},
		{"GET", "/api/v1/friends/feed"},
		{"GET", "/api/v1/friends/requests"},
		{"POST", "/api/v1/friends/requests"},
		{"POST", "/api/v1/friends/requests/some-uuid/accept"},
		{"POST", "/api/v1/friends/requests/some-uuid/decline"},
		{"DELETE", "/api/v1/friends/some-uuid"},
		{"GET", "/api/v1/users/search?q=bob"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			// Setup
			a := newTestApp(t)
			server := MustNewServer(t, a)

			// Execute
			req := testutils.MakeReq(server.URL, tc.method, tc.path, "")
			res := testutils.HTTPDo(t, req)
			defer res.Body.Close()

			// Test
			assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "status code mismatch")
		})
	}
}

func TestCreateFriendRequest(t *testing.T) {
	testCases := []struct {
		name               string
		email              func(alice, bob database.User) string
		setup              func(db *gorm.DB, alice, bob database.User)
		expectedStatusCode int
		expectedStatus     string
	}{
		{
			name:               "new request",
			email:              func(alice, bob database.User) string { return bob.Email },
			expectedStatusCode: http.StatusCreated,
			expectedStatus:     database.FriendshipPending,
		},
		{
			name:  "accepts an incoming request",
			email: func(alice, bob database.User) string { return bob.Email },
			setup: func(db *gorm.DB, alice, bob database.User) {
				testutils.SetupFriendship(db, bob, alice, database.FriendshipPending)
			},
			expectedStatusCode: http.StatusOK,
			expectedStatus:     database.FriendshipAccepted,
		},
		{
			name:  "duplicate request",
			email: func(alice, bob database.User) string { return bob.Email },
			setup: func(db *gorm.DB, alice, bob database.User) {
				testutils.SetupFriendship(db, alice, bob, database.FriendshipPending)
			},
			expectedStatusCode: http.StatusConflict,
		},
		{
			name:  "already friends",
			email: func(alice, bob database.User) string { return bob.Email },
			setup: func(db *gorm.DB, alice, bob database.User) {
				testutils.SetupFriendship(db, alice, bob, database.FriendshipAccepted)
			},
			expectedStatusCode: http.StatusConflict,
		},
		{
			name:               "self",
			email:              func(alice, bob database.User) string { return alice.Email },
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "unknown user",
			email:              func(alice, bob database.User) string { return "nobody@example.com" },
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:               "missing email",
			email:              func(alice, bob database.User) string { return "" },
			expectedStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			a := newTestApp(t)
			server := MustNewServer(t, a)
			alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
			bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
			if tc.setup != nil {
				tc.setup(a.DB, alice, bob)
			}

			// Execute
			body := testutils.MustMarshalJSON(t, CreateRequestPayload{Email: tc.email(alice, bob)})
			req := testutils.MakeReq(server.URL, "POST", "/api/v1/friends/requests", body)
			res := testutils.HTTPAuthDo(t, a.DB, req, alice)

			// Test
			assert.StatusCodeEquals(t, res, tc.expectedStatusCode, "status code mismatch")
			if tc.expectedStatus == "" {
				res.Body.Close()
				return
			}

			var got FriendshipResponse
			testutils.MustDecodeJSON(t, res, &got)
			assert.Equal(t, got.Friendship.Status, tc.expectedStatus, "status mismatch")
			assert.Equal(t, got.Friendship.Friend.UUID, bob.UUID, "friend mismatch")
			assert.Equal(t, friendshipCount(t, a.DB, alice.ID, bob.ID, tc.expectedStatus), int64(1), "friendship count mismatch")
		})
	}
}

func TestListFriendRequests(t *testing.T) {
	// Setup
	a := newTestApp(t)
	server := MustNewServer(t, a)
	alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
	carol := testutils.SetupUserData(a.DB, "carol@example.com", "pass1234")
	fromBob := testutils.SetupFriendship(a.DB, bob, alice, database.FriendshipPending)
	testutils.SetupFriendship(a.DB, alice, carol, database.FriendshipPending)

	// Execute
	req := testutils.MakeReq(server.URL, "GET", "/api/v1/friends/requests", "")
	res := testutils.HTTPAuthDo(t, a.DB, req, alice)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")

	var got ListRequestsResponse
	testutils.MustDecodeJSON(t, res, &got)
	assert.Equal(t, len(got.Requests), 1, "request count mismatch")
	assert.Equal(t, got.Requests[0].UUID, fromBob.UUID, "request uuid mismatch")
	assert.Equal(t, got.Requests[0].From.Email, bob.Email, "sender mismatch")
}

func TestAnswerFriendRequest(t *testing.T) {
	testCases := []struct {
		action             string
		expectedStatusCode int
		expectedStatus     string
	}{
		{"accept", http.StatusOK, database.FriendshipAccepted},
		{"decline", http.StatusNoContent, database.FriendshipDeclined},
	}

	for _, tc := range testCases {
		t.Run(tc.action, func(t *testing.T) {
			// Setup
			a := newTestApp(t)
			server := MustNewServer(t, a)
			alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
			bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
			fromBob := testutils.SetupFriendship(a.DB, bob, alice, database.FriendshipPending)

			// Execute
			path := fmt.Sprintf("/api/v1/friends/requests/%s/%s", fromBob.UUID, tc.action)
			req := testutils.MakeReq(server.URL, "POST", path, "")
			res := testutils.HTTPAuthDo(t, a.DB, req, alice)
			defer res.Body.Close()

			// Test
			assert.StatusCodeEquals(t, res, tc.expectedStatusCode, "status code mismatch")
			assert.Equal(t, friendshipCount(t, a.DB, bob.ID, alice.ID, tc.expectedStatus), int64(1), "request status mismatch")
		})
	}
}

func TestAnswerFriendRequest_notRecipient(t *testing.T) {
	testCases := []string{"accept", "decline"}

	for _, action := range testCases {
		t.Run(action, func(t *testing.T) {
			// Setup
			a := newTestApp(t)
			server := MustNewServer(t, a)
			alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
			bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
			toBob := testutils.SetupFriendship(a.DB, alice, bob, database.FriendshipPending)

			// Execute
			path := fmt.Sprintf("/api/v1/friends/requests/%s/%s", toBob.UUID, action)
			req := testutils.MakeReq(server.URL, "POST", path, "")
			res := testutils.HTTPAuthDo(t, a.DB, req, alice)
			defer res.Body.Close()

			// Test
			assert.StatusCodeEquals(t, res, http.StatusNotFound, "status code mismatch")
			assert.Equal(t, friendshipCount(t, a.DB, alice.ID, bob.ID, database.FriendshipPending), int64(1), "request should be untouched")
		})
	}
}

func TestListFriends(t *testing.T) {
	// Setup
	a := newTestApp(t)
	server := MustNewServer(t, a)
	alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
	carol := testutils.SetupUserData(a.DB, "carol@example.com", "pass1234")
	dave := testutils.SetupUserData(a.DB, "dave@example.com", "pass1234")
	testutils.SetupFriendship(a.DB, alice, carol, database.FriendshipAccepted)
	testutils.SetupFriendship(a.DB, bob, alice, database.FriendshipAccepted)
	testutils.SetupFriendship(a.DB, alice, dave, database.FriendshipPending)

	// Execute
	req := testutils.MakeReq(server.URL, "GET", "/api/v1/friends", "")
	res := testutils.HTTPAuthDo(t, a.DB, req, alice)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")

	var got ListFriendsResponse
	testutils.MustDecodeJSON(t, res, &got)
	assert.Equal(t, len(got.Friends), 2, "friend count mismatch")
	assert.Equal(t, got.Friends[0].Email, bob.Email, "first friend mismatch")
	assert.Equal(t, got.Friends[1].Email, carol.Email, "second friend mismatch")
}

func TestRemoveFriend(t *testing.T) {
	t.Run("friend", func(t *testing.T) {
		// Setup
		a := newTestApp(t)
		server := MustNewServer(t, a)
		alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
		bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
		testutils.SetupFriendship(a.DB, alice, bob, database.FriendshipAccepted)

		// Execute
		req := testutils.MakeReq(server.URL, "DELETE", fmt.Sprintf("/api/v1/friends/%s", bob.UUID), "")
		res := testutils.HTTPAuthDo(t, a.DB, req, alice)
		defer res.Body.Close()

		// Test
		assert.StatusCodeEquals(t, res, http.StatusNoContent, "status code mismatch")
		assert.Equal(t, friendshipCount(t, a.DB, alice.ID, bob.ID, database.FriendshipAccepted), int64(0), "forward link should be removed")
		assert.Equal(t, friendshipCount(t, a.DB, bob.ID, alice.ID, database.FriendshipAccepted), int64(0), "reverse link should be removed")
	})

	t.Run("not a friend", func(t *testing.T) {
		// Setup
		a := newTestApp(t)
		server := MustNewServer(t, a)
		alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
		bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")

		// Execute
		req := testutils.MakeReq(server.URL, "DELETE", fmt.Sprintf("/api/v1/friends/%s", bob.UUID), "")
		res := testutils.HTTPAuthDo(t, a.DB, req, alice)
		defer res.Body.Close()

		// Test
		assert.StatusCodeEquals(t, res, http.StatusNotFound, "status code mismatch")
	})
}

func TestFriendsFeed(t *testing.T) {
	// Setup
	a := newTestApp(t)
	server := MustNewServer(t, a)
	alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
	carol := testutils.SetupUserData(a.DB, "carol@example.com", "pass1234")
	testutils.SetupFriendship(a.DB, alice, bob, database.FriendshipAccepted)
	testutils.SetupFriendship(a.DB, carol, alice, database.FriendshipPending)

	bobHealth := testutils.SetupArea(a.DB, bob, "health", database.Task{UUID: "t1", Content: "run"})
	testutils.SetupArea(a.DB, carol, "career")
	testutils.MustExec(t, a.DB.Model(&bobHealth).Update("progress", 40), "setting progress")

	// Execute
	req := testutils.MakeReq(server.URL, "GET", "/api/v1/friends/feed", "")
	res := testutils.HTTPAuthDo(t, a.DB, req, alice)

	// Test
	assert.StatusCodeEquals(t, res, http.StatusOK, "status code mismatch")

	var got FeedResponse
	testutils.MustDecodeJSON(t, res, &got)
	assert.Equal(t, len(got.Friends), 1, "friend count mismatch")
	assert.Equal(t, got.Friends[0].Friend.UUID, bob.UUID, "friend mismatch")
	assert.Equal(t, len(got.Friends[0].Areas), 1, "area count mismatch")

	area := got.Friends[0].Areas[0]
	assert.Equal(t, area.Key, "health", "area key mismatch")
	assert.Equal(t, area.UUID, bobHealth.UUID, "area uuid mismatch")
	assert.Equal(t, area.Progress, 40, "progress mismatch")
	assert.Equal(t, len(area.Tasks), 1, "task count mismatch")
}

func TestSearchUsers(t *testing.T) {
	testCases := []struct {
		query              string
		expectedStatusCode int
		expectedEmails     []string
	}{
		{"bo", http.StatusOK, []string{"bob@example.com", "bobby@example.com"}},
		{"alice", http.StatusOK, []string{}},
		{"", http.StatusBadRequest, nil},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("query %q", tc.query), func(t *testing.T) {
			// Setup
			a := newTestApp(t)
			server := MustNewServer(t, a)
			alice := testutils.SetupUserData(a.DB, "alice@example.com", "pass1234")
			testutils.SetupUserData(a.DB, "bob@example.com", "pass1234")
			testutils.SetupUserData(a.DB, "bobby@example.com", "pass1234")

			// Execute
			req := testutils.MakeReq(server.URL, "GET", "/api/v1/users/search?q="+tc.query, "")
			res := testutils.HTTPAuthDo(t, a.DB, req, alice)

			// Test
			assert.StatusCodeEquals(t, res, tc.expectedStatusCode, "status code mismatch")
			if tc.expectedEmails == nil {
				res.Body.Close()
				return
			}

			var got SearchUsersResponse
			testutils.MustDecodeJSON(t, res, &got)
			emails := []string{}
			for _, u := range got.Users {
				emails = append(emails, u.Email)
			}
			assert.DeepEqual(t, emails, tc.expectedEmails, "emails mismatch")
		})
	}
}
