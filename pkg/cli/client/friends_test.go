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

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/pkg/errors"
)

func TestFriendsFeed(t *testing.T) {
	// Setup
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, map[string]interface{}{
			"friends": []interface{}{
				map[string]interface{}{
					"friend": map[string]string{"uuid": "bob-uuid", "email": "bob@example.com"},
					"areas": []interface{}{
						map[string]interface{}{
							"key":      "health",
							"uuid":     "area-uuid",
							"name":     "Health",
							"progress": 40,
							"tasks":    []map[string]interface{}{{"id": "t1", "text": "run"}},
						},
						map[string]interface{}{"key": "career", "name": "Career"},
					},
				},
			},
		})
	}))
	defer ts.Close()

	c := New(ts.URL, "1.0.0", "someKey", nil)

	// Execute
	got, err := c.FriendsFeed(context.Background())
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	// Test
	assert.Equal(t, gotPath, "/v1/friends/feed", "path mismatch")
	assert.Equal(t, len(got), 1, "entry count mismatch")
	assert.Equal(t, got[0].Friend.Email, "bob@example.com", "friend mismatch")
	assert.DeepEqual(t, got[0].Areas, []model.Area{
		{ID: "health", Name: "Health", Progress: 40, Tasks: []model.Task{{ID: "t1", Text: "run", Subtasks: []model.Subtask{}}}},
		{ID: "career", Name: "Career", Tasks: []model.Task{}},
	}, "areas mismatch")
}

func TestSendFriendRequest(t *testing.T) {
	// Setup
	var gotMethod, gotPath string
	var gotPayload FriendRequestPayload
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatal(errors.Wrap(err, "decoding payload"))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"friendship": map[string]interface{}{
				"uuid":   "req-uuid",
				"status": "pending",
				"friend": map[string]string{"uuid": "bob-uuid", "email": "bob@example.com"},
			},
		})
	}))
	defer ts.Close()

	c := New(ts.URL, "1.0.0", "someKey", nil)

	// Execute
	got, err := c.SendFriendRequest(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	// Test
	assert.Equal(t, gotMethod, "POST", "method mismatch")
	assert.Equal(t, gotPath, "/v1/friends/requests", "path mismatch")
	assert.Equal(t, gotPayload.Email, "bob@example.com", "payload mismatch")
	assert.Equal(t, got, RespFriendship{UUID: "req-uuid", Status: "pending", Friend: RespUser{UUID: "bob-uuid", Email: "bob@example.com"}}, "friendship mismatch")
}

func TestFriendsNoContent(t *testing.T) {
	testCases := []struct {
		name           string
		call           func(c *Client) error
		expectedMethod string
		expectedPath   string
	}{
		{
			name:           "decline",
			call:           func(c *Client) error { return c.DeclineFriendRequest(context.Background(), "req-uuid") },
			expectedMethod: "POST",
			expectedPath:   "/v1/friends/requests/req-uuid/decline",
		},
		{
			name:           "remove",
			call:           func(c *Client) error { return c.RemoveFriend(context.Background(), "bob-uuid") },
			expectedMethod: "DELETE",
			expectedPath:   "/v1/friends/bob-uuid",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			var gotMethod, gotPath string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod = r.Method
				gotPath = r.URL.Path
				w.WriteHeader(http.StatusNoContent)
			}))
			defer ts.Close()

			c := New(ts.URL, "1.0.0", "someKey", nil)

			// Execute
			if err := tc.call(c); err != nil {
				t.Fatal(errors.Wrap(err, "executing"))
			}

			// Test
			assert.Equal(t, gotMethod, tc.expectedMethod, "method mismatch")
			assert.Equal(t, gotPath, tc.expectedPath, "path mismatch")
		})
	}
}

func TestFriendsErrorResponse(t *testing.T) {
	// Setup
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"friend request already sent"}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "1.0.0", "someKey", nil)

	// Execute
	_, err := c.SendFriendRequest(context.Background(), "bob@example.com")

	// Test
	var httpErr *HTTPError
	assert.Equal(t, errors.As(err, &httpErr), true, "expected an HTTPError")
	assert.Equal(t, httpErr.StatusCode, http.StatusConflict, "status code mismatch")
}

func TestSearchUsers(t *testing.T) {
	// Setup
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		writeJSON(w, map[string]interface{}{
			"users": []map[string]string{{"uuid": "bob-uuid", "email": "bob@example.com"}},
		})
	}))
	defer ts.Close()

	c := New(ts.URL, "1.0.0", "someKey", nil)

	// Execute
	got, err := c.SearchUsers(context.Background(), "bob & co")
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	// Test
	assert.Equal(t, gotQuery, "bob & co", "query mismatch")
	assert.DeepEqual(t, got, []RespUser{{UUID: "bob-uuid", Email: "bob@example.com"}}, "users mismatch")
}
