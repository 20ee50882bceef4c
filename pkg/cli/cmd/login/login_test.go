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

package login

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
	"github.com/dreambuilder/dreambuilder/pkg/cli/client"
	"github.com/dreambuilder/dreambuilder/pkg/cli/consts"
	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/pkg/errors"
)

func TestGetServerDisplayURL(t *testing.T) {
	testCases := []struct {
		apiEndpoint string
		expected    string
	}{
		{
			apiEndpoint: "https://dream.mydomain.com/api",
			expected:    "https://dream.mydomain.com",
		},
		{
			apiEndpoint: "https://mysubdomain.mydomain.com/dream/api",
			expected:    "https://mysubdomain.mydomain.com",
		},
		{
			apiEndpoint: "http://localhost:3001/api",
			expected:    "http://localhost:3001",
		},
		{
			apiEndpoint: "some-string",
			expected:    "",
		},
		{
			apiEndpoint: "",
			expected:    "",
		},
		{
			apiEndpoint: "https://",
			expected:    "",
		},
		{
			apiEndpoint: "https://abc",
			expected:    "https://abc",
		},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("for input %s", tc.apiEndpoint), func(t *testing.T) {
			got := getServerDisplayURL(context.DreamCtx{APIEndpoint: tc.apiEndpoint})
			assert.Equal(t, got, tc.expected, "result mismatch")
		})
	}
}

func newSigninServer(t *testing.T) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/signin" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var p client.SigninPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Error(errors.Wrap(err, "decoding payload"))
		}

		if p.Email != "alice@example.com" || p.Password != "pass1234" {
			http.Error(w, "Wrong email and password combination", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(client.SigninResponse{
			Key:       "someKey",
			ExpiresAt: 1700000000,
			UserUUID:  "u1",
		})
	}))
	t.Cleanup(ts.Close)

	return ts
}

func TestDo(t *testing.T) {
	// Setup
	ts := newSigninServer(t)
	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = ts.URL

	// Execute
	resp, err := Do(ctx, "alice@example.com", "pass1234")
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	// Test
	assert.Equal(t, resp.Key, "someKey", "key mismatch")

	testCases := []struct {
		key      string
		expected string
	}{
		{key: consts.SystemSessionKey, expected: "someKey"},
		{key: consts.SystemSessionKeyExpiry, expected: "1700000000"},
		{key: consts.SystemUserUUID, expected: "u1"},
	}
	for _, tc := range testCases {
		got, err := database.GetSystemString(ctx.DB, tc.key)
		if err != nil {
			t.Fatal(errors.Wrapf(err, "reading %s", tc.key))
		}
		assert.Equal(t, got, tc.expected, fmt.Sprintf("%s mismatch", tc.key))
	}
}

func TestDo_WrongLogin(t *testing.T) {
	// Setup
	ts := newSigninServer(t)
	ctx := context.InitTestCtx(t)
	ctx.APIEndpoint = ts.URL

	// Execute
	_, err := Do(ctx, "alice@example.com", "nope")

	// Test
	assert.Equal(t, errors.Cause(err), client.ErrInvalidLogin, "error mismatch")

	key, err := database.GetSystemString(ctx.DB, consts.SystemSessionKey)
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading session key"))
	}
	assert.Equal(t, key, "", "session key should not be saved")
}
