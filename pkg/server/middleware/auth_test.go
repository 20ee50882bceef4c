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

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/dreambuilder/dreambuilder/pkg/server/context"
	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	"github.com/dreambuilder/dreambuilder/pkg/server/testutils"
)

func TestAuth(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@test.com", "pass1234")

	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	c := clock.NewMock()
	c.SetNow(now)

	session := database.Session{
		Key:       "A9xgggqzTHETy--GDi1NpDNe0iyqosPm9bitdeNGkJU=",
		UserID:    user.ID,
		ExpiresAt: now.Add(time.Hour * 24),
	}
	testutils.MustExec(t, db.Save(&session), "preparing session")
	expiredSession := database.Session{
		Key:       "Vvgm3eBXfXGEFWERI7faiRJ3DAzJw-7DdT9J1LEyNfI=",
		UserID:    user.ID,
		ExpiresAt: now.Add(-time.Hour * 24),
	}
	testutils.MustExec(t, db.Save(&expiredSession), "preparing expired session")

	handler := func(w http.ResponseWriter, r *http.Request) {
		u := context.User(r.Context())
		s := context.Session(r.Context())
		if u == nil || u.ID != user.ID || s == nil || s.Key != session.Key {
			w.WriteHeader(http.StatusTeapot)
			return
		}

		w.WriteHeader(http.StatusOK)
	}

	server := httptest.NewServer(Auth(db, c, handler))
	defer server.Close()

	testCases := []struct {
		name       string
		authHeader string
		expected   int
	}{
		{"valid session", "Bearer " + session.Key, http.StatusOK},
		{"expired session", "Bearer " + expiredSession.Key, http.StatusUnauthorized},
		{"unknown session", "Bearer someInvalidSessionKey=", http.StatusUnauthorized},
		{"malformed header", "InvalidFormat", http.StatusUnauthorized},
		{"no auth", "", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutils.MakeReq(server.URL, "GET", "/", "")
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			res := testutils.HTTPDo(t, req)
			defer res.Body.Close()

			assert.StatusCodeEquals(t, res, tc.expected, "status code mismatch")
			if tc.expected == http.StatusUnauthorized {
				assert.Equal(t, res.Header.Get("WWW-Authenticate"), `Bearer realm="dream"`, "challenge mismatch")
			}
		})
	}

	t.Run("session of a removed user", func(t *testing.T) {
		ghost := database.Session{Key: "ghost", UserID: 9999, ExpiresAt: now.Add(time.Hour)}
		testutils.MustExec(t, db.Save(&ghost), "preparing session")

		req := testutils.MakeReq(server.URL, "GET", "/", "")
		req.Header.Set("Authorization", "Bearer ghost")
		res := testutils.HTTPDo(t, req)
		defer res.Body.Close()

		assert.StatusCodeEquals(t, res, http.StatusUnauthorized, "status code mismatch")
	})
}
