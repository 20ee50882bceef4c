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
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/server/app"
	mw "github.com/dreambuilder/dreambuilder/pkg/server/middleware"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidPayload is an error for a request body or query that cannot be decoded
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrForbidden is an error for a request acting on behalf of another user
	ErrForbidden = errors.New("forbidden")
)

var queryDecoder = newQueryDecoder()

func newQueryDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)

	return d
}

// parseRequestData decodes the JSON body of the request into dest
func parseRequestData(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return errors.Wrap(ErrInvalidPayload, "empty body")
	}

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return errors.Wrap(ErrInvalidPayload, err.Error())
	}

	return nil
}

// parseQuery decodes the query string of the request into dest
func parseQuery(r *http.Request, dest interface{}) error {
	if err := queryDecoder.Decode(dest, r.URL.Query()); err != nil {
		return errors.Wrap(ErrInvalidPayload, err.Error())
	}

	return nil
}

// splitList flattens repeated and comma separated values
func splitList(values []string) []string {
	var ret []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				ret = append(ret, p)
			}
		}
	}

	return ret
}

func getStatusCode(err error) int {
	switch errors.Cause(err) {
	case ErrInvalidPayload,
		app.ErrEmailRequired,
		app.ErrPasswordRequired,
		app.ErrPasswordTooShort,
		app.ErrPasswordConfirmationMismatch,
		app.ErrInvalidAreaKey,
		app.ErrInvalidProgress,
		app.ErrNegativeCounter,
		app.ErrTaskIDRequired,
		app.ErrDuplicateTaskID,
		app.ErrFriendSelf,
		app.ErrSearchQueryRequired:
		return http.StatusBadRequest
	case app.ErrLoginInvalid:
		return http.StatusUnauthorized
	case ErrForbidden, app.ErrRegistrationDisabled:
		return http.StatusForbidden
	case app.ErrNotFound:
		return http.StatusNotFound
	case app.ErrDuplicateEmail, app.ErrFriendRequestExists, app.ErrAlreadyFriends:
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// handleHTTPError responds with the status code matching the cause of err
func handleHTTPError(w http.ResponseWriter, err error, msg string) {
	statusCode := getStatusCode(err)

	if statusCode < http.StatusInternalServerError {
		mw.RespondError(w, statusCode, err.Error())
		return
	}

	mw.DoError(w, msg, err, statusCode)
}

func respondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	mw.RespondJSON(w, statusCode, v)
}
