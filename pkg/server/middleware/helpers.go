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
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/server/log"
	"github.com/pkg/errors"
)

// ErrInvalidAuthHeader is an error for an Authorization header that is not a bearer credential
var ErrInvalidAuthHeader = errors.New("Invalid authorization header")

type errorResponse struct {
	Message string `json:"message"`
}

// RespondJSON writes the JSON encoding of v with the given status code
func RespondJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorWrap(err, "encoding response")
	}
}

// RespondError writes a JSON error body with the given status code
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, errorResponse{Message: message})
}

// DoError logs the error and responds with the given status code. Server
// errors hide the underlying message from the client.
func DoError(w http.ResponseWriter, msg string, err error, statusCode int) {
	var message string
	if err == nil {
		message = msg
	} else {
		message = errors.Wrap(err, msg).Error()
	}

	if statusCode >= 500 {
		log.WithFields(log.Fields{
			"statusCode": statusCode,
		}).Error(message)

		RespondError(w, statusCode, http.StatusText(statusCode))
		return
	}

	RespondError(w, statusCode, message)
}

// RespondUnauthorized responds with 401 and a bearer challenge
func RespondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="dream"`)
	RespondError(w, http.StatusUnauthorized, "unauthorized")
}

// RespondNotFound responds with 404
func RespondNotFound(w http.ResponseWriter) {
	RespondError(w, http.StatusNotFound, "not found")
}

// getSessionKeyFromAuth reads the session key from a bearer Authorization
// header. It returns an empty string if the header is absent.
func getSessionKeyFromAuth(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", nil
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrInvalidAuthHeader
	}

	return strings.TrimSpace(parts[1]), nil
}

// GetCredential extracts the session key from the request
func GetCredential(r *http.Request) (string, error) {
	key, err := getSessionKeyFromAuth(r)
	if err != nil {
		return "", errors.Wrap(err, "getting session key from Authorization header")
	}

	return key, nil
}
