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
	"github.com/pkg/errors"
)

// NewUsers creates a new Users controller
func NewUsers(app *app.App) *Users {
	return &Users{
		app: app,
	}
}

// Users is a user controller.
type Users struct {
	app *app.App
}

// SigninPayload is the payload for signing in and registering
type SigninPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (u *Users) signin(p SigninPayload) (presenters.Session, error) {
	if p.Email == "" {
		return presenters.Session{}, app.ErrEmailRequired
	}
	if p.Password == "" {
		return presenters.Session{}, app.ErrPasswordRequired
	}

	user, err := u.app.Authenticate(p.Email, p.Password)
	if err != nil {
		// An unknown email is reported the same way as a wrong password
		if errors.Cause(err) == app.ErrNotFound {
			return presenters.Session{}, app.ErrLoginInvalid
		}

		return presenters.Session{}, err
	}

	s, err := u.app.SignIn(user)
	if err != nil {
		return presenters.Session{}, err
	}

	return presenters.PresentSession(*s, *user), nil
}

// Signin handles POST /v1/signin
func (u *Users) Signin(w http.ResponseWriter, r *http.Request) {
	var p SigninPayload
	if err := parseRequestData(r, &p); err != nil {
		handleHTTPError(w, err, "parsing payload")
		return
	}

	resp, err := u.signin(p)
	if err != nil {
		handleHTTPError(w, err, "signing in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Register handles POST /v1/register
func (u *Users) Register(w http.ResponseWriter, r *http.Request) {
	var p SigninPayload
	if err := parseRequestData(r, &p); err != nil {
		handleHTTPError(w, err, "parsing payload")
		return
	}

	user, err := u.app.Register(p.Email, p.Password)
	if err != nil {
		handleHTTPError(w, err, "registering")
		return
	}

	s, err := u.app.SignIn(&user)
	if err != nil {
		handleHTTPError(w, err, "signing in")
		return
	}

	respondJSON(w, http.StatusCreated, presenters.PresentSession(*s, user))
}

// Signout handles POST /v1/signout. It succeeds even without a session.
func (u *Users) Signout(w http.ResponseWriter, r *http.Request) {
	key, err := mw.GetCredential(r)
	if err != nil {
		handleHTTPError(w, errors.Wrap(ErrInvalidPayload, err.Error()), "getting credential")
		return
	}

	if key != "" {
		if err := u.app.DeleteSession(key); err != nil {
			handleHTTPError(w, err, "deleting session")
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMeResponse is the response for GET /v1/me
type GetMeResponse struct {
	User presenters.User `json:"user"`
}

// Me handles GET /v1/me
func (u *Users) Me(w http.ResponseWriter, r *http.Request) {
	user := context.User(r.Context())
	if user == nil {
		mw.RespondUnauthorized(w)
		return
	}

	respondJSON(w, http.StatusOK, GetMeResponse{User: presenters.PresentUser(*user)})
}
