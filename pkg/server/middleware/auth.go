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
	"errors"
	"net/http"

	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/dreambuilder/dreambuilder/pkg/server/context"
	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	pkgErrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// AuthWithSession authenticates the request with the session key in its
// credential. It returns false if there is no valid session.
func AuthWithSession(db *gorm.DB, clk clock.Clock, r *http.Request) (database.User, database.Session, bool, error) {
	var user database.User
	var session database.Session

	sessionKey, err := GetCredential(r)
	if err != nil {
		return user, session, false, pkgErrors.Wrap(err, "getting credential")
	}
	if sessionKey == "" {
		return user, session, false, nil
	}

	err = db.Where("key = ?", sessionKey).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, session, false, nil
	} else if err != nil {
		return user, session, false, pkgErrors.Wrap(err, "finding session")
	}

	if session.ExpiresAt.Before(clk.Now()) {
		return user, session, false, nil
	}

	err = db.Where("id = ?", session.UserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, session, false, nil
	} else if err != nil {
		return user, session, false, pkgErrors.Wrap(err, "finding user from session")
	}

	return user, session, true, nil
}

// Auth is an authentication middleware. It responds with 401 unless the
// request carries a valid session, and puts the user and the session in the
// request context otherwise.
func Auth(db *gorm.DB, clk clock.Clock, next http.HandlerFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, session, ok, err := AuthWithSession(db, clk, r)
		if err != nil && pkgErrors.Cause(err) == ErrInvalidAuthHeader {
			RespondUnauthorized(w)
			return
		}
		if err != nil {
			DoError(w, "authenticating with session", err, http.StatusInternalServerError)
			return
		}
		if !ok {
			RespondUnauthorized(w)
			return
		}

		ctx := context.WithUser(r.Context(), &user)
		ctx = context.WithSession(ctx, &session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
