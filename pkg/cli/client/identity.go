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

	"github.com/dreambuilder/dreambuilder/pkg/cli/consts"
	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/pkg/errors"
)

// SessionIdentity resolves the current user from the session stored on the
// device
type SessionIdentity struct {
	DB *database.DB
}

// CurrentUserID returns the uuid of the signed in user, or an empty string
// if nobody is signed in
func (i SessionIdentity) CurrentUserID(ctx context.Context) (string, error) {
	sessionKey, err := database.GetSystemString(i.DB, consts.SystemSessionKey)
	if err != nil {
		return "", errors.Wrap(err, "reading session key")
	}
	if sessionKey == "" {
		return "", nil
	}

	userUUID, err := database.GetSystemString(i.DB, consts.SystemUserUUID)
	if err != nil {
		return "", errors.Wrap(err, "reading user uuid")
	}

	return userUUID, nil
}
