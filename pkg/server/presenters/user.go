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

package presenters

import (
	"github.com/dreambuilder/dreambuilder/pkg/server/database"
)

// User is a user presented to clients
type User struct {
	UUID  string `json:"uuid"`
	Email string `json:"email"`
}

// PresentUser presents a user
func PresentUser(u database.User) User {
	return User{
		UUID:  u.UUID,
		Email: u.Email,
	}
}

// Session is a session presented to clients on sign in
type Session struct {
	Key       string `json:"key"`
	ExpiresAt int64  `json:"expires_at"`
	UserUUID  string `json:"user_uuid"`
}

// PresentSession presents a session of the given user
func PresentSession(s database.Session, u database.User) Session {
	return Session{
		Key:       s.Key,
		ExpiresAt: s.ExpiresAt.Unix(),
		UserUUID:  u.UUID,
	}
}
