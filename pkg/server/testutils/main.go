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

// Package testutils provides utilities used in tests
package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	"github.com/dreambuilder/dreambuilder/pkg/server/helpers"
	"github.com/dreambuilder/dreambuilder/pkg/server/log"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitDB opens a database at the given path and initializes the schema
func InitDB(dbPath string) *gorm.DB {
	db := database.Open(dbPath, log.LevelError)
	database.InitSchema(db)
	if err := database.Migrate(db); err != nil {
		panic(errors.Wrap(err, "running migrations"))
	}

	return db
}

// InitMemoryDB creates an in-memory SQLite database with the schema
// initialized. Each call gets its own database.
func InitMemoryDB(t *testing.T) *gorm.DB {
	uuid := MustUUID(t)

	db := InitDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid))
	t.Cleanup(func() {
		database.Close(db)
	})

	return db
}

// MustUUID generates a UUID and fails the test on error
func MustUUID(t *testing.T) string {
	uuid, err := helpers.GenUUID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "Failed to generate UUID"))
	}
	return uuid
}

// SetupUserData creates and returns a new user with email and password for testing purposes
func SetupUserData(db *gorm.DB, email, password string) database.User {
	uuid, err := helpers.GenUUID()
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate UUID"))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(errors.Wrap(err, "Failed to hash password"))
	}

	user := database.User{
		UUID:     uuid,
		Email:    email,
		Password: string(hashedPassword),
	}
	if err := db.Save(&user).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare user"))
	}

	return user
}

// SetupSession creates and returns a new session for the user
func SetupSession(db *gorm.DB, user database.User) database.Session {
	key, err := helpers.GetRandomStr(32)
	if err != nil {
		panic(errors.Wrap(err, "generating session key"))
	}

	session := database.Session{
		Key:       key,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour * 24),
	}
	if err := db.Save(&session).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare session"))
	}

	return session
}

// SetupArea creates an area of the given type for the user with the given tasks
func SetupArea(db *gorm.DB, user database.User, key string, tasks ...database.Task) database.Area {
	uuid, err := helpers.GenUUID()
	if err != nil {
		panic(errors.Wrap(err, "Failed to generate UUID"))
	}

	area := database.Area{
		UUID:     uuid,
		UserID:   user.ID,
		AreaType: key,
		Name:     key,
	}
	if err := db.Save(&area).Error; err != nil {
		panic(errors.Wrap(err, "Failed to prepare area"))
	}

	for idx, t := range tasks {
		t.AreaID = area.ID
		t.UserID = user.ID
		t.OrderIndex = idx
		if t.Subtasks == nil {
			t.Subtasks = []database.Subtask{}
		}
		if err := db.Save(&t).Error; err != nil {
			panic(errors.Wrap(err, "Failed to prepare task"))
		}
	}

	return area
}

// SetupFriendship links the two users with a friendship of the given
// status. An accepted friendship is created in both directions.
func SetupFriendship(db *gorm.DB, user, friend database.User, status string) database.Friendship {
	pairs := [][2]int{{user.ID, friend.ID}}
	if status == database.FriendshipAccepted {
		pairs = append(pairs, [2]int{friend.ID, user.ID})
	}

	var ret database.Friendship
	for i, p := range pairs {
		uuid, err := helpers.GenUUID()
		if err != nil {
			panic(errors.Wrap(err, "Failed to generate UUID"))
		}

		f := database.Friendship{
			UUID:     uuid,
			UserID:   p[0],
			FriendID: p[1],
			Status:   status,
		}
		if err := db.Save(&f).Error; err != nil {
			panic(errors.Wrap(err, "Failed to prepare friendship"))
		}
		if i == 0 {
			ret = f
		}
	}

	return ret
}

// HTTPDo makes an HTTP request and returns a response
func HTTPDo(t *testing.T, req *http.Request) *http.Response {
	hc := http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	res, err := hc.Do(req)
	if err != nil {
		t.Fatal(errors.Wrap(err, "performing http request"))
	}

	return res
}

// SetReqAuthHeader sets the authorization header in the given request for the given user with a specific DB
func SetReqAuthHeader(t *testing.T, db *gorm.DB, req *http.Request, user database.User) {
	session := SetupSession(db, user)

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", session.Key))
}

// HTTPAuthDo makes an HTTP request with an appropriate authorization header for a user with a specific DB
func HTTPAuthDo(t *testing.T, db *gorm.DB, req *http.Request, user database.User) *http.Response {
	SetReqAuthHeader(t, db, req, user)

	return HTTPDo(t, req)
}

// MakeReq makes an HTTP request and returns a response
func MakeReq(endpoint string, method, path, data string) *http.Request {
	u := fmt.Sprintf("%s%s", endpoint, path)

	req, err := http.NewRequest(method, u, strings.NewReader(data))
	if err != nil {
		panic(errors.Wrap(err, "constructing http request"))
	}

	return req
}

// MustExec fails the test if the given database query has error
func MustExec(t *testing.T, db *gorm.DB, message string) {
	if err := db.Error; err != nil {
		t.Fatalf("%s: %s", message, err.Error())
	}
}

// MustMarshalJSON marshals the given value and fails the test on error
func MustMarshalJSON(t *testing.T, v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(errors.Wrap(err, "marshalling JSON"))
	}

	return string(b)
}

// MustDecodeJSON decodes the body of the response into v and fails the test
// on error
func MustDecodeJSON(t *testing.T, res *http.Response, v interface{}) {
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatal(errors.Wrap(err, "decoding response body"))
	}
}
