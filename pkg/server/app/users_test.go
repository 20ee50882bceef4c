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

package app

import (
	"testing"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	"github.com/dreambuilder/dreambuilder/pkg/server/testutils"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)

		a := NewTest()
		a.DB = db
		if _, err := a.CreateUser(" Alice@Example.com", "pass1234", "pass1234"); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		var userCount int64
		var userRecord database.User
		testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting user")
		testutils.MustExec(t, db.First(&userRecord), "finding user")

		assert.Equal(t, userCount, int64(1), "user count mismatch")
		assert.Equal(t, userRecord.Email, "alice@example.com", "email mismatch")
		assert.Equal(t, len(userRecord.UUID), 36, "uuid mismatch")
		assert.Equal(t, userRecord.LastLoginAt != nil, true, "last login mismatch")

		passwordErr := bcrypt.CompareHashAndPassword([]byte(userRecord.Password), []byte("pass1234"))
		assert.Equal(t, passwordErr, nil, "Password mismatch")
	})

	testCases := []struct {
		name         string
		email        string
		password     string
		confirmation string
		expectedErr  error
	}{
		{"missing email", "", "pass1234", "pass1234", ErrEmailRequired},
		{"short password", "bob@example.com", "pass", "pass", ErrPasswordTooShort},
		{"confirmation mismatch", "bob@example.com", "pass1234", "pass12345", ErrPasswordConfirmationMismatch},
		{"duplicate email", "alice@example.com", "pass1234", "pass1234", ErrDuplicateEmail},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := testutils.InitMemoryDB(t)
			testutils.SetupUserData(db, "alice@example.com", "somepassword")

			a := NewTest()
			a.DB = db
			_, err := a.CreateUser(tc.email, tc.password, tc.confirmation)

			assert.Equal(t, errors.Cause(err), tc.expectedErr, "error mismatch")

			var userCount int64
			testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting user")
			assert.Equal(t, userCount, int64(1), "user count mismatch")
		})
	}
}

func TestRegister(t *testing.T) {
	db := testutils.InitMemoryDB(t)

	a := NewTest()
	a.DB = db
	a.DisableRegistration = true

	_, err := a.Register("alice@example.com", "pass1234")
	assert.Equal(t, err, ErrRegistrationDisabled, "error mismatch")

	a.DisableRegistration = false
	user, err := a.Register("alice@example.com", "pass1234")
	if err != nil {
		t.Fatal(errors.Wrap(err, "registering"))
	}
	assert.Equal(t, user.Email, "alice@example.com", "email mismatch")
}

func TestAuthenticate(t *testing.T) {
	testCases := []struct {
		email       string
		password    string
		expectedErr error
	}{
		{"alice@example.com", "pass1234", nil},
		{"ALICE@example.com", "pass1234", nil},
		{"alice@example.com", "wrongpassword", ErrLoginInvalid},
		{"bob@example.com", "pass1234", ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.email+"/"+tc.password, func(t *testing.T) {
			db := testutils.InitMemoryDB(t)
			user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

			a := NewTest()
			a.DB = db
			got, err := a.Authenticate(tc.email, tc.password)

			assert.Equal(t, errors.Cause(err), tc.expectedErr, "error mismatch")
			if tc.expectedErr == nil {
				assert.Equal(t, got.ID, user.ID, "user mismatch")
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")

	a := NewTest()
	a.DB = db

	session, err := a.SignIn(&user)
	if err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	var sessionCount int64
	testutils.MustExec(t, db.Model(&database.Session{}).Where("user_id = ?", user.ID).Count(&sessionCount), "counting sessions")
	assert.Equal(t, sessionCount, int64(1), "session count mismatch")
	assert.NotEqual(t, session.Key, "", "session key mismatch")
	assert.Equal(t, session.ExpiresAt.Equal(a.Clock.Now().Add(SessionTTL)), true, "expiry mismatch")
}

func TestUpdateUserPassword(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
	testutils.SetupSession(db, user)

	a := NewTest()
	a.DB = db

	assert.Equal(t, a.UpdateUserPassword(&user, "short"), ErrPasswordTooShort, "error mismatch")

	if err := a.UpdateUserPassword(&user, "newpass1234"); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}

	if _, err := a.Authenticate("alice@example.com", "newpass1234"); err != nil {
		t.Fatal(errors.Wrap(err, "authenticating with the new password"))
	}

	var sessionCount int64
	testutils.MustExec(t, db.Model(&database.Session{}).Count(&sessionCount), "counting sessions")
	assert.Equal(t, sessionCount, int64(0), "sessions should be invalidated")
}

func TestRemoveUser(t *testing.T) {
	db := testutils.InitMemoryDB(t)
	alice := testutils.SetupUserData(db, "alice@example.com", "pass1234")
	bob := testutils.SetupUserData(db, "bob@example.com", "pass1234")
	testutils.SetupSession(db, alice)
	testutils.SetupArea(db, alice, "business", database.Task{UUID: "t-1", Content: "ship"})
	testutils.SetupArea(db, bob, "business", database.Task{UUID: "t-2", Content: "plan"})
	testutils.SetupFriendship(db, alice, bob, database.FriendshipAccepted)

	a := NewTest()
	a.DB = db

	if err := a.RemoveUser("alice@example.com"); err != nil {
		t.Fatal(errors.Wrap(err, "executing"))
	}
	assert.Equal(t, a.RemoveUser("alice@example.com"), ErrNotFound, "error mismatch")

	var userCount, areaCount, taskCount, sessionCount, friendshipCount int64
	testutils.MustExec(t, db.Model(&database.User{}).Count(&userCount), "counting users")
	testutils.MustExec(t, db.Model(&database.Area{}).Count(&areaCount), "counting areas")
	testutils.MustExec(t, db.Model(&database.Task{}).Count(&taskCount), "counting tasks")
	testutils.MustExec(t, db.Model(&database.Session{}).Count(&sessionCount), "counting sessions")
	testutils.MustExec(t, db.Model(&database.Friendship{}).Count(&friendshipCount), "counting friendships")

	assert.Equal(t, userCount, int64(1), "user count mismatch")
	assert.Equal(t, areaCount, int64(1), "area count mismatch")
	assert.Equal(t, taskCount, int64(1), "task count mismatch")
	assert.Equal(t, sessionCount, int64(0), "session count mismatch")
	assert.Equal(t, friendshipCount, int64(0), "friendship count mismatch")
}
