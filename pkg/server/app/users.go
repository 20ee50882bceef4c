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
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	"github.com/dreambuilder/dreambuilder/pkg/server/helpers"
	"github.com/dreambuilder/dreambuilder/pkg/server/log"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// minPasswordLength is the minimum length of a password
const minPasswordLength = 8

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hashing password")
	}

	return string(hashed), nil
}

// TouchLastLoginAt updates the last login timestamp
func (a *App) TouchLastLoginAt(user database.User, tx *gorm.DB) error {
	t := a.Clock.Now()
	if err := tx.Model(&user).Update("last_login_at", &t).Error; err != nil {
		return errors.Wrap(err, "updating last_login_at")
	}

	return nil
}

// CreateUser creates a user
func (a *App) CreateUser(email, password string, passwordConfirmation string) (database.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return database.User{}, ErrEmailRequired
	}
	if password != passwordConfirmation {
		return database.User{}, ErrPasswordConfirmationMismatch
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return database.User{}, err
	}

	uuid, err := helpers.GenUUID()
	if err != nil {
		return database.User{}, err
	}

	user := database.User{
		UUID:     uuid,
		Email:    email,
		Password: hashedPassword,
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&database.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return errors.Wrap(err, "counting user")
		}
		if count > 0 {
			return ErrDuplicateEmail
		}

		if err := tx.Create(&user).Error; err != nil {
			return errors.Wrap(err, "saving user")
		}

		return a.TouchLastLoginAt(user, tx)
	})
	if err != nil {
		return database.User{}, err
	}

	return user, nil
}

// Register creates a user through the public API. It fails when the server
// has registration turned off.
func (a *App) Register(email, password string) (database.User, error) {
	if a.DisableRegistration {
		return database.User{}, ErrRegistrationDisabled
	}

	return a.CreateUser(email, password, password)
}

// GetUserByEmail finds the user with the given email
func (a *App) GetUserByEmail(email string) (*database.User, error) {
	var user database.User
	err := a.DB.Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "finding user")
	}

	return &user, nil
}

// GetUserByID finds the user with the given id
func (a *App) GetUserByID(id int) (*database.User, error) {
	var user database.User
	err := a.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "finding user")
	}

	return &user, nil
}

// Authenticate authenticates a user
func (a *App) Authenticate(email, password string) (*database.User, error) {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrLoginInvalid
	}

	return user, nil
}

// SignIn signs in a user
func (a *App) SignIn(user *database.User) (*database.Session, error) {
	if err := a.TouchLastLoginAt(*user, a.DB); err != nil {
		log.ErrorWrap(err, "touching login timestamp")
	}

	session, err := a.CreateSession(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "creating session")
	}

	return &session, nil
}

// UpdateUserPassword sets a new password for the user and invalidates the
// existing sessions
func (a *App) UpdateUserPassword(user *database.User, password string) error {
	hashedPassword, err := hashPassword(password)
	if err != nil {
		return err
	}

	return a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password", hashedPassword).Error; err != nil {
			return errors.Wrap(err, "updating password")
		}

		return a.DeleteUserSessions(tx, user.ID)
	})
}

// RemoveUser deletes the user with the given email along with the user's
// sessions, areas, tasks, and friendships
func (a *App) RemoveUser(email string) error {
	user, err := a.GetUserByEmail(email)
	if err != nil {
		return err
	}

	return a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).Delete(&database.Task{}).Error; err != nil {
			return errors.Wrap(err, "deleting tasks")
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&database.Area{}).Error; err != nil {
			return errors.Wrap(err, "deleting areas")
		}
		if err := tx.Where("user_id = ? OR friend_id = ?", user.ID, user.ID).Delete(&database.Friendship{}).Error; err != nil {
			return errors.Wrap(err, "deleting friendships")
		}
		if err := a.DeleteUserSessions(tx, user.ID); err != nil {
			return err
		}
		if err := tx.Delete(user).Error; err != nil {
			return errors.Wrap(err, "deleting user")
		}

		return nil
	})
}
