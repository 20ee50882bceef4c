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
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is an error indicating that the resource was not found
	ErrNotFound = errors.New("not found")
	// ErrLoginInvalid is an error for mismatching login credentials
	ErrLoginInvalid = errors.New("Wrong email and password combination")
	// ErrEmailRequired is an error for a missing email
	ErrEmailRequired = errors.New("Please enter an email")
	// ErrPasswordRequired is an error for a missing password
	ErrPasswordRequired = errors.New("Please enter a password")
	// ErrPasswordTooShort is an error for a password shorter than the minimum length
	ErrPasswordTooShort = errors.New("Password should be longer than 8 characters")
	// ErrPasswordConfirmationMismatch is an error for a mismatching password confirmation
	ErrPasswordConfirmationMismatch = errors.New("Password confirmation does not match the password")
	// ErrDuplicateEmail is an error for an email that is already taken
	ErrDuplicateEmail = errors.New("This email is already taken")
	// ErrRegistrationDisabled is an error for sign ups on a server with registration turned off
	ErrRegistrationDisabled = errors.New("Registration is disabled on this server")

	// ErrInvalidAreaKey is an error for an area key that is empty or malformed
	ErrInvalidAreaKey = errors.New("Invalid area key")
	// ErrInvalidProgress is an error for a progress outside of 0 to 100
	ErrInvalidProgress = errors.New("Progress should be between 0 and 100")
	// ErrNegativeCounter is an error for a negative time spent, milestone count, or streak
	ErrNegativeCounter = errors.New("Counters cannot be negative")
	// ErrTaskIDRequired is an error for a task without an identifier
	ErrTaskIDRequired = errors.New("Every task needs an id")
	// ErrDuplicateTaskID is an error for a task list holding the same identifier twice
	ErrDuplicateTaskID = errors.New("Task ids must be unique within an area")

	// ErrFriendSelf is an error for a friend request sent to oneself
	ErrFriendSelf = errors.New("You cannot send a friend request to yourself")
	// ErrFriendRequestExists is an error for a request that is already pending
	ErrFriendRequestExists = errors.New("A friend request is already pending")
	// ErrAlreadyFriends is an error for a request between users who are already friends
	ErrAlreadyFriends = errors.New("You are already friends")
	// ErrSearchQueryRequired is an error for an empty user search
	ErrSearchQueryRequired = errors.New("Please enter a search query")
)
