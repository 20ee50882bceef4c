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

// Package validate checks values entered by the user before they are
// written to the snapshot
package validate

import (
	"math"
	"strings"

	"github.com/pkg/errors"
)

// ErrProgressRange is an error for a progress outside of 0 to 100
var ErrProgressRange = errors.New("The progress must be between 0 and 100")

// ErrHoursInvalid is an error for a negative or non-finite number of hours
var ErrHoursInvalid = errors.New("The hours must be a positive number")

// ErrStreakNegative is an error for a negative streak
var ErrStreakNegative = errors.New("The streak cannot be negative")

// ErrTextEmpty is an error for an empty task or subtask
var ErrTextEmpty = errors.New("The text is empty")

// ErrTextMultiline is an error for a task or subtask that has linebreaks
var ErrTextMultiline = errors.New("The text contains multiple lines")

// ErrGoalEmpty is an error for an empty goal
var ErrGoalEmpty = errors.New("The goal is empty")

// Progress validates a progress percentage
func Progress(p int) error {
	if p < 0 || p > 100 {
		return ErrProgressRange
	}

	return nil
}

// Hours validates a number of hours to log
func Hours(h float64) error {
	if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return ErrHoursInvalid
	}

	return nil
}

// Streak validates a streak in days
func Streak(n int) error {
	if n < 0 {
		return ErrStreakNegative
	}

	return nil
}

// Text validates the text of a task or a subtask
func Text(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrTextEmpty
	}

	if strings.Contains(s, "\n") || strings.Contains(s, "\r") {
		return ErrTextMultiline
	}

	return nil
}

// Goal validates the goal of an area
func Goal(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrGoalEmpty
	}

	return nil
}
