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

package validate

import (
	"fmt"
	"math"
	"testing"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
)

func TestProgress(t *testing.T) {
	testCases := []struct {
		input    int
		expected error
	}{
		{0, nil},
		{55, nil},
		{100, nil},
		{-1, ErrProgressRange},
		{101, ErrProgressRange},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d", tc.input), func(t *testing.T) {
			assert.Equal(t, Progress(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestHours(t *testing.T) {
	testCases := []struct {
		input    float64
		expected error
	}{
		{0, nil},
		{1.5, nil},
		{-0.5, ErrHoursInvalid},
		{math.NaN(), ErrHoursInvalid},
		{math.Inf(1), ErrHoursInvalid},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%f", tc.input), func(t *testing.T) {
			assert.Equal(t, Hours(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestStreak(t *testing.T) {
	assert.Equal(t, Streak(0), nil, "zero mismatch")
	assert.Equal(t, Streak(7), nil, "positive mismatch")
	assert.Equal(t, Streak(-1), ErrStreakNegative, "negative mismatch")
}

func TestText(t *testing.T) {
	testCases := []struct {
		input    string
		expected error
	}{
		{"Get resort client", nil},
		{"", ErrTextEmpty},
		{"   ", ErrTextEmpty},
		{"first\nsecond", ErrTextMultiline},
		{"first\r\nsecond", ErrTextMultiline},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%q", tc.input), func(t *testing.T) {
			assert.Equal(t, Text(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestGoal(t *testing.T) {
	assert.Equal(t, Goal("Run a half marathon"), nil, "goal mismatch")
	assert.Equal(t, Goal("multi\nline goal"), nil, "multiline goal mismatch")
	assert.Equal(t, Goal(" \n"), ErrGoalEmpty, "empty goal mismatch")
}
