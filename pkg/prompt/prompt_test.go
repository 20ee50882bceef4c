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

package prompt

import (
	"strings"
	"testing"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
)

func TestFormatQuestion(t *testing.T) {
	testCases := []struct {
		question   string
		optimistic bool
		expected   string
	}{
		{
			question:   "Reset all areas?",
			optimistic: false,
			expected:   "Reset all areas? (y/N)",
		},
		{
			question:   "Sync now?",
			optimistic: true,
			expected:   "Sync now? (Y/n)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.question, func(t *testing.T) {
			got := FormatQuestion(tc.question, tc.optimistic)
			assert.Equal(t, got, tc.expected, "formatted question mismatch")
		})
	}
}

func TestReadYesNo(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		optimistic bool
		expected   bool
	}{
		{"pessimistic y", "y\n", false, true},
		{"pessimistic yes", "yes\n", false, true},
		{"pessimistic uppercase", "Y\n", false, true},
		{"pessimistic n", "n\n", false, false},
		{"pessimistic empty", "\n", false, false},
		{"pessimistic whitespace", "   \n", false, false},
		{"optimistic empty", "\n", true, true},
		{"optimistic n", "n\n", true, false},
		{"optimistic windows line ending", "\r\n", true, true},
		{"unknown answer", "maybe\n", true, false},
		{"no trailing newline", "y", false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ReadYesNo(strings.NewReader(tc.input), tc.optimistic)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			assert.Equal(t, got, tc.expected, "answer mismatch")
		})
	}
}

func TestReadYesNoEOF(t *testing.T) {
	_, err := ReadYesNo(strings.NewReader(""), false)
	if err == nil {
		t.Fatal("expected an error on an empty reader")
	}
}
