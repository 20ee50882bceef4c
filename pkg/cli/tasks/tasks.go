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

// Package tasks assigns stable identifiers to tasks and keeps task lists
// free of duplicate identifiers
package tasks

import (
	"fmt"
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/google/uuid"
)

// IDFunc generates a new identifier
type IDFunc func() string

// NewID returns an identifier made of the creation time in milliseconds
// and a random suffix
func NewID(c clock.Clock) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]

	return fmt.Sprintf("task-%d-%s", c.Now().UnixMilli(), suffix)
}

// NewIDFunc returns an IDFunc backed by NewID
func NewIDFunc(c clock.Clock) IDFunc {
	return func() string {
		return NewID(c)
	}
}

// Deduplicate returns the tasks with repeated identifiers removed, keeping
// the first occurrence and the original order. The subtasks of every kept
// task are deduplicated the same way.
//
// A task without an identifier is always kept. If gen is not nil it is
// given a new identifier; otherwise it is left without one.
func Deduplicate(list []model.Task, gen IDFunc) []model.Task {
	ret := make([]model.Task, 0, len(list))
	seen := map[string]bool{}

	for _, t := range list {
		if t.ID == "" && gen != nil {
			t.ID = gen()
			log.Debug("assigned id %s to task %q\n", t.ID, t.Text)
		}

		if t.ID != "" {
			if seen[t.ID] {
				log.Debug("dropping duplicate task %s\n", t.ID)
				continue
			}
			seen[t.ID] = true
		}

		t.Subtasks = deduplicateSubtasks(t.Subtasks, gen)
		ret = append(ret, t)
	}

	return ret
}

func deduplicateSubtasks(list []model.Subtask, gen IDFunc) []model.Subtask {
	ret := make([]model.Subtask, 0, len(list))
	seen := map[string]bool{}

	for _, s := range list {
		if s.ID == "" && gen != nil {
			s.ID = gen()
			log.Debug("assigned id %s to subtask %q\n", s.ID, s.Text)
		}

		if s.ID != "" {
			if seen[s.ID] {
				continue
			}
			seen[s.ID] = true
		}

		ret = append(ret, s)
	}

	return ret
}

// NormalizeSnapshot deduplicates the tasks of every area and converts
// legacy tasks into identified ones. It reports whether anything changed.
func NormalizeSnapshot(snap model.Snapshot, gen IDFunc) (model.Snapshot, bool) {
	if snap == nil {
		return nil, false
	}

	ret := make(model.Snapshot, len(snap))
	var changed bool

	for key, area := range snap {
		deduped := Deduplicate(area.Tasks, gen)
		if !sameTasks(area.Tasks, deduped) {
			changed = true
		}

		area.Tasks = deduped
		if area.ID == "" {
			area.ID = key
			changed = true
		}
		ret[key] = area
	}

	return ret, changed
}

// sameTasks reports whether two lists hold the same identifiers in the
// same order, down to the subtasks
func sameTasks(a, b []model.Task) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i].ID != b[i].ID || len(a[i].Subtasks) != len(b[i].Subtasks) {
			return false
		}
		for j := range a[i].Subtasks {
			if a[i].Subtasks[j].ID != b[i].Subtasks[j].ID {
				return false
			}
		}
	}

	return true
}
