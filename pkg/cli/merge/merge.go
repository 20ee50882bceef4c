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

// Package merge reconciles a local and a remote snapshot into one.
// Merging is pure: it performs no I/O and its result depends only on its
// inputs, so a merge can be retried any number of times.
package merge

import (
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/dreambuilder/dreambuilder/pkg/cli/tasks"
)

// Merge returns a new snapshot combining local and remote. An area found on
// one side only is taken as is. An area found on both sides is merged field
// by field. If either snapshot is nil the other is returned.
func Merge(local, remote model.Snapshot) model.Snapshot {
	if local == nil {
		return remote.Clone()
	}
	if remote == nil {
		return local.Clone()
	}

	ret := make(model.Snapshot, len(local)+len(remote))

	for key, l := range local {
		r, ok := remote[key]
		if !ok {
			ret[key] = l.Clone()
			continue
		}

		ret[key] = Area(l, r)
	}

	for key, r := range remote {
		if _, ok := local[key]; !ok {
			ret[key] = r.Clone()
		}
	}

	return ret
}

// Area merges two copies of the same area
func Area(local, remote model.Area) model.Area {
	return model.Area{
		ID:         firstNonEmpty(local.ID, remote.ID),
		Name:       firstNonEmpty(remote.Name, local.Name),
		Icon:       firstNonEmpty(remote.Icon, local.Icon),
		Goal:       firstNonEmpty(local.Goal, remote.Goal),
		Progress:   max(local.Progress, remote.Progress),
		TimeSpent:  max(local.TimeSpent, remote.TimeSpent),
		Milestones: max(local.Milestones, remote.Milestones),
		Streak:     max(local.Streak, remote.Streak),
		Tasks:      Tasks(local.Tasks, remote.Tasks),
	}
}

// Tasks merges two copies of a task list by identifier. Remote tasks keep
// their order and local-only tasks follow in their local order. Tasks
// without an identifier are never matched with anything.
func Tasks(local, remote []model.Task) []model.Task {
	local = tasks.Deduplicate(local, nil)
	remote = tasks.Deduplicate(remote, nil)

	merged := make([]model.Task, 0, len(remote)+len(local))
	index := map[string]int{}

	for _, r := range remote {
		if r.ID != "" {
			index[r.ID] = len(merged)
		}
		merged = append(merged, r.Clone())
	}

	for _, l := range local {
		if i, ok := index[l.ID]; ok && l.ID != "" {
			merged[i] = Task(l, merged[i])
			continue
		}

		merged = append(merged, l.Clone())
	}

	return tasks.Deduplicate(merged, nil)
}

// Task merges two copies of the same task. Text comes from remote when it
// is set. Completion is sticky and the longer subtask list wins, with ties
// going to remote.
func Task(local, remote model.Task) model.Task {
	ret := model.Task{
		ID:        remote.ID,
		Text:      firstNonEmpty(remote.Text, local.Text),
		Completed: local.Completed || remote.Completed,
	}

	subtasks := remote.Subtasks
	if len(local.Subtasks) > len(remote.Subtasks) {
		subtasks = local.Subtasks
	}
	ret.Subtasks = make([]model.Subtask, len(subtasks))
	copy(ret.Subtasks, subtasks)

	return ret
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}

	return b
}
