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

package merge

import (
	"fmt"
	"testing"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
)

func task(id, text string, completed bool, subtasks ...model.Subtask) model.Task {
	if subtasks == nil {
		subtasks = []model.Subtask{}
	}

	return model.Task{ID: id, Text: text, Completed: completed, Subtasks: subtasks}
}

func taskIDs(list []model.Task) []string {
	ret := []string{}
	for _, t := range list {
		ret = append(ret, t.ID)
	}

	return ret
}

func TestMergeScenario(t *testing.T) {
	// Setup
	local := model.Snapshot{
		model.AreaBusiness: {
			ID:    model.AreaBusiness,
			Name:  "Business",
			Tasks: []model.Task{task("biz-1", "Get resort client", false)},
		},
	}
	remote := model.Snapshot{
		model.AreaBusiness: {
			ID:   model.AreaBusiness,
			Name: "Business",
			Tasks: []model.Task{
				task("biz-1", "Get resort client", true),
				task("biz-2", "Find business thesis idea", false),
			},
		},
	}

	// Execute
	got := Merge(local, remote)

	// Test
	biz := got[model.AreaBusiness]
	assert.DeepEqual(t, taskIDs(biz.Tasks), []string{"biz-1", "biz-2"}, "task ids mismatch")
	assert.Equal(t, biz.Tasks[0].Completed, true, "biz-1 should be completed")
}

func TestMergeNil(t *testing.T) {
	snap := model.Defaults()

	assert.DeepEqual(t, Merge(nil, snap), snap, "merge(nil, remote) should return remote")
	assert.DeepEqual(t, Merge(snap, nil), snap, "merge(local, nil) should return local")
	assert.Equal(t, Merge(nil, nil) == nil, true, "merge(nil, nil) should be nil")
}

func TestMergeAreaPresence(t *testing.T) {
	local := model.Snapshot{
		model.AreaOverall: {ID: model.AreaOverall, Goal: "local only", Tasks: []model.Task{}},
	}
	remote := model.Snapshot{
		model.AreaTech: {ID: model.AreaTech, Goal: "remote only", Progress: 10, Tasks: []model.Task{task("tech-1", "Ship", false)}},
	}

	got := Merge(local, remote)

	assert.DeepEqual(t, got[model.AreaOverall], local[model.AreaOverall], "local-only area mismatch")
	assert.DeepEqual(t, got[model.AreaTech], remote[model.AreaTech], "remote-only area mismatch")
}

func TestMergeAreaFields(t *testing.T) {
	testCases := []struct {
		name     string
		local    model.Area
		remote   model.Area
		expected model.Area
	}{
		{
			name:     "identity from remote, goal from local, counters max",
			local:    model.Area{ID: "tech", Name: "Local Tech", Icon: "L", Goal: "local goal", Progress: 40, TimeSpent: 2.5, Milestones: 1, Streak: 9},
			remote:   model.Area{ID: "tech", Name: "Tech", Icon: "⚡", Goal: "remote goal", Progress: 30, TimeSpent: 7, Milestones: 3, Streak: 2},
			expected: model.Area{ID: "tech", Name: "Tech", Icon: "⚡", Goal: "local goal", Progress: 40, TimeSpent: 7, Milestones: 3, Streak: 9, Tasks: []model.Task{}},
		},
		{
			name:     "empty local goal falls back to remote",
			local:    model.Area{ID: "tech", Goal: ""},
			remote:   model.Area{ID: "tech", Name: "Tech", Goal: "remote goal"},
			expected: model.Area{ID: "tech", Name: "Tech", Goal: "remote goal", Tasks: []model.Task{}},
		},
		{
			name:     "empty remote identity falls back to local",
			local:    model.Area{ID: "tech", Name: "Tech", Icon: "⚡"},
			remote:   model.Area{ID: "tech"},
			expected: model.Area{ID: "tech", Name: "Tech", Icon: "⚡", Tasks: []model.Task{}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Area(tc.local, tc.remote)

			assert.DeepEqual(t, got, tc.expected, "area mismatch")
		})
	}
}

func TestMergeCountersCommutative(t *testing.T) {
	values := []int{0, 1, 25, 99, 100}

	for _, a := range values {
		for _, b := range values {
			t.Run(fmt.Sprintf("%d-%d", a, b), func(t *testing.T) {
				l := model.Snapshot{"x": {ID: "x", Progress: a, Milestones: b, Streak: a, TimeSpent: float64(b)}}
				r := model.Snapshot{"x": {ID: "x", Progress: b, Milestones: a, Streak: b, TimeSpent: float64(a)}}

				lr := Merge(l, r)["x"]
				rl := Merge(r, l)["x"]

				assert.Equal(t, lr.Progress, max(a, b), "progress mismatch")
				assert.Equal(t, rl.Progress, max(a, b), "reversed progress mismatch")
				assert.Equal(t, lr.Milestones, rl.Milestones, "milestones not commutative")
				assert.Equal(t, lr.Streak, rl.Streak, "streak not commutative")
				assert.Equal(t, lr.TimeSpent, rl.TimeSpent, "time spent not commutative")
			})
		}
	}
}

func TestMergeTasks(t *testing.T) {
	sub := func(id string) model.Subtask { return model.Subtask{ID: id, Text: id} }

	testCases := []struct {
		name     string
		local    []model.Task
		remote   []model.Task
		expected []model.Task
	}{
		{
			name:     "local-only task is kept unchanged after remote tasks",
			local:    []model.Task{task("new", "Offline task", false, sub("s1"))},
			remote:   []model.Task{task("r1", "Remote", false)},
			expected: []model.Task{task("r1", "Remote", false), task("new", "Offline task", false, sub("s1"))},
		},
		{
			name:     "completion is sticky from local",
			local:    []model.Task{task("a", "A", true)},
			remote:   []model.Task{task("a", "A", false)},
			expected: []model.Task{task("a", "A", true)},
		},
		{
			name:     "longer subtask list wins",
			local:    []model.Task{task("a", "A", false, sub("1"), sub("2"))},
			remote:   []model.Task{task("a", "A", false, sub("1"))},
			expected: []model.Task{task("a", "A", false, sub("1"), sub("2"))},
		},
		{
			name:     "equal subtask lists keep remote",
			local:    []model.Task{task("a", "A", false, model.Subtask{ID: "1", Text: "local"})},
			remote:   []model.Task{task("a", "A", false, model.Subtask{ID: "1", Text: "remote", Completed: true})},
			expected: []model.Task{task("a", "A", false, model.Subtask{ID: "1", Text: "remote", Completed: true})},
		},
		{
			name:     "remote text wins when both sides have text",
			local:    []model.Task{task("biz-1", "local wording", false)},
			remote:   []model.Task{task("biz-1", "remote wording", false)},
			expected: []model.Task{task("biz-1", "remote wording", false)},
		},
		{
			name:     "local text fills empty remote text",
			local:    []model.Task{task("a", "Written offline", false)},
			remote:   []model.Task{task("a", "", false)},
			expected: []model.Task{task("a", "Written offline", false)},
		},
		{
			name:     "remote order first then local-only in local order",
			local:    []model.Task{task("l2", "", false), task("b", "B", false), task("l1", "", false)},
			remote:   []model.Task{task("a", "A", false), task("b", "B", false)},
			expected: []model.Task{task("a", "A", false), task("b", "B", false), task("l2", "", false), task("l1", "", false)},
		},
		{
			name:     "tasks without ids are never matched by text",
			local:    []model.Task{task("", "Same words", false)},
			remote:   []model.Task{task("", "Same words", true)},
			expected: []model.Task{task("", "Same words", true), task("", "Same words", false)},
		},
		{
			name:     "duplicates within one side collapse",
			local:    []model.Task{task("a", "A", false), task("a", "A", false)},
			remote:   []model.Task{task("a", "A", false)},
			expected: []model.Task{task("a", "A", false)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Tasks(tc.local, tc.remote)

			assert.DeepEqual(t, got, tc.expected, "tasks mismatch")
		})
	}
}

func TestMergeTotality(t *testing.T) {
	local := model.Snapshot{
		"x": {ID: "x", Tasks: []model.Task{task("1", "", false), task("2", "", true), task("3", "", false)}},
	}
	remote := model.Snapshot{
		"x": {ID: "x", Tasks: []model.Task{task("3", "", true), task("4", "", false), task("1", "", false)}},
	}

	got := Merge(local, remote)["x"].Tasks

	counts := map[string]int{}
	for _, tk := range got {
		counts[tk.ID]++
	}
	assert.DeepEqual(t, counts, map[string]int{"1": 1, "2": 1, "3": 1, "4": 1}, "every id should appear exactly once")

	for _, tk := range got {
		if tk.ID == "2" || tk.ID == "3" {
			assert.Equal(t, tk.Completed, true, fmt.Sprintf("task %s should stay completed", tk.ID))
		}
	}
}

func TestMergeDoesNotModifyInputs(t *testing.T) {
	local := model.Defaults()
	remote := model.Defaults()
	biz := remote[model.AreaBusiness]
	biz.Tasks[0].Completed = true
	remote[model.AreaBusiness] = biz

	localBefore := local.Clone()
	remoteBefore := remote.Clone()

	got := Merge(local, remote)
	got[model.AreaBusiness].Tasks[0].Subtasks[0].Completed = true

	assert.DeepEqual(t, local, localBefore, "local was modified")
	assert.DeepEqual(t, remote, remoteBefore, "remote was modified")
}

func TestMergeDeterministic(t *testing.T) {
	local := model.Defaults()
	remote := model.Snapshot{
		model.AreaTech: {ID: model.AreaTech, Tasks: []model.Task{task("", "legacy", false), task("tech-3", "New", false)}},
	}

	first := Merge(local, remote)
	second := Merge(local, remote)

	assert.DeepEqual(t, first, second, "merge is not deterministic")
}

func TestMergeRepeatable(t *testing.T) {
	local := model.Defaults()
	remote := model.Snapshot{
		model.AreaTech: {ID: model.AreaTech, Name: "Tech", Progress: 60, Tasks: []model.Task{task("tech-3", "New", false), task("tech-1", "Develop Fullstack App", true)}},
	}

	first := Merge(local, remote)

	assert.DeepEqual(t, Merge(first, remote), first, "merging again with the same remote should be stable")
}
