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
)

func getAreaTasks(t *testing.T, a App, area database.Area) []database.Task {
	var tasks []database.Task
	testutils.MustExec(t, a.DB.Where("area_id = ?", area.ID).Order("order_index ASC").Find(&tasks), "finding tasks")

	return tasks
}

func TestReplaceTasks(t *testing.T) {
	t.Run("update insert delete", func(t *testing.T) {
		// Setup
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
		area := testutils.SetupArea(db, user, "business",
			database.Task{UUID: "keep", Content: "old text"},
			database.Task{UUID: "drop", Content: "to be removed"},
		)

		var kept database.Task
		testutils.MustExec(t, db.Where("uuid = ?", "keep").First(&kept), "finding kept task")

		a := NewTest()
		a.DB = db

		input := []TaskInput{
			{ID: "new", Text: "brand new", Subtasks: []database.Subtask{{ID: "s-1", Text: "step"}}},
			{ID: "keep", Text: "new text", Completed: true},
		}

		// Execute
		count, err := a.ReplaceTasks(user, area.UUID, input)
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		// Test
		assert.Equal(t, count, 2, "count mismatch")

		tasks := getAreaTasks(t, a, area)
		assert.Equal(t, len(tasks), 2, "task count mismatch")

		assert.Equal(t, tasks[0].UUID, "new", "first task mismatch")
		assert.Equal(t, tasks[0].Content, "brand new", "first task content mismatch")
		assert.Equal(t, tasks[0].UserID, user.ID, "first task user mismatch")
		assert.DeepEqual(t, tasks[0].Subtasks, []database.Subtask{{ID: "s-1", Text: "step"}}, "first task subtasks mismatch")

		assert.Equal(t, tasks[1].UUID, "keep", "second task mismatch")
		assert.Equal(t, tasks[1].ID, kept.ID, "existing task should be updated in place")
		assert.Equal(t, tasks[1].Content, "new text", "second task content mismatch")
		assert.Equal(t, tasks[1].Completed, true, "second task completed mismatch")
		assert.Equal(t, tasks[1].OrderIndex, 1, "second task order mismatch")
	})

	t.Run("empty list clears the area", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
		area := testutils.SetupArea(db, user, "tech", database.Task{UUID: "t-1", Content: "one"})

		a := NewTest()
		a.DB = db

		count, err := a.ReplaceTasks(user, area.UUID, []TaskInput{})
		if err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, count, 0, "count mismatch")
		assert.Equal(t, len(getAreaTasks(t, a, area)), 0, "task count mismatch")
	})

	t.Run("same ids in different areas", func(t *testing.T) {
		db := testutils.InitMemoryDB(t)
		user := testutils.SetupUserData(db, "alice@example.com", "pass1234")
		tech := testutils.SetupArea(db, user, "tech", database.Task{UUID: "shared", Content: "tech"})
		misc := testutils.SetupArea(db, user, "misc")

		a := NewTest()
		a.DB = db

		if _, err := a.ReplaceTasks(user, misc.UUID, []TaskInput{{ID: "shared", Text: "misc"}}); err != nil {
			t.Fatal(errors.Wrap(err, "executing"))
		}

		assert.Equal(t, getAreaTasks(t, a, tech)[0].Content, "tech", "tech task mismatch")
		assert.Equal(t, getAreaTasks(t, a, misc)[0].Content, "misc", "misc task mismatch")
	})

	testCases := []struct {
		name        string
		owner       string
		tasks       []TaskInput
		expectedErr error
	}{
		{"missing id", "alice", []TaskInput{{Text: "no id"}}, ErrTaskIDRequired},
		{"duplicate id", "alice", []TaskInput{{ID: "a", Text: "x"}, {ID: "a", Text: "y"}}, ErrDuplicateTaskID},
		{"area of another user", "bob", []TaskInput{{ID: "a", Text: "x"}}, ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			db := testutils.InitMemoryDB(t)
			alice := testutils.SetupUserData(db, "alice@example.com", "pass1234")
			bob := testutils.SetupUserData(db, "bob@example.com", "pass1234")
			area := testutils.SetupArea(db, alice, "business", database.Task{UUID: "existing", Content: "stays"})

			user := alice
			if tc.owner == "bob" {
				user = bob
			}

			a := NewTest()
			a.DB = db

			// Execute
			_, err := a.ReplaceTasks(user, area.UUID, tc.tasks)

			// Test
			assert.Equal(t, errors.Cause(err), tc.expectedErr, "error mismatch")

			tasks := getAreaTasks(t, a, area)
			assert.Equal(t, len(tasks), 1, "tasks should be untouched")
			assert.Equal(t, tasks[0].UUID, "existing", "task mismatch")
		})
	}
}
