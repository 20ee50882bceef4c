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

package presenters

import (
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/server/database"
)

// Subtask is a subtask presented to clients
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Task is a task presented to clients. ID is the identifier the client
// assigned to the task.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Subtasks  []Subtask `json:"subtasks"`
}

// Area is an area presented to clients
type Area struct {
	UUID         string    `json:"uuid"`
	Name         string    `json:"name"`
	Icon         string    `json:"icon"`
	Goal         string    `json:"goal"`
	Progress     int       `json:"progress"`
	TimeSpent    float64   `json:"time_spent"`
	Milestones   int       `json:"milestones"`
	Streak       int       `json:"streak"`
	LastActivity time.Time `json:"last_activity"`
	Tasks        []Task    `json:"tasks"`
}

// PresentTask presents a task
func PresentTask(t database.Task) Task {
	subtasks := make([]Subtask, 0, len(t.Subtasks))
	for _, s := range t.Subtasks {
		subtasks = append(subtasks, Subtask{
			ID:        s.ID,
			Text:      s.Text,
			Completed: s.Completed,
		})
	}

	return Task{
		ID:        t.UUID,
		Text:      t.Content,
		Completed: t.Completed,
		Subtasks:  subtasks,
	}
}

// PresentArea presents an area with its tasks
func PresentArea(a database.Area) Area {
	tasks := make([]Task, 0, len(a.Tasks))
	for _, t := range a.Tasks {
		tasks = append(tasks, PresentTask(t))
	}

	return Area{
		UUID:         a.UUID,
		Name:         a.Name,
		Icon:         a.Icon,
		Goal:         a.Goal,
		Progress:     a.Progress,
		TimeSpent:    a.TimeSpent,
		Milestones:   a.Milestones,
		Streak:       a.Streak,
		LastActivity: FormatTS(a.LastActivity),
		Tasks:        tasks,
	}
}

// PresentSnapshot presents the areas keyed by their type
func PresentSnapshot(areas []database.Area) map[string]Area {
	ret := make(map[string]Area, len(areas))
	for _, a := range areas {
		ret[a.AreaType] = PresentArea(a)
	}

	return ret
}
