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
	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// TaskInput is a task as sent by a client
type TaskInput struct {
	ID        string             `json:"id"`
	Text      string             `json:"text"`
	Completed bool               `json:"completed"`
	Subtasks  []database.Subtask `json:"subtasks"`
}

func validateTaskInputs(tasks []TaskInput) error {
	seen := make(map[string]bool, len(tasks))

	for _, t := range tasks {
		if t.ID == "" {
			return ErrTaskIDRequired
		}
		if seen[t.ID] {
			return errors.Wrapf(ErrDuplicateTaskID, "'%s'", t.ID)
		}
		seen[t.ID] = true
	}

	return nil
}

// ReplaceTasks makes the task list of the area match the given list. Tasks
// are matched by id: existing ones are updated, new ones inserted, and the
// ones missing from the list deleted, all in one transaction. It returns the
// number of tasks stored.
func (a *App) ReplaceTasks(user database.User, areaUUID string, tasks []TaskInput) (int, error) {
	if err := validateTaskInputs(tasks); err != nil {
		return 0, err
	}

	area, err := a.GetArea(user, areaUUID)
	if err != nil {
		return 0, err
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		var existing []database.Task
		if err := tx.Where("area_id = ?", area.ID).Find(&existing).Error; err != nil {
			return errors.Wrap(err, "finding tasks")
		}

		byUUID := make(map[string]database.Task, len(existing))
		for _, t := range existing {
			byUUID[t.UUID] = t
		}

		for idx, in := range tasks {
			subtasks := in.Subtasks
			if subtasks == nil {
				subtasks = []database.Subtask{}
			}

			t, ok := byUUID[in.ID]
			if ok {
				delete(byUUID, in.ID)
			} else {
				t = database.Task{
					AreaID: area.ID,
					UserID: user.ID,
					UUID:   in.ID,
				}
			}

			t.Content = in.Text
			t.Completed = in.Completed
			t.Subtasks = subtasks
			t.OrderIndex = idx

			if err := tx.Save(&t).Error; err != nil {
				return errors.Wrapf(err, "saving task %s", in.ID)
			}
		}

		for _, t := range byUUID {
			if err := tx.Delete(&t).Error; err != nil {
				return errors.Wrapf(err, "deleting task %s", t.UUID)
			}
		}

		if err := tx.Model(&area).Update("last_activity", a.Clock.Now()).Error; err != nil {
			return errors.Wrap(err, "touching area")
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(tasks), nil
}
