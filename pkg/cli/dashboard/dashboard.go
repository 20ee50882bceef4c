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

// Package dashboard implements the edits a user makes to their areas. Every
// edit loads the snapshot, changes one area, and saves the snapshot dirty.
package dashboard

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/dreambuilder/dreambuilder/pkg/cli/store"
	"github.com/dreambuilder/dreambuilder/pkg/cli/tasks"
	"github.com/dreambuilder/dreambuilder/pkg/cli/utils"
	"github.com/dreambuilder/dreambuilder/pkg/cli/validate"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/pkg/errors"
)

var (
	// ErrAreaNotFound is an error for an unknown area key
	ErrAreaNotFound = errors.New("area not found")
	// ErrTaskNotFound is an error for an unknown task
	ErrTaskNotFound = errors.New("task not found")
	// ErrSubtaskNotFound is an error for an unknown subtask
	ErrSubtaskNotFound = errors.New("subtask not found")
)

// Service applies edits to the local snapshot
type Service struct {
	store *store.Store
	db    *database.DB
	clock clock.Clock
	genID tasks.IDFunc

	mu sync.Mutex
	// last is the most recent save scheduled by this service
	last *store.PendingWrite
}

// New returns a service over the given store. The database holds the state
// of the time tracker.
func New(s *store.Store, db *database.DB, c clock.Clock) *Service {
	return &Service{
		store: s,
		db:    db,
		clock: c,
		genID: tasks.NewIDFunc(c),
	}
}

// Snapshot returns the current snapshot. On first use it is seeded with the
// default areas, saved as already synced.
func (s *Service) Snapshot() (model.Snapshot, error) {
	snap, ok, err := s.store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "loading snapshot")
	}

	if !ok || len(snap) == 0 {
		snap = model.Defaults()
		s.track(s.store.Save(snap, false))
	}

	return snap, nil
}

func (s *Service) track(pw *store.PendingWrite) *store.PendingWrite {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.last = pw

	return pw
}

// Commit writes the edits still waiting for the debounce window and returns
// an error if the last of them could not be persisted
func (s *Service) Commit() error {
	s.mu.Lock()
	pw := s.last
	s.last = nil
	s.mu.Unlock()

	if err := s.store.Flush(); err != nil {
		return errors.Wrap(err, "saving edits")
	}
	if pw == nil {
		return nil
	}

	result, err := pw.Wait(context.Background())
	if result == store.Failed {
		return errors.Wrap(err, "saving edits")
	}

	return nil
}

// Area returns the area with the given key
func (s *Service) Area(key string) (model.Area, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return model.Area{}, err
	}

	area, ok := snap[key]
	if !ok {
		return model.Area{}, errors.Wrap(ErrAreaNotFound, key)
	}

	return area, nil
}

// mutate applies fn to a copy of the area with the given key and saves the
// result
func (s *Service) mutate(key string, fn func(a *model.Area) error) (model.Area, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return model.Area{}, err
	}

	area, ok := snap[key]
	if !ok {
		return model.Area{}, errors.Wrap(ErrAreaNotFound, key)
	}

	area = area.Clone()
	if err := fn(&area); err != nil {
		return model.Area{}, err
	}
	area.Tasks = tasks.Deduplicate(area.Tasks, s.genID)

	snap[key] = area
	s.track(s.store.Save(snap, true))

	return area, nil
}

func findTask(a *model.Area, taskID string) (*model.Task, error) {
	idx := a.FindTask(taskID)
	if idx == -1 {
		return nil, errors.Wrap(ErrTaskNotFound, taskID)
	}

	return &a.Tasks[idx], nil
}

func findSubtask(t *model.Task, subtaskID string) (int, error) {
	for i, sub := range t.Subtasks {
		if sub.ID == subtaskID {
			return i, nil
		}
	}

	return -1, errors.Wrap(ErrSubtaskNotFound, subtaskID)
}

// parseIndex converts a 1-based position into an index of a list of length n
func parseIndex(ref string, n int) (int, error) {
	pos, err := strconv.Atoi(ref)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing %s", ref)
	}
	if pos < 1 || pos > n {
		return 0, errors.Errorf("position %d out of range", pos)
	}

	return pos - 1, nil
}

// ResolveTaskID returns the id of the task referred to either by its id or by
// its 1-based position in the area
func (s *Service) ResolveTaskID(key, ref string) (string, error) {
	area, err := s.Area(key)
	if err != nil {
		return "", err
	}

	if area.FindTask(ref) != -1 {
		return ref, nil
	}

	if utils.IsNumber(ref) {
		idx, err := parseIndex(ref, len(area.Tasks))
		if err == nil {
			return area.Tasks[idx].ID, nil
		}
	}

	return "", errors.Wrap(ErrTaskNotFound, ref)
}

// ResolveSubtaskID returns the id of the subtask referred to either by its id
// or by its 1-based position in the task
func (s *Service) ResolveSubtaskID(key, taskID, ref string) (string, error) {
	area, err := s.Area(key)
	if err != nil {
		return "", err
	}

	t, err := findTask(&area, taskID)
	if err != nil {
		return "", err
	}

	if _, err := findSubtask(t, ref); err == nil {
		return ref, nil
	}

	if utils.IsNumber(ref) {
		idx, err := parseIndex(ref, len(t.Subtasks))
		if err == nil {
			return t.Subtasks[idx].ID, nil
		}
	}

	return "", errors.Wrap(ErrSubtaskNotFound, ref)
}

// AddTask appends a new task to the area
func (s *Service) AddTask(key, text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if err := validate.Text(text); err != nil {
		return model.Task{}, err
	}

	t := model.Task{
		ID:       s.genID(),
		Text:     text,
		Subtasks: []model.Subtask{},
	}

	_, err := s.mutate(key, func(a *model.Area) error {
		a.Tasks = append(a.Tasks, t)
		return nil
	})
	if err != nil {
		return model.Task{}, err
	}

	return t, nil
}

// EditTask replaces the text of a task
func (s *Service) EditTask(key, taskID, text string) (model.Task, error) {
	text = strings.TrimSpace(text)
	if err := validate.Text(text); err != nil {
		return model.Task{}, err
	}

	var ret model.Task
	_, err := s.mutate(key, func(a *model.Area) error {
		t, err := findTask(a, taskID)
		if err != nil {
			return err
		}

		t.Text = text
		ret = t.Clone()
		return nil
	})

	return ret, err
}

// ToggleTask flips the completion of a task
func (s *Service) ToggleTask(key, taskID string) (model.Task, error) {
	var ret model.Task
	_, err := s.mutate(key, func(a *model.Area) error {
		t, err := findTask(a, taskID)
		if err != nil {
			return err
		}

		t.Completed = !t.Completed
		ret = t.Clone()
		return nil
	})

	return ret, err
}

// RemoveTask deletes a task and its subtasks
func (s *Service) RemoveTask(key, taskID string) (model.Task, error) {
	var ret model.Task
	_, err := s.mutate(key, func(a *model.Area) error {
		idx := a.FindTask(taskID)
		if idx == -1 {
			return errors.Wrap(ErrTaskNotFound, taskID)
		}

		ret = a.Tasks[idx].Clone()
		a.Tasks = append(a.Tasks[:idx], a.Tasks[idx+1:]...)
		return nil
	})

	return ret, err
}

// AddSubtask appends a new subtask to a task
func (s *Service) AddSubtask(key, taskID, text string) (model.Subtask, error) {
	text = strings.TrimSpace(text)
	if err := validate.Text(text); err != nil {
		return model.Subtask{}, err
	}

	sub := model.Subtask{
		ID:   s.genID(),
		Text: text,
	}

	_, err := s.mutate(key, func(a *model.Area) error {
		t, err := findTask(a, taskID)
		if err != nil {
			return err
		}

		t.Subtasks = append(t.Subtasks, sub)
		return nil
	})
	if err != nil {
		return model.Subtask{}, err
	}

	return sub, nil
}

// ToggleSubtask flips the completion of a subtask
func (s *Service) ToggleSubtask(key, taskID, subtaskID string) (model.Subtask, error) {
	var ret model.Subtask
	_, err := s.mutate(key, func(a *model.Area) error {
		t, err := findTask(a, taskID)
		if err != nil {
			return err
		}
		idx, err := findSubtask(t, subtaskID)
		if err != nil {
			return err
		}

		t.Subtasks[idx].Completed = !t.Subtasks[idx].Completed
		ret = t.Subtasks[idx]
		return nil
	})

	return ret, err
}

// RemoveSubtask deletes a subtask
func (s *Service) RemoveSubtask(key, taskID, subtaskID string) (model.Subtask, error) {
	var ret model.Subtask
	_, err := s.mutate(key, func(a *model.Area) error {
		t, err := findTask(a, taskID)
		if err != nil {
			return err
		}
		idx, err := findSubtask(t, subtaskID)
		if err != nil {
			return err
		}

		ret = t.Subtasks[idx]
		t.Subtasks = append(t.Subtasks[:idx], t.Subtasks[idx+1:]...)
		return nil
	})

	return ret, err
}

// SetGoal replaces the goal of an area
func (s *Service) SetGoal(key, goal string) (model.Area, error) {
	goal = strings.TrimSpace(goal)
	if err := validate.Goal(goal); err != nil {
		return model.Area{}, err
	}

	return s.mutate(key, func(a *model.Area) error {
		a.Goal = goal
		return nil
	})
}

// SetProgress sets the progress of an area, in percent
func (s *Service) SetProgress(key string, progress int) (model.Area, error) {
	if err := validate.Progress(progress); err != nil {
		return model.Area{}, err
	}

	return s.mutate(key, func(a *model.Area) error {
		a.Progress = progress
		return nil
	})
}

// LogTime adds hours to the time spent on an area
func (s *Service) LogTime(key string, hours float64) (model.Area, error) {
	if err := validate.Hours(hours); err != nil {
		return model.Area{}, err
	}

	return s.mutate(key, func(a *model.Area) error {
		a.TimeSpent += hours
		return nil
	})
}

// AddMilestones changes the milestone count of an area by delta. The count
// never goes below zero.
func (s *Service) AddMilestones(key string, delta int) (model.Area, error) {
	return s.mutate(key, func(a *model.Area) error {
		a.Milestones = max(a.Milestones+delta, 0)
		return nil
	})
}

// SetStreak sets the streak of an area, in days
func (s *Service) SetStreak(key string, days int) (model.Area, error) {
	if err := validate.Streak(days); err != nil {
		return model.Area{}, err
	}

	return s.mutate(key, func(a *model.Area) error {
		a.Streak = days
		return nil
	})
}

// Reset replaces the snapshot with the default areas. The result is dirty
// so that it is pushed on the next sync.
func (s *Service) Reset() *store.PendingWrite {
	return s.track(s.store.Save(model.Defaults(), true))
}
