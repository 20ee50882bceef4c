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

// Package model defines the goal-tracking data held by the local store and
// exchanged with the remote store: areas, their tasks, and the subtasks
// of each task.
package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"

	"github.com/pkg/errors"
)

const (
	// AreaOverall is the summary area. It lives only on the device.
	AreaOverall = "overall"
	// AreaBusiness is the business area
	AreaBusiness = "business"
	// AreaTech is the tech area
	AreaTech = "tech"
	// AreaPhysical is the physical area
	AreaPhysical = "physical"
	// AreaSocial is the social area
	AreaSocial = "social"
	// AreaMisc is the misc area
	AreaMisc = "misc"
)

// AreaKeys lists the fixed area keys in display order
var AreaKeys = []string{AreaOverall, AreaBusiness, AreaTech, AreaPhysical, AreaSocial, AreaMisc}

// IsSyncable reports whether the area with the given key is pushed to the
// remote store
func IsSyncable(key string) bool {
	return key != AreaOverall
}

// Subtask is a smaller action item within a task
type Subtask struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// UnmarshalJSON decodes a subtask, accepting the legacy bare string form
func (s *Subtask) UnmarshalJSON(b []byte) error {
	if text, ok, err := decodeLegacyString(b); ok || err != nil {
		*s = Subtask{Text: text}
		return err
	}

	type plain Subtask
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return errors.Wrap(err, "decoding subtask")
	}
	*s = Subtask(p)

	return nil
}

// Task is an action item within an area. Its identifier is the only key
// used to match local and remote copies.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Subtasks  []Subtask `json:"subtasks"`
}

// UnmarshalJSON decodes a task, accepting the legacy bare string form. A
// legacy task has no identifier until it is normalized.
func (t *Task) UnmarshalJSON(b []byte) error {
	if text, ok, err := decodeLegacyString(b); ok || err != nil {
		*t = Task{Text: text, Subtasks: []Subtask{}}
		return err
	}

	type plain Task
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return errors.Wrap(err, "decoding task")
	}
	if p.Subtasks == nil {
		p.Subtasks = []Subtask{}
	}
	*t = Task(p)

	return nil
}

func decodeLegacyString(b []byte) (string, bool, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false, nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return "", true, errors.Wrap(err, "decoding legacy string")
	}

	return s, true, nil
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	ret := t
	ret.Subtasks = make([]Subtask, len(t.Subtasks))
	copy(ret.Subtasks, t.Subtasks)

	return ret
}

// CompletedSubtasks returns the number of completed subtasks
func (t Task) CompletedSubtasks() int {
	var n int
	for _, s := range t.Subtasks {
		if s.Completed {
			n++
		}
	}

	return n
}

// AreaHandle identifies an area record in the remote store
type AreaHandle string

// AreaFields are the scalar fields of an area, as pushed to the remote store
type AreaFields struct {
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Goal       string  `json:"goal"`
	Progress   int     `json:"progress"`
	TimeSpent  float64 `json:"time_spent"`
	Milestones int     `json:"milestones"`
	Streak     int     `json:"streak"`
}

// Area is a life domain tracked by the user
type Area struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon"`
	Goal       string  `json:"goal"`
	Progress   int     `json:"progress"`
	TimeSpent  float64 `json:"timeSpent"`
	Milestones int     `json:"milestones"`
	Streak     int     `json:"streak"`
	Tasks      []Task  `json:"nextSteps"`
}

// Fields returns the scalar fields of the area
func (a Area) Fields() AreaFields {
	return AreaFields{
		Name:       a.Name,
		Icon:       a.Icon,
		Goal:       a.Goal,
		Progress:   a.Progress,
		TimeSpent:  a.TimeSpent,
		Milestones: a.Milestones,
		Streak:     a.Streak,
	}
}

// Clone returns a deep copy of the area
func (a Area) Clone() Area {
	ret := a
	ret.Tasks = make([]Task, len(a.Tasks))
	for i, t := range a.Tasks {
		ret.Tasks[i] = t.Clone()
	}

	return ret
}

// FindTask returns the index of the task with the given id, or -1
func (a Area) FindTask(id string) int {
	for i, t := range a.Tasks {
		if t.ID == id {
			return i
		}
	}

	return -1
}

// Snapshot is one complete state of the dataset, keyed by area key
type Snapshot map[string]Area

// Clone returns a deep copy of the snapshot. A nil snapshot stays nil.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}

	ret := make(Snapshot, len(s))
	for k, a := range s {
		ret[k] = a.Clone()
	}

	return ret
}

// Keys returns the area keys in display order. Keys outside the fixed set
// follow in lexical order.
func (s Snapshot) Keys() []string {
	var ret []string
	known := map[string]bool{}

	for _, k := range AreaKeys {
		known[k] = true
		if _, ok := s[k]; ok {
			ret = append(ret, k)
		}
	}

	var others []string
	for k := range s {
		if !known[k] {
			others = append(others, k)
		}
	}
	sort.Strings(others)

	return append(ret, others...)
}

// SyncRecord is the metadata kept alongside the local snapshot
type SyncRecord struct {
	NeedsSync    bool
	LastModified time.Time
	// Revision increases with every write of the snapshot
	Revision int64
}
