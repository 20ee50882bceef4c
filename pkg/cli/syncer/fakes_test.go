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

package syncer

import (
	"context"
	"fmt"
	"sync"

	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/pkg/errors"
)

var errUnreachable = errors.New("unreachable")

// fakeRemote is an in-memory remote store
type fakeRemote struct {
	mu       sync.Mutex
	snapshot model.Snapshot
	// fetchErr fails every fetch
	fetchErr error
	// failKeys fails the upsert of the given areas
	failKeys map[string]bool
	// block, if set, makes the next fetch wait on it. entered is closed
	// once that fetch has started.
	block      chan struct{}
	entered    chan struct{}
	ignoreCtx  bool
	fetchCount int
	pushed     []string
}

func newFakeRemote(snap model.Snapshot) *fakeRemote {
	return &fakeRemote{
		snapshot: snap.Clone(),
		failKeys: map[string]bool{},
	}
}

func (r *fakeRemote) blockNextFetch(ignoreCtx bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.block = make(chan struct{})
	r.entered = make(chan struct{})
	r.ignoreCtx = ignoreCtx
}

func (r *fakeRemote) release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	close(r.block)
}

func (r *fakeRemote) FetchSnapshot(ctx context.Context, userID string) (model.Snapshot, error) {
	r.mu.Lock()
	r.fetchCount++
	block, entered, ignoreCtx := r.block, r.entered, r.ignoreCtx
	r.block = nil
	r.mu.Unlock()

	if block != nil {
		close(entered)

		if ignoreCtx {
			<-block
		} else {
			select {
			case <-block:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fetchErr != nil {
		return nil, r.fetchErr
	}

	return r.snapshot.Clone(), nil
}

func (r *fakeRemote) UpsertArea(ctx context.Context, userID, areaKey string, fields model.AreaFields) (model.AreaHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failKeys[areaKey] {
		return "", errors.Wrap(errUnreachable, areaKey)
	}

	if r.snapshot == nil {
		r.snapshot = model.Snapshot{}
	}
	area := r.snapshot[areaKey]
	area.ID = areaKey
	area.Name = fields.Name
	area.Icon = fields.Icon
	area.Goal = fields.Goal
	area.Progress = fields.Progress
	area.TimeSpent = fields.TimeSpent
	area.Milestones = fields.Milestones
	area.Streak = fields.Streak
	r.snapshot[areaKey] = area

	return model.AreaHandle(fmt.Sprintf("handle-%s", areaKey)), nil
}

func (r *fakeRemote) ReplaceTasks(ctx context.Context, handle model.AreaHandle, tasks []model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := string(handle)[len("handle-"):]
	area := r.snapshot[key]
	area.Tasks = model.Area{Tasks: tasks}.Clone().Tasks
	r.snapshot[key] = area
	r.pushed = append(r.pushed, key)

	return nil
}

func (r *fakeRemote) getSnapshot() model.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot.Clone()
}

func (r *fakeRemote) getFetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.fetchCount
}

type fakeIdentity struct {
	userID string
	err    error
}

func (i fakeIdentity) CurrentUserID(ctx context.Context) (string, error) {
	return i.userID, i.err
}

type fakeProber struct {
	mu  sync.Mutex
	err error
}

func (p *fakeProber) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.err = err
}

func (p *fakeProber) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}
