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
	"sync"
	"testing"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/dreambuilder/dreambuilder/pkg/cli/store"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/pkg/errors"
)

func localSnapshot() model.Snapshot {
	return model.Snapshot{
		model.AreaOverall: {
			ID:    model.AreaOverall,
			Name:  "Overall",
			Tasks: []model.Task{},
		},
		model.AreaBusiness: {
			ID:       model.AreaBusiness,
			Name:     "Business",
			Progress: 10,
			Tasks: []model.Task{
				{ID: "biz-1", Text: "Get resort client", Completed: false, Subtasks: []model.Subtask{}},
			},
		},
	}
}

func remoteSnapshot() model.Snapshot {
	return model.Snapshot{
		model.AreaBusiness: {
			ID:       model.AreaBusiness,
			Name:     "Business",
			Progress: 30,
			Tasks: []model.Task{
				{ID: "biz-1", Text: "Get resort client", Completed: true, Subtasks: []model.Subtask{}},
				{ID: "biz-2", Text: "Build portfolio", Completed: false, Subtasks: []model.Subtask{}},
			},
		},
	}
}

type testEnv struct {
	store    *store.Store
	clock    *clock.Mock
	remote   *fakeRemote
	orch     *Orchestrator
	statesMu sync.Mutex
	states   []State
}

func (e *testEnv) getStates() []State {
	e.statesMu.Lock()
	defer e.statesMu.Unlock()

	return append([]State{}, e.states...)
}

func setupEnv(t *testing.T, userID string, remote model.Snapshot) *testEnv {
	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()

	env := &testEnv{
		store:  store.New(db, c, store.DefaultDebounce),
		clock:  c,
		remote: newFakeRemote(remote),
	}
	env.orch = New(Params{
		Store:    env.store,
		Remote:   env.remote,
		Identity: fakeIdentity{userID: userID},
		Clock:    c,
		OnStateChange: func(s State) {
			env.statesMu.Lock()
			env.states = append(env.states, s)
			env.statesMu.Unlock()
		},
	})

	return env
}

func mustSaveNow(t *testing.T, s *store.Store, snap model.Snapshot, markDirty bool) {
	if _, err := s.SaveNow(snap, markDirty); err != nil {
		t.Fatal(errors.Wrap(err, "saving snapshot"))
	}
}

func mustIsDirty(t *testing.T, s *store.Store) bool {
	dirty, err := s.IsDirty()
	if err != nil {
		t.Fatal(errors.Wrap(err, "checking dirty"))
	}

	return dirty
}

func TestSyncNow(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", remoteSnapshot())
	mustSaveNow(t, env.store, localSnapshot(), true)

	// Execute
	res := env.orch.SyncNow(context.Background())

	// Test
	assert.Equal(t, res.Success, true, "success mismatch")
	assert.Equal(t, res.Reason, "", "reason mismatch")
	assert.Equal(t, res.SyncedCount, 1, "synced count mismatch")
	assert.Equal(t, res.ErrorCount, 0, "error count mismatch")
	assert.Equal(t, mustIsDirty(t, env.store), false, "dirty mismatch")
	assert.DeepEqual(t, env.getStates(), []State{Syncing, Idle}, "states mismatch")
	assert.Equal(t, env.orch.State(), Idle, "state mismatch")

	local, _, err := env.store.Load()
	if err != nil {
		t.Fatal(errors.Wrap(err, "loading"))
	}
	biz := local[model.AreaBusiness]
	assert.Equal(t, len(biz.Tasks), 2, "task count mismatch")
	assert.Equal(t, biz.Tasks[0].ID, "biz-1", "first task mismatch")
	assert.Equal(t, biz.Tasks[0].Completed, true, "completion should stick")
	assert.Equal(t, biz.Tasks[1].ID, "biz-2", "second task mismatch")
	assert.Equal(t, biz.Progress, 30, "progress mismatch")

	remote := env.remote.getSnapshot()
	assert.Equal(t, len(remote[model.AreaBusiness].Tasks), 2, "remote task count mismatch")
	_, ok := remote[model.AreaOverall]
	assert.Equal(t, ok, false, "overall should not be pushed")

	_, ok, err = env.store.LastSync()
	if err != nil {
		t.Fatal(errors.Wrap(err, "reading last sync"))
	}
	assert.Equal(t, ok, true, "last sync should be recorded")
}

func TestSyncNowFlushesPendingSave(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", nil)
	env.store.Save(localSnapshot(), true)

	// Execute
	res := env.orch.SyncNow(context.Background())

	// Test
	assert.Equal(t, res.Success, true, "success mismatch")
	assert.Equal(t, len(env.remote.getSnapshot()[model.AreaBusiness].Tasks), 1, "pending save should be pushed")
	assert.Equal(t, mustIsDirty(t, env.store), false, "dirty mismatch")
}

func TestSyncNowUnsuccessful(t *testing.T) {
	testCases := []struct {
		name           string
		userID         string
		local          model.Snapshot
		fetchErr       error
		failKeys       []string
		expectedReason string
		expectedSynced int
		expectedErrors int
		expectedDirty  bool
	}{
		{
			name:           "local only",
			userID:         "",
			local:          localSnapshot(),
			expectedReason: ReasonLocalOnly,
			expectedDirty:  true,
		},
		{
			name:           "no local data",
			userID:         "u1",
			local:          nil,
			expectedReason: ReasonNoLocalData,
			expectedDirty:  false,
		},
		{
			name:           "fetch failure",
			userID:         "u1",
			local:          localSnapshot(),
			fetchErr:       errUnreachable,
			expectedReason: ReasonRemoteUnavailable,
			expectedDirty:  true,
		},
		{
			name:   "partial failure",
			userID: "u1",
			local: func() model.Snapshot {
				s := localSnapshot()
				s[model.AreaTech] = model.Area{ID: model.AreaTech, Name: "Tech", Tasks: []model.Task{}}
				return s
			}(),
			failKeys:       []string{model.AreaTech},
			expectedReason: ReasonPartialFailure,
			expectedSynced: 1,
			expectedErrors: 1,
			expectedDirty:  true,
		},
		{
			name:           "every push failing",
			userID:         "u1",
			local:          localSnapshot(),
			failKeys:       []string{model.AreaBusiness},
			expectedReason: ReasonRemoteUnavailable,
			expectedSynced: 0,
			expectedErrors: 1,
			expectedDirty:  true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Setup
			env := setupEnv(t, tc.userID, nil)
			env.remote.fetchErr = tc.fetchErr
			for _, k := range tc.failKeys {
				env.remote.failKeys[k] = true
			}
			if tc.local != nil {
				mustSaveNow(t, env.store, tc.local, true)
			}

			// Execute
			res := env.orch.SyncNow(context.Background())

			// Test
			assert.Equal(t, res.Success, false, "success mismatch")
			assert.Equal(t, res.Reason, tc.expectedReason, "reason mismatch")
			assert.Equal(t, res.SyncedCount, tc.expectedSynced, "synced count mismatch")
			assert.Equal(t, res.ErrorCount, tc.expectedErrors, "error count mismatch")
			assert.Equal(t, mustIsDirty(t, env.store), tc.expectedDirty, "dirty mismatch")
			assert.Equal(t, env.orch.State(), Idle, "state mismatch")
		})
	}
}

func TestSyncNowStorageError(t *testing.T) {
	// Setup
	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()
	s := store.New(db, c, store.DefaultDebounce)
	orch := New(Params{
		Store:    s,
		Remote:   newFakeRemote(nil),
		Identity: fakeIdentity{userID: "u1"},
		Clock:    c,
	})
	db.Close()

	// Execute
	res := orch.SyncNow(context.Background())

	// Test
	assert.Equal(t, res.Success, false, "success mismatch")
	assert.Equal(t, res.Reason, ReasonStorageError, "reason mismatch")
	var storageErr *store.StorageError
	assert.Equal(t, errors.As(res.Err, &storageErr), true, "error should wrap a StorageError")
}

type panickingIdentity struct{}

func (panickingIdentity) CurrentUserID(ctx context.Context) (string, error) {
	panic("malformed session")
}

func TestSyncNowRecoversPanic(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", nil)
	env.orch.identity = panickingIdentity{}
	mustSaveNow(t, env.store, localSnapshot(), true)

	// Execute
	res := env.orch.SyncNow(context.Background())

	// Test
	assert.Equal(t, res.Reason, ReasonStorageError, "reason mismatch")
	assert.Equal(t, env.orch.State(), Idle, "state mismatch")
	assert.Equal(t, mustIsDirty(t, env.store), true, "dirty mismatch")
}

func TestSyncNowInProgress(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", remoteSnapshot())
	mustSaveNow(t, env.store, localSnapshot(), true)
	env.remote.blockNextFetch(false)

	results := make(chan Result)
	go func() {
		results <- env.orch.SyncNow(context.Background())
	}()
	<-env.remote.entered

	// Execute
	second := env.orch.SyncNow(context.Background())

	// Test
	assert.Equal(t, second.Success, false, "success mismatch")
	assert.Equal(t, second.Reason, ReasonInProgress, "reason mismatch")
	assert.Equal(t, env.remote.getFetchCount(), 1, "second sync should do no remote work")
	assert.Equal(t, env.orch.State(), Syncing, "state mismatch")

	env.remote.release()
	first := <-results
	assert.Equal(t, first.Success, true, "first sync should succeed")
	assert.Equal(t, env.orch.State(), Idle, "state after sync mismatch")
}

func TestSyncNowTimeout(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", remoteSnapshot())
	mustSaveNow(t, env.store, localSnapshot(), true)
	env.remote.blockNextFetch(false)

	results := make(chan Result)
	go func() {
		results <- env.orch.SyncNow(context.Background())
	}()
	<-env.remote.entered

	// Execute
	env.clock.Advance(DefaultTimeout)
	res := <-results

	// Test
	assert.Equal(t, res.Success, false, "success mismatch")
	assert.Equal(t, res.Reason, ReasonTimedOut, "reason mismatch")
	assert.Equal(t, env.orch.State(), Idle, "state mismatch")
	assert.DeepEqual(t, env.getStates(), []State{Syncing, TimedOut, Idle}, "states mismatch")
	assert.Equal(t, mustIsDirty(t, env.store), true, "dirty mismatch")
}

func TestSyncNowTimeoutStuckCall(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", remoteSnapshot())
	mustSaveNow(t, env.store, localSnapshot(), true)
	env.remote.blockNextFetch(true)

	results := make(chan Result)
	go func() {
		results <- env.orch.SyncNow(context.Background())
	}()
	<-env.remote.entered

	// Execute
	env.clock.Advance(DefaultTimeout + time.Second)
	second := env.orch.SyncNow(context.Background())

	// Test
	assert.Equal(t, second.Success, true, "a new sync should run after the timeout")
	assert.Equal(t, mustIsDirty(t, env.store), false, "dirty after second sync mismatch")

	env.remote.release()
	first := <-results
	assert.Equal(t, first.Reason, ReasonTimedOut, "abandoned sync reason mismatch")
	assert.Equal(t, env.orch.State(), Idle, "state mismatch")
	assert.Equal(t, mustIsDirty(t, env.store), false, "abandoned sync should not write")
}

// editingStore saves an edit right before the dirty flag is cleared for
// the first time
type editingStore struct {
	*store.Store
	t      *testing.T
	edit   model.Snapshot
	edited bool
}

func (s *editingStore) MarkCleanAt(revision int64) (bool, error) {
	if !s.edited {
		s.edited = true
		mustSaveNow(s.t, s.Store, s.edit, true)
	}

	return s.Store.MarkCleanAt(revision)
}

func TestSyncNowEditDuringSync(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", remoteSnapshot())
	mustSaveNow(t, env.store, localSnapshot(), true)

	edited := localSnapshot()
	biz := edited[model.AreaBusiness]
	biz.Goal = "edited while syncing"
	edited[model.AreaBusiness] = biz
	env.orch.store = &editingStore{Store: env.store, t: t, edit: edited}

	// Execute
	res := env.orch.SyncNow(context.Background())

	// Test
	assert.Equal(t, res.Success, true, "success mismatch")
	assert.Equal(t, res.StillDirty, true, "still dirty mismatch")
	assert.Equal(t, mustIsDirty(t, env.store), true, "edit made during the sync should stay dirty")

	// The next run pushes the edit and clears the flag
	res = env.orch.SyncNow(context.Background())
	assert.Equal(t, res.Success, true, "second success mismatch")
	assert.Equal(t, res.StillDirty, false, "second still dirty mismatch")
	assert.Equal(t, mustIsDirty(t, env.store), false, "dirty after second sync mismatch")
}

func TestStateString(t *testing.T) {
	testCases := []struct {
		state    State
		expected string
	}{
		{Idle, "idle"},
		{Syncing, "syncing"},
		{TimedOut, "timed out"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.state.String(), tc.expected, "string mismatch")
	}
}
