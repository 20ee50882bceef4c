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

// Package syncer sequences pull, merge and push cycles between the local
// store and the remote store, and guards against concurrent runs.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/merge"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/pkg/errors"
)

// DefaultTimeout is the wall clock ceiling of a single sync
const DefaultTimeout = 30 * time.Second

// State is the state of the orchestrator
type State int

const (
	// Idle means no sync is running
	Idle State = iota
	// Syncing means a sync is in flight
	Syncing
	// TimedOut means the running sync exceeded the timeout. The orchestrator
	// moves to Idle immediately after.
	TimedOut
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Syncing:
		return "syncing"
	case TimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Reasons reported by an unsuccessful sync
const (
	ReasonInProgress        = "sync_in_progress"
	ReasonLocalOnly         = "local_only"
	ReasonNoLocalData       = "no_local_data"
	ReasonStorageError      = "storage_error"
	ReasonRemoteUnavailable = "remote_unavailable"
	ReasonPartialFailure    = "partial_failure"
	ReasonTimedOut          = "timed_out"
	// ReasonStopped is returned by a daemon that is shutting down
	ReasonStopped = "stopped"
)

// Result is the outcome of a sync
type Result struct {
	Success bool
	// Reason is empty on success
	Reason      string
	SyncedCount int
	ErrorCount  int
	// StillDirty is set on success when the local snapshot was edited
	// during the run. The edit is pushed by the next sync.
	StillDirty bool
	// Err holds the underlying failure, for logging only
	Err error
}

// Remote is the remote store
type Remote interface {
	// FetchSnapshot returns nil if the user has no remote data
	FetchSnapshot(ctx context.Context, userID string) (model.Snapshot, error)
	UpsertArea(ctx context.Context, userID, areaKey string, fields model.AreaFields) (model.AreaHandle, error)
	ReplaceTasks(ctx context.Context, area model.AreaHandle, tasks []model.Task) error
}

// Identity resolves the current user. An empty id means local-only mode.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// LocalStore is the part of the local durable store used by a sync
type LocalStore interface {
	Flush() error
	Load() (model.Snapshot, bool, error)
	SaveNow(snap model.Snapshot, markDirty bool) (int64, error)
	MarkCleanAt(revision int64) (bool, error)
	RecordSync(at time.Time) error
}

// Params are the dependencies of an Orchestrator
type Params struct {
	Store    LocalStore
	Remote   Remote
	Identity Identity
	Clock    clock.Clock
	// Timeout defaults to DefaultTimeout
	Timeout time.Duration
	// OnStateChange is called with the orchestrator locked and must not
	// call back into it
	OnStateChange func(State)
}

// Orchestrator runs syncs one at a time
type Orchestrator struct {
	store         LocalStore
	remote        Remote
	identity      Identity
	clock         clock.Clock
	timeout       time.Duration
	onStateChange func(State)

	mu    sync.Mutex
	state State
	// gen identifies the run currently holding the in-flight flag
	gen uint64
}

// New returns an idle orchestrator
func New(p Params) *Orchestrator {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Orchestrator{
		store:         p.Store,
		remote:        p.Remote,
		identity:      p.Identity,
		clock:         p.Clock,
		timeout:       timeout,
		onStateChange: p.OnStateChange,
	}
}

// State returns the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.state
}

func (o *Orchestrator) setStateLocked(s State) {
	o.state = s
	if o.onStateChange != nil {
		o.onStateChange(s)
	}
}

// SyncNow pulls the remote snapshot, merges it into the local one, and pushes
// the result. If a sync is already running it returns immediately with
// ReasonInProgress and does nothing.
func (o *Orchestrator) SyncNow(ctx context.Context) Result {
	o.mu.Lock()
	if o.state == Syncing {
		o.mu.Unlock()
		log.Debug("sync already in progress\n")
		return Result{Reason: ReasonInProgress}
	}
	o.gen++
	gen := o.gen
	o.setStateLocked(Syncing)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	watchdog := o.clock.AfterFunc(o.timeout, func() {
		o.expire(gen, cancel)
	})
	o.mu.Unlock()

	res := o.run(ctx, gen)
	watchdog.Stop()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gen != gen || o.state != Syncing {
		return Result{
			Reason:      ReasonTimedOut,
			SyncedCount: res.SyncedCount,
			ErrorCount:  res.ErrorCount,
			Err:         errors.Errorf("sync exceeded %s", o.timeout),
		}
	}
	o.setStateLocked(Idle)

	return res
}

// expire force-clears the in-flight flag of the given run and cancels its
// outstanding calls
func (o *Orchestrator) expire(gen uint64, cancel context.CancelFunc) {
	o.mu.Lock()
	if o.gen != gen || o.state != Syncing {
		o.mu.Unlock()
		return
	}
	log.Warnf("sync exceeded %s, abandoning it\n", o.timeout)
	o.setStateLocked(TimedOut)
	o.gen++
	o.setStateLocked(Idle)
	o.mu.Unlock()

	cancel()
}

func (o *Orchestrator) run(ctx context.Context, gen uint64) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("recovered from panic during sync: %v\n", r)
			res = Result{Reason: ReasonStorageError, Err: errors.Errorf("panic during sync: %v", r)}
		}
	}()

	if err := o.store.Flush(); err != nil {
		return Result{Reason: ReasonStorageError, Err: errors.Wrap(err, "flushing pending save")}
	}

	local, ok, err := o.store.Load()
	if err != nil {
		return Result{Reason: ReasonStorageError, Err: errors.Wrap(err, "loading local snapshot")}
	}
	if !ok || len(local) == 0 {
		return Result{Reason: ReasonNoLocalData}
	}

	userID, err := o.identity.CurrentUserID(ctx)
	if err != nil {
		return Result{Reason: ReasonStorageError, Err: errors.Wrap(err, "getting the current user")}
	}
	if userID == "" {
		log.Debug("no user, staying local\n")
		return Result{Reason: ReasonLocalOnly}
	}

	remote, err := o.remote.FetchSnapshot(ctx, userID)
	if err != nil {
		return Result{Reason: ReasonRemoteUnavailable, Err: errors.Wrap(err, "fetching remote snapshot")}
	}

	// An abandoned run must not write what it fetched
	if err := ctx.Err(); err != nil {
		return Result{Reason: ReasonRemoteUnavailable, Err: errors.Wrap(err, "fetching remote snapshot")}
	}

	merged := merge.Merge(local, remote)

	revision, err := o.store.SaveNow(merged, true)
	if err != nil {
		return Result{Reason: ReasonStorageError, Err: errors.Wrap(err, "saving merged snapshot")}
	}

	var synced, failed int
	var lastErr error
	for _, key := range merged.Keys() {
		if !model.IsSyncable(key) {
			continue
		}

		if err := o.push(ctx, userID, key, merged[key]); err != nil {
			log.Debug("pushing %s: %v\n", key, err)
			failed++
			lastErr = err
			continue
		}
		synced++
	}

	if failed > 0 {
		reason := ReasonPartialFailure
		if synced == 0 {
			reason = ReasonRemoteUnavailable
		}

		return Result{Reason: reason, SyncedCount: synced, ErrorCount: failed, Err: lastErr}
	}

	return o.finalize(gen, revision, synced)
}

func (o *Orchestrator) push(ctx context.Context, userID, key string, area model.Area) error {
	handle, err := o.remote.UpsertArea(ctx, userID, key, area.Fields())
	if err != nil {
		return errors.Wrap(err, "upserting area")
	}

	if err := o.remote.ReplaceTasks(ctx, handle, area.Tasks); err != nil {
		return errors.Wrap(err, "replacing tasks")
	}

	return nil
}

// finalize clears the dirty flag unless the run was abandoned or the local
// snapshot changed after the merge was saved
func (o *Orchestrator) finalize(gen uint64, revision int64, synced int) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.gen != gen {
		return Result{Reason: ReasonTimedOut, SyncedCount: synced}
	}

	cleared, err := o.store.MarkCleanAt(revision)
	if err != nil {
		return Result{Reason: ReasonStorageError, SyncedCount: synced, Err: errors.Wrap(err, "marking clean")}
	}
	if !cleared {
		log.Debug("snapshot changed during sync, leaving it dirty\n")
	}

	if err := o.store.RecordSync(o.clock.Now()); err != nil {
		log.Debug("recording sync time: %v\n", err)
	}

	return Result{Success: true, SyncedCount: synced, StillDirty: !cleared}
}
