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

// Package store persists the snapshot and its sync record on the device.
// Saves are debounced so that a burst of edits results in a single write,
// and every read and write runs in its own transaction.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/consts"
	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/dreambuilder/dreambuilder/pkg/cli/tasks"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/pkg/errors"
)

// DefaultDebounce is the window within which successive saves collapse
// into one write
const DefaultDebounce = 300 * time.Millisecond

// ErrClosed is returned for saves issued after the store was closed
var ErrClosed = errors.New("store is closed")

// StorageError reports that the device store was unavailable or that a
// transaction failed. Callers keep their in-memory state and retry later.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *StorageError) Unwrap() error {
	return e.Err
}

// WriteResult is the outcome of a debounced save
type WriteResult int

const (
	// Failed means the write was attempted and returned an error
	Failed WriteResult = iota
	// Written means the snapshot was persisted
	Written
	// Superseded means a later save replaced this one before it was written
	Superseded
)

func (r WriteResult) String() string {
	switch r {
	case Written:
		return "written"
	case Superseded:
		return "superseded"
	default:
		return "failed"
	}
}

// PendingWrite is a save waiting for its debounce window to elapse
type PendingWrite struct {
	snap      model.Snapshot
	markDirty bool
	seq       int64

	once     sync.Once
	done     chan struct{}
	result   WriteResult
	revision int64
	err      error
}

func newPendingWrite(snap model.Snapshot, markDirty bool, seq int64) *PendingWrite {
	return &PendingWrite{
		snap:      snap,
		markDirty: markDirty,
		seq:       seq,
		done:      make(chan struct{}),
	}
}

func (p *PendingWrite) finish(result WriteResult, revision int64, err error) {
	p.once.Do(func() {
		p.result = result
		p.revision = revision
		p.err = err
		close(p.done)
	})
}

// Done returns a channel closed once the write is settled
func (p *PendingWrite) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the write is settled or the context is done
func (p *PendingWrite) Wait(ctx context.Context) (WriteResult, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return Failed, ctx.Err()
	}
}

// Revision returns the revision written, or zero if the write did not happen
func (p *PendingWrite) Revision() int64 {
	select {
	case <-p.done:
		return p.revision
	default:
		return 0
	}
}

// Store is the local durable store. It is safe for concurrent use.
type Store struct {
	db       *database.DB
	clock    clock.Clock
	debounce time.Duration
	genID    tasks.IDFunc

	// mu guards the pending write. writeMu serializes access to the
	// database. When both are held, mu is acquired first.
	mu      sync.Mutex
	pending *PendingWrite
	timer   clock.Timer
	seq     int64
	closed  bool

	writeMu sync.Mutex
	lastSeq int64
}

// New returns a store over the given database
func New(db *database.DB, c clock.Clock, debounce time.Duration) *Store {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Store{
		db:       db,
		clock:    c,
		debounce: debounce,
		genID:    tasks.NewIDFunc(c),
	}
}

// Save schedules the snapshot to be written once no other save arrives
// within the debounce window. A save already waiting is superseded. The
// snapshot is copied, so the caller may keep modifying its own value.
func (s *Store) Save(snap model.Snapshot, markDirty bool) *PendingWrite {
	normalized, _ := tasks.NormalizeSnapshot(snap.Clone(), s.genID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	pw := newPendingWrite(normalized, markDirty, s.seq)

	if s.closed {
		pw.finish(Failed, 0, &StorageError{Op: "save", Err: ErrClosed})
		return pw
	}

	if s.pending != nil {
		s.timer.Stop()
		s.pending.finish(Superseded, 0, nil)
	}

	s.pending = pw
	s.timer = s.clock.AfterFunc(s.debounce, func() {
		s.fire(pw)
	})

	return pw
}

func (s *Store) fire(pw *PendingWrite) {
	s.mu.Lock()
	if s.pending != pw {
		s.mu.Unlock()
		return
	}
	s.pending = nil
	s.timer = nil
	s.writeMu.Lock()
	s.mu.Unlock()

	defer s.writeMu.Unlock()
	s.commitLocked(pw)
}

// commitLocked writes a debounced save. writeMu must be held.
func (s *Store) commitLocked(pw *PendingWrite) {
	if pw.seq < s.lastSeq {
		pw.finish(Superseded, 0, nil)
		return
	}
	s.lastSeq = pw.seq

	rev, err := s.write(pw.snap, pw.markDirty)
	if err != nil {
		log.Debug("saving snapshot: %v\n", err)
		pw.finish(Failed, 0, err)
		return
	}

	pw.finish(Written, rev, nil)
}

// Flush writes the waiting save, if any, without waiting for the debounce
// window to elapse
func (s *Store) Flush() error {
	s.mu.Lock()
	pw := s.pending
	if pw == nil {
		s.mu.Unlock()
		return nil
	}
	s.timer.Stop()
	s.pending = nil
	s.timer = nil
	s.writeMu.Lock()
	s.mu.Unlock()

	defer s.writeMu.Unlock()
	s.commitLocked(pw)

	return pw.err
}

// SaveNow writes the snapshot immediately and returns the revision written.
// A debounced save still waiting is left alone and will be written after.
func (s *Store) SaveNow(snap model.Snapshot, markDirty bool) (int64, error) {
	normalized, _ := tasks.NormalizeSnapshot(snap.Clone(), s.genID)

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.write(normalized, markDirty)
}

func (s *Store) write(snap model.Snapshot, markDirty bool) (int64, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return 0, &StorageError{Op: "save", Err: errors.Wrap(err, "encoding snapshot")}
	}

	now := s.clock.Now()
	var rev int64

	err = database.RunInTx(s.db, func(tx *database.DB) error {
		prev, _, err := readSnapshot(tx)
		if err != nil {
			log.Debug("ignoring unreadable previous snapshot: %v\n", err)
		}

		rec, _, err := readRecord(tx)
		if err != nil {
			return err
		}
		rev = rec.Revision + 1

		if _, err := tx.Exec(`INSERT INTO snapshots (key, data) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET data = excluded.data`, consts.SnapshotKey, string(data)); err != nil {
			return errors.Wrap(err, "writing snapshot")
		}

		if _, err := tx.Exec(`INSERT INTO sync_records (key, needs_sync, last_modified, revision) VALUES (?, ?, ?, ?)
			ON CONFLICT (key) DO UPDATE SET needs_sync = excluded.needs_sync, last_modified = excluded.last_modified, revision = excluded.revision`,
			consts.SnapshotKey, markDirty, now.UnixMilli(), rev); err != nil {
			return errors.Wrap(err, "writing sync record")
		}

		if !markDirty {
			return clearDirtyAreas(tx)
		}

		for _, key := range changedAreas(prev, snap) {
			if _, err := tx.Exec(`INSERT INTO dirty_areas (area_key, marked_at) VALUES (?, ?)
				ON CONFLICT (area_key) DO NOTHING`, key, now.UnixMilli()); err != nil {
				return errors.Wrapf(err, "marking area %s", key)
			}
		}

		return nil
	})
	if err != nil {
		return 0, &StorageError{Op: "save", Err: err}
	}

	return rev, nil
}

// Load returns the most recently saved snapshot. The boolean is false if
// nothing was ever saved. A save still waiting for its debounce window is
// returned in place of the stored snapshot.
func (s *Store) Load() (model.Snapshot, bool, error) {
	s.mu.Lock()
	if s.pending != nil {
		snap := s.pending.snap.Clone()
		s.mu.Unlock()
		return snap, true, nil
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var ret model.Snapshot
	var found bool

	err := database.RunInTx(s.db, func(tx *database.DB) error {
		snap, ok, err := readSnapshot(tx)
		if err != nil || !ok {
			return err
		}

		normalized, changed := tasks.NormalizeSnapshot(snap, s.genID)
		if changed {
			data, err := json.Marshal(normalized)
			if err != nil {
				return errors.Wrap(err, "encoding normalized snapshot")
			}
			if _, err := tx.Exec("UPDATE snapshots SET data = ? WHERE key = ?", string(data), consts.SnapshotKey); err != nil {
				return errors.Wrap(err, "writing normalized snapshot")
			}
		}

		ret = normalized
		found = true

		return nil
	})
	if err != nil {
		return nil, false, &StorageError{Op: "load", Err: err}
	}

	return ret, found, nil
}

// Record returns the sync record. Before the first save it is the zero value.
func (s *Store) Record() (model.SyncRecord, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rec, _, err := readRecord(s.db)
	if err != nil {
		return rec, &StorageError{Op: "read record", Err: err}
	}

	return rec, nil
}

// IsDirty reports whether the snapshot has edits not yet confirmed synced
func (s *Store) IsDirty() (bool, error) {
	rec, err := s.Record()
	if err != nil {
		return false, err
	}

	return rec.NeedsSync, nil
}

// MarkClean clears the dirty flag without altering the snapshot
func (s *Store) MarkClean() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := database.RunInTx(s.db, func(tx *database.DB) error {
		if _, err := tx.Exec("UPDATE sync_records SET needs_sync = false WHERE key = ?", consts.SnapshotKey); err != nil {
			return errors.Wrap(err, "clearing dirty flag")
		}

		return clearDirtyAreas(tx)
	})
	if err != nil {
		return &StorageError{Op: "mark clean", Err: err}
	}

	return nil
}

// MarkCleanAt clears the dirty flag only if the snapshot is still at the
// given revision. It reports whether the flag was cleared.
func (s *Store) MarkCleanAt(revision int64) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var cleared bool
	err := database.RunInTx(s.db, func(tx *database.DB) error {
		res, err := tx.Exec("UPDATE sync_records SET needs_sync = false WHERE key = ? AND revision = ?", consts.SnapshotKey, revision)
		if err != nil {
			return errors.Wrap(err, "clearing dirty flag")
		}

		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "counting affected rows")
		}
		if n == 0 {
			return nil
		}
		cleared = true

		return clearDirtyAreas(tx)
	})
	if err != nil {
		return false, &StorageError{Op: "mark clean", Err: err}
	}

	return cleared, nil
}

// UnsyncedCount returns the number of areas edited since the last sync.
// A dirty snapshot counts at least one.
func (s *Store) UnsyncedCount() (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	rec, _, err := readRecord(s.db)
	if err != nil {
		return 0, &StorageError{Op: "count unsynced", Err: err}
	}
	if !rec.NeedsSync {
		return 0, nil
	}

	var count int
	if err := s.db.QueryRow("SELECT count(*) FROM dirty_areas").Scan(&count); err != nil {
		return 0, &StorageError{Op: "count unsynced", Err: errors.Wrap(err, "counting dirty areas")}
	}

	return max(count, 1), nil
}

// RecordSync stores the time of a successful sync
func (s *Store) RecordSync(at time.Time) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := database.UpsertSystem(s.db, consts.SystemLastSyncAt, strconv.FormatInt(at.Unix(), 10)); err != nil {
		return &StorageError{Op: "record sync", Err: err}
	}

	return nil
}

// LastSync returns the time of the last successful sync. The boolean is
// false if there was none.
func (s *Store) LastSync() (time.Time, bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	val, err := database.GetSystemString(s.db, consts.SystemLastSyncAt)
	if err != nil {
		return time.Time{}, false, &StorageError{Op: "read last sync", Err: err}
	}
	if val == "" {
		return time.Time{}, false, nil
	}

	ts, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, &StorageError{Op: "read last sync", Err: errors.Wrapf(err, "parsing %s", val)}
	}

	return time.Unix(ts, 0), true, nil
}

// Close writes the waiting save and rejects any further save. It does not
// close the database.
func (s *Store) Close() error {
	err := s.Flush()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return err
}

func readSnapshot(db *database.DB) (model.Snapshot, bool, error) {
	var data string
	err := db.QueryRow("SELECT data FROM snapshots WHERE key = ?", consts.SnapshotKey).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	} else if err != nil {
		return nil, false, errors.Wrap(err, "reading snapshot")
	}

	var snap model.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, false, errors.Wrap(err, "decoding snapshot")
	}
	if snap == nil {
		snap = model.Snapshot{}
	}

	return snap, true, nil
}

func readRecord(db *database.DB) (model.SyncRecord, bool, error) {
	var needsSync bool
	var lastModified, revision int64

	err := db.QueryRow("SELECT needs_sync, last_modified, revision FROM sync_records WHERE key = ?", consts.SnapshotKey).
		Scan(&needsSync, &lastModified, &revision)
	if err == sql.ErrNoRows {
		return model.SyncRecord{}, false, nil
	} else if err != nil {
		return model.SyncRecord{}, false, errors.Wrap(err, "reading sync record")
	}

	return model.SyncRecord{
		NeedsSync:    needsSync,
		LastModified: time.UnixMilli(lastModified),
		Revision:     revision,
	}, true, nil
}

func clearDirtyAreas(db *database.DB) error {
	if _, err := db.Exec("DELETE FROM dirty_areas"); err != nil {
		return errors.Wrap(err, "clearing dirty areas")
	}

	return nil
}

// changedAreas returns the keys of the areas that differ between two snapshots
func changedAreas(prev, next model.Snapshot) []string {
	var ret []string

	keys := map[string]bool{}
	for k := range prev {
		keys[k] = true
	}
	for k := range next {
		keys[k] = true
	}

	for k := range keys {
		a, okA := prev[k]
		b, okB := next[k]
		if okA != okB || !sameArea(a, b) {
			ret = append(ret, k)
		}
	}

	return ret
}

func sameArea(a, b model.Area) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}

	return bytes.Equal(ja, jb)
}
