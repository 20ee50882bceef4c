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
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/store"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/pkg/errors"
)

type resultLog struct {
	mu       sync.Mutex
	triggers []string
}

func (l *resultLog) record(trigger string, res Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.triggers = append(l.triggers, trigger)
}

func (l *resultLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string{}, l.triggers...)
}

func setupDaemon(t *testing.T, env *testEnv, prober *fakeProber, dbPath string) (*Daemon, *resultLog) {
	results := &resultLog{}

	d := NewDaemon(DaemonParams{
		Orchestrator: env.orch,
		Store:        env.store,
		Prober:       prober,
		Clock:        env.clock,
		Interval:     time.Hour,
		DBPath:       dbPath,
		OnResult:     results.record,
	})

	return d, results
}

func TestDaemonTick(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", nil)
	prober := &fakeProber{err: errUnreachable}
	d, results := setupDaemon(t, env, prober, "")

	// Execute and test
	d.Tick()
	assert.Equal(t, d.Online(), false, "offline tick online mismatch")
	assert.Equal(t, len(results.get()), 0, "offline tick should not sync")

	prober.setErr(nil)
	d.Tick()
	assert.Equal(t, d.Online(), true, "online mismatch")
	assert.DeepEqual(t, results.get(), []string{"connectivity regained"}, "regained connectivity should sync")

	d.Tick()
	assert.Equal(t, len(results.get()), 1, "clean tick should not sync")

	mustSaveNow(t, env.store, localSnapshot(), true)
	d.Tick()
	assert.DeepEqual(t, results.get(), []string{"connectivity regained", "periodic check"}, "dirty tick should sync")
	assert.Equal(t, mustIsDirty(t, env.store), false, "dirty mismatch")
}

func TestDaemonOnChange(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", nil)
	d, results := setupDaemon(t, env, &fakeProber{}, "")
	d.Tick()
	mustSaveNow(t, env.store, localSnapshot(), true)

	// Execute and test
	d.OnChange()
	assert.DeepEqual(t, results.get(), []string{"connectivity regained"}, "change right after a sync should wait")

	env.clock.Advance(time.Hour)
	d.OnChange()
	assert.DeepEqual(t, results.get(), []string{"connectivity regained", "database change"}, "change should sync")
	assert.Equal(t, mustIsDirty(t, env.store), false, "dirty mismatch")
}

func TestDaemonStopWaitsForSync(t *testing.T) {
	// Setup
	env := setupEnv(t, "u1", remoteSnapshot())
	mustSaveNow(t, env.store, localSnapshot(), true)
	d, results := setupDaemon(t, env, &fakeProber{}, "")
	env.remote.blockNextFetch(true)

	go d.Tick()
	<-env.remote.entered

	// Execute
	stopped := make(chan struct{})
	go func() {
		d.Stop()
		close(stopped)
	}()

	// Test
	select {
	case <-stopped:
		t.Fatal("stop returned while a sync was running")
	case <-time.After(50 * time.Millisecond):
	}

	env.remote.release()
	<-stopped
	assert.DeepEqual(t, results.get(), []string{"connectivity regained"}, "triggers mismatch")
	assert.Equal(t, mustIsDirty(t, env.store), false, "dirty mismatch")

	res := d.trigger("after stop")
	assert.Equal(t, res.Reason, ReasonStopped, "reason after stop mismatch")
	assert.Equal(t, env.remote.getFetchCount(), 1, "no sync should start after stop")
}

func TestDaemonStart(t *testing.T) {
	// Setup
	db, dbPath := database.InitTestFileDB(t)
	c := clock.NewMock()
	s := store.New(db, c, store.DefaultDebounce)
	remote := newFakeRemote(nil)
	orch := New(Params{
		Store:    s,
		Remote:   remote,
		Identity: fakeIdentity{userID: "u1"},
		Clock:    c,
	})
	mustSaveNow(t, s, localSnapshot(), true)

	synced := make(chan string, 10)
	d := NewDaemon(DaemonParams{
		Orchestrator: orch,
		Store:        s,
		Prober:       &fakeProber{},
		Clock:        c,
		Interval:     time.Hour,
		DBPath:       dbPath,
		OnResult: func(trigger string, res Result) {
			synced <- trigger
		},
	})

	// Execute
	if err := d.Start(context.Background()); err != nil {
		t.Fatal(errors.Wrap(err, "starting"))
	}
	defer d.Stop()

	// Test
	assert.Equal(t, <-synced, "startup", "startup trigger mismatch")
	assert.Equal(t, mustIsDirty(t, s), false, "startup sync should clean")

	c.Advance(time.Hour)
	mustSaveNow(t, s, localSnapshot(), true)
	now := time.Now().Add(time.Second)
	if err := os.Chtimes(dbPath, now, now); err != nil {
		t.Fatal(errors.Wrap(err, "touching database"))
	}

	select {
	case trigger := <-synced:
		assert.Equal(t, trigger, "database change", "change trigger mismatch")
	case <-time.After(10 * time.Second):
		t.Fatal("database change did not trigger a sync")
	}
}
