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
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/pkg/errors"
	"github.com/radovskyb/watcher"
	"github.com/robfig/cron"
)

// DefaultInterval is how often the daemon checks for unsynced edits
const DefaultInterval = 10 * time.Second

// watchPollInterval is how often the database file is polled for changes
const watchPollInterval = 500 * time.Millisecond

// Prober checks whether the remote store is reachable
type Prober interface {
	Ping(ctx context.Context) error
}

// DirtyChecker reports whether the local snapshot has unsynced edits
type DirtyChecker interface {
	IsDirty() (bool, error)
}

// DaemonParams are the dependencies of a Daemon
type DaemonParams struct {
	Orchestrator *Orchestrator
	Store        DirtyChecker
	Prober       Prober
	Clock        clock.Clock
	// Interval defaults to DefaultInterval
	Interval time.Duration
	// DBPath is the database file to watch for edits made by other
	// processes. Watching is disabled if it is empty.
	DBPath string
	// OnResult is called after every sync the daemon triggers
	OnResult func(trigger string, res Result)
	// OnConnectivity is called when the remote store becomes reachable or
	// unreachable
	OnConnectivity func(online bool)
}

// Daemon triggers syncs on startup, on a schedule, when connectivity is
// regained, and when the database file changes
type Daemon struct {
	orch           *Orchestrator
	store          DirtyChecker
	prober         Prober
	clock          clock.Clock
	interval       time.Duration
	dbPath         string
	onResult       func(string, Result)
	onConnectivity func(bool)

	ctx     context.Context
	cancel  context.CancelFunc
	cron    *cron.Cron
	watcher *watcher.Watcher
	wg      sync.WaitGroup
	// runs tracks the syncs started by trigger
	runs sync.WaitGroup

	mu          sync.Mutex
	stopped     bool
	online      bool
	lastAttempt time.Time
}

// NewDaemon returns a daemon that is not yet started
func NewDaemon(p DaemonParams) *Daemon {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Daemon{
		orch:           p.Orchestrator,
		store:          p.Store,
		prober:         p.Prober,
		clock:          p.Clock,
		interval:       interval,
		dbPath:         p.DBPath,
		onResult:       p.OnResult,
		onConnectivity: p.OnConnectivity,
	}
}

// Start runs a startup sync and schedules the periodic check and the
// database watcher. It returns once they are running.
func (d *Daemon) Start(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)

	d.setOnline(d.probe())
	d.trigger("startup")

	d.cron = cron.New()
	if err := d.cron.AddFunc(fmt.Sprintf("@every %s", d.interval), d.Tick); err != nil {
		d.cancel()
		return errors.Wrap(err, "scheduling sync check")
	}
	d.cron.Start()

	if d.dbPath != "" {
		if err := d.startWatcher(); err != nil {
			d.Stop()
			return errors.Wrap(err, "watching the database")
		}
	}

	return nil
}

func (d *Daemon) startWatcher() error {
	w := watcher.New()
	w.SetMaxEvents(1)
	w.FilterOps(watcher.Write, watcher.Create)

	if err := w.Add(d.dbPath); err != nil {
		return errors.Wrapf(err, "adding %s", d.dbPath)
	}
	d.watcher = w

	d.wg.Add(2)
	go func() {
		defer d.wg.Done()
		d.watchLoop(w)
	}()
	go func() {
		defer d.wg.Done()
		if err := w.Start(watchPollInterval); err != nil {
			log.Debug("database watcher stopped: %v\n", err)
		}
	}()
	w.Wait()

	return nil
}

func (d *Daemon) watchLoop(w *watcher.Watcher) {
	for {
		select {
		case event := <-w.Event:
			log.Debug("database changed: %s\n", event.Op)
			d.OnChange()
		case err := <-w.Error:
			log.Debug("watching database: %v\n", err)
		case <-w.Closed:
			return
		}
	}
}

func (d *Daemon) baseCtx() context.Context {
	if d.ctx == nil {
		return context.Background()
	}

	return d.ctx
}

// Stop cancels the running sync, if any, releases the schedule and the
// watcher, and waits for the triggered syncs to return. No sync is started
// afterwards.
func (d *Daemon) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	if d.cron != nil {
		d.cron.Stop()
	}
	if d.watcher != nil {
		d.watcher.Close()
	}
	if d.cancel != nil {
		d.cancel()
	}

	d.wg.Wait()
	d.runs.Wait()
}

// Online reports whether the last probe reached the remote store
func (d *Daemon) Online() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.online
}

func (d *Daemon) setOnline(online bool) bool {
	d.mu.Lock()
	was := d.online
	d.online = online
	d.mu.Unlock()

	if was != online && d.onConnectivity != nil {
		d.onConnectivity(online)
	}

	return was
}

func (d *Daemon) probe() bool {
	if d.prober == nil {
		return true
	}

	ctx, cancel := context.WithTimeout(d.baseCtx(), d.interval)
	defer cancel()

	if err := d.prober.Ping(ctx); err != nil {
		log.Debug("remote unreachable: %v\n", err)
		return false
	}

	return true
}

// Tick probes connectivity and syncs if it was regained or if there are
// unsynced edits
func (d *Daemon) Tick() {
	online := d.probe()
	was := d.setOnline(online)
	if !online {
		return
	}

	if !was {
		d.trigger("connectivity regained")
		return
	}

	if d.isDirty() {
		d.trigger("periodic check")
	}
}

// OnChange syncs after the database was modified, unless a sync was
// attempted within the last interval
func (d *Daemon) OnChange() {
	d.mu.Lock()
	online := d.online
	recent := !d.lastAttempt.IsZero() && d.clock.Now().Sub(d.lastAttempt) < d.interval
	d.mu.Unlock()

	if !online || recent {
		return
	}

	if d.isDirty() {
		d.trigger("database change")
	}
}

func (d *Daemon) isDirty() bool {
	dirty, err := d.store.IsDirty()
	if err != nil {
		log.Debug("checking dirty flag: %v\n", err)
		return false
	}

	return dirty
}

func (d *Daemon) trigger(name string) Result {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return Result{Reason: ReasonStopped}
	}
	d.lastAttempt = d.clock.Now()
	d.runs.Add(1)
	d.mu.Unlock()
	defer d.runs.Done()

	log.Debug("sync triggered by %s\n", name)
	res := d.orch.SyncNow(d.baseCtx())

	if d.onResult != nil {
		d.onResult(name, res)
	}

	return res
}
