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

// Package clock provides an abstract layer over the standard time package
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a handle to a function scheduled with AfterFunc
type Timer interface {
	// Stop prevents the function from firing. It returns false if the
	// function already fired or the timer was already stopped.
	Stop() bool
}

// Clock is an interface to the standard library time.
// It is used to implement a real or a mock clock. The latter is used in tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type clock struct{}

func (c *clock) Now() time.Time {
	return time.Now()
}

func (c *clock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// New returns an instance of a real clock
func New() Clock {
	return &clock{}
}

// Mock is a mock instance of clock. Timers scheduled on it fire only when
// the time is moved forward with Advance.
type Mock struct {
	mu          sync.RWMutex
	currentTime time.Time
	timers      []*mockTimer
}

type mockTimer struct {
	mock  *Mock
	at    time.Time
	f     func()
	state int
}

const (
	timerPending = iota
	timerFired
	timerStopped
)

func (t *mockTimer) Stop() bool {
	t.mock.mu.Lock()
	defer t.mock.mu.Unlock()

	if t.state != timerPending {
		return false
	}
	t.state = timerStopped

	return true
}

// NewMock returns an instance of a mock clock
func NewMock() *Mock {
	return &Mock{
		currentTime: time.Date(2009, time.November, 10, 23, 0, 0, 0, time.UTC),
	}
}

// SetNow sets the current time for the mock clock without firing timers
func (c *Mock) SetNow(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = t
}

// Now returns the current time
func (c *Mock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentTime
}

// AfterFunc schedules f to run once the mock time has advanced by d
func (c *Mock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &mockTimer{
		mock: c,
		at:   c.currentTime.Add(d),
		f:    f,
	}
	c.timers = append(c.timers, t)

	return t
}

// Advance moves the mock time forward and runs, in order and on the
// calling goroutine, every timer that became due.
func (c *Mock) Advance(d time.Duration) {
	c.mu.Lock()
	c.currentTime = c.currentTime.Add(d)
	now := c.currentTime

	var due, rest []*mockTimer
	for _, t := range c.timers {
		switch {
		case t.state != timerPending:
			continue
		case !t.at.After(now):
			t.state = timerFired
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	c.timers = rest
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].at.Before(due[j].at)
	})
	for _, t := range due {
		t.f()
	}
}

// PendingTimers returns the number of timers that have neither fired nor
// been stopped
func (c *Mock) PendingTimers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	for _, t := range c.timers {
		if t.state == timerPending {
			n++
		}
	}

	return n
}
