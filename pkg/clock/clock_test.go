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

package clock

import (
	"testing"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
)

func TestMockAdvance(t *testing.T) {
	// Setup
	c := NewMock()
	var fired []string

	c.AfterFunc(300*time.Millisecond, func() { fired = append(fired, "second") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "first") })
	late := c.AfterFunc(time.Second, func() { fired = append(fired, "late") })

	// Execute
	c.Advance(500 * time.Millisecond)

	// Test
	assert.DeepEqual(t, fired, []string{"first", "second"}, "fired mismatch")
	assert.Equal(t, c.PendingTimers(), 1, "pending timers mismatch")
	assert.Equal(t, late.Stop(), true, "stopping a pending timer")
	assert.Equal(t, late.Stop(), false, "stopping a stopped timer")

	c.Advance(time.Second)
	assert.DeepEqual(t, fired, []string{"first", "second"}, "stopped timer fired")
}

func TestMockStopAfterFire(t *testing.T) {
	c := NewMock()

	var count int
	timer := c.AfterFunc(time.Second, func() { count++ })
	c.Advance(time.Second)
	c.Advance(time.Second)

	assert.Equal(t, count, 1, "count mismatch")
	assert.Equal(t, timer.Stop(), false, "stop result mismatch")
}

func TestMockSetNow(t *testing.T) {
	c := NewMock()
	ts := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)

	c.SetNow(ts)

	assert.Equal(t, c.Now(), ts, "now mismatch")
}
