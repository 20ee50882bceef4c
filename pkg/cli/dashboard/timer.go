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

package dashboard

import (
	"math"
	"strconv"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/consts"
	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/pkg/errors"
)

var (
	// ErrTimerRunning is an error for starting a timer while one is running
	ErrTimerRunning = errors.New("a timer is already running")
	// ErrNoTimer is an error for stopping a timer when none is running
	ErrNoTimer = errors.New("no timer is running")
)

// TimerStatus describes the running timer
type TimerStatus struct {
	Running   bool
	AreaKey   string
	StartedAt time.Time
	Elapsed   time.Duration
}

// TimerSession is a finished timer session
type TimerSession struct {
	AreaKey string
	Elapsed time.Duration
	// HoursLogged is the number of whole hours added to the area
	HoursLogged int
	// Carry is the fraction of an hour kept for the next session of the area
	Carry float64
}

func carryKey(areaKey string) string {
	return consts.SystemTimerCarryPrefix + areaKey
}

// Timer returns the status of the timer
func (s *Service) Timer() (TimerStatus, error) {
	areaKey, err := database.GetSystemString(s.db, consts.SystemTimerArea)
	if err != nil {
		return TimerStatus{}, errors.Wrap(err, "reading timer area")
	}
	if areaKey == "" {
		return TimerStatus{}, nil
	}

	val, err := database.GetSystemString(s.db, consts.SystemTimerStartedAt)
	if err != nil {
		return TimerStatus{}, errors.Wrap(err, "reading timer start")
	}
	ts, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return TimerStatus{}, errors.Wrapf(err, "parsing timer start %s", val)
	}

	startedAt := time.Unix(ts, 0)

	return TimerStatus{
		Running:   true,
		AreaKey:   areaKey,
		StartedAt: startedAt,
		Elapsed:   s.clock.Now().Sub(startedAt),
	}, nil
}

// StartTimer starts tracking time spent on an area
func (s *Service) StartTimer(key string) (TimerStatus, error) {
	if _, err := s.Area(key); err != nil {
		return TimerStatus{}, err
	}

	status, err := s.Timer()
	if err != nil {
		return TimerStatus{}, err
	}
	if status.Running {
		return status, ErrTimerRunning
	}

	now := s.clock.Now()
	err = database.RunInTx(s.db, func(tx *database.DB) error {
		if err := database.UpsertSystem(tx, consts.SystemTimerArea, key); err != nil {
			return err
		}

		return database.UpsertSystem(tx, consts.SystemTimerStartedAt, strconv.FormatInt(now.Unix(), 10))
	})
	if err != nil {
		return TimerStatus{}, errors.Wrap(err, "starting timer")
	}

	return TimerStatus{
		Running:   true,
		AreaKey:   key,
		StartedAt: time.Unix(now.Unix(), 0),
	}, nil
}

// StopTimer stops the running timer and logs the whole hours it accumulated
// on the area. The remaining fraction of an hour is carried over to the next
// session on the same area.
func (s *Service) StopTimer() (TimerSession, error) {
	status, err := s.Timer()
	if err != nil {
		return TimerSession{}, err
	}
	if !status.Running {
		return TimerSession{}, ErrNoTimer
	}

	var carry float64
	if val, err := database.GetSystemString(s.db, carryKey(status.AreaKey)); err != nil {
		return TimerSession{}, errors.Wrap(err, "reading carried time")
	} else if val != "" {
		if carry, err = strconv.ParseFloat(val, 64); err != nil {
			return TimerSession{}, errors.Wrapf(err, "parsing carried time %s", val)
		}
	}

	total := carry + max(status.Elapsed.Hours(), 0)
	whole := math.Floor(total)
	session := TimerSession{
		AreaKey:     status.AreaKey,
		Elapsed:     status.Elapsed,
		HoursLogged: int(whole),
		Carry:       total - whole,
	}

	if whole > 0 {
		if _, err := s.LogTime(status.AreaKey, whole); err != nil {
			return TimerSession{}, errors.Wrap(err, "logging time")
		}
	}

	err = database.RunInTx(s.db, func(tx *database.DB) error {
		if err := database.UpsertSystem(tx, carryKey(status.AreaKey), strconv.FormatFloat(session.Carry, 'f', -1, 64)); err != nil {
			return err
		}
		if err := database.DeleteSystem(tx, consts.SystemTimerArea); err != nil {
			return err
		}

		return database.DeleteSystem(tx, consts.SystemTimerStartedAt)
	})
	if err != nil {
		return TimerSession{}, errors.Wrap(err, "stopping timer")
	}

	return session, nil
}
