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

package timer

import (
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/dashboard"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Start tracking time on an area
 dream timer start tech

 * Stop and log the whole hours
 dream timer stop`

// NewCmd returns a new timer command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "timer",
		Short:   "Track time spent on an area",
		Example: example,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "start <area>",
		Short: "Start the timer on an area",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("Incorrect number of argument")
			}

			return nil
		},
		RunE: newStartRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the timer and log the time",
		RunE:  newStopRun(ctx),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the running timer",
		RunE:  newStatusRun(ctx),
	})

	return cmd
}

func newStartRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		status, err := infra.NewDashboard(ctx).StartTimer(strings.ToLower(args[0]))
		if err == dashboard.ErrTimerRunning {
			log.Warnf("a timer is already running on %s\n", status.AreaKey)
			return nil
		} else if err != nil {
			return errors.Wrap(err, "starting timer")
		}

		log.Successf("timer started on %s\n", status.AreaKey)

		return nil
	}
}

func newStopRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)
		session, err := svc.StopTimer()
		if err == dashboard.ErrNoTimer {
			log.Info("no timer is running\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "stopping timer")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		log.Successf("stopped after %s on %s\n", output.FormatTimeSpent(session.Elapsed.Hours()), session.AreaKey)
		if session.HoursLogged > 0 {
			log.Plainf("logged %dh\n", session.HoursLogged)
		}
		if session.Carry > 0 {
			log.Plainf("%s carried over to the next session\n", output.FormatTimeSpent(session.Carry))
		}

		return nil
	}
}

func newStatusRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		status, err := infra.NewDashboard(ctx).Timer()
		if err != nil {
			return errors.Wrap(err, "reading timer")
		}

		if !status.Running {
			log.Info("no timer is running\n")
			return nil
		}

		log.Infof("running on %s for %s\n", status.AreaKey, output.FormatTimeSpent(status.Elapsed.Hours()))

		return nil
	}
}
