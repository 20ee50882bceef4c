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

package status

import (
	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  dream status`

// NewCmd returns a new status command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"st"},
		Short:   "Show the progress of every area and the sync state",
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)

		snap, err := svc.Snapshot()
		if err != nil {
			return errors.Wrap(err, "loading areas")
		}
		unsynced, err := ctx.Store.UnsyncedCount()
		if err != nil {
			return errors.Wrap(err, "counting unsynced areas")
		}
		lastSync, _, err := ctx.Store.LastSync()
		if err != nil {
			return errors.Wrap(err, "reading last sync time")
		}

		output.Status(snap, unsynced, lastSync, ctx.Clock.Now())

		timer, err := svc.Timer()
		if err != nil {
			return errors.Wrap(err, "reading timer")
		}
		if timer.Running {
			log.Infof("timer running on %s for %s\n", timer.AreaKey, output.FormatTimeSpent(timer.Elapsed.Hours()))
		}

		return nil
	}
}
