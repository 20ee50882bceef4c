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

package sync

import (
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/client"
	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/merge"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/dreambuilder/dreambuilder/pkg/cli/output"
	"github.com/dreambuilder/dreambuilder/pkg/cli/syncer"
	"github.com/dreambuilder/dreambuilder/pkg/cli/utils/diff"
	"github.com/pkg/errors"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
)

var example = `
 * Sync now
 dream sync

 * Show what a sync would change on this device without syncing
 dream sync --dry-run`

var dryRunFlag bool
var apiEndpointFlag string

// NewCmd returns a new sync command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Sync data with the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&dryRunFlag, "dry-run", false, "show the changes the merge would make without saving or pushing anything")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// areaChange describes how the merge changes one local area
type areaChange struct {
	Key  string
	Name string
	// Goal is empty if the goal is unchanged
	Goal         []diffmatchpatch.Diff
	AddedTasks   []model.Task
	DoneTasks    []model.Task
	FieldChanges []string
}

// plan returns the changes merging the remote snapshot would make to the
// local one, in display order. Unchanged areas are left out.
func plan(local, remote model.Snapshot) []areaChange {
	merged := merge.Merge(local, remote)

	var ret []areaChange
	for _, key := range merged.Keys() {
		before, after := local[key], merged[key]
		c := areaChange{Key: key, Name: after.Name}

		if before.Goal != after.Goal {
			c.Goal = diff.Do(before.Goal+"\n", after.Goal+"\n")
		}

		for _, t := range after.Tasks {
			idx := before.FindTask(t.ID)
			if idx == -1 {
				c.AddedTasks = append(c.AddedTasks, t)
			} else if t.Completed && !before.Tasks[idx].Completed {
				c.DoneTasks = append(c.DoneTasks, t)
			}
		}

		bf, af := before.Fields(), after.Fields()
		if bf.Progress != af.Progress {
			c.FieldChanges = append(c.FieldChanges, "progress")
		}
		if bf.TimeSpent != af.TimeSpent {
			c.FieldChanges = append(c.FieldChanges, "time spent")
		}
		if bf.Milestones != af.Milestones {
			c.FieldChanges = append(c.FieldChanges, "milestones")
		}
		if bf.Streak != af.Streak {
			c.FieldChanges = append(c.FieldChanges, "streak")
		}

		if c.Goal != nil || len(c.AddedTasks) > 0 || len(c.DoneTasks) > 0 || len(c.FieldChanges) > 0 {
			ret = append(ret, c)
		}
	}

	return ret
}

func printGoalDiff(diffs []diffmatchpatch.Diff) {
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")

		switch d.Type {
		case diff.DiffInsert:
			log.Plainf("%s\n", log.ColorGreen.Sprintf("+ %s", text))
		case diff.DiffDelete:
			log.Plainf("%s\n", log.ColorRed.Sprintf("- %s", text))
		}
	}
}

func printPlan(changes []areaChange) {
	if len(changes) == 0 {
		log.Info("already up to date\n")
		return
	}

	for _, c := range changes {
		log.Infof("%s\n", c.Name)

		if c.Goal != nil {
			log.Plain("goal:\n")
			printGoalDiff(c.Goal)
		}
		for _, t := range c.AddedTasks {
			log.Plainf("%s\n", log.ColorGreen.Sprintf("+ task %s", t.Text))
		}
		for _, t := range c.DoneTasks {
			log.Plainf("✔ task %s\n", t.Text)
		}
		if len(c.FieldChanges) > 0 {
			log.Plainf("updated %s\n", strings.Join(c.FieldChanges, ", "))
		}
	}
}

func dryRun(cmd *cobra.Command, ctx context.DreamCtx) error {
	userID, err := client.SessionIdentity{DB: ctx.DB}.CurrentUserID(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "reading session")
	}
	if userID == "" {
		log.Info("not logged in, nothing to merge\n")
		return nil
	}

	local, err := infra.NewDashboard(ctx).Snapshot()
	if err != nil {
		return errors.Wrap(err, "loading areas")
	}

	remote, err := infra.NewClient(ctx).FetchSnapshot(cmd.Context(), userID)
	if err != nil {
		return errors.Wrap(err, "fetching remote areas")
	}

	printPlan(plan(local, remote))

	return nil
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}

		if dryRunFlag {
			return dryRun(cmd, ctx)
		}

		res := infra.NewOrchestrator(ctx).SyncNow(cmd.Context())
		output.SyncResult(res)

		if res.Reason == syncer.ReasonStorageError {
			return errors.Wrap(res.Err, "syncing")
		}

		return nil
	}
}
