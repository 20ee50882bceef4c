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

package milestone

import (
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Record a milestone
 dream milestone business

 * Take two back
 dream milestone business --delta -2`

var deltaFlag int

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new milestone command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "milestone <area>",
		Aliases: []string{"m"},
		Short:   "Change the number of milestones reached in an area",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.IntVarP(&deltaFlag, "delta", "d", 1, "the number of milestones to add, negative to remove")

	return cmd
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)
		a, err := svc.AddMilestones(strings.ToLower(args[0]), deltaFlag)
		if err != nil {
			return errors.Wrap(err, "updating milestones")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		log.Successf("%s: %d milestones\n", a.Name, a.Milestones)

		return nil
	}
}
