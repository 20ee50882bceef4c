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

package area

import (
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Show every area with its tasks
 dream area

 * Show one area
 dream area business`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new area command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "area [key]",
		Aliases: []string{"a", "show"},
		Short:   "Show areas with their goals and tasks",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc := infra.NewDashboard(ctx)

		if len(args) == 1 {
			a, err := svc.Area(strings.ToLower(args[0]))
			if err != nil {
				return errors.Wrap(err, "finding area")
			}

			output.Area(a)
			return nil
		}

		snap, err := svc.Snapshot()
		if err != nil {
			return errors.Wrap(err, "loading areas")
		}
		for _, key := range snap.Keys() {
			output.Area(snap[key])
		}

		return nil
	}
}
