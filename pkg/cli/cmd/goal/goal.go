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

package goal

import (
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Open an editor on the current goal
 dream goal tech

 * Set the goal directly
 dream goal tech "Ship the mobile app"`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new goal command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goal <area> [text]",
		Short:   "Set the goal of an area",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	return cmd
}

func getGoal(ctx context.DreamCtx, current string, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	fpath, err := ui.GetTmpContentPath(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting temporarily content file path")
	}

	goal, err := ui.GetEditorInput(ctx, fpath, current)
	if err != nil {
		return "", errors.Wrap(err, "getting editor input")
	}

	return goal, nil
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		svc := infra.NewDashboard(ctx)

		a, err := svc.Area(key)
		if err != nil {
			return errors.Wrap(err, "finding area")
		}

		goal, err := getGoal(ctx, a.Goal, args[1:])
		if err != nil {
			return err
		}

		if _, err := svc.SetGoal(key, goal); err != nil {
			return errors.Wrap(err, "setting goal")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		log.Successf("updated the goal of %s\n", a.Name)

		return nil
	}
}
