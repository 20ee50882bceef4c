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

package progress

import (
	"strconv"
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  dream progress physical 65`

func preRun(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return errors.New("Incorrect number of argument")
	}

	return nil
}

// NewCmd returns a new progress command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "progress <area> <0-100>",
		Aliases: []string{"p"},
		Short:   "Set the progress of an area",
		Example: example,
		PreRunE: preRun,
		RunE:    newRun(ctx),
	}

	return cmd
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		p, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Wrapf(err, "parsing progress %s", args[1])
		}

		svc := infra.NewDashboard(ctx)
		a, err := svc.SetProgress(strings.ToLower(args[0]), p)
		if err != nil {
			return errors.Wrap(err, "setting progress")
		}
		if err := svc.Commit(); err != nil {
			return err
		}

		log.Successf("%s %s %d%%\n", a.Name, output.ProgressBar(a.Progress, 20), a.Progress)
		log.Plainf("%s\n", output.MotivationalMessage(a.Progress, a.Name))

		return nil
	}
}
