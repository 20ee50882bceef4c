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

package export

import (
	"encoding/json"
	"path/filepath"

	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/output"
	"github.com/dreambuilder/dreambuilder/pkg/cli/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
 * Write a backup to the current directory
 dream export

 * Choose the file
 dream export --out ~/backups/dream.json`

var outFlag string

// NewCmd returns a new export command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Export every area as a JSON backup",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&outFlag, "out", "o", "", "path of the backup file (defaults to a timestamped file in the current directory)")

	return cmd
}

// Do writes the current snapshot to the given path, or to a timestamped file
// in the current directory if the path is empty, and returns the path written
func Do(ctx context.DreamCtx, path string) (string, error) {
	snap, err := infra.NewDashboard(ctx).Snapshot()
	if err != nil {
		return "", errors.Wrap(err, "loading areas")
	}

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding areas")
	}

	if path == "" {
		path = output.ExportFilename(ctx.Clock.Now())
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return "", errors.Wrap(err, "resolving the backup path")
	}

	if err := utils.WriteFileAtomic(path, b, 0644); err != nil {
		return "", errors.Wrap(err, "writing the backup")
	}

	return path, nil
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		path, err := Do(ctx, outFlag)
		if err != nil {
			return err
		}

		log.Successf("exported to %s\n", path)

		return nil
	}
}
