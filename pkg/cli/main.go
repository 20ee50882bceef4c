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

package main

import (
	"os"
	"strings"

	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/pkg/errors"

	// commands
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/area"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/export"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/friends"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/goal"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/login"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/logout"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/logtime"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/milestone"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/progress"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/reset"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/root"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/status"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/streak"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/sync"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/task"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/timer"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/version"
	"github.com/dreambuilder/dreambuilder/pkg/cli/cmd/watch"
)

// apiEndpoint and versionTag are populated during link time
var apiEndpoint string
var versionTag = "master"

// parseDBPath extracts --dbPath flag value from command line arguments
// regardless of where it appears (before or after subcommand).
// Returns empty string if not found.
func parseDBPath(args []string) string {
	for i, arg := range args {
		// Handle --dbPath=value
		if strings.HasPrefix(arg, "--dbPath=") {
			return strings.TrimPrefix(arg, "--dbPath=")
		}
		// Handle --dbPath value
		if arg == "--dbPath" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func run() error {
	// The database is opened before cobra parses flags, so --dbPath is read
	// by hand wherever it appears
	dbPath := parseDBPath(os.Args[1:])

	ctx, err := infra.Init(versionTag, apiEndpoint, dbPath)
	if err != nil {
		return errors.Wrap(err, "initializing context")
	}
	defer ctx.DB.Close()

	root.Register(status.NewCmd(*ctx))
	root.Register(area.NewCmd(*ctx))
	root.Register(goal.NewCmd(*ctx))
	root.Register(progress.NewCmd(*ctx))
	root.Register(logtime.NewCmd(*ctx))
	root.Register(milestone.NewCmd(*ctx))
	root.Register(streak.NewCmd(*ctx))
	root.Register(task.NewCmd(*ctx))
	root.Register(timer.NewCmd(*ctx))
	root.Register(sync.NewCmd(*ctx))
	root.Register(watch.NewCmd(*ctx))
	root.Register(friends.NewCmd(*ctx))
	root.Register(login.NewCmd(*ctx))
	root.Register(logout.NewCmd(*ctx))
	root.Register(export.NewCmd(*ctx))
	root.Register(reset.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	cmdErr := root.Execute()

	// Edits are saved after a debounce; write the last one before exiting
	if err := ctx.Store.Close(); err != nil {
		log.Errorf("saving changes: %s\n", err.Error())
	}

	return cmdErr
}

func main() {
	if err := run(); err != nil {
		log.Errorf("%s\n", err.Error())
		os.Exit(1)
	}
}
