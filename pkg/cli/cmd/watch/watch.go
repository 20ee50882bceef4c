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

package watch

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/output"
	"github.com/dreambuilder/dreambuilder/pkg/cli/syncer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  dream watch`

// NewCmd returns a new watch command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "watch",
		Aliases: []string{"w"},
		Short:   "Keep syncing in the foreground until interrupted",
		Long: `Keep syncing in the foreground until interrupted.

A sync runs on startup, every sync interval when there are unsynced edits,
when the server becomes reachable again, and when another dream command
edits the database.`,
		Example: example,
		RunE:    newRun(ctx),
	}

	return cmd
}

// NewDaemon returns a daemon syncing the local store of the context
func NewDaemon(ctx context.DreamCtx) *syncer.Daemon {
	return syncer.NewDaemon(syncer.DaemonParams{
		Orchestrator: infra.NewOrchestrator(ctx),
		Store:        ctx.Store,
		Prober:       infra.NewClient(ctx),
		Clock:        ctx.Clock,
		Interval:     ctx.SyncInterval,
		DBPath:       ctx.DBPath,
		OnResult: func(trigger string, res syncer.Result) {
			log.Printf("%s: %s\n", trigger, output.FormatSyncResult(res))
		},
		OnConnectivity: func(online bool) {
			if online {
				log.Success("online\n")
			} else {
				log.Warnf("offline, edits are kept on this device\n")
			}
		},
	})
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		c, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d := NewDaemon(ctx)
		if err := d.Start(c); err != nil {
			return errors.Wrap(err, "starting sync")
		}

		log.Infof("watching for changes every %s, press ctrl+c to stop\n", ctx.SyncInterval)
		<-c.Done()
		d.Stop()

		return nil
	}
}
