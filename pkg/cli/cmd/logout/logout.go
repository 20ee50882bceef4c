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

package logout

import (
	stdcontext "context"

	"github.com/dreambuilder/dreambuilder/pkg/cli/consts"
	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// ErrNotLoggedIn is an error for logging out when not logged in
var ErrNotLoggedIn = errors.New("not logged in")

var example = `
  dream logout`

var apiEndpointFlag string

// NewCmd returns a new logout command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logout",
		Short:   "Logout from the server",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// Do performs logout. The local session is removed even if the server
// cannot be reached, so that the device goes back to local-only mode.
func Do(ctx context.DreamCtx) error {
	key, err := database.GetSystemString(ctx.DB, consts.SystemSessionKey)
	if err != nil {
		return errors.Wrap(err, "getting session key")
	}
	if key == "" {
		return ErrNotLoggedIn
	}

	ctx.SessionKey = key
	if err := infra.NewClient(ctx).Signout(stdcontext.Background()); err != nil {
		log.Warnf("could not end the session on the server: %s\n", err.Error())
	}

	err = database.RunInTx(ctx.DB, func(tx *database.DB) error {
		for _, k := range []string{consts.SystemSessionKey, consts.SystemSessionKeyExpiry, consts.SystemUserUUID} {
			if err := database.DeleteSystem(tx, k); err != nil {
				return errors.Wrapf(err, "deleting %s", k)
			}
		}

		return nil
	})
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}

	return nil
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		// Override APIEndpoint if flag was provided
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}

		err := Do(ctx)
		if err == ErrNotLoggedIn {
			log.Error("not logged in\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging out")
		}

		log.Success("logged out\n")

		return nil
	}
}
