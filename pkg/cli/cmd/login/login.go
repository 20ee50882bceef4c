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

package login

import (
	stdcontext "context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/dreambuilder/dreambuilder/pkg/cli/client"
	"github.com/dreambuilder/dreambuilder/pkg/cli/consts"
	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/infra"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var example = `
  dream login`

var emailFlag, passwordFlag, apiEndpointFlag string

// NewCmd returns a new login command
func NewCmd(ctx context.DreamCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Login to the server to sync your areas across devices",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.StringVarP(&emailFlag, "email", "u", "", "email address")
	f.StringVarP(&passwordFlag, "password", "p", "", "password")
	f.StringVar(&apiEndpointFlag, "apiEndpoint", "", "API endpoint to connect to (defaults to value in config)")

	return cmd
}

// Do signs in with the given credentials and saves the session locally
func Do(ctx context.DreamCtx, email, password string) (client.SigninResponse, error) {
	c := infra.NewClient(ctx)

	resp, err := c.Signin(stdcontext.Background(), email, password)
	if err != nil {
		return resp, errors.Wrap(err, "requesting session")
	}

	err = database.RunInTx(ctx.DB, func(tx *database.DB) error {
		if err := database.UpsertSystem(tx, consts.SystemSessionKey, resp.Key); err != nil {
			return errors.Wrap(err, "saving session key")
		}
		if err := database.UpsertSystem(tx, consts.SystemSessionKeyExpiry, strconv.FormatInt(resp.ExpiresAt, 10)); err != nil {
			return errors.Wrap(err, "saving session key expiry")
		}
		if err := database.UpsertSystem(tx, consts.SystemUserUUID, resp.UserUUID); err != nil {
			return errors.Wrap(err, "saving user uuid")
		}

		return nil
	})
	if err != nil {
		return resp, errors.Wrap(err, "saving session")
	}

	return resp, nil
}

func getUsername() (string, error) {
	if emailFlag != "" {
		return emailFlag, nil
	}

	var email string
	if err := ui.PromptInput("email", &email); err != nil {
		return "", errors.Wrap(err, "getting email input")
	}
	if email == "" {
		return "", errors.New("Email is empty")
	}

	return email, nil
}

func getPassword() (string, error) {
	if passwordFlag != "" {
		return passwordFlag, nil
	}

	var password string
	if err := ui.PromptPassword("password", &password); err != nil {
		return "", errors.Wrap(err, "getting password input")
	}
	if password == "" {
		return "", errors.New("Password is empty")
	}

	return password, nil
}

// getServerDisplayURL returns the scheme and host of the API endpoint
func getServerDisplayURL(ctx context.DreamCtx) string {
	u, err := url.Parse(ctx.APIEndpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}

	return fmt.Sprintf("%s://%s", u.Scheme, u.Host)
}

func newRun(ctx context.DreamCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if apiEndpointFlag != "" {
			ctx.APIEndpoint = apiEndpointFlag
		}

		if display := getServerDisplayURL(ctx); display != "" {
			log.Infof("logging in to %s\n", display)
		}

		email, err := getUsername()
		if err != nil {
			return errors.Wrap(err, "getting email")
		}
		password, err := getPassword()
		if err != nil {
			return errors.Wrap(err, "getting password")
		}

		if _, err := Do(ctx, email, password); errors.Cause(err) == client.ErrInvalidLogin {
			log.Error("wrong login\n")
			return nil
		} else if err != nil {
			return errors.Wrap(err, "logging in")
		}

		log.Success("logged in\n")

		return nil
	}
}
