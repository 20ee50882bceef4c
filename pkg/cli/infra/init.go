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

// Package infra provides operations and definitions for the
// local infrastructure of dream
package infra

import (
	"os"
	"strconv"

	"github.com/dreambuilder/dreambuilder/pkg/cli/client"
	"github.com/dreambuilder/dreambuilder/pkg/cli/config"
	"github.com/dreambuilder/dreambuilder/pkg/cli/consts"
	"github.com/dreambuilder/dreambuilder/pkg/cli/context"
	"github.com/dreambuilder/dreambuilder/pkg/cli/dashboard"
	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/log"
	"github.com/dreambuilder/dreambuilder/pkg/cli/store"
	"github.com/dreambuilder/dreambuilder/pkg/cli/syncer"
	"github.com/dreambuilder/dreambuilder/pkg/cli/utils"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/dreambuilder/dreambuilder/pkg/dirs"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RunEFunc is a function type of dream commands
type RunEFunc func(*cobra.Command, []string) error

// newBaseCtx creates a minimal context with paths and database connection.
// This base context is used for file and database initialization before
// being enriched with config values by setupCtx.
func newBaseCtx(versionTag, customDBPath string) (context.DreamCtx, error) {
	paths := context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
		Cache:  dirs.CacheHome,
	}

	if err := context.InitDreamDirs(paths); err != nil {
		return context.DreamCtx{}, errors.Wrap(err, "creating the dream dir")
	}

	dbPath := customDBPath
	if dbPath == "" {
		dbPath = context.DefaultDBPath(paths)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return context.DreamCtx{}, errors.Wrap(err, "connecting to db")
	}

	ctx := context.DreamCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
		DBPath:  dbPath,
	}

	return ctx, nil
}

// Init initializes the dream environment and returns a new dream context.
// A non-empty apiEndpoint overrides the configured one without modifying
// the config file.
func Init(versionTag, apiEndpoint, dbPath string) (*context.DreamCtx, error) {
	ctx, err := newBaseCtx(versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	if err := initConfigFile(ctx, apiEndpoint); err != nil {
		return nil, errors.Wrap(err, "generating the config file")
	}

	if _, err := database.Migrate(ctx.DB); err != nil {
		return nil, errors.Wrap(err, "running migration")
	}

	ctx, err = setupCtx(ctx, apiEndpoint)
	if err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

// setupCtx enriches the base context with values from config file and database.
// This is called after files and database have been initialized.
func setupCtx(ctx context.DreamCtx, apiEndpoint string) (context.DreamCtx, error) {
	db := ctx.DB

	sessionKey, err := database.GetSystemString(db, consts.SystemSessionKey)
	if err != nil {
		return ctx, errors.Wrap(err, "finding session key")
	}
	expiryStr, err := database.GetSystemString(db, consts.SystemSessionKeyExpiry)
	if err != nil {
		return ctx, errors.Wrap(err, "finding session key expiry")
	}
	var sessionKeyExpiry int64
	if expiryStr != "" {
		if sessionKeyExpiry, err = strconv.ParseInt(expiryStr, 10, 64); err != nil {
			return ctx, errors.Wrap(err, "parsing session key expiry")
		}
	}
	userUUID, err := database.GetSystemString(db, consts.SystemUserUUID)
	if err != nil {
		return ctx, errors.Wrap(err, "finding user uuid")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}
	durations, err := cf.ParseDurations()
	if err != nil {
		return ctx, errors.Wrap(err, "reading durations")
	}

	endpoint := cf.APIEndpoint
	if apiEndpoint != "" {
		endpoint = apiEndpoint
	}

	c := clock.New()

	ret := context.DreamCtx{
		Paths:            ctx.Paths,
		Version:          ctx.Version,
		DB:               ctx.DB,
		DBPath:           ctx.DBPath,
		Store:            store.New(ctx.DB, c, durations.SaveDebounce),
		SessionKey:       sessionKey,
		SessionKeyExpiry: sessionKeyExpiry,
		UserUUID:         userUUID,
		APIEndpoint:      endpoint,
		Editor:           cf.Editor,
		Clock:            c,
		HTTPClient:       client.NewRateLimitedHTTPClient(),
		SyncInterval:     durations.SyncInterval,
		SyncTimeout:      durations.SyncTimeout,
		SaveDebounce:     durations.SaveDebounce,
	}

	return ret, nil
}

// getEditorCommand returns the system's editor command with appropriate flags,
// if necessary, to make the command wait until editor is close to exit.
func getEditorCommand() string {
	editor := os.Getenv("EDITOR")

	var ret string

	switch editor {
	case "atom":
		ret = "atom -w"
	case "subl":
		ret = "subl -n -w"
	case "code":
		ret = "code -n -w"
	case "mate":
		ret = "mate -w"
	case "vim":
		ret = "vim"
	case "nano":
		ret = "nano"
	case "emacs":
		ret = "emacs"
	case "nvim":
		ret = "nvim"
	default:
		ret = "vi"
	}

	return ret
}

// initConfigFile populates a new config file if it does not exist yet
func initConfigFile(ctx context.DreamCtx, apiEndpoint string) error {
	path := config.GetPath(ctx)
	ok, err := utils.FileExists(path)
	if err != nil {
		return errors.Wrap(err, "checking if config exists")
	}
	if ok {
		return nil
	}

	cf := config.Default(getEditorCommand())
	if apiEndpoint != "" {
		cf.APIEndpoint = apiEndpoint
	}

	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing config")
	}

	return nil
}

// NewClient returns a client for the configured server
func NewClient(ctx context.DreamCtx) *client.Client {
	return client.New(ctx.APIEndpoint, ctx.Version, ctx.SessionKey, ctx.HTTPClient)
}

// NewOrchestrator returns a sync orchestrator over the local store and the
// configured server
func NewOrchestrator(ctx context.DreamCtx) *syncer.Orchestrator {
	return syncer.New(syncer.Params{
		Store:    ctx.Store,
		Remote:   NewClient(ctx),
		Identity: client.SessionIdentity{DB: ctx.DB},
		Clock:    ctx.Clock,
		Timeout:  ctx.SyncTimeout,
	})
}

// NewDashboard returns the service applying the user's edits
func NewDashboard(ctx context.DreamCtx) *dashboard.Service {
	return dashboard.New(ctx.Store, ctx.DB, ctx.Clock)
}
