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

package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/server/app"
	"github.com/dreambuilder/dreambuilder/pkg/server/buildinfo"
	"github.com/dreambuilder/dreambuilder/pkg/server/config"
	"github.com/dreambuilder/dreambuilder/pkg/server/controllers"
	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	"github.com/dreambuilder/dreambuilder/pkg/server/log"
	mw "github.com/dreambuilder/dreambuilder/pkg/server/middleware"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

const (
	sessionCleanupSchedule = "@every 1h"
	shutdownTimeout        = 10 * time.Second
)

// startJobs schedules the background maintenance jobs of the server
func startJobs(a *app.App) (*cron.Cron, error) {
	c := cron.New()

	err := c.AddFunc(sessionCleanupSchedule, func() {
		n, err := a.DeleteExpiredSessions()
		if err != nil {
			log.ErrorWrap(err, "deleting expired sessions")
			return
		}

		log.WithFields(log.Fields{
			"count": n,
		}).Debug("deleted expired sessions")
	})
	if err != nil {
		return nil, errors.Wrap(err, "scheduling session cleanup")
	}

	c.Start()

	return c, nil
}

func startCmd(args []string) {
	fs := setupFlagSet("start", "dream-server start")

	appEnv := fs.String("appEnv", "", "Application environment (env: APP_ENV, default: PRODUCTION)")
	port := fs.String("port", "", "Server port (env: PORT, default: 3001)")
	dbPath := fs.String("dbPath", "", dbPathUsage)
	databaseURL := fs.String("databaseUrl", "", "Postgres connection url. Takes precedence over dbPath (env: DATABASE_URL)")
	disableRegistration := fs.Bool("disableRegistration", false, "Disable user registration (env: DisableRegistration, default: false)")
	logLevel := fs.String("logLevel", "", "Log level: debug, info, warn, or error (env: LOG_LEVEL, default: info)")

	fs.Parse(args)

	if err := config.LoadEnvFile(config.DefaultEnvFile); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	cfg, err := config.New(config.Params{
		AppEnv:              *appEnv,
		Port:                *port,
		DBPath:              *dbPath,
		DatabaseURL:         *databaseURL,
		DisableRegistration: *disableRegistration,
		LogLevel:            *logLevel,
	})
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		fs.Usage()
		os.Exit(1)
	}

	log.SetLevel(cfg.LogLevel)

	a := initApp(cfg)
	defer func() {
		if err := database.Close(a.DB); err != nil {
			log.ErrorWrap(err, "closing database")
		}
	}()

	jobs, err := startJobs(&a)
	if err != nil {
		log.ErrorWrap(err, "starting jobs")
		os.Exit(1)
	}
	defer jobs.Stop()

	limiter := mw.NewRateLimiter(mw.DefaultRatePerSecond, mw.DefaultBurst)
	defer limiter.Stop()

	ctl := controllers.New(&a)
	rc := controllers.RouteConfig{
		APIRoutes:   controllers.NewAPIRoutes(&a, ctl),
		Controllers: ctl,
		RateLimiter: limiter,
	}

	r, err := controllers.NewRouter(&a, rc)
	if err != nil {
		panic(errors.Wrap(err, "initializing router"))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.WithFields(log.Fields{
		"version":  buildinfo.Version,
		"port":     cfg.Port,
		"postgres": database.IsPostgresDSN(cfg.DSN()),
	}).Info("Dreambuilder server starting")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.ErrorWrap(err, "server failed")
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.ErrorWrap(err, "shutting down server")
		}
	}
}
