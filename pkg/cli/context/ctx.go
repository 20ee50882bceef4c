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

// Package context defines the runtime context of the dream command. It is
// built once at startup and handed to every command.
package context

import (
	"net/http"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/store"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
)

// Paths contain directory definitions
type Paths struct {
	Home   string
	Config string
	Data   string
	Cache  string
}

// DreamCtx is a context holding the information of the current runtime
type DreamCtx struct {
	Paths            Paths
	APIEndpoint      string
	Version          string
	DB               *database.DB
	DBPath           string
	Store            *store.Store
	SessionKey       string
	SessionKeyExpiry int64
	UserUUID         string
	Editor           string
	Clock            clock.Clock
	HTTPClient       *http.Client
	SyncInterval     time.Duration
	SyncTimeout      time.Duration
	SaveDebounce     time.Duration
}

// Redact replaces private information from the context with a set of
// placeholder values.
func Redact(ctx DreamCtx) DreamCtx {
	var sessionKey string
	if ctx.SessionKey != "" {
		sessionKey = "1"
	} else {
		sessionKey = "0"
	}
	ctx.SessionKey = sessionKey

	return ctx
}
