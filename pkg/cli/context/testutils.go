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

package context

import (
	"testing"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/store"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/pkg/errors"
)

// getDefaultTestPaths creates default test paths with all paths pointing to a temp directory
func getDefaultTestPaths(t *testing.T) Paths {
	tmpDir := t.TempDir()
	return Paths{
		Home:   tmpDir,
		Cache:  tmpDir,
		Config: tmpDir,
		Data:   tmpDir,
	}
}

// InitTestCtx initializes a test context with an in-memory database, a mock
// clock, and a temporary directory for all paths
func InitTestCtx(t *testing.T) DreamCtx {
	paths := getDefaultTestPaths(t)
	db := database.InitTestMemoryDB(t)

	if err := InitDreamDirs(paths); err != nil {
		t.Fatal(errors.Wrap(err, "creating test directories"))
	}

	c := clock.NewMock()

	return DreamCtx{
		DB:           db,
		Store:        store.New(db, c, store.DefaultDebounce),
		Paths:        paths,
		Clock:        c,
		SyncInterval: 10 * time.Second,
		SyncTimeout:  30 * time.Second,
		SaveDebounce: store.DefaultDebounce,
	}
}

// InitTestCtxWithFileDB initializes a test context with a database file at
// the default path
func InitTestCtxWithFileDB(t *testing.T) DreamCtx {
	paths := getDefaultTestPaths(t)

	if err := InitDreamDirs(paths); err != nil {
		t.Fatal(errors.Wrap(err, "creating test directories"))
	}

	dbPath := DefaultDBPath(paths)
	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatal(errors.Wrap(err, "opening database"))
	}
	t.Cleanup(func() { db.Close() })

	if _, err := database.Migrate(db); err != nil {
		t.Fatal(errors.Wrap(err, "migrating database"))
	}

	c := clock.NewMock()

	return DreamCtx{
		DB:           db,
		DBPath:       dbPath,
		Store:        store.New(db, c, store.DefaultDebounce),
		Paths:        paths,
		Clock:        c,
		SyncInterval: 10 * time.Second,
		SyncTimeout:  30 * time.Second,
		SaveDebounce: store.DefaultDebounce,
	}
}
