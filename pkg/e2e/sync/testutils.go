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

// Package sync tests the sync round trip between devices running the CLI
// stack and an in-process server
package sync

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dreambuilder/dreambuilder/pkg/cli/client"
	"github.com/dreambuilder/dreambuilder/pkg/cli/consts"
	cliDatabase "github.com/dreambuilder/dreambuilder/pkg/cli/database"
	"github.com/dreambuilder/dreambuilder/pkg/cli/model"
	"github.com/dreambuilder/dreambuilder/pkg/cli/store"
	"github.com/dreambuilder/dreambuilder/pkg/cli/syncer"
	"github.com/dreambuilder/dreambuilder/pkg/clock"
	"github.com/dreambuilder/dreambuilder/pkg/server/app"
	"github.com/dreambuilder/dreambuilder/pkg/server/controllers"
	"github.com/dreambuilder/dreambuilder/pkg/server/database"
	apitest "github.com/dreambuilder/dreambuilder/pkg/server/testutils"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var serverTime = time.Date(2025, time.March, 14, 21, 15, 0, 0, time.UTC)

// testServer is a server with its own database
type testServer struct {
	Server *httptest.Server
	DB     *gorm.DB
}

// setupServer creates a test server with its own in-memory database
func setupServer(t *testing.T) testServer {
	mockClock := clock.NewMock()
	mockClock.SetNow(serverTime)

	a := app.NewTest()
	a.Clock = mockClock
	a.DB = apitest.InitMemoryDB(t)

	server := controllers.MustNewServer(t, &a)

	return testServer{
		Server: server,
		DB:     a.DB,
	}
}

// device is a CLI installation with its own local database
type device struct {
	DB         *cliDatabase.DB
	Store      *store.Store
	Syncer     *syncer.Orchestrator
	Clock      *clock.Mock
	SessionKey string
}

// setupDevice creates a device talking to the given server. If user is not
// nil, the device is signed in as that user.
func setupDevice(t *testing.T, srv testServer, user *database.User) *device {
	if user == nil {
		return setupDeviceWithSession(t, srv, "", "")
	}

	session := apitest.SetupSession(srv.DB, *user)

	return setupDeviceWithSession(t, srv, session.Key, user.UUID)
}

// setupDeviceWithSession creates a device holding the given credentials. An
// empty session key leaves the device signed out.
func setupDeviceWithSession(t *testing.T, srv testServer, sessionKey, userUUID string) *device {
	db := cliDatabase.InitTestMemoryDB(t)
	c := clock.NewMock()
	c.SetNow(serverTime)

	d := &device{
		DB:    db,
		Store: store.New(db, c, store.DefaultDebounce),
		Clock: c,
	}

	if sessionKey != "" {
		d.signIn(t, sessionKey, userUUID)
	}

	d.Syncer = syncer.New(syncer.Params{
		Store:    d.Store,
		Remote:   client.New(fmt.Sprintf("%s/api", srv.Server.URL), "test", d.SessionKey, nil),
		Identity: client.SessionIdentity{DB: db},
		Clock:    c,
	})

	return d
}

func (d *device) signIn(t *testing.T, sessionKey, userUUID string) {
	cliDatabase.MustExec(t, "inserting session key", d.DB, "INSERT INTO system (key, value) VALUES (?, ?)", consts.SystemSessionKey, sessionKey)
	cliDatabase.MustExec(t, "inserting user uuid", d.DB, "INSERT INTO system (key, value) VALUES (?, ?)", consts.SystemUserUUID, userUUID)

	d.SessionKey = sessionKey
}

// mustSave writes the snapshot to the device and marks it dirty
func (d *device) mustSave(t *testing.T, snap model.Snapshot) {
	if _, err := d.Store.SaveNow(snap, true); err != nil {
		t.Fatal(errors.Wrap(err, "saving snapshot"))
	}
}

// mustLoad reads the snapshot of the device
func (d *device) mustLoad(t *testing.T) model.Snapshot {
	snap, ok, err := d.Store.Load()
	if err != nil {
		t.Fatal(errors.Wrap(err, "loading snapshot"))
	}
	if !ok {
		t.Fatal("no snapshot on the device")
	}

	return snap
}

func (d *device) mustIsDirty(t *testing.T) bool {
	dirty, err := d.Store.IsDirty()
	if err != nil {
		t.Fatal(errors.Wrap(err, "checking dirty flag"))
	}

	return dirty
}

func (d *device) sync() syncer.Result {
	return d.Syncer.SyncNow(context.Background())
}

// taskIDs returns the ids of the tasks of the area in order
func taskIDs(area model.Area) []string {
	ret := []string{}
	for _, t := range area.Tasks {
		ret = append(ret, t.ID)
	}

	return ret
}

// serverTaskIDs returns the ids of the tasks stored on the server for the
// area of the given type, in order
func serverTaskIDs(t *testing.T, db *gorm.DB, user database.User, areaKey string) []string {
	var area database.Area
	apitest.MustExec(t, db.Where("user_id = ? AND area_type = ?", user.ID, areaKey).First(&area), "finding area")

	var tasks []database.Task
	apitest.MustExec(t, db.Where("area_id = ?", area.ID).Order("order_index ASC").Find(&tasks), "finding tasks")

	ret := []string{}
	for _, task := range tasks {
		ret = append(ret, task.UUID)
	}

	return ret
}
