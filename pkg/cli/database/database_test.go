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

package database

import (
	"database/sql"
	"testing"

	"github.com/dreambuilder/dreambuilder/pkg/assert"
	"github.com/pkg/errors"
)

func TestMigrate(t *testing.T) {
	// Setup
	db := InitTestMemoryDB(t)

	// Execute
	n, err := Migrate(db)
	if err != nil {
		t.Fatal(errors.Wrap(err, "migrating again"))
	}

	// Test
	assert.Equal(t, n, 0, "migrations should not be applied twice")

	var count int
	MustScan(t, "counting tables", db.QueryRow(`SELECT count(*) FROM sqlite_master
		WHERE type = 'table' AND name IN ('system', 'snapshots', 'sync_records', 'dirty_areas')`), &count)
	assert.Equal(t, count, 4, "table count mismatch")
}

func TestSystem(t *testing.T) {
	db := InitTestMemoryDB(t)

	got, err := GetSystemString(db, "missing")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting a missing key"))
	}
	assert.Equal(t, got, "", "missing key should be empty")

	var raw string
	err = GetSystem(db, "missing", &raw)
	assert.Equal(t, errors.Cause(err), sql.ErrNoRows, "missing key error mismatch")

	if err := UpsertSystem(db, "k", "v1"); err != nil {
		t.Fatal(errors.Wrap(err, "inserting"))
	}
	if err := UpsertSystem(db, "k", "v2"); err != nil {
		t.Fatal(errors.Wrap(err, "updating"))
	}

	got, err = GetSystemString(db, "k")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting"))
	}
	assert.Equal(t, got, "v2", "value mismatch")

	if err := DeleteSystem(db, "k"); err != nil {
		t.Fatal(errors.Wrap(err, "deleting"))
	}
	got, err = GetSystemString(db, "k")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting after delete"))
	}
	assert.Equal(t, got, "", "value should be deleted")
}

func TestRunInTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db := InitTestMemoryDB(t)

		err := RunInTx(db, func(tx *DB) error {
			return UpsertSystem(tx, "k", "v")
		})
		if err != nil {
			t.Fatal(errors.Wrap(err, "running tx"))
		}

		got, _ := GetSystemString(db, "k")
		assert.Equal(t, got, "v", "value should be committed")
	})

	t.Run("rollback on error", func(t *testing.T) {
		db := InitTestMemoryDB(t)
		failure := errors.New("failure")

		err := RunInTx(db, func(tx *DB) error {
			if err := UpsertSystem(tx, "k", "v"); err != nil {
				return err
			}
			return failure
		})

		assert.Equal(t, errors.Cause(err), failure, "error mismatch")
		got, _ := GetSystemString(db, "k")
		assert.Equal(t, got, "", "value should be rolled back")
	})

	t.Run("rollback on panic", func(t *testing.T) {
		db := InitTestMemoryDB(t)

		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Fatal("panic should propagate")
				}
			}()

			RunInTx(db, func(tx *DB) error {
				UpsertSystem(tx, "k", "v")
				panic("boom")
			})
		}()

		got, err := GetSystemString(db, "k")
		if err != nil {
			t.Fatal(errors.Wrap(err, "reading after panic"))
		}
		assert.Equal(t, got, "", "value should be rolled back")
	})
}
