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

// Package database provides a thin layer over the SQLite database holding
// the local state of dream
package database

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	// sqlite3 driver
	_ "github.com/mattn/go-sqlite3"
)

// DB contains information about the current database connection
type DB struct {
	Conn *sql.DB
	tx   *sql.Tx
	// Filepath is the path to the database file. It is empty for an in-memory database.
	Filepath string
}

// Open initializes a new connection to the sqlite database
func Open(dbPath string) (*DB, error) {
	var fpath string
	if !strings.HasPrefix(dbPath, "file:") && dbPath != ":memory:" {
		fpath = dbPath
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, errors.Wrapf(err, "creating database directory for %s", dbPath)
		}
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "opening db connection")
	}

	// A single connection serializes writers within the process. Other
	// processes wait on the busy timeout.
	conn.SetMaxOpenConns(1)
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "setting busy timeout")
	}

	return &DB{Conn: conn, Filepath: fpath}, nil
}

// Begin begins a transaction
func (d *DB) Begin() (*DB, error) {
	tx, err := d.Conn.Begin()
	if err != nil {
		return nil, err
	}

	return &DB{Conn: d.Conn, tx: tx, Filepath: d.Filepath}, nil
}

// Commit commits a transaction
func (d *DB) Commit() error {
	if d.tx == nil {
		return errors.New("not in a transaction")
	}

	return d.tx.Commit()
}

// Rollback rolls back a transaction
func (d *DB) Rollback() error {
	if d.tx == nil {
		return errors.New("not in a transaction")
	}

	return d.tx.Rollback()
}

// Exec executes a sql statement
func (d *DB) Exec(query string, values ...interface{}) (sql.Result, error) {
	if d.tx != nil {
		return d.tx.Exec(query, values...)
	}

	return d.Conn.Exec(query, values...)
}

// Query queries rows
func (d *DB) Query(query string, values ...interface{}) (*sql.Rows, error) {
	if d.tx != nil {
		return d.tx.Query(query, values...)
	}

	return d.Conn.Query(query, values...)
}

// QueryRow queries a row
func (d *DB) QueryRow(query string, values ...interface{}) *sql.Row {
	if d.tx != nil {
		return d.tx.QueryRow(query, values...)
	}

	return d.Conn.QueryRow(query, values...)
}

// Close closes a db connection
func (d *DB) Close() error {
	return d.Conn.Close()
}

// RunInTx runs fn inside a transaction. The transaction is committed if fn
// returns nil and rolled back if fn returns an error or panics. A panic is
// propagated after the rollback.
func RunInTx(db *DB, fn func(tx *DB) error) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			err = errors.Wrapf(err, "rolling back: %v", rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing a transaction")
	}
	committed = true

	return nil
}
