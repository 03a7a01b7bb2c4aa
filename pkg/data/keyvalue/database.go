// Copyright (c) 2017 OysterPack, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package keyvalue provides a bbolt backed key-value store.
//
// A database lives in a single file and is rooted at a bucket named after the database. The root bucket records when
// the database was created.
package keyvalue

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

const (
	READ_MODE       os.FileMode = 0400
	READ_WRITE_MODE os.FileMode = 0600

	CREATED = "created"

	// DEFAULT_OPEN_TIMEOUT is how long to wait for the file lock
	DEFAULT_OPEN_TIMEOUT = time.Second * 30
)

// Database provides a read-write view of the database
type Database struct {
	*Bucket
}

// OpenDatabase opens the database in read-write mode
// The filePath must point to a bbolt file. The file must have the following structure :
// - a root bucket must exist that matches the database name
func OpenDatabase(filePath string, dbName string) (*Database, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, ErrFilePathIsBlank
	}

	if stat, err := os.Stat(filePath); err != nil {
		return nil, errors.WithStack(err)
	} else if stat.IsDir() {
		return nil, errDatabaseFilePathIsDir(filePath)
	}

	dbName = strings.TrimSpace(dbName)
	if dbName == "" {
		return nil, ErrDatabaseNameMustNotBeBlank
	}

	db, err := bolt.Open(filePath, READ_WRITE_MODE, &bolt.Options{Timeout: DEFAULT_OPEN_TIMEOUT})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open database file : %s", filePath)
	}

	err = db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(dbName)) == nil {
			return errRootDatabaseBucketDoesNotExist(dbName)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return newDatabase(db, dbName), nil
}

// CreateDatabase creates a new database with the specified name at the specified path
// ifNotExists = true -> if the database already exists then no error is returned
// ifNotExists = false -> if the database already exists, then an error is returned
//
// If the database file does not exist, then it will be created. The database existence is determined by the existence
// of a root bucket that matches the db name.
func CreateDatabase(filePath string, dbName string, ifNotExists bool) (*Database, error) {
	filePath = strings.TrimSpace(filePath)
	if filePath == "" {
		return nil, ErrFilePathIsBlank
	}

	dbName = strings.TrimSpace(dbName)
	if dbName == "" {
		return nil, ErrDatabaseNameMustNotBeBlank
	}

	db, err := bolt.Open(filePath, READ_WRITE_MODE, &bolt.Options{Timeout: DEFAULT_OPEN_TIMEOUT})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open database file : %s", filePath)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if ifNotExists {
			if _, err := tx.CreateBucketIfNotExists([]byte(dbName)); err != nil {
				return errors.WithStack(err)
			}
		} else {
			if tx.Bucket([]byte(dbName)) != nil {
				return ErrDatabaseBucketAlreadyExists
			}
			if _, err := tx.CreateBucket([]byte(dbName)); err != nil {
				return errors.WithStack(err)
			}
		}

		// set the created timestamp
		dbBucket := tx.Bucket([]byte(dbName))
		if dbBucket.Get([]byte(CREATED)) == nil {
			now, _ := time.Now().MarshalBinary() // ignoring err, because this will never err
			return dbBucket.Put([]byte(CREATED), now)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return newDatabase(db, dbName), nil
}

func newDatabase(db *bolt.DB, dbName string) *Database {
	return &Database{&Bucket{name: dbName, path: []string{dbName}, db: db}}
}

// Created returns when the database was created, or an error if it cannot be determined
func (a *Database) Created() (time.Time, error) {
	t := time.Time{}
	value, err := a.Get(CREATED)
	if err != nil {
		return t, err
	}
	err = t.UnmarshalBinary(value)
	return t, errors.WithStack(err)
}

// FilePath returns the database file path
func (a *Database) FilePath() string {
	return a.db.Path()
}

// Close releases all database resources. All transactions must be closed before closing the database.
func (a *Database) Close() error {
	return a.db.Close()
}
