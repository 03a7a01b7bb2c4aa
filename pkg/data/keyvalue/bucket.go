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

package keyvalue

import (
	"strings"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

// Bucket represents a bucket of key-value pairs. Keys are strings, but values are simply bytes.
// Buckets can form a hierarchy of buckets.
//
// Each operation runs in its own transaction.
type Bucket struct {
	name string
	path []string
	db   *bolt.DB
}

// Name returns the Bucket name
func (a *Bucket) Name() string {
	return a.name
}

// Path returns the bucket names from the root down to this bucket
func (a *Bucket) Path() []string {
	return append([]string(nil), a.path...)
}

// Get returns a copy of the value for the specified key.
// If the key does not exist, or if the key actually refers to a child Bucket, then nil is returned.
func (a *Bucket) Get(key string) ([]byte, error) {
	var value []byte
	err := a.db.View(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.path)
		if b == nil {
			return errBucketDoesNotExist(a.path)
		}
		// the value is only valid for the life of the transaction
		if v := b.Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	return value, err
}

// Put sets the value for a key in the bucket. If the key exist then its previous value will be overwritten.
// Returns an error if the key is blank, if the key is too large, or if the value is too large.
func (a *Bucket) Put(key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return ErrKeyIsBlank
	}
	return a.db.Update(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.path)
		if b == nil {
			return errBucketDoesNotExist(a.path)
		}
		return errors.Wrapf(b.Put([]byte(key), value), "Put failed : %v/%s", a.path, key)
	})
}

// PutIfAbsent stores the value only if the key does not exist. It returns false if the key already exists.
// The check and the put run within the same transaction.
func (a *Bucket) PutIfAbsent(key string, value []byte) (bool, error) {
	if strings.TrimSpace(key) == "" {
		return false, ErrKeyIsBlank
	}
	stored := false
	err := a.db.Update(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.path)
		if b == nil {
			return errBucketDoesNotExist(a.path)
		}
		if b.Get([]byte(key)) != nil {
			return nil
		}
		if err := b.Put([]byte(key), value); err != nil {
			return errors.Wrapf(err, "Put failed : %v/%s", a.path, key)
		}
		stored = true
		return nil
	})
	return stored && err == nil, err
}

// Delete removes the keys from the bucket. If the key does not exist then nothing is done and a nil error is returned.
// All or none are deleted within the same transaction.
func (a *Bucket) Delete(keys ...string) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.path)
		if b == nil {
			return errBucketDoesNotExist(a.path)
		}
		for _, k := range keys {
			if err := b.Delete([]byte(k)); err != nil {
				return errors.Wrapf(err, "Delete failed : %v/%s", a.path, k)
			}
		}
		return nil
	})
}

// Keys returns the keys stored in this bucket in sorted order. Child bucket names are excluded.
// seek is optional - if specified, then the keys start at seek, or at the next key if seek does not exist.
func (a *Bucket) Keys(seek string) ([]string, error) {
	var keys []string
	err := a.db.View(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.path)
		if b == nil {
			return errBucketDoesNotExist(a.path)
		}
		cursor := b.Cursor()
		k, v := cursor.First()
		if seek != "" {
			k, v = cursor.Seek([]byte(seek))
		}
		for ; k != nil; k, v = cursor.Next() {
			// nil values mean the key is a bucket
			if v != nil {
				keys = append(keys, string(k))
			}
		}
		return nil
	})
	return keys, err
}

// CreateBucketIfNotExists creates a new bucket if it doesn't already exist and returns a reference to it.
// Returns an error if the bucket name is blank, or if the bucket name is too long.
func (a *Bucket) CreateBucketIfNotExists(name string) (*Bucket, error) {
	err := a.db.Update(func(tx *bolt.Tx) error {
		b := lookupBucket(tx, a.path)
		if b == nil {
			return errBucketDoesNotExist(a.path)
		}
		_, err := b.CreateBucketIfNotExists([]byte(name))
		return errors.Wrapf(err, "CreateBucketIfNotExists failed : %v/%s", a.path, name)
	})
	if err != nil {
		return nil, err
	}
	return &Bucket{name: name, path: childPath(a.path, name), db: a.db}, nil
}

// Child returns the child bucket for the specified path. If the bucket does not exist, then nil is returned.
func (a *Bucket) Child(path ...string) *Bucket {
	if len(path) == 0 {
		return a
	}
	var exists bool
	a.db.View(func(tx *bolt.Tx) error {
		parent := lookupBucket(tx, a.path)
		exists = parent != nil && lookupChildBucket(tx, parent, path) != nil
		return nil
	})
	if !exists {
		return nil
	}
	fullPath := append(a.Path(), path...)
	return &Bucket{name: path[len(path)-1], path: fullPath, db: a.db}
}
