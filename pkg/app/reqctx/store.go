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

// Package reqctx provides request scoped key-value storage that travels with a context.Context.
//
// A scope is opened at the request boundary and is visible to everything that is handed the derived context,
// including goroutines spawned with it. Scopes are independent : opening a scope within another scope shadows it,
// and concurrent scopes never observe each other's values.
package reqctx

import (
	"context"
	"sync"
)

// RequestIDKey is the scope key for the request correlation id
const RequestIDKey = "requestId"

// Store is used to open and read scopes. A single Store is created at process start and shared by reference.
type Store struct {
	key *storeKey
}

// each store has its own key, thus stores never see each other's scopes
type storeKey struct {
	name string
}

// NewStore returns a new Store
func NewStore() *Store {
	return &Store{key: &storeKey{"reqctx"}}
}

type scope struct {
	mutex  sync.RWMutex
	values map[string]interface{}
}

// Open returns a context carrying a new scope initialized with a copy of the initial values.
func (a *Store) Open(ctx context.Context, initial map[string]interface{}) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	values := make(map[string]interface{}, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return context.WithValue(ctx, a.key, &scope{values: values})
}

// RunWithScope runs the task within a new scope and returns the task's result
func RunWithScope[T any](ctx context.Context, store *Store, initial map[string]interface{}, task func(ctx context.Context) T) T {
	return task(store.Open(ctx, initial))
}

func (a *Store) scope(ctx context.Context) *scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(a.key).(*scope)
	return s
}

// Get returns the value for the key in the innermost scope. ok is false if no scope is open or the key is not set.
func (a *Store) Get(ctx context.Context, key string) (value interface{}, ok bool) {
	s := a.scope(ctx)
	if s == nil {
		return nil, false
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	value, ok = s.values[key]
	return
}

// Set stores the value in the innermost scope. It returns false if no scope is open.
func (a *Store) Set(ctx context.Context, key string, value interface{}) bool {
	s := a.scope(ctx)
	if s == nil {
		return false
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[key] = value
	return true
}

// RequestID returns the scope's request id
func (a *Store) RequestID(ctx context.Context) (string, bool) {
	v, ok := a.Get(ctx, RequestIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// WithRequestID opens a new scope holding the request id
func (a *Store) WithRequestID(ctx context.Context, requestID string) context.Context {
	return a.Open(ctx, map[string]interface{}{RequestIDKey: requestID})
}
