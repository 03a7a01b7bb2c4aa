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

package reqctx_test

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/oysterpack/faultline/pkg/app/reqctx"
)

func TestGetWithoutScope(t *testing.T) {
	store := reqctx.NewStore()
	if v, ok := store.Get(context.Background(), reqctx.RequestIDKey); ok {
		t.Errorf("no scope is open, but a value was found : %v", v)
	}
	if _, ok := store.Get(nil, reqctx.RequestIDKey); ok {
		t.Error("nil context should have no scope")
	}
	if store.Set(context.Background(), "k", "v") {
		t.Error("Set should fail when no scope is open")
	}
}

func TestRunWithScope(t *testing.T) {
	store := reqctx.NewStore()
	initial := map[string]interface{}{reqctx.RequestIDKey: "abc"}

	id := reqctx.RunWithScope(context.Background(), store, initial, func(ctx context.Context) string {
		id, _ := store.RequestID(ctx)
		return id
	})
	if id != "abc" {
		t.Errorf("request id does not match : %q", id)
	}

	// the initial map is copied
	reqctx.RunWithScope(context.Background(), store, initial, func(ctx context.Context) bool {
		return store.Set(ctx, reqctx.RequestIDKey, "changed")
	})
	if initial[reqctx.RequestIDKey] != "abc" {
		t.Error("the caller's initial values must not be mutated")
	}
}

func TestScopeMutationsAreVisibleToDescendants(t *testing.T) {
	store := reqctx.NewStore()
	ctx := store.Open(context.Background(), nil)
	store.Set(ctx, "user", "alice")

	done := make(chan interface{})
	go func(ctx context.Context) {
		v, _ := store.Get(ctx, "user")
		done <- v
	}(ctx)
	if v := <-done; v != "alice" {
		t.Errorf("goroutine did not see the scope value : %v", v)
	}

	derived, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if v, _ := store.Get(derived, "user"); v != "alice" {
		t.Errorf("derived contexts should see the scope : %v", v)
	}
}

func TestNestedScopesAreIndependent(t *testing.T) {
	store := reqctx.NewStore()
	outer := store.WithRequestID(context.Background(), "outer")
	inner := store.Open(outer, map[string]interface{}{"other": 1})

	if _, ok := store.RequestID(inner); ok {
		t.Error("the inner scope should not see the outer scope's values")
	}
	store.Set(inner, reqctx.RequestIDKey, "inner")
	if id, _ := store.RequestID(outer); id != "outer" {
		t.Errorf("the inner scope mutated the outer scope : %s", id)
	}
}

func TestStoresDoNotCollide(t *testing.T) {
	a, b := reqctx.NewStore(), reqctx.NewStore()
	ctx := a.WithRequestID(context.Background(), "a")
	if _, ok := b.RequestID(ctx); ok {
		t.Error("store b should not see store a's scope")
	}
}

func TestConcurrentScopesAreIsolated(t *testing.T) {
	store := reqctx.NewStore()
	const scopes = 100
	const iterations = 50

	var wait sync.WaitGroup
	errs := make(chan error, scopes*iterations)
	for i := 0; i < scopes; i++ {
		wait.Add(1)
		go func(i int) {
			defer wait.Done()
			requestID := fmt.Sprintf("request-%d", i)
			reqctx.RunWithScope(context.Background(), store, map[string]interface{}{reqctx.RequestIDKey: requestID}, func(ctx context.Context) error {
				// interleave with the other scopes, including nested goroutines
				var child sync.WaitGroup
				for j := 0; j < iterations; j++ {
					child.Add(1)
					go func() {
						defer child.Done()
						runtime.Gosched()
						if id, _ := store.RequestID(ctx); id != requestID {
							errs <- fmt.Errorf("expected %s but observed %s", requestID, id)
						}
					}()
					runtime.Gosched()
				}
				child.Wait()
				return nil
			})
		}(i)
	}
	wait.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
		break
	}
}
