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

// Package app is the composition root of an HTTP service whose failures are handled in one place.
//
// Design Principles
//  1. Every log record written while serving a request carries the request id, without the request id being passed
//     around explicitly. The request id is carried by the request context (see package reqctx).
//  2. Errors are classified when they are created (see package errs). A trusted error is an anticipated failure : it is
//     logged and answered, and the service keeps running. An untrusted error means the process state can no longer be
//     relied upon : it is logged and the process terminates.
//  3. All faults flow through a single fault supervisor (see package fault), whatever their source : request failures,
//     goroutine panics, errors nothing else observes, and termination signals.
//  4. Graceful shutdown : when the process terminates, the HTTP server stops accepting connections and waits for
//     in-flight requests to complete, then resources are closed, and then the process exits (see package shutdown).
//  5. All log events are assigned a unique numeric id (uint64) for tracking and traceability purposes.
package app
