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

// Package fault is the single place where the process decides whether a failure is fatal.
//
// Every fault, whatever its source, flows through Supervisor.Handle :
//	1. the raw value is normalized into an *errs.Error
//	2. the error is logged at error level - if logging fails, then the failure and the raw value are written to the
//	   last resort writer
//	3. if the error is untrusted, or the fault is a termination request, then the process is terminated via the
//	   Terminator, otherwise Handle returns and the process keeps running
//
// Fault sources :
//	- termination signals (SIGTERM, SIGINT), subscribed to by Attach
//	- panics on goroutines started via Supervisor.Go, or recovered via Supervisor.Recover
//	- errors returned by goroutines started via Supervisor.Go, which nothing else would observe
//	- request failures reported by the HTTP boundary via HandleAsync
package fault
