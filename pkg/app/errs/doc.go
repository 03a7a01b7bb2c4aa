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

// Package errs defines the single error model used by the service.
//
// Every failure that crosses a component boundary (a request handler, a background goroutine, a process signal)
// is converted into an *Error via Normalize before it is logged or answered. An *Error carries :
//	- Kind    : stable identifier of the failure category
//	- Message : human readable message
//	- Status  : HTTP status surfaced to the remote caller, 500 by default
//	- Trusted : true if the failure is an anticipated application condition and the process may keep running
//	- Cause   : optional underlying failure, for diagnostics only
//	- Stack   : only present when the normalized value already carried one
//
// Errors are immutable once constructed. Normalize is total : any value, including nil, yields exactly one *Error.
package errs
