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

package fault

import "github.com/oysterpack/faultline/pkg/app/logging"

const (
	UNCAUGHT_EXCEPTION  = logging.EventID(0x9de240c25779305c)
	UNHANDLED_REJECTION = logging.EventID(0xe8a1f4b27c6d0395)
	TERMINATE_REQUEST   = logging.EventID(0xa611d10b1dfc880d)
	REQUEST_ERROR       = logging.EventID(0xc1398919f7426edb)
	UNKNOWN_FAULT       = logging.EventID(0x9156bdee6b48f2b3)

	SUPERVISOR_ATTACHED = logging.EventID(0xeeb8cd1422232a22)
	SUPERVISOR_STOPPED  = logging.EventID(0xfd843c25ce81f841)
)

var kindEvents = map[Kind]logging.EventID{
	UncaughtException:  UNCAUGHT_EXCEPTION,
	UnhandledRejection: UNHANDLED_REJECTION,
	TerminateRequest:   TERMINATE_REQUEST,
	RequestError:       REQUEST_ERROR,
}

func (a Kind) eventID() logging.EventID {
	if id, ok := kindEvents[a]; ok {
		return id
	}
	return UNKNOWN_FAULT
}
