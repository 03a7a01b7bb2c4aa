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

// Package uid provides the identifiers used by the application.
//
// UIDs are nuid based : they are cheap to generate and are used for instance ids and entity ids.
// Request ids are UUIDs, because they are exchanged with clients via the x-request-id header.
package uid

import (
	"github.com/google/uuid"
	"github.com/nats-io/nuid"
)

// UID is a unique id
type UID string

func (a UID) String() string { return string(a) }

func NextUID() UID {
	return UID(nuid.Next())
}

// NewRequestID returns a random (version 4) UUID
func NewRequestID() string {
	return uuid.NewString()
}
