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

package httpapi

import "github.com/oysterpack/faultline/pkg/app/logging"

const (
	REQUEST_STARTED  = logging.EventID(0xd1e1d3cbfcf0c7a1)
	REQUEST_FINISHED = logging.EventID(0x8e2d1f19b36a0b5c)
	RESPONSE_ERR     = logging.EventID(0xf0b4c1a4a49e83d2)
)
