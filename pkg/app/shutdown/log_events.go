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

package shutdown

import "github.com/oysterpack/faultline/pkg/app/logging"

const (
	SHUTDOWN_STARTED       = logging.EventID(0xa7c41e0d93f26b58)
	SHUTDOWN_DRAINED       = logging.EventID(0x9ad4c2f7e1b05d13)
	SHUTDOWN_DRAIN_ERR     = logging.EventID(0xf1296be04c8d3a77)
	SHUTDOWN_CLOSE_ERR     = logging.EventID(0x84e3b5a9d2c70f16)
	SHUTDOWN_STEP_PANICKED = logging.EventID(0xc53f0f1e9a6b2d84)
	SHUTDOWN_EXITING       = logging.EventID(0xcb60d2f8a4e19375)
)
