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

package product

import "github.com/oysterpack/faultline/pkg/app/logging"

const (
	PRODUCT_CREATED = logging.EventID(0xc3b27f8e0f5d49a6)
	PRODUCT_DELETED = logging.EventID(0x9a4be0f2d1c8e377)
)
