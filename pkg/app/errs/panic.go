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

package errs

import (
	"fmt"
	"runtime/debug"
)

// Panic is a recovered panic value together with the goroutine stack captured where it was recovered.
type Panic struct {
	Value interface{}
	Stack []byte
}

// NewPanic must be called from the deferred function that recovered the value, so that the captured stack
// includes the frames that panicked.
//
//	defer func() {
//		if r := recover(); r != nil {
//			report(errs.NewPanic(r))
//		}
//	}()
func NewPanic(value interface{}) *Panic {
	return &Panic{Value: value, Stack: debug.Stack()}
}

func (p *Panic) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Unwrap returns the panic value if it is an error
func (p *Panic) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}
