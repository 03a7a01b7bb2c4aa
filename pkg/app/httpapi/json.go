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

import (
	"io"
	"net/http"

	"github.com/json-iterator/go"
	"github.com/oysterpack/faultline/pkg/app/errs"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MAX_REQUEST_BODY_SIZE is the maximum request body size accepted by ReadJSON
const MAX_REQUEST_BODY_SIZE = 1024 * 1024

// WriteJSON writes the value as the JSON response body
func WriteJSON(w http.ResponseWriter, status int, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(data)
	return err
}

// ReadJSON decodes the JSON request body into v.
//
// errors:
//	- errs.ValidationKind if the body is not valid JSON
func ReadJSON(req *http.Request, v interface{}) error {
	data, err := io.ReadAll(io.LimitReader(req.Body, MAX_REQUEST_BODY_SIZE))
	if err != nil {
		return errs.Validation("failed to read request body", errs.WithCause(err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.Validation("request body is not valid JSON", errs.WithCause(err))
	}
	return nil
}
