// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the requested record was not found.
	ErrNotFound = errors.New("record not found")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates a query the full-text index cannot parse.
	ErrInvalidQuery = errors.New("invalid query syntax")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")

	// ErrInvalidSnapshot indicates a snapshot stream that cannot be decoded.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// IndexQueryError reports a query rejected by the full-text index.
// It unwraps to ErrInvalidQuery.
type IndexQueryError struct {
	Query string
	Err   error
}

func (e *IndexQueryError) Error() string {
	return fmt.Sprintf("index rejected query %q: %v", e.Query, e.Err)
}

func (e *IndexQueryError) Unwrap() []error {
	return []error{ErrInvalidQuery, e.Err}
}
