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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyContent indicates the Text field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptySourceID indicates the SourceId field is empty.
	ErrEmptySourceID = errors.New("source id cannot be empty")

	// ErrInvalidSourceType indicates a value outside the SourceType set.
	ErrInvalidSourceType = errors.New("invalid source type")

	// ErrInvalidOffsets indicates a negative or inverted character span.
	ErrInvalidOffsets = errors.New("invalid chunk offsets")

	// ErrTruncatedData indicates encoded data ended before a value was complete.
	ErrTruncatedData = errors.New("truncated data")
)
