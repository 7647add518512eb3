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


package ingestion

import "errors"

var (
	// ErrStoreRequired is returned when a chunk repository is not provided.
	ErrStoreRequired = errors.New("chunk repository required")

	// ErrInvalidDocument is returned when a document lacks a source id,
	// has an unknown source type or holds no text.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrUnsupportedFormat is returned by LoadFile for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrInvalidBatchSize is returned when an embedding batch size below 1 is configured.
	ErrInvalidBatchSize = errors.New("batch size must be at least 1")
)
