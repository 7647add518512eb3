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


package search

import "errors"

var (
	// ErrStoreRequired is returned when an evidence store is not provided.
	ErrStoreRequired = errors.New("evidence store required")

	// ErrInvalidTopK is returned when a default topK below 1 is configured.
	ErrInvalidTopK = errors.New("topK must be at least 1")

	// ErrInvalidLaneTimeout is returned when a non-positive lane timeout is configured.
	ErrInvalidLaneTimeout = errors.New("lane timeout must be positive")

	// ErrEmbedderUnavailable is reported to monitors when the semantic lane
	// is skipped because no embedder is configured.
	ErrEmbedderUnavailable = errors.New("embedder unavailable")

	// ErrEmptyEmbedding is reported to monitors when the embedder returns an
	// empty vector for the query.
	ErrEmptyEmbedding = errors.New("embedder returned empty vector")
)
