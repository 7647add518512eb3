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


// Package storage provides the storage abstraction layer for groundwork.
//
// This package defines the interfaces that decouple retrieval from the
// storage engines behind it:
//
//   - EvidenceStore: read-only operations used while answering a query
//     (full-text search, sibling lookup, filtered scans)
//   - ChunkRepository: EvidenceStore plus the write operations used by
//     ingestion and re-embedding
//   - VectorCache: content-addressed embedding cache
//
// Implementations live in subpackages:
//
//   - storage/sqlite: chunks and an FTS5 index in a single SQLite file
//   - storage/badger: BadgerDB backed VectorCache
//   - storage/mock: in-memory EvidenceStore for tests
//
// # Usage
//
//	store, err := sqlite.Open(ctx, "/path/to/corpus")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines. The evidence store is treated as read-only
// while a query runs.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout
// support.
package storage
