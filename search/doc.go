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


// Package search provides hybrid lexical and semantic retrieval over a
// bounded evidence corpus.
//
// The Searcher runs two lanes over a storage.EvidenceStore:
//   - A lexical lane that queries the full-text index and normalizes scores
//   - A semantic lane that ranks the lexical seeds, their sibling chunks and,
//     for small candidate sets, the whole filtered corpus by cosine similarity
//
// Lane rankings are merged with reciprocal rank fusion and nudged by
// heuristic bonuses for exact phrases, query term density and lead chunks.
// A lane that fails or times out is dropped; Search itself never fails.
package search
