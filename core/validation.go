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

import (
	"fmt"
	"strings"
)

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - SourceId must not be empty
//   - SourceType must be one of SourceTypes
//   - ChunkIndex and offsets must be non-negative, EndOffset >= StartOffset
//
// NOT validated:
//   - Embedding (can be empty until the embedding pipeline runs)
//   - Domain (empty means no domain tag)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if strings.TrimSpace(chunk.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	if chunk.SourceId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySourceID)
	}

	if err := ValidateSourceType(chunk.SourceType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	if chunk.ChunkIndex < 0 || chunk.StartOffset < 0 || chunk.EndOffset < chunk.StartOffset {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidOffsets)
	}

	return nil
}

// ValidateSourceType validates that a SourceType belongs to the closed set.
func ValidateSourceType(st SourceType) error {
	for _, known := range SourceTypes {
		if st == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidSourceType, string(st))
}

// ParseSourceType converts a user supplied name into a SourceType.
// Matching is case-insensitive.
func ParseSourceType(name string) (SourceType, error) {
	st := SourceType(strings.ToLower(strings.TrimSpace(name)))
	if err := ValidateSourceType(st); err != nil {
		return "", err
	}
	return st, nil
}

// ParseSourceTypes converts a list of names, rejecting the first invalid one.
func ParseSourceTypes(names []string) ([]SourceType, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]SourceType, 0, len(names))
	for _, name := range names {
		st, err := ParseSourceType(name)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
