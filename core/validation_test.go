package core

import (
	"errors"
	"testing"
)

func validChunk() *Chunk {
	return &Chunk{
		Id:          ChunkID("doc", 0),
		SourceId:    "doc",
		SourceType:  SourceTypeDocument,
		Text:        "the quick brown fox",
		ChunkIndex:  0,
		StartOffset: 0,
		EndOffset:   19,
	}
}

func TestValidateChunk(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Chunk)
		wantErr error
	}{
		{name: "valid chunk", mutate: func(c *Chunk) {}},
		{name: "valid chunk without embedding", mutate: func(c *Chunk) { c.Embedding = nil }},
		{name: "empty text", mutate: func(c *Chunk) { c.Text = "  " }, wantErr: ErrEmptyContent},
		{name: "empty source id", mutate: func(c *Chunk) { c.SourceId = "" }, wantErr: ErrEmptySourceID},
		{name: "unknown source type", mutate: func(c *Chunk) { c.SourceType = "email" }, wantErr: ErrInvalidSourceType},
		{name: "negative index", mutate: func(c *Chunk) { c.ChunkIndex = -1 }, wantErr: ErrInvalidOffsets},
		{name: "inverted span", mutate: func(c *Chunk) { c.StartOffset = 10; c.EndOffset = 5 }, wantErr: ErrInvalidOffsets},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validChunk()
			tt.mutate(c)
			err := ValidateChunk(c)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateChunk() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidChunk) {
				t.Errorf("ValidateChunk() error should wrap ErrInvalidChunk, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateChunk() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateChunk_Nil(t *testing.T) {
	if err := ValidateChunk(nil); !errors.Is(err, ErrInvalidChunk) {
		t.Errorf("ValidateChunk(nil) error = %v, want ErrInvalidChunk", err)
	}
}

func TestParseSourceType(t *testing.T) {
	st, err := ParseSourceType(" Code ")
	if err != nil {
		t.Fatalf("ParseSourceType() error = %v", err)
	}
	if st != SourceTypeCode {
		t.Errorf("ParseSourceType() = %q, want %q", st, SourceTypeCode)
	}

	if _, err := ParseSourceType("spreadsheet"); !errors.Is(err, ErrInvalidSourceType) {
		t.Errorf("ParseSourceType() error = %v, want ErrInvalidSourceType", err)
	}
}

func TestParseSourceTypes(t *testing.T) {
	types, err := ParseSourceTypes([]string{"report", "strategy"})
	if err != nil {
		t.Fatalf("ParseSourceTypes() error = %v", err)
	}
	if len(types) != 2 || types[0] != SourceTypeReport || types[1] != SourceTypeStrategy {
		t.Errorf("ParseSourceTypes() = %v", types)
	}

	types, err = ParseSourceTypes(nil)
	if err != nil || types != nil {
		t.Errorf("ParseSourceTypes(nil) = %v, %v; want nil, nil", types, err)
	}

	if _, err := ParseSourceTypes([]string{"report", "bogus"}); err == nil {
		t.Errorf("ParseSourceTypes() accepted an invalid name")
	}
}
