package storage

import (
	"testing"

	"github.com/poiesic/groundwork/core"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Matches(t *testing.T) {
	code := &core.Chunk{SourceType: core.SourceTypeCode, Domain: "infra"}
	report := &core.Chunk{SourceType: core.SourceTypeReport}

	t.Run("nil filter admits everything", func(t *testing.T) {
		var f *Filter
		assert.True(t, f.IsEmpty())
		assert.True(t, f.Matches(code))
		assert.True(t, f.Matches(report))
		assert.False(t, f.Matches(nil))
	})

	t.Run("source types", func(t *testing.T) {
		f := &Filter{SourceTypes: []core.SourceType{core.SourceTypeCode}}
		assert.False(t, f.IsEmpty())
		assert.True(t, f.Matches(code))
		assert.False(t, f.Matches(report))
	})

	t.Run("domain", func(t *testing.T) {
		f := &Filter{Domain: "infra"}
		assert.True(t, f.Matches(code))
		assert.False(t, f.Matches(report))
	})

	t.Run("source types and domain", func(t *testing.T) {
		f := &Filter{SourceTypes: []core.SourceType{core.SourceTypeReport}, Domain: "infra"}
		assert.False(t, f.Matches(code))
		assert.False(t, f.Matches(report))
	})
}
