package reconcile

import (
	"testing"
	"time"

	"catalog-sync/core/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(key, src string, at time.Time, fields map[string]string) source.Record {
	return source.Record{Key: key, Source: src, ObservedAt: at, Fields: fields}
}

func TestMerge_SingleSourceUnchanged(t *testing.T) {
	at := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	engine := NewEngine(Policy{Priority: []string{"sheets", "onec"}})

	merged, stats, err := engine.Merge([][]source.Record{
		{rec("X1", "onec", at, map[string]string{"name": "Acme", "brand": "Rexant"})},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Merged)
	assert.Equal(t, 0, stats.Conflicts)
	require.Contains(t, merged, "X1")
	assert.Equal(t, "Acme", merged["X1"].Fields["name"].Value)
	assert.Equal(t, "onec", merged["X1"].Fields["name"].Source)
	assert.Equal(t, "Rexant", merged["X1"].Fields["brand"].Value)
}

func TestMerge_PriorityWinsOverTimestamp(t *testing.T) {
	at := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	engine := NewEngine(Policy{Priority: []string{"a", "b"}})

	// Source A supplies "Acme", source B "Acme Corp", priority(A) > priority(B):
	// merged name must be "Acme" even though B's record is newer.
	merged, stats, err := engine.Merge([][]source.Record{
		{rec("X1", "a", at, map[string]string{"name": "Acme"})},
		{rec("X1", "b", at.Add(time.Hour), map[string]string{"name": "Acme Corp"})},
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme", merged["X1"].Fields["name"].Value)
	assert.Equal(t, "a", merged["X1"].Fields["name"].Source)
	assert.Equal(t, 1, stats.Conflicts)
	assert.Equal(t, 1, stats.PriorityWins)
}

func TestMerge_PerFieldOverride(t *testing.T) {
	at := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	engine := NewEngine(Policy{
		Priority:      []string{"sheets", "onec"},
		FieldPriority: map[string][]string{"name": {"onec", "sheets"}},
	})

	merged, _, err := engine.Merge([][]source.Record{
		{rec("X1", "onec", at, map[string]string{"name": "from 1C", "brand": "from 1C"})},
		{rec("X1", "sheets", at, map[string]string{"name": "from sheet", "brand": "from sheet"})},
	})
	require.NoError(t, err)

	assert.Equal(t, "from 1C", merged["X1"].Fields["name"].Value)
	assert.Equal(t, "from sheet", merged["X1"].Fields["brand"].Value)
}

func TestMerge_UnionOfKeys(t *testing.T) {
	at := time.Now()
	engine := NewEngine(Policy{Priority: []string{"sheets", "onec"}})

	merged, stats, err := engine.Merge([][]source.Record{
		{
			rec("A", "onec", at, map[string]string{"name": "a"}),
			rec("B", "onec", at, map[string]string{"name": "b"}),
		},
		{
			rec("B", "sheets", at, map[string]string{"name": "b"}),
			rec("C", "sheets", at, map[string]string{"name": "c"}),
		},
	})
	require.NoError(t, err)

	assert.Len(t, merged, 3)
	assert.Equal(t, 3, stats.Merged)
	assert.Equal(t, 4, stats.Records)
}

func TestMerge_RejectsMalformedAndDuplicates(t *testing.T) {
	at := time.Now()
	engine := NewEngine(Policy{Priority: []string{"onec"}})

	merged, stats, err := engine.Merge([][]source.Record{
		{
			rec("", "onec", at, map[string]string{"name": "no key"}),
			rec("A", "onec", at, map[string]string{"name": "first"}),
			rec("A", "onec", at.Add(time.Second), map[string]string{"name": "duplicate"}),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Rejected)
	assert.Equal(t, 2, stats.RejectedBySource["onec"])
	assert.Len(t, merged, 1)
	// The first record per (key, source) wins; the duplicate is dropped.
	assert.Equal(t, "first", merged["A"].Fields["name"].Value)
}

func TestMerge_ConflictFailsFast(t *testing.T) {
	at := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	// Both sources share rank (neither listed) and the same timestamp.
	engine := NewEngine(Policy{})

	_, _, err := engine.Merge([][]source.Record{
		{rec("X1", "a", at, map[string]string{"name": "Acme"})},
		{rec("X1", "b", at, map[string]string{"name": "Acme Corp"})},
	})

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "X1", conflict.Key)
	assert.Equal(t, "name", conflict.Field)
	assert.ElementsMatch(t, []string{"Acme", "Acme Corp"}, []string{conflict.ValueA, conflict.ValueB})
}

func TestMerge_ProvenancePerField(t *testing.T) {
	at := time.Now()
	engine := NewEngine(Policy{Priority: []string{"sheets", "onec"}})

	merged, _, err := engine.Merge([][]source.Record{
		{rec("X1", "onec", at, map[string]string{"name": "n", "country": "RU"})},
		{rec("X1", "sheets", at, map[string]string{"name": "better n"})},
	})
	require.NoError(t, err)

	entity := merged["X1"]
	assert.Equal(t, "sheets", entity.Fields["name"].Source)
	assert.Equal(t, "onec", entity.Fields["country"].Source)
}
