package differ

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

func TestMissing(t *testing.T) {
	tests := []struct {
		name       string
		candidates mirrortypes.Set
		known      mirrortypes.Set
		want       mirrortypes.Set
	}{
		{
			name:       "nothing known",
			candidates: mirrortypes.NewSet("a.map", "b.map"),
			known:      mirrortypes.NewSet(),
			want:       mirrortypes.NewSet("a.map", "b.map"),
		},
		{
			name:       "everything known",
			candidates: mirrortypes.NewSet("a.map", "b.map"),
			known:      mirrortypes.NewSet("a.map", "b.map"),
			want:       mirrortypes.NewSet(),
		},
		{
			name:       "partial overlap",
			candidates: mirrortypes.NewSet("a.map", "b.map", "c.map"),
			known:      mirrortypes.NewSet("b.map", "z.map"),
			want:       mirrortypes.NewSet("a.map", "c.map"),
		},
		{
			name:       "case sensitive",
			candidates: mirrortypes.NewSet("A.map"),
			known:      mirrortypes.NewSet("a.map"),
			want:       mirrortypes.NewSet("A.map"),
		},
		{
			name:       "no percent decoding",
			candidates: mirrortypes.NewSet("a b.map"),
			known:      mirrortypes.NewSet("a%20b.map"),
			want:       mirrortypes.NewSet("a b.map"),
		},
		{
			name:       "empty candidates",
			candidates: mirrortypes.NewSet(),
			known:      mirrortypes.NewSet("a.map"),
			want:       mirrortypes.NewSet(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Missing(tt.candidates, tt.known))
		})
	}
}

// TestMissing_SetDifference checks the result against a brute-force
// difference over random sets.
func TestMissing_SetDifference(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	randomSet := func() mirrortypes.Set {
		s := mirrortypes.NewSet()
		for range r.Intn(30) {
			s[fmt.Sprintf("m%d.map", r.Intn(40))] = struct{}{}
		}
		return s
	}

	for range 200 {
		c, k := randomSet(), randomSet()
		got := Missing(c, k)

		for key := range got {
			assert.True(t, c.Has(key))
			assert.False(t, k.Has(key))
		}
		for key := range c {
			assert.Equal(t, !k.Has(key), got.Has(key))
		}
		assert.Empty(t, Missing(c, c))
		assert.Equal(t, c, Missing(c, mirrortypes.NewSet()))
	}
}

func TestOrdered(t *testing.T) {
	entries := []mirrortypes.CatalogEntry{
		{Filename: "c.map", SourceRef: "u/c"},
		{Filename: "a.map", SourceRef: "u/a"},
		{Filename: "b.map", SourceRef: "u/b"},
		{Filename: "a.map", SourceRef: "u/a2"},
		{Filename: "d.map", SourceRef: "u/d"},
	}

	got := Ordered(entries, mirrortypes.NewSet("b.map"))

	assert.Equal(t, []mirrortypes.CatalogEntry{
		{Filename: "c.map", SourceRef: "u/c"},
		{Filename: "a.map", SourceRef: "u/a"},
		{Filename: "d.map", SourceRef: "u/d"},
	}, got)

	assert.Empty(t, Ordered(entries, Candidates(entries)))
}

func TestStale(t *testing.T) {
	known := mirrortypes.NewSet("z.map", "a.map", "keep.map")
	candidates := mirrortypes.NewSet("keep.map", "new.map")

	assert.Equal(t, []string{"a.map", "z.map"}, Stale(known, candidates))
}
