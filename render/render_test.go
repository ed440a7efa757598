package render

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

func testState() mirrortypes.State {
	s := mirrortypes.State{}
	s.Put(mirrortypes.Record{Key: "old_00000000.map", LastModified: time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), Size: 512})
	s.Put(mirrortypes.Record{Key: "new_11111111.map", LastModified: time.Date(2024, 6, 7, 8, 9, 10, 0, time.UTC), Size: 1_500_000})
	s.Put(mirrortypes.Record{Key: "tie_b_22222222.map", LastModified: time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC), Size: 2048})
	s.Put(mirrortypes.Record{Key: "tie_a_33333333.map", LastModified: time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC), Size: 4096})
	return s
}

func TestSortedRecords(t *testing.T) {
	var keys []string
	for _, r := range SortedRecords(testState()) {
		keys = append(keys, r.Key)
	}
	assert.Equal(t, []string{"new_11111111.map", "tie_a_33333333.map", "tie_b_22222222.map", "old_00000000.map"}, keys)
}

func TestRenderer_Index(t *testing.T) {
	now := time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)
	page, err := New(Options{}).Index(testState(), now)
	require.NoError(t, err)

	html := string(page)
	assert.True(t, strings.HasPrefix(html, `<html><head><meta charset="utf-8" />`))
	assert.Contains(t, html, "<title>DDNet map mirror</title>")
	assert.Contains(t, html, "Last sync: 2024-06-08 12:00:00")
	assert.Equal(t, 4, strings.Count(html, "<br>"))

	row := `<a href="new_11111111.map">new_11111111.map</a>` +
		strings.Repeat(" ", 51-len("new_11111111.map")) +
		"2024-06-07" + fmt.Sprintf("%14s", "1.5 MB") + "<br>"
	assert.Contains(t, html, row)

	assert.Less(t, strings.Index(html, "new_11111111.map"), strings.Index(html, "old_00000000.map"))
}

func TestRenderer_IndexEscapingAndTruncation(t *testing.T) {
	long := strings.Repeat("x", 60) + "_00000000.map"
	s := mirrortypes.State{}
	s.Put(mirrortypes.Record{Key: long, LastModified: time.Unix(0, 0), Size: 1})
	s.Put(mirrortypes.Record{Key: "a b&c:d_00000000.map", LastModified: time.Unix(1, 0), Size: 1})

	page, err := New(Options{}).Index(s, time.Unix(2, 0))
	require.NoError(t, err)
	html := string(page)

	assert.Contains(t, html, `>`+strings.Repeat("x", 50)+`</a> 1970-01-01`)
	assert.Contains(t, html, `href="a%20b&amp;c%3Ad_00000000.map"`)
	assert.Contains(t, html, `>a b&amp;c:d_00000000.map</a>`)
}

func TestRenderer_IndexTimeZone(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	s := mirrortypes.State{}
	s.Put(mirrortypes.Record{Key: "late_00000000.map", LastModified: time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), Size: 1})

	page, err := New(Options{Location: shanghai}).Index(s, time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, string(page), "2024-01-02")
	assert.Contains(t, string(page), "2024-01-02 04:00:00")
}

func TestRenderer_Render(t *testing.T) {
	artifacts, err := New(Options{}).Render(testState(), time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, artifacts, 3)

	byKey := map[string]mirrortypes.Artifact{}
	for _, a := range artifacts {
		byKey[a.Key] = a
	}

	assert.Equal(t, "text/html; charset=utf-8", byKey[IndexKey].ContentType)
	assert.Contains(t, string(byKey[LastSyncKey].Data), "2024-06-08 12:00:00")
	assert.Contains(t, string(byKey[SyncCountKey].Data), "4 maps")
	assert.Equal(t, "image/svg+xml", byKey[SyncCountKey].ContentType)
}

func TestBadge(t *testing.T) {
	svg, err := Badge("synced", "3 <maps>", ColorLightGrey)
	require.NoError(t, err)

	s := string(svg)
	assert.True(t, strings.HasPrefix(s, `<svg xmlns="http://www.w3.org/2000/svg"`))
	assert.Contains(t, s, ColorLightGrey)
	assert.Contains(t, s, "3 &lt;maps&gt;")
	assert.NotContains(t, s, "<maps>")

	labelWidth := textWidth("synced") + badgePadding
	messageWidth := textWidth("3 <maps>") + badgePadding
	assert.Contains(t, s, fmt.Sprintf(`width="%d"`, labelWidth+messageWidth))
}

func TestTextWidth(t *testing.T) {
	assert.Equal(t, 0, textWidth(""))
	assert.Equal(t, 3*narrowGlyph, textWidth("abc"))
	assert.Equal(t, 2*wideGlyph, textWidth("地图"))
}
