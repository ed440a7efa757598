package render

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

const (
	nameWidth = 50
	sizeWidth = 14
)

// Rows are concatenated without newlines: inside <pre> the <br> is the line break.
var indexTemplate = template.Must(template.New("index").Parse(
	`<html><head><meta charset="utf-8" /><title>{{.Title}}</title></head><body>` +
		`<h1>{{.Title}}</h1><p>{{.LastSyncLabel}}: {{.LastSync}}</p><hr><pre>` +
		`{{range .Rows}}<a href="{{.Href}}">{{.Name}}</a>{{.Pad}}{{.Date}}{{.Size}}<br>{{end}}` +
		`</pre></body></html>`,
))

type indexRow struct {
	Href template.URL
	Name string
	Pad  string
	Date string
	Size string
}

// Index renders the index page: every record, most recently modified first.
func (r *Renderer) Index(state mirrortypes.State, now time.Time) ([]byte, error) {
	records := SortedRecords(state)

	rows := make([]indexRow, 0, len(records))
	for _, rec := range records {
		name := truncate(rec.Key, nameWidth)
		rows = append(rows, indexRow{
			Href: hrefFor(rec.Key),
			Name: name,
			Pad:  strings.Repeat(" ", nameWidth+1-utf8.RuneCountInString(name)),
			Date: rec.LastModified.In(r.opts.Location).Format(time.DateOnly),
			Size: fmt.Sprintf("%*s", sizeWidth, humanize.Bytes(uint64(max(rec.Size, 0)))),
		})
	}

	var buf bytes.Buffer
	err := indexTemplate.Execute(&buf, map[string]any{
		"Title":         r.opts.Title,
		"LastSyncLabel": r.opts.LastSyncLabel,
		"LastSync":      now.In(r.opts.Location).Format(time.DateTime),
		"Rows":          rows,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", IndexKey, err)
	}
	return buf.Bytes(), nil
}

// SortedRecords returns the records of state by LastModified descending,
// ties broken by key.
func SortedRecords(state mirrortypes.State) []mirrortypes.Record {
	records := make([]mirrortypes.Record, 0, len(state))
	for _, rec := range state {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.LastModified.Equal(b.LastModified) {
			return a.LastModified.After(b.LastModified)
		}
		return a.Key < b.Key
	})
	return records
}

// hrefFor escapes key like encodeURIComponent, so names containing ':' are
// never read as a URL scheme.
func hrefFor(key string) template.URL {
	return template.URL(strings.ReplaceAll(url.PathEscape(key), ":", "%3A")) //nolint:gosec // fully escaped relative path
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
