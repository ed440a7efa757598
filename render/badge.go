package render

import (
	"bytes"
	"fmt"
	"html"
	"text/template"
	"unicode/utf8"
)

// Badge colors.
const (
	ColorBlue      = "#007ec6"
	ColorLightGrey = "#9f9f9f"
	ColorGreen     = "#4c1"
)

const (
	badgePadding = 10
	narrowGlyph  = 7
	wideGlyph    = 12
)

var badgeTemplate = template.Must(template.New("badge").Funcs(template.FuncMap{
	"xml": html.EscapeString,
}).Parse(
	`<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="20" role="img" aria-label="{{xml .Label}}: {{xml .Message}}">` +
		`<title>{{xml .Label}}: {{xml .Message}}</title>` +
		`<linearGradient id="s" x2="0" y2="100%"><stop offset="0" stop-color="#bbb" stop-opacity=".1"/><stop offset="1" stop-opacity=".1"/></linearGradient>` +
		`<clipPath id="r"><rect width="{{.Width}}" height="20" rx="3" fill="#fff"/></clipPath>` +
		`<g clip-path="url(#r)"><rect width="{{.LabelWidth}}" height="20" fill="#555"/>` +
		`<rect x="{{.LabelWidth}}" width="{{.MessageWidth}}" height="20" fill="{{.Color}}"/>` +
		`<rect width="{{.Width}}" height="20" fill="url(#s)"/></g>` +
		`<g fill="#fff" text-anchor="middle" font-family="Verdana,Geneva,DejaVu Sans,sans-serif" font-size="11">` +
		`<text x="{{.LabelX}}" y="14">{{xml .Label}}</text>` +
		`<text x="{{.MessageX}}" y="14">{{xml .Message}}</text></g></svg>`,
))

// Badge renders a flat two-part status badge as SVG.
func Badge(label, message, color string) ([]byte, error) {
	labelWidth := textWidth(label) + badgePadding
	messageWidth := textWidth(message) + badgePadding

	var buf bytes.Buffer
	err := badgeTemplate.Execute(&buf, map[string]any{
		"Label":        label,
		"Message":      message,
		"Color":        color,
		"Width":        labelWidth + messageWidth,
		"LabelWidth":   labelWidth,
		"MessageWidth": messageWidth,
		"LabelX":       float64(labelWidth) / 2,
		"MessageX":     float64(labelWidth) + float64(messageWidth)/2,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering badge %q: %w", label, err)
	}
	return buf.Bytes(), nil
}

// textWidth estimates the rendered width of s at 11px Verdana. CJK glyphs
// are roughly twice as wide as Latin ones.
func textWidth(s string) int {
	w := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r >= 0x2E80 {
			w += wideGlyph
		} else {
			w += narrowGlyph
		}
	}
	return w
}
