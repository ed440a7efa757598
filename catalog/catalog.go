// Package catalog provides the sources a mirror reads from: an HTTP
// directory listing such as maps.ddnet.org, or a local directory.
package catalog

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

var (
	_ mirrortypes.Catalog = (*HTTPCatalog)(nil)
	_ mirrortypes.Fetcher = (*HTTPFetcher)(nil)
	_ mirrortypes.Catalog = (*LocalCatalog)(nil)
	_ mirrortypes.Fetcher = (*LocalFetcher)(nil)
)

// ParseListing scans an HTML page for anchors whose target ends in ext and
// returns the percent-decoded filenames in page order, without duplicates.
// Targets that do not decode or that point below the listing are skipped.
func ParseListing(r io.Reader, ext string) ([]string, error) {
	var names []string
	seen := make(map[string]struct{})

	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, errors.Wrap(err, errors.CodeInvalidInput, "parsing listing")
			}
			return names, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			tag, hasAttr := z.TagName()
			if string(tag) != "a" || !hasAttr {
				continue
			}
			name, ok := anchorTarget(z, ext)
			if !ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
}

func anchorTarget(z *html.Tokenizer, ext string) (string, bool) {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "href" {
			return decodeTarget(string(val), ext)
		}
		if !more {
			return "", false
		}
	}
}

func decodeTarget(href, ext string) (string, bool) {
	href = strings.TrimPrefix(href, "./")
	if !strings.HasSuffix(href, ext) || strings.ContainsAny(href, "?#") {
		return "", false
	}
	name, err := url.PathUnescape(href)
	if err != nil || name == ext || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
