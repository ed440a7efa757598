// Package differ computes which catalog entries are not yet mirrored.
//
// Keys are compared by exact string equality. Candidates must already be
// percent-decoded; no normalization happens here.
package differ

import (
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

// Missing returns candidates \ known.
func Missing(candidates, known mirrortypes.Set) mirrortypes.Set {
	missing := make(mirrortypes.Set)
	for k := range candidates {
		if !known.Has(k) {
			missing[k] = struct{}{}
		}
	}
	return missing
}

// Ordered returns the entries whose filename is not in known, in catalog
// order. Repeated filenames keep their first occurrence only.
func Ordered(entries []mirrortypes.CatalogEntry, known mirrortypes.Set) []mirrortypes.CatalogEntry {
	seen := make(mirrortypes.Set, len(entries))
	var missing []mirrortypes.CatalogEntry
	for _, e := range entries {
		if seen.Has(e.Filename) {
			continue
		}
		seen[e.Filename] = struct{}{}
		if !known.Has(e.Filename) {
			missing = append(missing, e)
		}
	}
	return missing
}

// Stale returns the known keys that are no longer offered by the catalog,
// in lexical order.
func Stale(known, candidates mirrortypes.Set) []string {
	return Missing(known, candidates).Sorted()
}

// Candidates returns the filenames of entries as a set.
func Candidates(entries []mirrortypes.CatalogEntry) mirrortypes.Set {
	set := make(mirrortypes.Set, len(entries))
	for _, e := range entries {
		set[e.Filename] = struct{}{}
	}
	return set
}
