// Package planner turns the missing catalog entries into numbered work items.
package planner

import (
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

// Plan is the ordered work for one run.
type Plan struct {
	Items []mirrortypes.WorkItem

	// Deferred counts missing entries left for a later run because of Limit.
	Deferred int
}

// Planner creates plans.
type Planner struct {
	// Limit caps the number of items per run. Zero means no limit.
	Limit int
}

// New creates a Planner with the given per-run limit.
func New(limit int) *Planner {
	if limit < 0 {
		limit = 0
	}
	return &Planner{Limit: limit}
}

// Plan numbers entries 0..n-1 in the order given.
func (p *Planner) Plan(entries []mirrortypes.CatalogEntry) *Plan {
	n := len(entries)
	if p.Limit > 0 && n > p.Limit {
		n = p.Limit
	}

	plan := &Plan{
		Items:    make([]mirrortypes.WorkItem, n),
		Deferred: len(entries) - n,
	}
	for i := range n {
		plan.Items[i] = mirrortypes.WorkItem{Entry: entries[i], Seq: i}
	}
	return plan
}
