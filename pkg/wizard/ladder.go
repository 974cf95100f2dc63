package wizard

import (
	"context"
	"sort"

	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

// rung is one step of a fallback ladder: a catalog query, an optional
// in-process filter for rules the query language cannot express, and an
// optional re-ranking of what survives.
type rung struct {
	name  string
	query catalog.Query
	keep  func(parts.Component) bool
	order func([]parts.Component)
}

// find runs one catalog query. A failing catalog is reported and treated as
// an empty result so the ladder moves on.
func (r *run) find(ctx context.Context, q catalog.Query) []parts.Component {
	list, err := r.catalog.Find(ctx, q)
	if err != nil {
		r.emit(StageSelect, q.Category, "catalog query failed", "error", err.Error())
		return nil
	}
	return list
}

func (r *run) candidates(ctx context.Context, rg rung) []parts.Component {
	list := r.find(ctx, rg.query)
	if rg.keep != nil {
		list = filter(list, rg.keep)
	}
	if rg.order != nil {
		rg.order(list)
	}
	return list
}

// climb walks the rungs in order and returns the first non-empty result
// together with the name of the rung that produced it.
func (r *run) climb(ctx context.Context, cat parts.Category, rungs ...rung) ([]parts.Component, string) {
	for _, rg := range rungs {
		if ctx.Err() != nil {
			return nil, ""
		}
		list := r.candidates(ctx, rg)
		if len(list) > 0 {
			r.emit(StageSelect, cat, "rung matched", "rung", rg.name, "candidates", len(list))
			return list, rg.name
		}
		r.emit(StageSelect, cat, "rung empty", "rung", rg.name)
	}
	return nil, ""
}

// pick is climb reduced to the head of the winning rung.
func (r *run) pick(ctx context.Context, cat parts.Category, rungs ...rung) (parts.Component, string, bool) {
	list, name := r.climb(ctx, cat, rungs...)
	if len(list) == 0 {
		return parts.Component{}, "", false
	}
	return list[0], name, true
}

func filter(list []parts.Component, keep func(parts.Component) bool) []parts.Component {
	out := list[:0:0]
	for _, c := range list {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// merge concatenates candidate lists, dropping repeated IDs and stopping at
// limit entries (0 = no limit).
func merge(limit int, lists ...[]parts.Component) []parts.Component {
	seen := make(map[string]bool)
	var out []parts.Component
	for _, list := range lists {
		for _, c := range list {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c)
			if limit > 0 && len(out) == limit {
				return out
			}
		}
	}
	return out
}

func truncate(list []parts.Component, n int) []parts.Component {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}

// scoreFunc returns a part's performance score, or false when none is known.
type scoreFunc func(parts.Component) (float64, bool)

// rankByScore orders list by tiers: parts scored by tiers[0] come first,
// then parts scored by tiers[1], and so on, with unscored parts last. Scores
// are only compared within a tier since each tier has its own scale. Price
// descending breaks ties and ID keeps the order total.
func rankByScore(list []parts.Component, tiers ...scoreFunc) {
	type entry struct {
		c    parts.Component
		v    float64
		tier int
	}
	entries := make([]entry, len(list))
	for i, c := range list {
		e := entry{c: c, tier: len(tiers)}
		for t, score := range tiers {
			if v, ok := score(c); ok {
				e.v, e.tier = v, t
				break
			}
		}
		entries[i] = e
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.v != b.v {
			return a.v > b.v
		}
		if a.c.Price != b.c.Price {
			return a.c.Price > b.c.Price
		}
		return a.c.ID < b.c.ID
	})
	for i := range entries {
		list[i] = entries[i].c
	}
}

// ownScore normalizes a catalog-provided metric by its maximum within list.
func ownScore(list []parts.Component, metric func(parts.Component) float64) scoreFunc {
	var top float64
	for _, c := range list {
		if v := metric(c); v > top {
			top = v
		}
	}
	return func(c parts.Component) (float64, bool) {
		v := metric(c)
		if v <= 0 || top <= 0 {
			return 0, false
		}
		return v / top, true
	}
}
