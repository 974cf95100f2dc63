// Package catalog defines the read-only component lookup the configurator
// consumes, along with the filter and ordering rules every implementation
// shares.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/buildwise/buildwise/pkg/parts"
)

// SortKey selects the ordering of query results.
type SortKey string

const (
	ByPrice       SortKey = "price"
	ByPerformance SortKey = "performance"
	BySingleCore  SortKey = "single_core"
	ByMultiCore   SortKey = "multi_core"
	ByCapacity    SortKey = "capacity"
	ByWattage     SortKey = "wattage"
)

// Query is a filtered, sorted, limited lookup within one category. Zero values
// disable the corresponding predicate.
type Query struct {
	Category parts.Category

	MinPrice      float64
	MaxPrice      float64 // inclusive; 0 means no cap
	BelowPrice    float64 // exclusive upper bound; 0 means unused
	AvailableOnly bool

	// Sockets matches when any entry overlaps the component's socket or chipset.
	Sockets     []string
	MemoryType  parts.MemoryType
	FormFactors []parts.FormFactor
	StorageType parts.StorageType
	CoolerFor   parts.Socket // cooler socket list must fit this CPU socket

	ExcludeSockets  []parts.Socket
	ExcludeKeywords []string
	NameContains    string

	MinWattage    int
	MaxWattage    int
	MinCapacityGB int
	MaxCapacityGB int
	MaxTDP        int
	MinPCIeX16    int

	Sort  SortKey
	Desc  bool
	Limit int
}

// Catalog answers component queries. Implementations must return results
// already canonicalized (see parts.Canonicalize) and ordered per Query.Sort.
type Catalog interface {
	Find(ctx context.Context, q Query) ([]parts.Component, error)
}

// Matches applies every predicate of q to c.
func (q Query) Matches(c parts.Component) bool {
	if q.Category != "" && c.Category != q.Category {
		return false
	}
	if q.AvailableOnly && !c.Available {
		return false
	}
	if c.Price < q.MinPrice {
		return false
	}
	if q.MaxPrice > 0 && c.Price > q.MaxPrice {
		return false
	}
	if q.BelowPrice > 0 && c.Price >= q.BelowPrice {
		return false
	}
	if len(q.Sockets) > 0 && !matchesAnySocket(c, q.Sockets) {
		return false
	}
	for _, s := range q.ExcludeSockets {
		if c.Socket == parts.CanonicalSocket(string(s)) {
			return false
		}
	}
	if q.MemoryType != "" && !c.SupportsMemory(q.MemoryType) {
		return false
	}
	if len(q.FormFactors) > 0 && !containsForm(q.FormFactors, c.Class()) {
		return false
	}
	if q.StorageType != "" && c.StorageType != q.StorageType {
		return false
	}
	if q.CoolerFor != "" && !parts.CoolerFits(q.CoolerFor, c.CoolerSockets) {
		return false
	}
	if q.NameContains != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(q.NameContains)) {
		return false
	}
	if len(q.ExcludeKeywords) > 0 {
		name := strings.ToLower(c.Name + " " + c.FormFactor)
		for _, kw := range q.ExcludeKeywords {
			if strings.Contains(name, strings.ToLower(kw)) {
				return false
			}
		}
	}
	if q.MinWattage > 0 && c.Wattage < q.MinWattage {
		return false
	}
	if q.MaxWattage > 0 && c.Wattage > q.MaxWattage {
		return false
	}
	if q.MinCapacityGB > 0 && c.CapacityGB < q.MinCapacityGB {
		return false
	}
	if q.MaxCapacityGB > 0 && c.CapacityGB > q.MaxCapacityGB {
		return false
	}
	if q.MaxTDP > 0 && c.TDP > q.MaxTDP {
		return false
	}
	if q.MinPCIeX16 > 0 && c.PCIeX16Slots < q.MinPCIeX16 {
		return false
	}
	return true
}

func matchesAnySocket(c parts.Component, want []string) bool {
	for _, w := range want {
		if parts.Overlaps(string(c.Socket), w) || parts.Overlaps(c.Chipset, w) {
			return true
		}
	}
	return false
}

func containsForm(list []parts.FormFactor, f parts.FormFactor) bool {
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}

// sortValue extracts the key a query orders by.
func sortValue(c parts.Component, key SortKey) float64 {
	switch key {
	case ByPerformance:
		return c.PerformanceScore
	case BySingleCore:
		return c.SingleCoreScore
	case ByMultiCore:
		return c.MultiCoreScore
	case ByCapacity:
		return float64(c.CapacityGB)
	case ByWattage:
		return float64(c.Wattage)
	}
	return c.Price
}

// Order sorts components in place per q. Ties on the sort key fall back to
// price (same direction as the key for ByPrice, descending otherwise) and
// finally to ID, so the order is total.
func Order(list []parts.Component, q Query) {
	key := q.Sort
	if key == "" {
		key = ByPrice
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		va, vb := sortValue(a, key), sortValue(b, key)
		if va != vb {
			if q.Desc {
				return va > vb
			}
			return va < vb
		}
		if key != ByPrice && a.Price != b.Price {
			return a.Price > b.Price
		}
		return a.ID < b.ID
	})
}

// Apply filters, orders and limits an in-memory slice per q.
func Apply(all []parts.Component, q Query) []parts.Component {
	out := make([]parts.Component, 0)
	for _, c := range all {
		if q.Matches(c) {
			out = append(out, c)
		}
	}
	Order(out, q)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}
