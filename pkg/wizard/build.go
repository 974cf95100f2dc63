package wizard

import (
	"encoding/json"
	"math"

	"github.com/buildwise/buildwise/pkg/parts"
)

// Build accumulates the selected units of one configurator run. Every unit is
// its own entry, so two GPUs are two entries of the same component. A Build is
// owned by a single run and never shared.
type Build struct {
	units map[parts.Category][]parts.Component
}

func newBuild() *Build {
	return &Build{units: make(map[parts.Category][]parts.Component)}
}

// Set replaces a category with qty copies of c.
func (b *Build) Set(cat parts.Category, c parts.Component, qty int) {
	list := make([]parts.Component, qty)
	for i := range list {
		list[i] = c
	}
	b.units[cat] = list
}

// Add appends a unit.
func (b *Build) Add(cat parts.Category, c parts.Component) {
	b.units[cat] = append(b.units[cat], c)
}

// SetUnits replaces a category with the given units.
func (b *Build) SetUnits(cat parts.Category, list []parts.Component) {
	b.units[cat] = append([]parts.Component(nil), list...)
}

// Replace swaps the unit at idx.
func (b *Build) Replace(cat parts.Category, idx int, c parts.Component) {
	b.units[cat][idx] = c
}

// Remove clears a category.
func (b *Build) Remove(cat parts.Category) {
	delete(b.units, cat)
}

// Get returns the first unit of a category.
func (b *Build) Get(cat parts.Category) (parts.Component, bool) {
	list := b.units[cat]
	if len(list) == 0 {
		return parts.Component{}, false
	}
	return list[0], true
}

// Units returns the units of a category.
func (b *Build) Units(cat parts.Category) []parts.Component {
	return b.units[cat]
}

// Quantity is the number of units in a category.
func (b *Build) Quantity(cat parts.Category) int {
	return len(b.units[cat])
}

// Has reports whether a category is populated.
func (b *Build) Has(cat parts.Category) bool {
	return len(b.units[cat]) > 0
}

// Total sums every unit, category by category in a fixed order.
func (b *Build) Total() float64 {
	var sum float64
	for _, cat := range parts.Categories {
		for _, c := range b.units[cat] {
			sum += c.Price
		}
	}
	return sum
}

// CapacityGB sums the storage capacity.
func (b *Build) CapacityGB() int {
	var sum int
	for _, c := range b.units[parts.Storage] {
		sum += c.CapacityGB
	}
	return sum
}

// Snapshot copies the current selection.
func (b *Build) Snapshot() Snapshot {
	s := make(Snapshot, len(b.units))
	for cat, list := range b.units {
		s[cat] = append([]parts.Component(nil), list...)
	}
	return s
}

// Snapshot is the read-only view of a finished build.
type Snapshot map[parts.Category][]parts.Component

// One returns the first unit of a category.
func (s Snapshot) One(cat parts.Category) (parts.Component, bool) {
	if len(s[cat]) == 0 {
		return parts.Component{}, false
	}
	return s[cat][0], true
}

// multiUnit categories always render as arrays.
var multiUnit = map[parts.Category]bool{
	parts.Storage: true,
	parts.Monitor: true,
}

// MarshalJSON renders single-unit categories as one component and
// multi-unit categories (storage, monitor, or any category with more than one
// unit) as arrays.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[parts.Category]any, len(s))
	for cat, list := range s {
		if len(list) == 0 {
			continue
		}
		if multiUnit[cat] || len(list) > 1 {
			out[cat] = list
		} else {
			out[cat] = list[0]
		}
	}
	return json.Marshal(out)
}

// Downgrade records one swap or removal made by the downgrade engine.
type Downgrade struct {
	Iteration int            `json:"iteration"`
	Category  parts.Category `json:"category"`
	From      string         `json:"from"`
	To        string         `json:"to,omitempty"`
	Saving    float64        `json:"saving"`
}

// Result is the configurator output.
type Result struct {
	RequestID          string      `json:"requestId"`
	Build              Snapshot    `json:"build"`
	TotalCost          float64     `json:"totalCost"`
	Budget             float64     `json:"budget"`
	UnderBudget        bool        `json:"underBudget"`
	RecommendedWattage int         `json:"recommendedWattage"`
	RelaxedPSU         bool        `json:"relaxedPsu,omitempty"`
	Downgrades         []Downgrade `json:"downgrades,omitempty"`
	BenchmarkVersion   string      `json:"benchmarkVersion,omitempty"`
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
