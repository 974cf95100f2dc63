package wizard

import (
	"context"
	"math"
	"sort"

	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

// selectGPU ranks within-budget cards by benchmark score and falls back to
// the cheapest card at any price. Unlimited builds take two of the same card,
// so the per-card limit is the sub-budget split across them.
func (r *run) selectGPU(ctx context.Context) (parts.Component, bool) {
	qty := r.gpuCount()
	base := catalog.Query{Category: parts.GPU, AvailableOnly: true}

	within := base
	within.MaxPrice = r.limit(parts.GPU, r.policy.BufferFactor) / float64(qty)
	within.Sort, within.Desc = catalog.ByPrice, true
	cheapest := base
	cheapest.Sort = catalog.ByPrice
	cheapest.Limit = 1

	gpu, _, ok := r.pick(ctx, parts.GPU,
		rung{name: "within-budget", query: within, order: r.rankGPUs},
		rung{name: "cheapest", query: cheapest},
	)
	if ok {
		r.emit(StageSelect, parts.GPU, "gpu selected", "gpu", gpu.Name, "quantity", qty)
	}
	return gpu, ok
}

func (r *run) rankGPUs(list []parts.Component) {
	benchmarked := func(c parts.Component) (float64, bool) { return r.table.GPUScore(c.Name) }
	rankByScore(list, benchmarked, ownScore(list, func(c parts.Component) float64 { return c.PerformanceScore }))
}

// storageOption is one candidate drive layout.
type storageOption struct {
	name   string
	units  []parts.Component
	price  float64
	allSSD bool
}

func newStorageOption(name string, units ...parts.Component) storageOption {
	o := storageOption{name: name, units: units, allSSD: true}
	for _, u := range units {
		o.price += u.Price
		if u.StorageType != parts.SSD {
			o.allSSD = false
		}
	}
	return o
}

// storageHeadroom is what the budget still has for storage after everything
// already picked and the sub-budgets of categories not yet picked.
func (r *run) storageHeadroom() float64 {
	h := r.alloc.Total - r.build.Total()
	for _, cat := range []parts.Category{parts.PSU, parts.Case, parts.Cooler, parts.Monitor} {
		h -= r.alloc.Sub[cat]
	}
	return h
}

// selectStorage compares a single SSD, a boot SSD plus a HDD, and a combination
// of up to three SSDs, all meeting the capacity floor within budget. The
// cheapest option wins unless there is room for an all-SSD layout.
func (r *run) selectStorage(ctx context.Context) ([]parts.Component, bool) {
	floor := r.storageFloorGB()
	budget := r.limit(parts.Storage, r.policy.BufferFactor)
	base := catalog.Query{Category: parts.Storage, AvailableOnly: true, Sort: catalog.ByPrice}

	ssdQ := base
	ssdQ.StorageType = parts.SSD
	ssdQ.MaxPrice = budget
	ssds := r.find(ctx, ssdQ)
	if len(ssds) == 0 {
		return r.storageFallback(ctx, floor)
	}
	hddQ := base
	hddQ.StorageType = parts.HDD
	hddQ.MaxPrice = budget
	hdds := r.find(ctx, hddQ)

	var opts []storageOption
	for _, s := range ssds {
		if s.CapacityGB >= floor {
			opts = append(opts, newStorageOption("single-ssd", s))
			break
		}
	}
	if o, ok := r.bootPlusHDD(ssds, hdds, floor, budget); ok {
		opts = append(opts, o)
	}
	if o, ok := r.ssdCombination(ssds, floor, budget); ok {
		opts = append(opts, o)
	}

	if len(opts) == 0 {
		largest := append([]parts.Component(nil), ssds...)
		sort.SliceStable(largest, func(i, j int) bool {
			if largest[i].CapacityGB != largest[j].CapacityGB {
				return largest[i].CapacityGB > largest[j].CapacityGB
			}
			return largest[i].Price < largest[j].Price
		})
		r.emit(StageSelect, parts.Storage, "capacity floor unmet within budget", "floor_gb", floor, "drive", largest[0].Name)
		return largest[:1], true
	}

	preferSSD := r.storageHeadroom() > r.policy.AllSSDHeadroomShare*r.alloc.Sub[parts.Storage]
	best := chooseStorage(opts, preferSSD)
	r.emit(StageSelect, parts.Storage, "storage layout chosen",
		"layout", best.name, "units", len(best.units), "price", roundCents(best.price), "options", len(opts))
	return best.units, true
}

func chooseStorage(opts []storageOption, preferSSD bool) storageOption {
	sort.SliceStable(opts, func(i, j int) bool {
		a, b := opts[i], opts[j]
		if a.price != b.price {
			return a.price < b.price
		}
		if a.allSSD != b.allSSD {
			return a.allSSD
		}
		return len(a.units) < len(b.units)
	})
	if preferSSD {
		for _, o := range opts {
			if o.allSSD {
				return o
			}
		}
	}
	return opts[0]
}

// bootPlusHDD pairs a boot-sized SSD with the cheapest HDD covering the rest
// of the floor. It only applies when the boot drive alone is short.
func (r *run) bootPlusHDD(ssds, hdds []parts.Component, floor int, budget float64) (storageOption, bool) {
	var boots []parts.Component
	for _, s := range ssds {
		if s.CapacityGB >= r.policy.BootDriveMinGB && s.CapacityGB <= r.policy.BootDriveMaxGB {
			boots = append(boots, s)
		}
	}
	if len(boots) == 0 || len(hdds) == 0 {
		return storageOption{}, false
	}
	closestCapacity(boots, r.policy.BootDriveTargetGB)
	boot := boots[0]
	need := floor - boot.CapacityGB
	if need <= 0 {
		return storageOption{}, false
	}
	for _, h := range hdds {
		if h.CapacityGB >= need && boot.Price+h.Price <= budget {
			return newStorageOption("boot-ssd-plus-hdd", boot, h), true
		}
	}
	return storageOption{}, false
}

// ssdCombination tries every pair and triple among the cheapest SSDs and keeps
// the cheapest one meeting the floor within budget.
func (r *run) ssdCombination(ssds []parts.Component, floor int, budget float64) (storageOption, bool) {
	pool := truncate(ssds, r.policy.SSDComboPool)
	var (
		best  storageOption
		found bool
	)
	consider := func(units ...parts.Component) {
		o := newStorageOption("ssd-combination", units...)
		capacity := 0
		for _, u := range units {
			capacity += u.CapacityGB
		}
		if capacity < floor || o.price > budget {
			return
		}
		if !found || o.price < best.price || (o.price == best.price && len(o.units) < len(best.units)) {
			best, found = o, true
		}
	}
	for i := range pool {
		for j := i + 1; j < len(pool); j++ {
			consider(pool[i], pool[j])
			for k := j + 1; k < len(pool); k++ {
				consider(pool[i], pool[j], pool[k])
			}
		}
	}
	return best, found
}

// storageFallback is used when no SSD fits the storage budget at all.
func (r *run) storageFallback(ctx context.Context, floor int) ([]parts.Component, bool) {
	base := catalog.Query{Category: parts.Storage, AvailableOnly: true, Limit: 1}
	ssd := base
	ssd.StorageType = parts.SSD
	ssd.MinCapacityGB = floor
	ssd.Sort = catalog.ByPrice
	drive := base
	drive.MinCapacityGB = floor
	drive.Sort = catalog.ByPrice
	largest := base
	largest.Sort, largest.Desc = catalog.ByCapacity, true

	c, _, ok := r.pick(ctx, parts.Storage,
		rung{name: "ssd-any-price", query: ssd},
		rung{name: "drive-any-price", query: drive},
		rung{name: "largest", query: largest},
	)
	if !ok {
		return nil, false
	}
	return []parts.Component{c}, true
}

// selectPSU needs at least the recommended wattage. When nothing qualifies
// it accepts the unit nearest the recommendation inside the relaxed window
// and flags the build.
func (r *run) selectPSU(ctx context.Context) (parts.Component, bool) {
	rw := r.recommendedWattage()
	base := catalog.Query{Category: parts.PSU, AvailableOnly: true}

	within := base
	within.MinWattage = rw
	within.MaxPrice = r.limit(parts.PSU, r.policy.WideBufferFactor)
	within.Sort, within.Desc = catalog.ByPrice, true
	within.Limit = 1
	cheapest := base
	cheapest.MinWattage = rw
	cheapest.Sort = catalog.ByPrice
	cheapest.Limit = 1
	low, high := psuWindow(rw, r.policy)
	relaxed := base
	relaxed.MinWattage = low
	relaxed.MaxWattage = high
	relaxed.Sort = catalog.ByPrice

	psu, name, ok := r.pick(ctx, parts.PSU,
		rung{name: "within-budget", query: within},
		rung{name: "cheapest", query: cheapest},
		rung{name: "relaxed-window", query: relaxed, order: func(list []parts.Component) { nearestWattage(list, rw) }},
	)
	if ok && name == "relaxed-window" {
		r.relaxedPSU = true
		r.emit(StageSelect, parts.PSU, "psu below recommended wattage", "wattage", psu.Wattage, "recommended", rw)
	}
	return psu, ok
}

func nearestWattage(list []parts.Component, rw int) {
	sort.SliceStable(list, func(i, j int) bool {
		di := math.Abs(float64(list[i].Wattage - rw))
		dj := math.Abs(float64(list[j].Wattage - rw))
		if di != dj {
			return di < dj
		}
		if list[i].Price != list[j].Price {
			return list[i].Price < list[j].Price
		}
		return list[i].ID < list[j].ID
	})
}

func (r *run) selectCase(ctx context.Context) (parts.Component, bool) {
	board, _ := r.build.Get(parts.Motherboard)
	base := catalog.Query{
		Category:      parts.Case,
		AvailableOnly: true,
		FormFactors:   parts.CaseClassesFor(board.Class()),
		Limit:         1,
	}
	within := base
	within.MaxPrice = r.limit(parts.Case, r.policy.WideBufferFactor)
	within.Sort, within.Desc = catalog.ByPrice, true
	cheapest := base
	cheapest.Sort = catalog.ByPrice

	c, _, ok := r.pick(ctx, parts.Case,
		rung{name: "within-budget", query: within},
		rung{name: "cheapest", query: cheapest},
	)
	return c, ok
}

// selectCooler takes the cheapest compatible cooler when the CPU ships
// without one. With a bundled cooler an aftermarket one is added only while
// the budget has room for it.
func (r *run) selectCooler(ctx context.Context) error {
	cpu, _ := r.build.Get(parts.CPU)
	base := catalog.Query{Category: parts.Cooler, AvailableOnly: true, CoolerFor: cpu.Socket, Limit: 1}

	if cpu.Socket == "" {
		// no socket to match coolers against
		if !cpu.BundledCooler {
			r.emit(StageSelect, parts.Cooler, "cpu has no socket", "cpu", cpu.Name)
			return &NoCandidateError{Category: parts.Cooler}
		}
		r.emit(StageSelect, parts.Cooler, "bundled cooler kept", "cpu", cpu.Name)
		return nil
	}

	if !cpu.BundledCooler {
		q := base
		q.Sort = catalog.ByPrice
		c, _, ok := r.pick(ctx, parts.Cooler, rung{name: "cheapest-compatible", query: q})
		if !ok {
			return &NoCandidateError{Category: parts.Cooler}
		}
		r.build.Set(parts.Cooler, c, 1)
		return nil
	}

	spent := r.build.Total()
	remaining := r.alloc.Total - spent
	if spent/r.alloc.Total >= r.policy.CoolerUtilizationGate || remaining <= r.policy.CoolerMinRemaining {
		r.emit(StageSelect, parts.Cooler, "bundled cooler kept", "remaining", roundCents(remaining))
		return nil
	}
	q := base
	q.MaxPrice = math.Min(r.limit(parts.Cooler, r.policy.WideBufferFactor), remaining)
	q.Sort, q.Desc = catalog.ByPrice, true
	if c, _, ok := r.pick(ctx, parts.Cooler, rung{name: "optional-upgrade", query: q}); ok {
		r.build.Set(parts.Cooler, c, 1)
	}
	return nil
}

// selectMonitor is best-effort: an empty result leaves the build without one.
func (r *run) selectMonitor(ctx context.Context) {
	if !r.req.IncludeMonitor {
		return
	}
	base := catalog.Query{Category: parts.Monitor, AvailableOnly: true, Limit: 1}

	if r.alloc.Unlimited {
		premium := base
		premium.NameContains = r.policy.PremiumMonitor
		premium.Sort = catalog.ByPrice
		flagship := base
		flagship.Sort, flagship.Desc = catalog.ByPrice, true
		m, _, ok := r.pick(ctx, parts.Monitor,
			rung{name: "premium-model", query: premium},
			rung{name: "most-expensive", query: flagship},
		)
		if !ok {
			r.emit(StageSelect, parts.Monitor, "no monitor available")
			return
		}
		r.build.Set(parts.Monitor, m, r.policy.PremiumMonitorCount)
		return
	}

	within := base
	within.MaxPrice = r.limit(parts.Monitor, r.policy.BufferFactor)
	within.Sort, within.Desc = catalog.ByPrice, true
	m, _, ok := r.pick(ctx, parts.Monitor, rung{name: "within-budget", query: within})
	if !ok {
		r.emit(StageSelect, parts.Monitor, "no monitor within budget")
		return
	}
	r.build.Set(parts.Monitor, m, 1)
}
