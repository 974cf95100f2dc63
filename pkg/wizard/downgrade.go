package wizard

import (
	"context"
	"math"

	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

// downgradeOrder is the order in which categories give up money. The category
// the profile cares most about comes late; PSU and case are always last.
func downgradeOrder(p Profile) []parts.Category {
	if p == MultiThreaded {
		return []parts.Category{parts.Cooler, parts.Monitor, parts.Storage, parts.GPU, parts.RAM, parts.Motherboard, parts.CPU, parts.PSU, parts.Case}
	}
	return []parts.Category{parts.Cooler, parts.Monitor, parts.Storage, parts.RAM, parts.Motherboard, parts.CPU, parts.GPU, parts.PSU, parts.Case}
}

// downgrade swaps parts for cheaper compatible ones until the build fits the
// budget, the iteration limit is reached, or nothing else can be saved. Each
// iteration makes exactly one change and never raises the total.
func (r *run) downgrade(ctx context.Context) {
	for iter := 1; iter <= r.policy.MaxDowngradeIterations; iter++ {
		over := r.build.Total() - r.alloc.Total
		if over <= 0 {
			return
		}
		if ctx.Err() != nil {
			return
		}
		threshold := 0.0
		if iter <= r.policy.StrictSavingsIterations {
			threshold = math.Max(over*r.policy.SavingsFraction, r.policy.MinSavings)
		}

		applied := false
		for _, cat := range downgradeOrder(r.req.Profile) {
			d, ok := r.downgradeCategory(ctx, cat, threshold)
			if !ok {
				continue
			}
			d.Iteration = iter
			d.Saving = roundCents(d.Saving)
			r.downgrades = append(r.downgrades, d)
			r.emit(StageDowngrade, cat, "downgraded",
				"iteration", iter, "from", d.From, "to", d.To, "saving", d.Saving, "overage", roundCents(over))
			applied = true
			break
		}
		if !applied {
			r.emit(StageDowngrade, "", "no acceptable downgrade left", "iteration", iter, "overage", roundCents(over))
			return
		}
	}
	if over := r.build.Total() - r.alloc.Total; over > 0 {
		r.emit(StageDowngrade, "", "iteration limit reached", "overage", roundCents(over))
	}
}

// cheaper returns the most expensive alternative strictly cheaper than cur
// whose saving over qty units meets threshold and which passes keep.
func (r *run) cheaper(ctx context.Context, q catalog.Query, cur parts.Component, qty int, threshold float64, keep func(parts.Component) bool) (parts.Component, float64, bool) {
	q.AvailableOnly = true
	q.BelowPrice = cur.Price
	q.Sort, q.Desc = catalog.ByPrice, true
	for _, alt := range r.find(ctx, q) {
		if alt.ID == cur.ID || (keep != nil && !keep(alt)) {
			continue
		}
		saving := (cur.Price - alt.Price) * float64(qty)
		if saving > 0 && saving >= threshold {
			return alt, saving, true
		}
	}
	return parts.Component{}, 0, false
}

func (r *run) downgradeCategory(ctx context.Context, cat parts.Category, threshold float64) (Downgrade, bool) {
	if !r.build.Has(cat) {
		return Downgrade{}, false
	}
	switch cat {
	case parts.Storage:
		return r.downgradeStorage(ctx, threshold)
	case parts.Cooler:
		return r.downgradeCooler(ctx, threshold)
	}

	cur, _ := r.build.Get(cat)
	qty := r.build.Quantity(cat)
	q, keep := r.swapRule(cat)
	alt, saving, ok := r.cheaper(ctx, q, cur, qty, threshold, keep)
	if !ok {
		return Downgrade{}, false
	}
	r.build.Set(cat, alt, qty)
	return Downgrade{Category: cat, From: cur.Name, To: alt.Name, Saving: saving}, true
}

// swapRule returns the query and the compatibility filter a replacement for
// cat must pass given the rest of the build.
func (r *run) swapRule(cat parts.Category) (catalog.Query, func(parts.Component) bool) {
	cpu, _ := r.build.Get(parts.CPU)
	board, _ := r.build.Get(parts.Motherboard)
	ram, _ := r.build.Get(parts.RAM)
	gpu, _ := r.build.Get(parts.GPU)
	psu, _ := r.build.Get(parts.PSU)
	cooler, hasCooler := r.build.Get(parts.Cooler)
	pcCase, hasCase := r.build.Get(parts.Case)
	gpus := r.build.Quantity(parts.GPU)
	q := catalog.Query{Category: cat}

	psuCarries := func(cpu, gpu parts.Component) bool {
		return PSUAdequate(psu, r.wattageFor(cpu, gpu, gpus), r.relaxedPSU, r.policy)
	}

	switch cat {
	case parts.RAM:
		q.MemoryType = memoryTypeOf(ram)
		q.ExcludeKeywords = r.policy.RAMExcludeKeywords
		return q, func(c parts.Component) bool {
			return RAMFitsBoard(c, board) && CPUTakesMemory(cpu, memoryTypeOf(c))
		}
	case parts.Motherboard:
		q.Sockets = socketKeys(cpu)
		q.MemoryType = memoryTypeOf(ram)
		if gpus > 1 {
			q.MinPCIeX16 = r.policy.MinPCIeX16Dual
		}
		if r.lockedRAM {
			q.ExcludeSockets = parts.DDR5OnlySockets
		}
		return q, func(c parts.Component) bool {
			return CPUFitsBoard(cpu, c) && RAMFitsBoard(ram, c) && (!hasCase || CaseFitsBoard(pcCase, c))
		}
	case parts.CPU:
		q.Sockets = socketKeys(board)
		if r.lockedRAM {
			q.ExcludeSockets = parts.DDR5OnlySockets
		}
		return q, func(c parts.Component) bool {
			if !CPUFitsBoard(c, board) || !CPUTakesMemory(c, memoryTypeOf(ram)) {
				return false
			}
			if hasCooler && !CoolerFitsCPU(cooler, c) {
				return false
			}
			if !hasCooler && !c.BundledCooler {
				return false
			}
			return psuCarries(c, gpu)
		}
	case parts.GPU:
		return q, func(c parts.Component) bool { return psuCarries(cpu, c) }
	case parts.PSU:
		rw := r.recommendedWattage()
		q.MinWattage = rw
		if r.relaxedPSU {
			q.MinWattage, _ = psuWindow(rw, r.policy)
		}
		return q, nil
	case parts.Case:
		q.FormFactors = parts.CaseClassesFor(board.Class())
		return q, nil
	}
	return q, nil
}

// downgradeCooler swaps to a cheaper compatible cooler or, when the CPU has
// its own, drops the aftermarket one entirely.
func (r *run) downgradeCooler(ctx context.Context, threshold float64) (Downgrade, bool) {
	cur, _ := r.build.Get(parts.Cooler)
	cpu, _ := r.build.Get(parts.CPU)
	if cpu.Socket != "" {
		q := catalog.Query{Category: parts.Cooler, CoolerFor: cpu.Socket}
		if alt, saving, ok := r.cheaper(ctx, q, cur, 1, threshold, nil); ok {
			r.build.Set(parts.Cooler, alt, 1)
			return Downgrade{Category: parts.Cooler, From: cur.Name, To: alt.Name, Saving: saving}, true
		}
	}
	if !cpu.BundledCooler {
		return Downgrade{}, false
	}
	r.build.Remove(parts.Cooler)
	return Downgrade{Category: parts.Cooler, From: cur.Name, Saving: cur.Price}, true
}

// downgradeStorage replaces the most expensive drive with a cheaper one that
// keeps the total capacity at or above the floor.
func (r *run) downgradeStorage(ctx context.Context, threshold float64) (Downgrade, bool) {
	units := r.build.Units(parts.Storage)
	idx := 0
	for i, u := range units {
		if u.Price > units[idx].Price {
			idx = i
		}
	}
	cur := units[idx]
	others := r.build.CapacityGB() - cur.CapacityGB
	q := catalog.Query{Category: parts.Storage}
	if need := r.storageFloorGB() - others; need > 0 {
		q.MinCapacityGB = need
	}
	alt, saving, ok := r.cheaper(ctx, q, cur, 1, threshold, nil)
	if !ok {
		return Downgrade{}, false
	}
	r.build.Replace(parts.Storage, idx, alt)
	return Downgrade{Category: parts.Storage, From: cur.Name, To: alt.Name, Saving: saving}, true
}
