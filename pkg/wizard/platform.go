package wizard

import (
	"context"
	"sort"

	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

// platform is a mutually compatible CPU, motherboard and RAM kit.
type platform struct {
	cpu   parts.Component
	board parts.Component
	ram   parts.Component
}

// ddr5Sockets are the sockets whose CPUs can drive DDR5 even when the catalog
// entry does not list memory types.
var ddr5Sockets = map[parts.Socket]bool{"AM5": true, "LGA1700": true, "LGA1851": true}

func ddr5Capable(cpu parts.Component) bool {
	if len(cpu.MemoryTypes) > 0 {
		return cpu.SupportsMemory(parts.DDR5)
	}
	return ddr5Sockets[cpu.Socket]
}

// selectPlatform picks CPU, motherboard and RAM together. On an unlimited
// budget a DDR5 platform with room for two GPUs is tried first.
func (r *run) selectPlatform(ctx context.Context) (platform, error) {
	if r.alloc.Unlimited {
		if p, _, ok := r.pairPlatform(ctx, true); ok {
			return p, nil
		}
		r.emit(StageSelect, parts.Motherboard, "no DDR5 multi-GPU platform, relaxing")
	}
	p, missing, ok := r.pairPlatform(ctx, false)
	if !ok {
		if err := ctx.Err(); err != nil {
			return platform{}, err
		}
		return platform{}, &NoCandidateError{Category: missing}
	}
	return p, nil
}

// pairPlatform walks the ranked CPU candidates and keeps the first one for
// which a board and a RAM kit can be found. On failure it reports the
// category that ran dry.
func (r *run) pairPlatform(ctx context.Context, flagship bool) (platform, parts.Category, bool) {
	cpus := r.cpuCandidates(ctx, flagship)
	if len(cpus) == 0 {
		return platform{}, parts.CPU, false
	}
	missing := parts.Motherboard
	for _, cpu := range cpus {
		if ctx.Err() != nil {
			break
		}
		board, ok := r.selectBoard(ctx, cpu, flagship)
		if !ok {
			r.emit(StageSelect, parts.Motherboard, "no board for cpu", "cpu", cpu.Name)
			continue
		}
		ram, ok := r.build.Get(parts.RAM)
		if !r.lockedRAM {
			ram, ok = r.selectRAM(ctx, cpu, board)
		}
		if !ok {
			missing = parts.RAM
			r.emit(StageSelect, parts.RAM, "no memory for board", "cpu", cpu.Name, "motherboard", board.Name)
			continue
		}
		r.emit(StageSelect, parts.CPU, "platform paired", "cpu", cpu.Name, "motherboard", board.Name, "ram", ram.Name)
		return platform{cpu: cpu, board: board, ram: ram}, "", true
	}
	return platform{}, missing, false
}

// cpuCandidates returns the CPUs worth pairing, best first: the ranked
// within-budget set followed by the cheapest parts at any price.
func (r *run) cpuCandidates(ctx context.Context, flagship bool) []parts.Component {
	base := catalog.Query{Category: parts.CPU, AvailableOnly: true}
	if r.lockedRAM {
		base.ExcludeSockets = parts.DDR5OnlySockets
	}
	keep := func(c parts.Component) bool {
		if r.lockedRAM && !CPUTakesMemory(c, parts.DDR4) {
			return false
		}
		return !flagship || ddr5Capable(c)
	}

	within := base
	within.MaxPrice = r.limit(parts.CPU, r.policy.BufferFactor)
	within.Sort, within.Desc = catalog.ByPrice, true
	ranked := r.candidates(ctx, rung{
		name:  "within-budget",
		query: within,
		keep:  keep,
		order: r.rankCPUs,
	})

	cheapest := base
	cheapest.Sort = catalog.ByPrice
	fallback := truncate(r.candidates(ctx, rung{name: "cheapest", query: cheapest, keep: keep}), r.policy.CandidateLimit)

	out := merge(0, truncate(ranked, r.policy.CandidateLimit), fallback)
	r.emit(StageSelect, parts.CPU, "cpu candidates", "ranked", len(ranked), "total", len(out))
	return out
}

// rankCPUs orders benchmarked CPUs by the score for the profile, then CPUs
// carrying only the catalog's own single/multi-core score.
func (r *run) rankCPUs(list []parts.Component) {
	multi := r.multi()
	benchmarked := func(c parts.Component) (float64, bool) { return r.table.CPUScore(c.Name, multi) }
	rankByScore(list, benchmarked, ownScore(list, func(c parts.Component) float64 {
		if multi {
			return c.MultiCoreScore
		}
		return c.SingleCoreScore
	}))
}

func (r *run) selectBoard(ctx context.Context, cpu parts.Component, flagship bool) (parts.Component, bool) {
	base := catalog.Query{
		Category:      parts.Motherboard,
		AvailableOnly: true,
		Sockets:       socketKeys(cpu),
	}
	switch {
	case r.lockedRAM:
		base.MemoryType = parts.DDR4
		base.ExcludeSockets = parts.DDR5OnlySockets
	case flagship:
		base.MemoryType = parts.DDR5
		base.MinPCIeX16 = r.policy.MinPCIeX16Dual
	}
	keep := func(b parts.Component) bool {
		return CPUFitsBoard(cpu, b) && r.memoryFor(cpu, b) != ""
	}

	within := base
	within.MaxPrice = r.limit(parts.Motherboard, r.policy.WideBufferFactor)
	within.Sort, within.Desc = catalog.ByPrice, true
	cheapest := base
	cheapest.Sort = catalog.ByPrice

	b, _, ok := r.pick(ctx, parts.Motherboard,
		rung{name: "within-budget", query: within, keep: keep},
		rung{name: "cheapest", query: cheapest, keep: keep},
	)
	return b, ok
}

// memoryFor is the memory generation a CPU/board pair will run: DDR4 when
// the build is locked to it, otherwise DDR5 when both sides take it, otherwise
// the first board type the CPU accepts.
func (r *run) memoryFor(cpu, board parts.Component) parts.MemoryType {
	if r.lockedRAM {
		if board.SupportsMemory(parts.DDR4) && CPUTakesMemory(cpu, parts.DDR4) {
			return parts.DDR4
		}
		return ""
	}
	if board.SupportsMemory(parts.DDR5) && CPUTakesMemory(cpu, parts.DDR5) {
		return parts.DDR5
	}
	for _, t := range board.MemoryTypes {
		if CPUTakesMemory(cpu, t) {
			return t
		}
	}
	return ""
}

func (r *run) selectRAM(ctx context.Context, cpu, board parts.Component) (parts.Component, bool) {
	t := r.memoryFor(cpu, board)
	if t == "" {
		return parts.Component{}, false
	}
	target := r.ramTargetGB()
	base := catalog.Query{
		Category:        parts.RAM,
		AvailableOnly:   true,
		MemoryType:      t,
		ExcludeKeywords: r.policy.RAMExcludeKeywords,
		Limit:           1,
	}

	within := base
	within.MinCapacityGB = target
	within.MaxPrice = r.limit(parts.RAM, r.policy.BufferFactor)
	within.Sort, within.Desc = catalog.ByPrice, true
	sized := base
	sized.MinCapacityGB = target
	sized.Sort = catalog.ByPrice
	cheapest := base
	cheapest.Sort = catalog.ByPrice

	ram, _, ok := r.pick(ctx, parts.RAM,
		rung{name: "within-budget", query: within},
		rung{name: "meets-capacity", query: sized},
		rung{name: "cheapest", query: cheapest},
	)
	return ram, ok
}

// preselectRAM locks a low-budget build to DDR4 before the platform is
// chosen: the kit closest to the capacity target, cheapest on ties.
func (r *run) preselectRAM(ctx context.Context) (parts.Component, bool) {
	target := r.ramTargetGB()
	base := catalog.Query{
		Category:        parts.RAM,
		AvailableOnly:   true,
		MemoryType:      parts.DDR4,
		ExcludeKeywords: r.policy.RAMExcludeKeywords,
		Sort:            catalog.ByPrice,
	}
	within := base
	within.MaxPrice = r.limit(parts.RAM, r.policy.BufferFactor)

	closest := func(list []parts.Component) { closestCapacity(list, target) }
	ram, _, ok := r.pick(ctx, parts.RAM,
		rung{name: "ddr4-within-budget", query: within, order: closest},
		rung{name: "ddr4-any-price", query: base, order: closest},
	)
	if ok {
		r.emit(StageSelect, parts.RAM, "low budget: memory locked to DDR4", "ram", ram.Name)
	}
	return ram, ok
}

func closestCapacity(list []parts.Component, target int) {
	dist := func(c parts.Component) int {
		d := c.CapacityGB - target
		if d < 0 {
			return -d
		}
		return d
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if dist(a) != dist(b) {
			return dist(a) < dist(b)
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.ID < b.ID
	})
}
