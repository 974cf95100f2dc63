package wizard

import (
	"context"
	"sort"

	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

// fill spends slack budget on extra SSDs, largest first, until utilization
// reaches the target, the unit cap is hit, or nothing affordable remains.
// Unlimited budgets are never filled.
func (r *run) fill(ctx context.Context) {
	if r.alloc.Unlimited {
		return
	}
	target := r.policy.UtilizationTarget * r.alloc.Total
	for added := 0; added < r.policy.MaxFillerUnits; added++ {
		spent := r.build.Total()
		if spent >= target || ctx.Err() != nil {
			return
		}
		remaining := r.alloc.Total - spent
		list := r.find(ctx, catalog.Query{
			Category:      parts.Storage,
			AvailableOnly: true,
			StorageType:   parts.SSD,
			MinPrice:      r.policy.FillerMinPrice,
			MaxPrice:      remaining,
		})
		if len(list) == 0 {
			r.emit(StageFill, parts.Storage, "no affordable unit", "remaining", roundCents(remaining))
			return
		}
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i], list[j]
			if a.CapacityGB != b.CapacityGB {
				return a.CapacityGB > b.CapacityGB
			}
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return a.ID < b.ID
		})
		unit := list[0]
		r.build.Add(parts.Storage, unit)
		r.emit(StageFill, parts.Storage, "extra drive added",
			"drive", unit.Name, "price", unit.Price, "utilization", roundCents(r.build.Total()/r.alloc.Total))
	}
}
