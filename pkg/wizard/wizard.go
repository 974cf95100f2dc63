// Package wizard turns a budget and a workload profile into one compatible
// PC build drawn from a component catalog.
//
// A run allocates the budget across categories, selects the platform chain
// (CPU, motherboard, RAM) alongside the GPU, then storage, PSU, case, cooler
// and monitor. It downgrades while over budget, spends leftover money on
// extra storage and finally re-validates every pairwise compatibility rule.
package wizard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/buildwise/buildwise/pkg/benchmarks"
	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

// Configurator is safe for concurrent use; every Configure call works on its
// own run state.
type Configurator struct {
	catalog catalog.Catalog
	table   *benchmarks.Table
	policy  Policy
	sink    EventSink
}

// Option customizes a Configurator.
type Option func(*Configurator)

func WithPolicy(p Policy) Option {
	return func(c *Configurator) { c.policy = p }
}

func WithBenchmarks(t *benchmarks.Table) Option {
	return func(c *Configurator) {
		if t != nil {
			c.table = t
		}
	}
}

func WithSink(s EventSink) Option {
	return func(c *Configurator) { c.sink = s }
}

// New builds a Configurator over cat with the default policy and the embedded
// benchmark table.
func New(cat catalog.Catalog, opts ...Option) *Configurator {
	c := &Configurator{
		catalog: cat,
		table:   benchmarks.Default(),
		policy:  DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the thresholds this Configurator runs with.
func (c *Configurator) Policy() Policy { return c.policy }

// run is the state of one Configure call.
type run struct {
	*Configurator
	id    string
	req   Request
	alloc Allocation
	build *Build

	lockedRAM  bool
	relaxedPSU bool
	downgrades []Downgrade
}

// Configure produces a build for req or one of InputValidationError,
// NoCandidateError, CompatibilityError, or the context error.
func (c *Configurator) Configure(ctx context.Context, req Request) (*Result, error) {
	alloc, err := Allocate(req, c.policy)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := &run{
		Configurator: c,
		id:           uuid.NewString(),
		req:          req,
		alloc:        alloc,
		build:        newBuild(),
	}
	r.emit(StageAllocate, "", "budget allocated",
		"budget", alloc.Total, "unlimited", alloc.Unlimited, "profile", string(req.Profile))
	for _, cat := range parts.Categories {
		if v, ok := alloc.Sub[cat]; ok {
			r.emit(StageAllocate, cat, "sub-budget", "amount", roundCents(v))
		}
	}

	if err := r.selectAll(ctx); err != nil {
		return nil, err
	}
	if err := r.requireMandatory(); err != nil {
		return nil, err
	}
	r.downgrade(ctx)
	r.fill(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r.result(), nil
}

func (r *run) emit(stage Stage, cat parts.Category, msg string, kv ...any) {
	if r.sink == nil {
		return
	}
	e := Event{RequestID: r.id, Stage: stage, Category: cat, Message: msg}
	if len(kv) > 0 {
		e.Fields = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.Fields[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	r.sink.Emit(e)
}

// limit returns the sub-budget of cat scaled by factor.
func (r *run) limit(cat parts.Category, factor float64) float64 {
	return r.alloc.Sub[cat] * factor
}

func (r *run) lowBudget() bool {
	return !r.alloc.Unlimited && r.alloc.Total < r.policy.LowBudgetThreshold
}

func (r *run) multi() bool { return r.req.Profile == MultiThreaded }

func (r *run) gpuCount() int {
	if r.alloc.Unlimited && r.policy.UnlimitedGPUCount > 1 {
		return r.policy.UnlimitedGPUCount
	}
	return 1
}

func (r *run) ramTargetGB() int {
	switch {
	case r.alloc.Unlimited:
		return r.policy.RAMTargetUnlimitedGB
	case r.multi():
		return r.policy.RAMTargetMultiGB
	}
	return r.policy.RAMTargetGamingGB
}

func (r *run) storageFloorGB() int {
	if r.req.MinStorageGB > 0 {
		return r.req.MinStorageGB
	}
	return r.policy.DefaultStorageGB
}

// wattageFor is the recommended PSU wattage for a CPU and qty GPUs.
func (r *run) wattageFor(cpu, gpu parts.Component, qty int) int {
	tdp := 0
	if cpu.ID != "" {
		tdp += r.table.CPUTDP(cpu)
	}
	if gpu.ID != "" {
		tdp += r.table.GPUTDP(gpu) * qty
	}
	return RecommendedWattage(tdp, r.policy)
}

func (r *run) recommendedWattage() int {
	cpu, _ := r.build.Get(parts.CPU)
	gpu, _ := r.build.Get(parts.GPU)
	return r.wattageFor(cpu, gpu, r.build.Quantity(parts.GPU))
}

// selectAll fills every category. GPU selection does not depend on the
// platform chain, so the two run in parallel; each goroutine returns its
// picks and only this function writes the build.
func (r *run) selectAll(ctx context.Context) error {
	if r.lowBudget() {
		ram, ok := r.preselectRAM(ctx)
		if !ok {
			return &NoCandidateError{Category: parts.RAM}
		}
		r.build.Set(parts.RAM, ram, 1)
		r.lockedRAM = true
	}

	var (
		gpu   parts.Component
		gpuOK bool
		plat  platform
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		gpu, gpuOK = r.selectGPU(gctx)
		return nil
	})
	g.Go(func() error {
		var err error
		plat, err = r.selectPlatform(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !gpuOK {
		return &NoCandidateError{Category: parts.GPU}
	}

	r.build.Set(parts.CPU, plat.cpu, 1)
	r.build.Set(parts.Motherboard, plat.board, 1)
	if !r.lockedRAM {
		r.build.Set(parts.RAM, plat.ram, 1)
	}
	r.build.Set(parts.GPU, gpu, r.gpuCount())

	drives, ok := r.selectStorage(ctx)
	if !ok {
		return &NoCandidateError{Category: parts.Storage}
	}
	r.build.SetUnits(parts.Storage, drives)

	psu, ok := r.selectPSU(ctx)
	if !ok {
		return &NoCandidateError{Category: parts.PSU}
	}
	r.build.Set(parts.PSU, psu, 1)

	pcCase, ok := r.selectCase(ctx)
	if !ok {
		return &NoCandidateError{Category: parts.Case}
	}
	r.build.Set(parts.Case, pcCase, 1)

	if err := r.selectCooler(ctx); err != nil {
		return err
	}
	r.selectMonitor(ctx)
	return ctx.Err()
}

// requireMandatory checks that every category a working PC needs is present.
func (r *run) requireMandatory() error {
	for _, cat := range []parts.Category{parts.CPU, parts.Motherboard, parts.RAM, parts.GPU, parts.Storage, parts.PSU, parts.Case} {
		if !r.build.Has(cat) {
			return &NoCandidateError{Category: cat}
		}
	}
	if cpu, _ := r.build.Get(parts.CPU); !cpu.BundledCooler && !r.build.Has(parts.Cooler) {
		return &NoCandidateError{Category: parts.Cooler}
	}
	return nil
}

func (r *run) result() *Result {
	total := r.build.Total()
	return &Result{
		RequestID:          r.id,
		Build:              r.build.Snapshot(),
		TotalCost:          roundCents(total),
		Budget:             r.alloc.Total,
		UnderBudget:        roundCents(total) <= r.alloc.Total,
		RecommendedWattage: r.recommendedWattage(),
		RelaxedPSU:         r.relaxedPSU,
		Downgrades:         r.downgrades,
		BenchmarkVersion:   r.table.Version,
	}
}
