package wizard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildwise/buildwise/pkg/benchmarks"
	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

const fixtureTable = `
version: fixture-1
default_cpu_tdp: 95
default_gpu_tdp: 200
gpus:
  RTX 4090: 36000
  RTX 4070: 18000
  RTX 3060: 8500
cpus:
  Core Ultra 9 285K: {single: 5000, multi: 67000}
  Core i9-14900K: {single: 4700, multi: 59000}
  Ryzen 9 7950X: {single: 4300, multi: 62000}
  Ryzen 5 7600: {single: 4000, multi: 27000}
  Core i5-12400: {single: 3500, multi: 19500}
  Ryzen 5 5600: {single: 3300, multi: 21500}
`

func testTable(t *testing.T) *benchmarks.Table {
	t.Helper()
	tbl, err := benchmarks.Parse([]byte(fixtureTable))
	require.NoError(t, err)
	return tbl
}

func mem(ts ...parts.MemoryType) []parts.MemoryType { return ts }

func sockets(ss ...parts.Socket) []parts.Socket { return ss }

// fixtureParts is a small but complete catalog: every category has budget and
// high-end options across the AM4, AM5, LGA1700 and LGA1851 platforms.
func fixtureParts() []parts.Component {
	return []parts.Component{
		{ID: "cpu-285k", Category: parts.CPU, Name: "Intel Core Ultra 9 285K", Price: 590, Available: true, Socket: "LGA1851", MemoryTypes: mem(parts.DDR5), TDP: 125},
		{ID: "cpu-14900k", Category: parts.CPU, Name: "Intel Core i9-14900K", Price: 520, Available: true, Socket: "LGA1700", MemoryTypes: mem(parts.DDR4, parts.DDR5), TDP: 125},
		{ID: "cpu-7950x", Category: parts.CPU, Name: "AMD Ryzen 9 7950X", Price: 550, Available: true, Socket: "AM5", MemoryTypes: mem(parts.DDR5), TDP: 170},
		{ID: "cpu-7600", Category: parts.CPU, Name: "AMD Ryzen 5 7600", Price: 200, Available: true, Socket: "AM5", MemoryTypes: mem(parts.DDR5), TDP: 65, BundledCooler: true},
		{ID: "cpu-12400", Category: parts.CPU, Name: "Intel Core i5-12400F", Price: 150, Available: true, Socket: "LGA1700", MemoryTypes: mem(parts.DDR4, parts.DDR5), TDP: 65, BundledCooler: true},
		{ID: "cpu-5600", Category: parts.CPU, Name: "AMD Ryzen 5 5600", Price: 130, Available: true, Socket: "AM4", MemoryTypes: mem(parts.DDR4), TDP: 65, BundledCooler: true},
		{ID: "cpu-old", Category: parts.CPU, Name: "Intel Core i3-4130", Price: 20, Available: false, Socket: "LGA1150", TDP: 54},

		{ID: "mb-z890", Category: parts.Motherboard, Name: "ASUS Prime Z890-P", Price: 300, Available: true, Socket: "LGA1851", Chipset: "Z890", MemoryTypes: mem(parts.DDR5), FormFactor: "ATX", PCIeX16Slots: 2},
		{ID: "mb-z790", Category: parts.Motherboard, Name: "MSI MPG Z790 Carbon", Price: 400, Available: true, Socket: "LGA1700", Chipset: "Z790", MemoryTypes: mem(parts.DDR5), FormFactor: "ATX", PCIeX16Slots: 2},
		{ID: "mb-b760", Category: parts.Motherboard, Name: "ASRock B760M Pro DDR4", Price: 110, Available: true, Socket: "LGA1700", Chipset: "B760", MemoryTypes: mem(parts.DDR4), FormFactor: "Micro ATX", PCIeX16Slots: 1},
		{ID: "mb-x670e", Category: parts.Motherboard, Name: "ASUS ROG Crosshair X670E Hero", Price: 480, Available: true, Socket: "AM5", Chipset: "X670E", MemoryTypes: mem(parts.DDR5), FormFactor: "ATX", PCIeX16Slots: 2},
		{ID: "mb-b650", Category: parts.Motherboard, Name: "MSI MAG B650 Tomahawk", Price: 200, Available: true, Socket: "AM5", Chipset: "B650", MemoryTypes: mem(parts.DDR5), FormFactor: "ATX", PCIeX16Slots: 1},
		{ID: "mb-b550m", Category: parts.Motherboard, Name: "Gigabyte B550M DS3H", Price: 90, Available: true, Socket: "AM4", Chipset: "B550", MemoryTypes: mem(parts.DDR4), FormFactor: "Micro ATX", PCIeX16Slots: 1},

		{ID: "ram-ddr4-16", Category: parts.RAM, Name: "Corsair Vengeance LPX 16GB DDR4", Price: 45, Available: true, MemoryTypes: mem(parts.DDR4), CapacityGB: 16},
		{ID: "ram-ddr4-32", Category: parts.RAM, Name: "Corsair Vengeance LPX 32GB DDR4", Price: 80, Available: true, MemoryTypes: mem(parts.DDR4), CapacityGB: 32},
		{ID: "ram-ddr4-sodimm", Category: parts.RAM, Name: "Crucial 16GB DDR4 SODIMM", Price: 30, Available: true, MemoryTypes: mem(parts.DDR4), CapacityGB: 16},
		{ID: "ram-ddr5-16", Category: parts.RAM, Name: "Kingston Fury Beast 16GB DDR5", Price: 60, Available: true, MemoryTypes: mem(parts.DDR5), CapacityGB: 16},
		{ID: "ram-ddr5-32", Category: parts.RAM, Name: "G.Skill Flare X5 32GB DDR5", Price: 110, Available: true, MemoryTypes: mem(parts.DDR5), CapacityGB: 32},
		{ID: "ram-ddr5-64", Category: parts.RAM, Name: "G.Skill Trident Z5 64GB DDR5", Price: 220, Available: true, MemoryTypes: mem(parts.DDR5), CapacityGB: 64},

		{ID: "gpu-4090", Category: parts.GPU, Name: "NVIDIA GeForce RTX 4090", Price: 1800, Available: true, TDP: 450},
		{ID: "gpu-4070", Category: parts.GPU, Name: "NVIDIA GeForce RTX 4070", Price: 550, Available: true, TDP: 200},
		{ID: "gpu-3060", Category: parts.GPU, Name: "NVIDIA GeForce RTX 3060", Price: 280, Available: true, TDP: 170},
		{ID: "gpu-a380", Category: parts.GPU, Name: "Intel Arc A380", Price: 120, Available: true, TDP: 75},

		{ID: "ssd-500", Category: parts.Storage, Name: "Crucial P3 500GB", Price: 35, Available: true, CapacityGB: 500, StorageType: parts.SSD},
		{ID: "ssd-1tb", Category: parts.Storage, Name: "Samsung 980 1TB", Price: 70, Available: true, CapacityGB: 1000, StorageType: parts.SSD},
		{ID: "ssd-2tb", Category: parts.Storage, Name: "WD Black SN850X 2TB", Price: 140, Available: true, CapacityGB: 2000, StorageType: parts.SSD},
		{ID: "ssd-4tb", Category: parts.Storage, Name: "Samsung 990 Pro 4TB", Price: 300, Available: true, CapacityGB: 4000, StorageType: parts.SSD},
		{ID: "hdd-2tb", Category: parts.Storage, Name: "Seagate Barracuda 2TB", Price: 55, Available: true, CapacityGB: 2000, StorageType: parts.HDD},

		{ID: "psu-550", Category: parts.PSU, Name: "EVGA 550 BQ", Price: 60, Available: true, Wattage: 550},
		{ID: "psu-750", Category: parts.PSU, Name: "Corsair RM750e", Price: 90, Available: true, Wattage: 750},
		{ID: "psu-1000", Category: parts.PSU, Name: "Seasonic Focus GX-1000", Price: 150, Available: true, Wattage: 1000},
		{ID: "psu-1600", Category: parts.PSU, Name: "Corsair AX1600i", Price: 350, Available: true, Wattage: 1600},

		{ID: "case-itx", Category: parts.Case, Name: "Cooler Master NR200", Price: 90, Available: true, FormFactor: "Mini ITX"},
		{ID: "case-matx", Category: parts.Case, Name: "Fractal Design Pop Mini", Price: 70, Available: true, FormFactor: "Micro ATX"},
		{ID: "case-atx", Category: parts.Case, Name: "Corsair 4000D Airflow", Price: 95, Available: true, FormFactor: "ATX"},
		{ID: "case-eatx", Category: parts.Case, Name: "Lian Li O11 Dynamic XL", Price: 200, Available: true, FormFactor: "E-ATX"},

		{ID: "cooler-pa", Category: parts.Cooler, Name: "Thermalright Peerless Assassin 120", Price: 35, Available: true, CoolerSockets: sockets("AM4", "AM5", "LGA1700", "LGA1851")},
		{ID: "cooler-aio", Category: parts.Cooler, Name: "Arctic Liquid Freezer III 360", Price: 110, Available: true, CoolerSockets: sockets("AM4", "AM5", "LGA1700", "LGA1851")},
		{ID: "cooler-legacy", Category: parts.Cooler, Name: "Noctua NH-U12S", Price: 40, Available: true, CoolerSockets: sockets("LGA115x", "AM4")},

		{ID: "mon-premium", Category: parts.Monitor, Name: "ASUS ROG Swift PG32UCDM", Price: 1300, Available: true},
		{ID: "mon-mid", Category: parts.Monitor, Name: "Dell S2721DGF", Price: 300, Available: true},
		{ID: "mon-budget", Category: parts.Monitor, Name: "AOC 24G2", Price: 150, Available: true},
	}
}

func without(list []parts.Component, ids ...string) []parts.Component {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var out []parts.Component
	for _, c := range list {
		if !drop[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

func onlyCategory(list []parts.Component, cat parts.Category) []parts.Component {
	var out []parts.Component
	for _, c := range list {
		if c.Category == cat {
			out = append(out, c)
		}
	}
	return out
}

func newTestConfigurator(t *testing.T, items []parts.Component, opts ...Option) (*Configurator, *catalog.Memory) {
	t.Helper()
	cat := catalog.NewMemory(items...)
	opts = append([]Option{WithBenchmarks(testTable(t))}, opts...)
	return New(cat, opts...), cat
}

// newTestRun builds a run with a hand-made allocation so stages can be tested
// in isolation.
func newTestRun(t *testing.T, items []parts.Component, req Request, alloc Allocation) *run {
	t.Helper()
	c, _ := newTestConfigurator(t, items)
	if alloc.Sub == nil {
		alloc.Sub = map[parts.Category]float64{}
	}
	return &run{Configurator: c, id: "test", req: req, alloc: alloc, build: newBuild()}
}

func ids(list []parts.Component) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func byID(t *testing.T, id string) parts.Component {
	t.Helper()
	for _, c := range fixtureParts() {
		if c.ID == id {
			return parts.Canonicalize(c)
		}
	}
	t.Fatalf("no fixture part %q", id)
	return parts.Component{}
}
