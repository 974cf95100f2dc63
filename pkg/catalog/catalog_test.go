package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildwise/buildwise/pkg/parts"
)

func ids(list []parts.Component) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func TestFindFiltersAndOrders(t *testing.T) {
	m := NewMemory(
		parts.Component{ID: "b1", Category: parts.Motherboard, Price: 150, Available: true, Socket: "AM5", Chipset: "B650", MemoryTypes: []parts.MemoryType{"DDR5"}, FormFactor: "ATX"},
		parts.Component{ID: "b2", Category: parts.Motherboard, Price: 220, Available: true, Socket: "LGA 1700", Chipset: "Z790", MemoryTypes: []parts.MemoryType{"DDR4", "DDR5"}, FormFactor: "ATX", PCIeX16Slots: 2},
		parts.Component{ID: "b3", Category: parts.Motherboard, Price: 120, Available: false, Socket: "AM4", Chipset: "B550", MemoryTypes: []parts.MemoryType{"DDR4"}, FormFactor: "Micro ATX"},
		parts.Component{ID: "b4", Category: parts.Motherboard, Price: 90, Available: true, Socket: "AM4", Chipset: "A520", MemoryTypes: []parts.MemoryType{"DDR4"}, FormFactor: "Mini-ITX"},
	)
	ctx := context.Background()

	got, err := m.Find(ctx, Query{Category: parts.Motherboard, AvailableOnly: true, Sort: ByPrice, Desc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b2", "b1", "b4"}, ids(got))

	got, err = m.Find(ctx, Query{Category: parts.Motherboard, MemoryType: parts.DDR4, AvailableOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b4", "b2"}, ids(got))

	got, err = m.Find(ctx, Query{Category: parts.Motherboard, Sockets: []string{"z790"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, ids(got))

	got, err = m.Find(ctx, Query{Category: parts.Motherboard, FormFactors: []parts.FormFactor{parts.FormITX, parts.FormMATX}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b4", "b3"}, ids(got))

	got, err = m.Find(ctx, Query{Category: parts.Motherboard, MinPCIeX16: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b2"}, ids(got))

	got, err = m.Find(ctx, Query{Category: parts.Motherboard, ExcludeSockets: parts.DDR5OnlySockets, MaxPrice: 200, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"b4"}, ids(got))
}

func TestOrderIsTotal(t *testing.T) {
	list := []parts.Component{
		{ID: "c", Price: 100, PerformanceScore: 50},
		{ID: "a", Price: 100, PerformanceScore: 50},
		{ID: "b", Price: 120, PerformanceScore: 50},
		{ID: "d", Price: 80, PerformanceScore: 70},
	}
	Order(list, Query{Sort: ByPerformance, Desc: true})
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids(list))
}

func TestExcludeKeywordsAndCooler(t *testing.T) {
	m := NewMemory(
		parts.Component{ID: "r1", Category: parts.RAM, Name: "Kingston 16GB DDR4 SODIMM", Price: 40, MemoryTypes: []parts.MemoryType{"DDR4"}},
		parts.Component{ID: "r2", Category: parts.RAM, Name: "Corsair Vengeance 16GB DDR4", Price: 45, MemoryTypes: []parts.MemoryType{"DDR4"}},
		parts.Component{ID: "k1", Category: parts.Cooler, Name: "Hyper 212", Price: 30, CoolerSockets: []parts.Socket{"LGA115x", "AM4"}},
	)
	ctx := context.Background()

	got, err := m.Find(ctx, Query{Category: parts.RAM, ExcludeKeywords: []string{"sodimm"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"r2"}, ids(got))

	got, err = m.Find(ctx, Query{Category: parts.Cooler, CoolerFor: "LGA1151"})
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, ids(got))

	got, err = m.Find(ctx, Query{Category: parts.Cooler, CoolerFor: "AM5"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFailCategory(t *testing.T) {
	m := NewMemory(parts.Component{ID: "g", Category: parts.GPU, Price: 300})
	boom := errors.New("boom")
	m.FailCategory(parts.GPU, boom)

	_, err := m.Find(context.Background(), Query{Category: parts.GPU})
	assert.ErrorIs(t, err, boom)

	m.FailCategory(parts.GPU, nil)
	got, err := m.Find(context.Background(), Query{Category: parts.GPU})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRangePredicates(t *testing.T) {
	m := NewMemory(
		parts.Component{ID: "c65", Category: parts.CPU, Price: 150, TDP: 65},
		parts.Component{ID: "c125", Category: parts.CPU, Price: 500, TDP: 125},
		parts.Component{ID: "s1", Category: parts.Storage, Price: 70, CapacityGB: 1000},
		parts.Component{ID: "s4", Category: parts.Storage, Price: 300, CapacityGB: 4000},
		parts.Component{ID: "p550", Category: parts.PSU, Price: 60, Wattage: 550},
		parts.Component{ID: "p1000", Category: parts.PSU, Price: 150, Wattage: 1000},
	)
	ctx := context.Background()

	got, err := m.Find(ctx, Query{Category: parts.CPU, MaxTDP: 100})
	require.NoError(t, err)
	assert.Equal(t, []string{"c65"}, ids(got))

	got, err = m.Find(ctx, Query{Category: parts.Storage, MinCapacityGB: 500, MaxCapacityGB: 2000})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids(got))

	got, err = m.Find(ctx, Query{Category: parts.PSU, MinWattage: 600, MaxWattage: 1200})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1000"}, ids(got))
}
