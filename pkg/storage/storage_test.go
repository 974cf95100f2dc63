package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "catalog.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seed() []parts.Component {
	return []parts.Component{
		{ID: "cpu-7600", Category: parts.CPU, Name: "AMD Ryzen 5 7600", Price: 200, Available: true, Socket: "Socket AM5", MemoryTypes: []parts.MemoryType{"ddr5"}, TDP: 65, BundledCooler: true},
		{ID: "cpu-12400", Category: parts.CPU, Name: "Intel Core i5-12400F", Price: 110, Available: true, Socket: "LGA 1700", TDP: 65, BundledCooler: true},
		{ID: "cpu-old", Category: parts.CPU, Name: "Intel Core i7-4790K", Price: 90, Available: false, Socket: "LGA1150"},
		{ID: "mb-b650", Category: parts.Motherboard, Name: "MSI B650 Tomahawk", Price: 190, Available: true, Socket: "AM5", Chipset: "B650", MemoryTypes: []parts.MemoryType{"DDR5"}, FormFactor: "ATX", PCIeX16Slots: 1},
		{ID: "ssd-1tb", Category: parts.Storage, Name: "Samsung 990 EVO 1TB", Price: 80, Available: true, CapacityGB: 1000},
		{ID: "hdd-2tb", Category: parts.Storage, Name: "Seagate Barracuda 2TB 7200 RPM", Price: 55, Available: true, CapacityGB: 2000},
		{ID: "cooler-pa", Category: parts.Cooler, Name: "Thermalright Peerless Assassin 120", Price: 35, Available: true, CoolerSockets: []parts.Socket{"AM4", "AM5", "LGA1700"}},
	}
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://user@localhost/parts"))
	assert.True(t, IsPostgres("postgresql://localhost/parts?sslmode=disable"))
	assert.False(t, IsPostgres("/home/me/.config/buildwise/buildwise.sqlite"))
}

func TestRebind(t *testing.T) {
	pg := &DB{postgres: true}
	assert.Equal(t, "a = $1 AND b < $2", pg.rebind("a = ? AND b < ?"))
	lite := &DB{}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestUpsertReportsAdded(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	changes, err := db.UpsertComponents(ctx, seed(), false)
	require.NoError(t, err)
	assert.Len(t, changes, len(seed()))
	for _, c := range changes {
		assert.Equal(t, ChangeAdded, c.ChangeType)
	}

	// a second identical load changes nothing
	changes, err = db.UpsertComponents(ctx, seed(), false)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestUpsertUpdatesAndPrunes(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.UpsertComponents(ctx, seed(), false)
	require.NoError(t, err)

	// reload the CPUs only: one price drop, one CPU gone
	cpus := []parts.Component{seed()[0], seed()[1]}
	cpus[0].Price = 180
	changes, err := db.UpsertComponents(ctx, cpus, true)
	require.NoError(t, err)
	require.Len(t, changes, 2)

	assert.Equal(t, ChangeUpdated, changes[0].ChangeType)
	assert.Equal(t, "cpu-7600", changes[0].ID)
	assert.Equal(t, 200.0, changes[0].OldPrice)
	assert.Equal(t, 180.0, changes[0].Price)

	assert.Equal(t, ChangeRemoved, changes[1].ChangeType)
	assert.Equal(t, "cpu-old", changes[1].ID)

	// other categories are untouched by the prune
	drives, err := db.Find(ctx, catalog.Query{Category: parts.Storage})
	require.NoError(t, err)
	assert.Len(t, drives, 2)
}

func TestUpsertRequiresIDAndCategory(t *testing.T) {
	db := openTestDB(t)
	_, err := db.UpsertComponents(context.Background(), []parts.Component{{Name: "mystery part", Price: 10}}, false)
	assert.Error(t, err)

	stats, err := db.GetStats(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestFindRoundTripsAndFilters(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.UpsertComponents(ctx, seed(), false)
	require.NoError(t, err)

	got, err := db.Find(ctx, catalog.Query{Category: parts.CPU, AvailableOnly: true, Sort: catalog.ByPrice})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cpu-12400", got[0].ID)
	assert.Equal(t, "cpu-7600", got[1].ID)

	ryzen := got[1]
	assert.Equal(t, parts.Socket("AM5"), ryzen.Socket)
	assert.Equal(t, []parts.MemoryType{parts.DDR5}, ryzen.MemoryTypes)
	assert.True(t, ryzen.BundledCooler)
	assert.Equal(t, 65, ryzen.TDP)

	boards, err := db.Find(ctx, catalog.Query{Category: parts.Motherboard, Sockets: []string{"AM5"}, MemoryType: parts.DDR5})
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, 1, boards[0].PCIeX16Slots)
	assert.Equal(t, "ATX", boards[0].FormFactor)

	coolers, err := db.Find(ctx, catalog.Query{Category: parts.Cooler, CoolerFor: "LGA1700"})
	require.NoError(t, err)
	require.Len(t, coolers, 1)
	assert.Len(t, coolers[0].CoolerSockets, 3)

	ssds, err := db.Find(ctx, catalog.Query{Category: parts.Storage, StorageType: parts.SSD})
	require.NoError(t, err)
	assert.Equal(t, []string{"ssd-1tb"}, idsOf(ssds))

	cheap, err := db.Find(ctx, catalog.Query{Category: parts.Storage, BelowPrice: 80, MinCapacityGB: 1000})
	require.NoError(t, err)
	assert.Equal(t, []string{"hdd-2tb"}, idsOf(cheap))

	none, err := db.Find(ctx, catalog.Query{Category: parts.GPU})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.UpsertComponents(ctx, seed(), false)
	require.NoError(t, err)

	stats, err := db.GetStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 4)

	byCat := map[parts.Category]CategoryStats{}
	for _, s := range stats {
		byCat[s.Category] = s
	}
	cpu := byCat[parts.CPU]
	assert.Equal(t, 3, cpu.Count)
	assert.Equal(t, 2, cpu.Available)
	assert.Equal(t, 90.0, cpu.MinPrice)
	assert.Equal(t, 200.0, cpu.MaxPrice)
	assert.InDelta(t, 133.33, cpu.AvgPrice, 0.01)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"AM4", "AM5"}, splitList("AM4, AM5,"))
	assert.Equal(t, "AM4,AM5", joinList([]string{"AM4", "AM5"}))
}

func idsOf(list []parts.Component) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}
