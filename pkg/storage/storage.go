package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/buildwise/buildwise/pkg/catalog"
	"github.com/buildwise/buildwise/pkg/parts"
)

const schema = `
CREATE TABLE IF NOT EXISTS components (
  id                TEXT PRIMARY KEY,
  category          TEXT NOT NULL,
  name              TEXT NOT NULL,
  manufacturer      TEXT,
  price             DOUBLE PRECISION NOT NULL,
  available         INTEGER NOT NULL DEFAULT 1 CHECK (available IN (0,1)),
  socket            TEXT,
  chipset           TEXT,
  memory_types      TEXT,
  form_factor       TEXT,
  wattage           INTEGER NOT NULL DEFAULT 0,
  capacity_gb       INTEGER NOT NULL DEFAULT 0,
  storage_type      TEXT,
  tdp               INTEGER NOT NULL DEFAULT 0,
  performance_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  single_core_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  multi_core_score  DOUBLE PRECISION NOT NULL DEFAULT 0,
  bundled_cooler    INTEGER NOT NULL DEFAULT 0 CHECK (bundled_cooler IN (0,1)),
  cooler_sockets    TEXT,
  pcie_x16_slots    INTEGER NOT NULL DEFAULT 0,
  updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_components_category ON components(category, price);
`

const columns = `id, category, name, manufacturer, price, available, socket, chipset, memory_types,
 form_factor, wattage, capacity_gb, storage_type, tdp, performance_score, single_core_score,
 multi_core_score, bundled_cooler, cooler_sockets, pcie_x16_slots`

// DB is the SQL-backed component catalog. It implements catalog.Catalog.
type DB struct {
	sql      *sql.DB
	postgres bool
}

var _ catalog.Catalog = (*DB)(nil)

// IsPostgres reports whether dsn names a Postgres server rather than a SQLite file.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to the catalog and makes sure the schema exists. A
// postgres:// URL uses lib/pq; anything else is a SQLite file path.
func Open(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("empty database dsn")
	}
	var (
		db  *sql.DB
		err error
	)
	pg := IsPostgres(dsn)
	if pg {
		db, err = sql.Open("postgres", dsn)
	} else {
		db, err = sql.Open("sqlite", "file:"+dsn+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	}
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &DB{sql: db, postgres: pg}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (d *DB) rebind(q string) string {
	if !d.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Find implements catalog.Catalog. Category, availability, price and size
// bounds are pushed into SQL; the remaining predicates, the ordering and the
// limit go through catalog.Apply so every Catalog behaves the same.
func (d *DB) Find(ctx context.Context, q catalog.Query) ([]parts.Component, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if q.Category != "" {
		where += " AND category = ?"
		args = append(args, string(q.Category))
	}
	if q.AvailableOnly {
		where += " AND available = 1"
	}
	if q.MinPrice > 0 {
		where += " AND price >= ?"
		args = append(args, q.MinPrice)
	}
	if q.MaxPrice > 0 {
		where += " AND price <= ?"
		args = append(args, q.MaxPrice)
	}
	if q.BelowPrice > 0 {
		where += " AND price < ?"
		args = append(args, q.BelowPrice)
	}
	if q.MinWattage > 0 {
		where += " AND wattage >= ?"
		args = append(args, q.MinWattage)
	}
	if q.MinCapacityGB > 0 {
		where += " AND capacity_gb >= ?"
		args = append(args, q.MinCapacityGB)
	}

	rows, err := d.sql.QueryContext(ctx, d.rebind("SELECT "+columns+" FROM components "+where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []parts.Component
	for rows.Next() {
		c, err := scanComponent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, parts.Canonicalize(c))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return catalog.Apply(out, q), nil
}

func scanComponent(rows *sql.Rows) (parts.Component, error) {
	var (
		c                                    parts.Component
		category                             string
		manufacturer, socket, chipset        sql.NullString
		memoryTypes, formFactor, storageType sql.NullString
		coolerSockets                        sql.NullString
		available, bundled                   int
	)
	err := rows.Scan(&c.ID, &category, &c.Name, &manufacturer, &c.Price, &available, &socket, &chipset,
		&memoryTypes, &formFactor, &c.Wattage, &c.CapacityGB, &storageType, &c.TDP, &c.PerformanceScore,
		&c.SingleCoreScore, &c.MultiCoreScore, &bundled, &coolerSockets, &c.PCIeX16Slots)
	if err != nil {
		return c, err
	}
	c.Category = parts.Category(category)
	c.Manufacturer = manufacturer.String
	c.Available = available == 1
	c.Socket = parts.Socket(socket.String)
	c.Chipset = chipset.String
	for _, m := range splitList(memoryTypes.String) {
		c.MemoryTypes = append(c.MemoryTypes, parts.MemoryType(m))
	}
	c.FormFactor = formFactor.String
	c.StorageType = parts.StorageType(storageType.String)
	c.BundledCooler = bundled == 1
	for _, s := range splitList(coolerSockets.String) {
		c.CoolerSockets = append(c.CoolerSockets, parts.Socket(s))
	}
	return c, nil
}

// UpsertComponents writes items in one transaction and reports what changed.
// With prune set, components of the loaded categories that were not part of
// items are deleted and reported as removed.
func (d *DB) UpsertComponents(ctx context.Context, items []parts.Component, prune bool) ([]Change, error) {
	now := time.Now().UTC()

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT id, category, name, price, available FROM components")
	if err != nil {
		return nil, err
	}
	type existing struct {
		category, name string
		price          float64
		available      bool
	}
	existingMap := make(map[string]existing)
	for rows.Next() {
		var (
			id string
			ex existing
			av int
		)
		if err = rows.Scan(&id, &ex.category, &ex.name, &ex.price, &av); err != nil {
			rows.Close()
			return nil, err
		}
		ex.available = av == 1
		existingMap[id] = ex
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	upsert := d.rebind(`INSERT INTO components(` + columns + `, updated_at)
VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP)
ON CONFLICT(id) DO UPDATE SET
  category = excluded.category, name = excluded.name, manufacturer = excluded.manufacturer,
  price = excluded.price, available = excluded.available, socket = excluded.socket,
  chipset = excluded.chipset, memory_types = excluded.memory_types, form_factor = excluded.form_factor,
  wattage = excluded.wattage, capacity_gb = excluded.capacity_gb, storage_type = excluded.storage_type,
  tdp = excluded.tdp, performance_score = excluded.performance_score,
  single_core_score = excluded.single_core_score, multi_core_score = excluded.multi_core_score,
  bundled_cooler = excluded.bundled_cooler, cooler_sockets = excluded.cooler_sockets,
  pcie_x16_slots = excluded.pcie_x16_slots, updated_at = CURRENT_TIMESTAMP`)

	var changes []Change
	seen := make(map[string]bool, len(items))
	loaded := make(map[parts.Category]bool)
	for _, raw := range items {
		c := parts.Canonicalize(raw)
		if c.ID == "" || c.Category == "" {
			err = fmt.Errorf("component %q: id and category are required", c.Name)
			return nil, err
		}
		seen[c.ID] = true
		loaded[c.Category] = true

		_, err = tx.ExecContext(ctx, upsert, componentArgs(c)...)
		if err != nil {
			return nil, fmt.Errorf("upsert %s: %w", c.ID, err)
		}

		ex, existed := existingMap[c.ID]
		switch {
		case !existed:
			changes = append(changes, Change{OccurredAt: now, ID: c.ID, Category: c.Category, Name: c.Name, Price: c.Price, ChangeType: ChangeAdded})
		case ex.name != c.Name || ex.price != c.Price || ex.available != c.Available || ex.category != string(c.Category):
			changes = append(changes, Change{OccurredAt: now, ID: c.ID, Category: c.Category, Name: c.Name, Price: c.Price, OldPrice: ex.price, ChangeType: ChangeUpdated})
		}
		existingMap[c.ID] = existing{category: string(c.Category), name: c.Name, price: c.Price, available: c.Available}
	}

	if prune {
		del := d.rebind("DELETE FROM components WHERE id = ?")
		for _, id := range sortedKeys(existingMap) {
			ex := existingMap[id]
			if seen[id] || !loaded[parts.Category(ex.category)] {
				continue
			}
			if _, err = tx.ExecContext(ctx, del, id); err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, ID: id, Category: parts.Category(ex.category), Name: ex.name, Price: ex.price, ChangeType: ChangeRemoved})
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return changes, nil
}

func componentArgs(c parts.Component) []interface{} {
	mem := make([]string, len(c.MemoryTypes))
	for i, m := range c.MemoryTypes {
		mem[i] = string(m)
	}
	coolers := make([]string, len(c.CoolerSockets))
	for i, s := range c.CoolerSockets {
		coolers[i] = string(s)
	}
	return []interface{}{
		c.ID, string(c.Category), c.Name, nullIfEmpty(c.Manufacturer), c.Price, boolToInt(c.Available),
		nullIfEmpty(string(c.Socket)), nullIfEmpty(c.Chipset), nullIfEmpty(joinList(mem)),
		nullIfEmpty(c.FormFactor), c.Wattage, c.CapacityGB, nullIfEmpty(string(c.StorageType)), c.TDP,
		c.PerformanceScore, c.SingleCoreScore, c.MultiCoreScore, boolToInt(c.BundledCooler),
		nullIfEmpty(joinList(coolers)), c.PCIeX16Slots,
	}
}

// GetStats summarizes the catalog per category.
func (d *DB) GetStats(ctx context.Context) ([]CategoryStats, error) {
	query := `
		SELECT
			category,
			COUNT(*),
			COALESCE(SUM(available), 0),
			COALESCE(MIN(price), 0),
			COALESCE(MAX(price), 0),
			COALESCE(AVG(price), 0)
		FROM
			components
		GROUP BY
			category
		ORDER BY
			category;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []CategoryStats
	for rows.Next() {
		var s CategoryStats
		var category string
		if err := rows.Scan(&category, &s.Count, &s.Available, &s.MinPrice, &s.MaxPrice, &s.AvgPrice); err != nil {
			return nil, err
		}
		s.Category = parts.Category(category)
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
