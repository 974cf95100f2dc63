package storage

import (
	"time"

	"github.com/buildwise/buildwise/pkg/parts"
)

// ChangeType classifies what a load did to a component row.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeUpdated ChangeType = "updated"
	ChangeRemoved ChangeType = "removed"
)

// Change captures a single change made by UpsertComponents, for printing.
type Change struct {
	OccurredAt time.Time

	ID       string
	Category parts.Category
	Name     string
	Price    float64
	OldPrice float64 // set on updates

	ChangeType ChangeType
}

// CategoryStats is one row of GetStats.
type CategoryStats struct {
	Category  parts.Category
	Count     int
	Available int
	MinPrice  float64
	MaxPrice  float64
	AvgPrice  float64
}
