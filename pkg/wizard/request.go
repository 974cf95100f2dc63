package wizard

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/buildwise/buildwise/pkg/parts"
)

// Profile selects the allocation table and which category the downgrade
// engine protects.
type Profile string

const (
	MultiThreaded Profile = "multiThreaded"
	Gaming        Profile = "singleThreadedGaming"
)

// ParseProfile accepts the canonical names plus the short CLI spellings.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "multithreaded", "multi-threaded", "multi", "mt", "workstation":
		return MultiThreaded, nil
	case "singlethreadedgaming", "gaming", "game", "st":
		return Gaming, nil
	}
	return "", fmt.Errorf("unknown workload profile %q", s)
}

// Budget is either a finite amount or the "Unlimited" sentinel.
type Budget struct {
	Amount    float64
	Unlimited bool
}

// Unlimited is the budget with no ceiling.
var Unlimited = Budget{Unlimited: true}

// Amount returns a finite budget.
func Amount(v float64) Budget { return Budget{Amount: v} }

// ParseBudget accepts "unlimited" in any case or a number, with an optional
// leading "$" and thousands separators.
func ParseBudget(s string) (Budget, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "unlimited") {
		return Unlimited, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimPrefix(s, "$"), ",", ""), 64)
	if err != nil {
		return Budget{}, fmt.Errorf("invalid budget %q", s)
	}
	return Amount(v), nil
}

func (b Budget) String() string {
	if b.Unlimited {
		return "Unlimited"
	}
	return strconv.FormatFloat(b.Amount, 'f', -1, 64)
}

func (b Budget) MarshalJSON() ([]byte, error) {
	if b.Unlimited {
		return []byte(`"Unlimited"`), nil
	}
	return json.Marshal(b.Amount)
}

func (b *Budget) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseBudget(s)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("budget must be a number or \"Unlimited\"")
	}
	*b = Amount(v)
	return nil
}

// Request is the configurator input.
type Request struct {
	Budget         Budget  `json:"budget"`
	Profile        Profile `json:"workloadProfile"`
	MinStorageGB   int     `json:"minStorageGB"`
	IncludeMonitor bool    `json:"includeMonitor"`
}

// allocation tables; each sums to 1.0.
var (
	gamingAllocation = map[parts.Category]float64{
		parts.CPU:         0.20,
		parts.Motherboard: 0.12,
		parts.RAM:         0.08,
		parts.GPU:         0.35,
		parts.Storage:     0.08,
		parts.PSU:         0.07,
		parts.Case:        0.05,
		parts.Cooler:      0.05,
	}
	multiThreadedAllocation = map[parts.Category]float64{
		parts.CPU:         0.30,
		parts.Motherboard: 0.13,
		parts.RAM:         0.14,
		parts.GPU:         0.18,
		parts.Storage:     0.10,
		parts.PSU:         0.07,
		parts.Case:        0.04,
		parts.Cooler:      0.04,
	}
)

// AllocationFor returns a copy of the fraction table for p.
func AllocationFor(p Profile) map[parts.Category]float64 {
	src := gamingAllocation
	if p == MultiThreaded {
		src = multiThreadedAllocation
	}
	out := make(map[parts.Category]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Allocation is the outcome of splitting a budget.
type Allocation struct {
	Total     float64
	Unlimited bool
	Sub       map[parts.Category]float64
}

// Validate rejects requests the allocator cannot work with.
func (r Request) Validate(pol Policy) error {
	if r.Profile != Gaming && r.Profile != MultiThreaded {
		return &InputValidationError{Field: "workloadProfile", Reason: fmt.Sprintf("unknown profile %q", r.Profile)}
	}
	if r.MinStorageGB < 0 {
		return &InputValidationError{Field: "minStorageGB", Reason: "must be >= 0"}
	}
	if r.Budget.Unlimited {
		return nil
	}
	if math.IsNaN(r.Budget.Amount) || math.IsInf(r.Budget.Amount, 0) {
		return &InputValidationError{Field: "budget", Reason: "must be finite", Budget: r.Budget.Amount, Floor: pol.BudgetFloor}
	}
	if r.Budget.Amount < pol.BudgetFloor {
		return &InputValidationError{
			Field:  "budget",
			Reason: fmt.Sprintf("minimum budget is $%.0f", pol.BudgetFloor),
			Budget: r.Budget.Amount,
			Floor:  pol.BudgetFloor,
		}
	}
	return nil
}

// Allocate validates r and splits its budget into per-category sub-budgets.
// With a monitor on a finite budget, MonitorShare of the total is set aside
// first and the table applies to the rest.
func Allocate(r Request, pol Policy) (Allocation, error) {
	if err := r.Validate(pol); err != nil {
		return Allocation{}, err
	}
	total := r.Budget.Amount
	if r.Budget.Unlimited {
		total = pol.UnlimitedBudget
	}

	base := total
	sub := make(map[parts.Category]float64)
	if r.IncludeMonitor && !r.Budget.Unlimited {
		sub[parts.Monitor] = total * pol.MonitorShare
		base = total - sub[parts.Monitor]
	}
	for cat, frac := range AllocationFor(r.Profile) {
		sub[cat] = base * frac
	}
	return Allocation{Total: total, Unlimited: r.Budget.Unlimited, Sub: sub}, nil
}
