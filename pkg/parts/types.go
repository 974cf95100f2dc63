package parts

// Category tags which slot of a build a component fills.
type Category string

const (
	CPU         Category = "cpu"
	Motherboard Category = "motherboard"
	RAM         Category = "ram"
	GPU         Category = "gpu"
	Storage     Category = "storage"
	PSU         Category = "psu"
	Case        Category = "case"
	Cooler      Category = "cooler"
	Monitor     Category = "monitor"
)

// Categories lists every category in display order.
var Categories = []Category{CPU, Motherboard, RAM, GPU, Storage, PSU, Case, Cooler, Monitor}

// ParseCategory accepts the category name in any case.
func ParseCategory(s string) (Category, bool) {
	s = normalizeSpace(s)
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// StorageType distinguishes solid state drives from spinning disks.
type StorageType string

const (
	SSD StorageType = "SSD"
	HDD StorageType = "HDD"
)

// Component is a single catalog entry. Values are treated as immutable once
// read from a catalog; builds copy them rather than mutate them.
type Component struct {
	ID           string   `json:"id"`
	Category     Category `json:"category"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Price        float64  `json:"price"`
	Available    bool     `json:"available"`

	// Platform
	Socket      Socket       `json:"socket,omitempty"`
	Chipset     string       `json:"chipset,omitempty"`
	MemoryTypes []MemoryType `json:"memory_types,omitempty"`
	FormFactor  string       `json:"form_factor,omitempty"`

	// Sizing
	Wattage     int         `json:"wattage,omitempty"`
	CapacityGB  int         `json:"capacity_gb,omitempty"`
	StorageType StorageType `json:"storage_type,omitempty"`
	TDP         int         `json:"tdp,omitempty"`

	// Ranking
	PerformanceScore float64 `json:"performance_score,omitempty"`
	SingleCoreScore  float64 `json:"single_core_score,omitempty"`
	MultiCoreScore   float64 `json:"multi_core_score,omitempty"`

	BundledCooler bool     `json:"bundled_cooler,omitempty"`
	CoolerSockets []Socket `json:"cooler_sockets,omitempty"`
	PCIeX16Slots  int      `json:"pcie_x16_slots,omitempty"`
}

// SupportsMemory reports whether any of the component's memory types contains
// (or is contained by) t.
func (c Component) SupportsMemory(t MemoryType) bool {
	for _, m := range c.MemoryTypes {
		if loosely(string(m), string(t)) {
			return true
		}
	}
	return false
}

// Class returns the form-factor class of a motherboard or case.
func (c Component) Class() FormFactor {
	return ClassifyFormFactor(c.FormFactor)
}
