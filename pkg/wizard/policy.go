package wizard

// Policy gathers every tunable threshold of the configurator. The values are
// policy, not derived invariants; DefaultPolicy holds the shipped settings and
// viper can override any of them under the "policy" key.
type Policy struct {
	BudgetFloor        float64 `mapstructure:"budget_floor"`
	LowBudgetThreshold float64 `mapstructure:"low_budget_threshold"`
	UnlimitedBudget    float64 `mapstructure:"unlimited_budget"`
	MonitorShare       float64 `mapstructure:"monitor_share"`

	BufferFactor     float64 `mapstructure:"buffer_factor"`
	WideBufferFactor float64 `mapstructure:"wide_buffer_factor"`
	CandidateLimit   int     `mapstructure:"candidate_limit"`

	WattageHeadroom float64 `mapstructure:"wattage_headroom"`
	WattageStep     int     `mapstructure:"wattage_step"`
	PSUWindowLow    float64 `mapstructure:"psu_window_low"`
	PSUWindowHigh   float64 `mapstructure:"psu_window_high"`

	RAMTargetGamingGB    int      `mapstructure:"ram_target_gaming_gb"`
	RAMTargetMultiGB     int      `mapstructure:"ram_target_multi_gb"`
	RAMTargetUnlimitedGB int      `mapstructure:"ram_target_unlimited_gb"`
	RAMExcludeKeywords   []string `mapstructure:"ram_exclude_keywords"`

	UnlimitedGPUCount int `mapstructure:"unlimited_gpu_count"`
	MinPCIeX16Dual    int `mapstructure:"min_pcie_x16_dual"`

	DefaultStorageGB    int     `mapstructure:"default_storage_gb"`
	BootDriveMinGB      int     `mapstructure:"boot_drive_min_gb"`
	BootDriveMaxGB      int     `mapstructure:"boot_drive_max_gb"`
	BootDriveTargetGB   int     `mapstructure:"boot_drive_target_gb"`
	SSDComboPool        int     `mapstructure:"ssd_combo_pool"`
	AllSSDHeadroomShare float64 `mapstructure:"all_ssd_headroom_share"`

	CoolerUtilizationGate float64 `mapstructure:"cooler_utilization_gate"`
	CoolerMinRemaining    float64 `mapstructure:"cooler_min_remaining"`

	PremiumMonitor      string `mapstructure:"premium_monitor"`
	PremiumMonitorCount int    `mapstructure:"premium_monitor_count"`

	MaxDowngradeIterations  int     `mapstructure:"max_downgrade_iterations"`
	StrictSavingsIterations int     `mapstructure:"strict_savings_iterations"`
	SavingsFraction         float64 `mapstructure:"savings_fraction"`
	MinSavings              float64 `mapstructure:"min_savings"`

	UtilizationTarget float64 `mapstructure:"utilization_target"`
	MaxFillerUnits    int     `mapstructure:"max_filler_units"`
	FillerMinPrice    float64 `mapstructure:"filler_min_price"`
}

// DefaultPolicy returns the shipped thresholds.
func DefaultPolicy() Policy {
	return Policy{
		BudgetFloor:        1000,
		LowBudgetThreshold: 1500,
		UnlimitedBudget:    1_000_000,
		MonitorShare:       0.15,

		BufferFactor:     1.3,
		WideBufferFactor: 1.5,
		CandidateLimit:   25,

		WattageHeadroom: 1.25,
		WattageStep:     50,
		PSUWindowLow:    0.9,
		PSUWindowHigh:   1.5,

		RAMTargetGamingGB:    16,
		RAMTargetMultiGB:     32,
		RAMTargetUnlimitedGB: 64,
		RAMExcludeKeywords:   []string{"sodimm", "so-dimm", "laptop", "notebook", "server", "ecc", "rdimm"},

		UnlimitedGPUCount: 2,
		MinPCIeX16Dual:    2,

		DefaultStorageGB:    500,
		BootDriveMinGB:      250,
		BootDriveMaxGB:      1000,
		BootDriveTargetGB:   500,
		SSDComboPool:        12,
		AllSSDHeadroomShare: 0.5,

		CoolerUtilizationGate: 0.85,
		CoolerMinRemaining:    20,

		PremiumMonitor:      "ASUS ROG Swift PG32UCDM",
		PremiumMonitorCount: 3,

		MaxDowngradeIterations:  20,
		StrictSavingsIterations: 5,
		SavingsFraction:         0.5,
		MinSavings:              5,

		UtilizationTarget: 0.9,
		MaxFillerUnits:    5,
		FillerMinPrice:    50,
	}
}
