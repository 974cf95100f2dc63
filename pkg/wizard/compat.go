package wizard

import (
	"math"

	"github.com/buildwise/buildwise/pkg/parts"
)

const (
	ruleCPUBoard   = "cpu-motherboard"
	ruleRAMBoard   = "ram-motherboard"
	ruleCoolerCPU  = "cooler-cpu"
	ruleCaseBoard  = "case-motherboard"
	rulePSUWattage = "psu-wattage"
)

// CPUFitsBoard: the CPU's socket or chipset overlaps the board's socket or
// chipset, compared case- and whitespace-insensitively in either direction.
//
// Overlap rather than equality keeps free-text chipset fields working
// ("LGA1700 (Z790)"), at the cost of possible false positives when one
// canonical socket is a prefix of another.
func CPUFitsBoard(cpu, board parts.Component) bool {
	for _, a := range []string{string(cpu.Socket), cpu.Chipset} {
		for _, b := range []string{string(board.Socket), board.Chipset} {
			if parts.Overlaps(a, b) {
				return true
			}
		}
	}
	return false
}

// socketKeys is the query form of a part's socket/chipset identity.
func socketKeys(c parts.Component) []string {
	var out []string
	if c.Socket != "" {
		out = append(out, string(c.Socket))
	}
	if c.Chipset != "" {
		out = append(out, c.Chipset)
	}
	return out
}

// memoryTypeOf is the generation a RAM kit is made of.
func memoryTypeOf(ram parts.Component) parts.MemoryType {
	if len(ram.MemoryTypes) == 0 {
		return ""
	}
	return ram.MemoryTypes[0]
}

// RAMFitsBoard: the kit's memory type is among the board's supported types.
func RAMFitsBoard(ram, board parts.Component) bool {
	t := memoryTypeOf(ram)
	return t != "" && board.SupportsMemory(t)
}

// CPUTakesMemory is true when the CPU lists no memory types or lists t.
func CPUTakesMemory(cpu parts.Component, t parts.MemoryType) bool {
	return len(cpu.MemoryTypes) == 0 || cpu.SupportsMemory(t)
}

// CoolerFitsCPU: the CPU socket is in the cooler's canonical socket list.
func CoolerFitsCPU(cooler, cpu parts.Component) bool {
	return parts.CoolerFits(cpu.Socket, cooler.CoolerSockets)
}

// CaseFitsBoard: the case class contains the board class.
func CaseFitsBoard(pcCase, board parts.Component) bool {
	return pcCase.Class().Contains(board.Class())
}

// RecommendedWattage is ceil(headroom x sum(TDP) / step) x step.
func RecommendedWattage(totalTDP int, pol Policy) int {
	if totalTDP <= 0 {
		return 0
	}
	step := float64(pol.WattageStep)
	return int(math.Ceil(pol.WattageHeadroom*float64(totalTDP)/step) * step)
}

// psuWindow returns the relaxed wattage window around rw.
func psuWindow(rw int, pol Policy) (int, int) {
	return int(math.Ceil(pol.PSUWindowLow * float64(rw))), int(math.Floor(pol.PSUWindowHigh * float64(rw)))
}

// PSUAdequate checks the wattage floor, or the relaxed window floor when the
// build was explicitly flagged as relaxed.
func PSUAdequate(psu parts.Component, rw int, relaxed bool, pol Policy) bool {
	if psu.Wattage >= rw {
		return true
	}
	if !relaxed {
		return false
	}
	low, _ := psuWindow(rw, pol)
	return psu.Wattage >= low
}
