package wizard

import (
	"fmt"
	"strings"

	"github.com/buildwise/buildwise/pkg/parts"
)

// validate re-checks every pairwise rule on the finished build. Selection and
// downgrade already enforce them, so a failure here is a bug surfaced as a
// CompatibilityError rather than a bad build.
func (r *run) validate() error {
	cpu, _ := r.build.Get(parts.CPU)
	board, _ := r.build.Get(parts.Motherboard)
	ram, _ := r.build.Get(parts.RAM)
	psu, _ := r.build.Get(parts.PSU)
	pcCase, _ := r.build.Get(parts.Case)

	fail := func(rule string, a, b parts.Component, detail string) error {
		r.emit(StageValidate, a.Category, "compatibility check failed", "rule", rule, "detail", detail)
		return &CompatibilityError{Rule: rule, First: a, Second: b, Detail: detail}
	}

	if !CPUFitsBoard(cpu, board) {
		return fail(ruleCPUBoard, cpu, board, fmt.Sprintf("cpu socket %q chipset %q, motherboard socket %q chipset %q",
			cpu.Socket, cpu.Chipset, board.Socket, board.Chipset))
	}
	if !RAMFitsBoard(ram, board) {
		return fail(ruleRAMBoard, ram, board, fmt.Sprintf("memory %q not in %s",
			memoryTypeOf(ram), joinTypes(board.MemoryTypes)))
	}
	if cooler, ok := r.build.Get(parts.Cooler); ok && !CoolerFitsCPU(cooler, cpu) {
		return fail(ruleCoolerCPU, cooler, cpu, fmt.Sprintf("socket %q not supported", cpu.Socket))
	}
	if !CaseFitsBoard(pcCase, board) {
		return fail(ruleCaseBoard, pcCase, board, fmt.Sprintf("%s case cannot hold %s board",
			pcCase.Class(), board.Class()))
	}
	if rw := r.recommendedWattage(); !PSUAdequate(psu, rw, r.relaxedPSU, r.policy) {
		return fail(rulePSUWattage, psu, cpu, fmt.Sprintf("%dW below recommended %dW", psu.Wattage, rw))
	}
	r.emit(StageValidate, "", "build validated", "total", roundCents(r.build.Total()))
	return nil
}

func joinTypes(ts []parts.MemoryType) string {
	s := make([]string, len(ts))
	for i, t := range ts {
		s[i] = string(t)
	}
	return "[" + strings.Join(s, ", ") + "]"
}
