package wizard

import (
	"errors"
	"fmt"

	"github.com/buildwise/buildwise/pkg/parts"
)

// InputValidationError rejects a request before any selection runs.
type InputValidationError struct {
	Field  string
	Reason string
	Budget float64
	Floor  float64
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NoCandidateError means a mandatory category stayed empty after its whole
// fallback ladder.
type NoCandidateError struct {
	Category parts.Category
}

func (e *NoCandidateError) Error() string {
	return fmt.Sprintf("no compatible %s found in catalog", e.Category)
}

// CompatibilityError is raised by the final validation when two selected
// parts do not fit each other.
type CompatibilityError struct {
	Rule   string
	First  parts.Component
	Second parts.Component
	Detail string
}

func (e *CompatibilityError) Error() string {
	return fmt.Sprintf("%s incompatible: %s (%s) vs %s (%s): %s",
		e.Rule, e.First.Name, e.First.ID, e.Second.Name, e.Second.ID, e.Detail)
}

// Failure is the documented error shape returned to callers.
type Failure struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details"`
}

func describe(c parts.Component) map[string]any {
	return map[string]any{
		"id":      c.ID,
		"name":    c.Name,
		"socket":  c.Socket,
		"chipset": c.Chipset,
	}
}

// FailureFrom converts any configurator error into a Failure.
func FailureFrom(err error) Failure {
	f := Failure{Error: err.Error(), Details: map[string]any{}}

	var iv *InputValidationError
	var nc *NoCandidateError
	var ce *CompatibilityError
	switch {
	case errors.As(err, &iv):
		f.Details["field"] = iv.Field
		if iv.Field == "budget" {
			f.Details["budget"] = iv.Budget
			f.Details["minimum"] = iv.Floor
		}
	case errors.As(err, &nc):
		f.Details["missingCategory"] = nc.Category
	case errors.As(err, &ce):
		f.Details["rule"] = ce.Rule
		f.Details["detail"] = ce.Detail
		if ce.Rule == ruleCPUBoard {
			f.Details["cpu"] = describe(ce.First)
			f.Details["motherboard"] = describe(ce.Second)
		} else {
			f.Details["first"] = describe(ce.First)
			f.Details["second"] = describe(ce.Second)
		}
	}
	return f
}
