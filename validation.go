package flowchart

import (
	"fmt"
	"sort"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

const (
	DiagCodeDanglingTransition = "WF001_DANGLING_ALLOWED_TRANSITION"
	DiagCodeUnknownDefinition  = "WF002_UNKNOWN_TRANSITION_DEFINITION"
	DiagCodeUnknownStepTo      = "WF003_UNKNOWN_STEP_TO"
	DiagCodeDuplicatePropPath  = "WF004_DUPLICATE_PROPERTY_PATH"
	DiagCodeInvalidCondition   = "WF005_INVALID_CONDITION"
	DiagCodeMissingStart       = "WF006_MISSING_START_TRANSITION"
	DiagCodeOwnerMismatch      = "WF007_OWNER_MISMATCH"
	DiagCodeUnknownStartStep   = "WF008_UNKNOWN_START_STEP"
)

// Diagnostic is a deterministic validation message for editor tooling.
type Diagnostic struct {
	Code     string `json:"code" yaml:"code"`
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
	Path     string `json:"path" yaml:"path"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Field    string `json:"field,omitempty" yaml:"field,omitempty"`
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks cross-container references. Dangling references are tolerated by
// the model itself, so they are reported here instead of rejected on insert.
func (w *Workflow) Validate() []Diagnostic {
	diags := make([]Diagnostic, 0)

	if w.StartStep != "" && !w.steps.Has(w.StartStep) {
		diags = append(diags, Diagnostic{
			Code:     DiagCodeUnknownStartStep,
			Severity: SeverityError,
			Message:  fmt.Sprintf("unknown start step %q", w.StartStep),
			Path:     "$.start_step",
			Field:    "start_step",
		})
	}

	for _, step := range w.steps.Items() {
		if !w.Owns(step) {
			diags = append(diags, Diagnostic{
				Code:     DiagCodeOwnerMismatch,
				Severity: SeverityError,
				Message:  "step is not bound to this workflow",
				Path:     fmt.Sprintf("$.steps.%s", step.Name),
				Name:     step.Name,
			})
		}
		for i, name := range step.AllowedTransitions {
			if w.transitions.Has(name) {
				continue
			}
			diags = append(diags, Diagnostic{
				Code:     DiagCodeDanglingTransition,
				Severity: SeverityError,
				Message:  fmt.Sprintf("step allows unknown transition %q", name),
				Path:     fmt.Sprintf("$.steps.%s.allowed_transitions[%d]", step.Name, i),
				Name:     step.Name,
				Field:    "allowed_transitions",
			})
		}
	}

	for _, tr := range w.transitions.Items() {
		path := fmt.Sprintf("$.transitions.%s", tr.Name)
		if !w.Owns(tr) {
			diags = append(diags, Diagnostic{
				Code:     DiagCodeOwnerMismatch,
				Severity: SeverityError,
				Message:  "transition is not bound to this workflow",
				Path:     path,
				Name:     tr.Name,
			})
		}
		if tr.StepTo != "" && !w.steps.Has(tr.StepTo) {
			diags = append(diags, Diagnostic{
				Code:     DiagCodeUnknownStepTo,
				Severity: SeverityError,
				Message:  fmt.Sprintf("transition targets unknown step %q", tr.StepTo),
				Path:     path + ".step_to",
				Name:     tr.Name,
				Field:    "step_to",
			})
		}
		if tr.TransitionDefinition != "" && !w.definitions.Has(tr.TransitionDefinition) {
			diags = append(diags, Diagnostic{
				Code:     DiagCodeUnknownDefinition,
				Severity: SeverityError,
				Message:  fmt.Sprintf("transition references unknown definition %q", tr.TransitionDefinition),
				Path:     path + ".transition_definition",
				Name:     tr.Name,
				Field:    "transition_definition",
			})
		}
	}
	if w.steps.Len() > 0 && len(w.StartTransitions()) == 0 && w.StartStep == "" {
		diags = append(diags, Diagnostic{
			Code:     DiagCodeMissingStart,
			Severity: SeverityWarning,
			Message:  "workflow has neither a start step nor a start transition",
			Path:     "$.transitions",
		})
	}

	for _, def := range w.definitions.Items() {
		if err := def.Compile(); err != nil {
			diags = append(diags, Diagnostic{
				Code:     DiagCodeInvalidCondition,
				Severity: SeverityError,
				Message:  err.Error(),
				Path:     fmt.Sprintf("$.transition_definitions.%s.condition", def.Name),
				Name:     def.Name,
				Field:    "condition",
			})
		}
	}

	seen := map[string]string{}
	for _, attr := range w.attributes.Items() {
		if attr.PropertyPath == "" {
			continue
		}
		if first, dup := seen[attr.PropertyPath]; dup {
			diags = append(diags, Diagnostic{
				Code:     DiagCodeDuplicatePropPath,
				Severity: SeverityError,
				Message:  fmt.Sprintf("property path %q already bound to %s", attr.PropertyPath, first),
				Path:     fmt.Sprintf("$.attributes.%s.property_path", attr.Name),
				Name:     attr.Name,
				Field:    "property_path",
			})
			continue
		}
		seen[attr.PropertyPath] = attr.Name
	}

	sortDiagnostics(diags)
	return diags
}

func sortDiagnostics(diags []Diagnostic) {
	sort.Slice(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})
}
