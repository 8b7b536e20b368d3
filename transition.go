package flowchart

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Transition is a directed action between steps, optionally bound to a TransitionDefinition.
type Transition struct {
	Name                 string         `json:"name" yaml:"name" mapstructure:"name"`
	Label                string         `json:"label" yaml:"label" mapstructure:"label"`
	IsStart              bool           `json:"is_start" yaml:"is_start" mapstructure:"is_start"`
	StepTo               string         `json:"step_to,omitempty" yaml:"step_to,omitempty" mapstructure:"step_to"`
	TransitionDefinition string         `json:"transition_definition,omitempty" yaml:"transition_definition,omitempty" mapstructure:"transition_definition"`
	Message              string         `json:"message,omitempty" yaml:"message,omitempty" mapstructure:"message"`
	IsHidden             bool           `json:"is_hidden,omitempty" yaml:"is_hidden,omitempty" mapstructure:"is_hidden"`
	IsUnavailableHidden  bool           `json:"is_unavailable_hidden,omitempty" yaml:"is_unavailable_hidden,omitempty" mapstructure:"is_unavailable_hidden"`
	FrontendOptions      map[string]any `json:"frontend_options,omitempty" yaml:"frontend_options,omitempty" mapstructure:"frontend_options"`
	FormOptions          map[string]any `json:"form_options,omitempty" yaml:"form_options,omitempty" mapstructure:"form_options"`
	IsClone              bool           `json:"_is_clone,omitempty" yaml:"_is_clone,omitempty" mapstructure:"_is_clone"`

	workflow Handle
}

func (t *Transition) EntityName() string { return t.Name }

func (t *Transition) setEntityName(name string) { t.Name = name }

func (t *Transition) Attributes() map[string]any { return attributesOf(t) }

// Workflow returns the handle of the owning workflow, empty while unowned.
func (t *Transition) Workflow() Handle { return t.workflow }

func (t *Transition) bindWorkflow(h Handle) { t.workflow = h }

func (t *Transition) copy() (*Transition, error) {
	cp := *t
	var err error
	if cp.FrontendOptions, err = deepCopyMap(t.FrontendOptions); err != nil {
		return nil, err
	}
	if cp.FormOptions, err = deepCopyMap(t.FormOptions); err != nil {
		return nil, err
	}
	cp.workflow = ""
	return &cp, nil
}

// TransitionDefinition holds reusable condition and action configuration.
type TransitionDefinition struct {
	Name          string         `json:"name" yaml:"name" mapstructure:"name"`
	Condition     string         `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
	PreConditions map[string]any `json:"pre_conditions,omitempty" yaml:"pre_conditions,omitempty" mapstructure:"pre_conditions"`
	Conditions    map[string]any `json:"conditions,omitempty" yaml:"conditions,omitempty" mapstructure:"conditions"`
	InitActions   []any          `json:"init_actions,omitempty" yaml:"init_actions,omitempty" mapstructure:"init_actions"`
	PostActions   []any          `json:"post_actions,omitempty" yaml:"post_actions,omitempty" mapstructure:"post_actions"`

	program *vm.Program
	source  string
}

func (d *TransitionDefinition) EntityName() string { return d.Name }

func (d *TransitionDefinition) setEntityName(name string) { d.Name = name }

func (d *TransitionDefinition) Attributes() map[string]any { return attributesOf(d) }

// Compile parses Condition as a boolean expression. An empty condition always allows.
func (d *TransitionDefinition) Compile() error {
	src := strings.TrimSpace(d.Condition)
	if src == "" {
		d.program, d.source = nil, ""
		return nil
	}
	if d.program != nil && d.source == src {
		return nil
	}
	program, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return validationError(fmt.Sprintf("invalid condition for %s: %v", d.Name, err), map[string]any{
			"transition_definition": d.Name,
			"condition":             src,
		})
	}
	d.program, d.source = program, src
	return nil
}

// Allows evaluates Condition against env.
func (d *TransitionDefinition) Allows(env map[string]any) (bool, error) {
	if err := d.Compile(); err != nil {
		return false, err
	}
	if d.program == nil {
		return true, nil
	}
	out, err := expr.Run(d.program, env)
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}

// copy is shallow: option trees are shared with the source.
func (d *TransitionDefinition) copy() *TransitionDefinition {
	cp := *d
	cp.program, cp.source = nil, ""
	return &cp
}
