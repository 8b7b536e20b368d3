package flowchart

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is the serialized form of a workflow, as stored in YAML or JSON files.
type Definition struct {
	Name                  string                  `json:"name" yaml:"name"`
	Label                 string                  `json:"label,omitempty" yaml:"label,omitempty"`
	Entity                string                  `json:"entity" yaml:"entity"`
	EntityAttribute       string                  `json:"entity_attribute,omitempty" yaml:"entity_attribute,omitempty"`
	StartStep             string                  `json:"start_step,omitempty" yaml:"start_step,omitempty"`
	StepsDisplayOrdered   bool                    `json:"steps_display_ordered,omitempty" yaml:"steps_display_ordered,omitempty"`
	Steps                 []*Step                 `json:"steps,omitempty" yaml:"steps,omitempty"`
	Transitions           []*Transition           `json:"transitions,omitempty" yaml:"transitions,omitempty"`
	TransitionDefinitions []*TransitionDefinition `json:"transition_definitions,omitempty" yaml:"transition_definitions,omitempty"`
	Attributes            []*Attribute            `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// ParseDefinition decodes a YAML or JSON workflow definition.
func ParseDefinition(data []byte) (*Definition, error) {
	def := &Definition{}
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, validationError(fmt.Sprintf("invalid workflow definition: %v", err), nil)
	}
	if def.Name == "" {
		return nil, validationError("workflow definition name is required", nil)
	}
	return def, nil
}

// MarshalDefinition encodes def as YAML.
func MarshalDefinition(def *Definition) ([]byte, error) {
	if def == nil {
		return nil, validationError("workflow definition is required", nil)
	}
	out, err := yaml.Marshal(def)
	if err != nil {
		return nil, validationError(fmt.Sprintf("encode workflow definition: %v", err), nil)
	}
	return out, nil
}

// NewWorkflowFromDefinition builds a workflow whose containers are preloaded from def.
// Entities are copied, so def can be reused.
func NewWorkflowFromDefinition(def *Definition, opts ...Option) (*Workflow, error) {
	if def == nil {
		return nil, validationError("workflow definition is required", nil)
	}

	steps := make([]*Step, 0, len(def.Steps))
	for _, s := range def.Steps {
		if s != nil {
			steps = append(steps, s.copy())
		}
	}
	transitions := make([]*Transition, 0, len(def.Transitions))
	for _, t := range def.Transitions {
		if t == nil {
			continue
		}
		cp, err := t.copy()
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, cp)
	}
	definitions := make([]*TransitionDefinition, 0, len(def.TransitionDefinitions))
	for _, d := range def.TransitionDefinitions {
		if d != nil {
			definitions = append(definitions, d.copy())
		}
	}
	attributes := make([]*Attribute, 0, len(def.Attributes))
	for _, a := range def.Attributes {
		if a == nil {
			continue
		}
		cp, err := a.copy()
		if err != nil {
			return nil, err
		}
		attributes = append(attributes, cp)
	}

	stepC, err := NewCollection(KindStep, steps...)
	if err != nil {
		return nil, err
	}
	trC, err := NewCollection(KindTransition, transitions...)
	if err != nil {
		return nil, err
	}
	defC, err := NewCollection(KindTransitionDefinition, definitions...)
	if err != nil {
		return nil, err
	}
	attrC, err := NewAttributeCollection(attributes...)
	if err != nil {
		return nil, err
	}

	base := []Option{
		WithEntity(def.Entity),
		WithEntityAttribute(def.EntityAttribute),
		WithLabel(def.Label),
		WithSteps(stepC),
		WithTransitions(trC),
		WithTransitionDefinitions(defC),
		WithAttributes(attrC),
	}
	w, err := NewWorkflow(def.Name, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	w.StartStep = def.StartStep
	w.StepsDisplayOrdered = def.StepsDisplayOrdered
	return w, nil
}

// Definition exports the current workflow state. Entities are copied.
func (w *Workflow) Definition() (*Definition, error) {
	def := &Definition{
		Name:                w.Name,
		Label:               w.Label,
		Entity:              w.Entity,
		EntityAttribute:     w.EntityAttribute,
		StartStep:           w.StartStep,
		StepsDisplayOrdered: w.StepsDisplayOrdered,
	}
	for _, s := range w.steps.Items() {
		def.Steps = append(def.Steps, s.copy())
	}
	for _, t := range w.transitions.Items() {
		cp, err := t.copy()
		if err != nil {
			return nil, err
		}
		def.Transitions = append(def.Transitions, cp)
	}
	for _, d := range w.definitions.Items() {
		def.TransitionDefinitions = append(def.TransitionDefinitions, d.copy())
	}
	for _, a := range w.attributes.Items() {
		cp, err := a.copy()
		if err != nil {
			return nil, err
		}
		def.Attributes = append(def.Attributes, cp)
	}
	return def, nil
}
