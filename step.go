package flowchart

// Step is a node of the workflow diagram.
type Step struct {
	Name               string    `json:"name" yaml:"name" mapstructure:"name"`
	Label              string    `json:"label" yaml:"label" mapstructure:"label"`
	Order              int       `json:"order,omitempty" yaml:"order,omitempty" mapstructure:"order"`
	IsFinal            bool      `json:"is_final,omitempty" yaml:"is_final,omitempty" mapstructure:"is_final"`
	Position           *Position `json:"position,omitempty" yaml:"position,omitempty" mapstructure:"-"`
	AllowedTransitions []string  `json:"allowed_transitions" yaml:"allowed_transitions" mapstructure:"allowed_transitions"`
	IsClone            bool      `json:"_is_clone,omitempty" yaml:"_is_clone,omitempty" mapstructure:"_is_clone"`

	workflow Handle
}

func (s *Step) EntityName() string { return s.Name }

func (s *Step) setEntityName(name string) { s.Name = name }

func (s *Step) Attributes() map[string]any {
	attrs := attributesOf(s)
	if s.Position != nil {
		attrs["position"] = []float64{s.Position.X(), s.Position.Y()}
	} else {
		attrs["position"] = nil
	}
	return attrs
}

// Workflow returns the handle of the owning workflow, empty while unowned.
func (s *Step) Workflow() Handle { return s.workflow }

func (s *Step) bindWorkflow(h Handle) { s.workflow = h }

// HasPosition reports whether the step was placed on the canvas.
func (s *Step) HasPosition() bool { return s.Position != nil }

// Allows reports whether transition is listed in AllowedTransitions.
func (s *Step) Allows(transition string) bool {
	for _, name := range s.AllowedTransitions {
		if name == transition {
			return true
		}
	}
	return false
}

func (s *Step) copy() *Step {
	cp := *s
	cp.AllowedTransitions = copyStrings(s.AllowedTransitions)
	if s.Position != nil {
		pos := *s.Position
		cp.Position = &pos
	}
	cp.workflow = ""
	return &cp
}
