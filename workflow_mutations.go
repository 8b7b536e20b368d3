package flowchart

// MoveStep writes a new box position back into the step and notifies observers.
func (w *Workflow) MoveStep(name string, pos Position) error {
	return w.steps.Update(name, func(s *Step) {
		p := pos
		s.Position = &p
	})
}

// RemoveStep deletes the step. Transitions targeting it lose their step_to.
func (w *Workflow) RemoveStep(name string) (*Step, error) {
	step, err := w.steps.Remove(name)
	if err != nil {
		return nil, err
	}
	if w.StartStep == name {
		w.StartStep = ""
	}
	for _, tr := range w.transitions.Filter(func(t *Transition) bool { return t.StepTo == name }) {
		if err := w.transitions.Update(tr.Name, func(t *Transition) { t.StepTo = "" }); err != nil {
			return step, err
		}
	}
	return step, nil
}

// RemoveTransition deletes the transition and scrubs it from every step's allowed list.
func (w *Workflow) RemoveTransition(name string) (*Transition, error) {
	tr, err := w.transitions.Remove(name)
	if err != nil {
		return nil, err
	}
	for _, step := range w.SourceSteps(name) {
		err := w.steps.Update(step.Name, func(s *Step) {
			s.AllowedTransitions = withoutName(s.AllowedTransitions, name)
		})
		if err != nil {
			return tr, err
		}
	}
	return tr, nil
}

// RemoveTransitionDefinition deletes the definition and clears transition references to it.
func (w *Workflow) RemoveTransitionDefinition(name string) (*TransitionDefinition, error) {
	def, err := w.definitions.Remove(name)
	if err != nil {
		return nil, err
	}
	for _, tr := range w.transitions.Where(map[string]any{"transition_definition": name}) {
		if err := w.transitions.Update(tr.Name, func(t *Transition) { t.TransitionDefinition = "" }); err != nil {
			return def, err
		}
	}
	return def, nil
}

// RemoveAttribute deletes the attribute.
func (w *Workflow) RemoveAttribute(name string) (*Attribute, error) {
	return w.attributes.Remove(name)
}

func withoutName(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
