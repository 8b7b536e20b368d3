package flowchart

// cloneTx records inserts made while building a clone so a later failure can undo them.
type cloneTx struct {
	undo []func()
}

func (tx *cloneTx) onRollback(fn func()) {
	tx.undo = append(tx.undo, fn)
}

func (tx *cloneTx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// CloneTransitionDefinition copies the named definition under a fresh name and inserts it.
func (w *Workflow) CloneTransitionDefinition(name string) (*TransitionDefinition, error) {
	def, err := w.definitions.MustGet(name)
	if err != nil {
		return nil, err
	}
	return w.CloneTransitionDefinitionOf(def)
}

// CloneTransitionDefinitionOf copies def under a fresh name and inserts it. The
// copy is shallow; def is not mutated.
func (w *Workflow) CloneTransitionDefinitionOf(def *TransitionDefinition) (*TransitionDefinition, error) {
	tx := &cloneTx{}
	cloned, err := w.cloneDefinition(tx, def)
	if err != nil {
		tx.rollback()
		return nil, err
	}
	return cloned, nil
}

func (w *Workflow) cloneDefinition(tx *cloneTx, def *TransitionDefinition) (*TransitionDefinition, error) {
	if def == nil {
		return nil, validationError("transition definition is required", nil)
	}
	cloned := def.copy()
	name, err := w.names.Next(def.Name, w.definitions.Has)
	if err != nil {
		return nil, err
	}
	cloned.Name = name
	if err := w.definitions.Add(cloned); err != nil {
		return nil, err
	}
	tx.onRollback(func() { w.discard(KindTransitionDefinition, cloned.Name) })
	return cloned, nil
}

// CloneTransition clones the named transition. With skipInsert the clone is marked
// IsClone and left out of the transition container; the caller owns it.
func (w *Workflow) CloneTransition(name string, skipInsert bool) (*Transition, error) {
	tr, err := w.transitions.MustGet(name)
	if err != nil {
		return nil, err
	}
	return w.CloneTransitionOf(tr, skipInsert)
}

// CloneTransitionOf clones tr together with its transition definition, which is
// never shared between the clone and its source.
func (w *Workflow) CloneTransitionOf(tr *Transition, skipInsert bool) (*Transition, error) {
	if tr == nil {
		return nil, validationError("transition is required", nil)
	}
	if err := w.checkTransitionCloneable(tr); err != nil {
		return nil, err
	}
	tx := &cloneTx{}
	cloned, err := w.cloneTransition(tx, tr, skipInsert)
	if err != nil {
		tx.rollback()
		return nil, err
	}
	w.logger.Debug("cloned transition %s as %s", tr.Name, cloned.Name)
	return cloned, nil
}

func (w *Workflow) checkTransitionCloneable(tr *Transition) error {
	if tr.TransitionDefinition == "" {
		return nil
	}
	if _, ok := w.definitions.Get(tr.TransitionDefinition); !ok {
		return notFound(KindTransitionDefinition, tr.TransitionDefinition)
	}
	return nil
}

func (w *Workflow) cloneTransition(tx *cloneTx, tr *Transition, skipInsert bool) (*Transition, error) {
	cloned, err := tr.copy()
	if err != nil {
		return nil, err
	}
	name, err := w.names.Next(tr.Name, w.transitions.Has)
	if err != nil {
		return nil, err
	}
	cloned.Name = name
	cloned.Label = w.copyLabel(tr.Label)
	cloned.IsClone = skipInsert

	if tr.TransitionDefinition != "" {
		def, err := w.definitions.MustGet(tr.TransitionDefinition)
		if err != nil {
			return nil, err
		}
		clonedDef, err := w.cloneDefinition(tx, def)
		if err != nil {
			return nil, err
		}
		cloned.TransitionDefinition = clonedDef.Name
	}

	cloned.bindWorkflow(w.handle)
	if skipInsert {
		return cloned, nil
	}
	if err := w.transitions.Add(cloned); err != nil {
		return nil, err
	}
	tx.onRollback(func() { w.discard(KindTransition, cloned.Name) })
	return cloned, nil
}

// CloneStep clones the named step. Every transition the step allows is cloned and
// inserted as well, and the clone allows those copies in the same order. With
// skipInsert the step clone itself is marked IsClone and not inserted.
func (w *Workflow) CloneStep(name string, skipInsert bool) (*Step, error) {
	step, err := w.steps.MustGet(name)
	if err != nil {
		return nil, err
	}
	return w.CloneStepOf(step, skipInsert)
}

// CloneStepOf clones step. See CloneStep.
func (w *Workflow) CloneStepOf(step *Step, skipInsert bool) (*Step, error) {
	if step == nil {
		return nil, validationError("step is required", nil)
	}
	allowed := w.AllowedTransitions(step)
	for _, tr := range allowed {
		if err := w.checkTransitionCloneable(tr); err != nil {
			return nil, err
		}
	}

	tx := &cloneTx{}
	clonedNames := make([]string, 0, len(allowed))
	for _, tr := range allowed {
		clonedTr, err := w.cloneTransition(tx, tr, false)
		if err != nil {
			tx.rollback()
			return nil, err
		}
		clonedNames = append(clonedNames, clonedTr.Name)
	}

	cloned := step.copy()
	name, err := w.names.Next(step.Name, w.steps.Has)
	if err != nil {
		tx.rollback()
		return nil, err
	}
	cloned.Name = name
	cloned.Label = w.copyLabel(step.Label)
	cloned.AllowedTransitions = clonedNames
	cloned.IsClone = skipInsert
	if step.Position != nil {
		pos := step.Position.Offset(w.positionIncrement)
		cloned.Position = &pos
	}

	cloned.bindWorkflow(w.handle)
	if !skipInsert {
		if err := w.steps.Add(cloned); err != nil {
			tx.rollback()
			return nil, err
		}
	}
	w.logger.Debug("cloned step %s as %s with %d transitions", step.Name, cloned.Name, len(clonedNames))
	return cloned, nil
}

func (w *Workflow) copyLabel(label string) string {
	return w.translator.Translate(CopyOfKey) + " " + label
}

func (w *Workflow) discard(kind Kind, name string) {
	var err error
	switch kind {
	case KindTransition:
		_, err = w.transitions.Remove(name)
	case KindTransitionDefinition:
		_, err = w.definitions.Remove(name)
	}
	if err != nil {
		w.logger.Error("rollback of %s %s failed: %v", kind, name, err)
	}
}
