package flowchart

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-flowchart/entityfield"
)

const (
	// DefaultEntityAttribute is the root property path segment naming the workflow entity.
	DefaultEntityAttribute = "entity"
	// DefaultPositionIncrement offsets cloned step boxes so they do not overlap the source.
	DefaultPositionIncrement = 35
)

// Workflow is the aggregate root of one flowchart: it exclusively owns the step,
// transition, transition definition and attribute containers.
//
// A Workflow is driven from a single goroutine; none of its operations are safe
// for concurrent use.
type Workflow struct {
	Name                string
	Label               string
	Entity              string
	EntityAttribute     string
	StartStep           string
	StepsDisplayOrdered bool

	handle      Handle
	steps       *Collection[*Step]
	transitions *Collection[*Transition]
	definitions *Collection[*TransitionDefinition]
	attributes  *AttributeCollection

	names             *NameRegistry
	idGenerator       IDGenerator
	translator        Translator
	logger            Logger
	positionIncrement float64

	fields          *entityfield.Resolver
	fieldsListeners []func()
	systemEntities  []entityfield.EntityInfo

	subs []Subscription
}

// Option configures a Workflow at construction.
type Option func(*Workflow)

// WithEntity sets the entity class the workflow operates on.
func WithEntity(entity string) Option {
	return func(w *Workflow) { w.Entity = entity }
}

// WithEntityAttribute overrides the root property path segment.
func WithEntityAttribute(attr string) Option {
	return func(w *Workflow) {
		if attr != "" {
			w.EntityAttribute = attr
		}
	}
}

// WithLabel sets the workflow label.
func WithLabel(label string) Option {
	return func(w *Workflow) { w.Label = label }
}

// WithSteps supplies a preloaded step container.
func WithSteps(c *Collection[*Step]) Option {
	return func(w *Workflow) { w.steps = c }
}

// WithTransitions supplies a preloaded transition container.
func WithTransitions(c *Collection[*Transition]) Option {
	return func(w *Workflow) { w.transitions = c }
}

// WithTransitionDefinitions supplies a preloaded transition definition container.
func WithTransitionDefinitions(c *Collection[*TransitionDefinition]) Option {
	return func(w *Workflow) { w.definitions = c }
}

// WithAttributes supplies a preloaded attribute container.
func WithAttributes(c *AttributeCollection) Option {
	return func(w *Workflow) { w.attributes = c }
}

// WithLogger sets the logger shared with the owned containers.
func WithLogger(logger Logger) Option {
	return func(w *Workflow) { w.logger = logger }
}

// WithTranslator sets the translator used for clone labels.
func WithTranslator(t Translator) Option {
	return func(w *Workflow) { w.translator = t }
}

// WithIDGenerator sets the suffix generator used for clone names.
func WithIDGenerator(gen IDGenerator) Option {
	return func(w *Workflow) { w.idGenerator = gen }
}

// WithPositionIncrement overrides the clone box offset.
func WithPositionIncrement(px float64) Option {
	return func(w *Workflow) { w.positionIncrement = px }
}

// NewWorkflow builds a workflow, creating any container not supplied through options
// and binding every preloaded step and transition to the new workflow.
func NewWorkflow(name string, opts ...Option) (*Workflow, error) {
	w := &Workflow{
		Name:              name,
		EntityAttribute:   DefaultEntityAttribute,
		handle:            Handle(uuid.NewString()),
		positionIncrement: DefaultPositionIncrement,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.logger = scopeLogger(w.logger, map[string]any{"workflow": name})
	w.translator = normalizeTranslator(w.translator)
	w.names = NewNameRegistry(w.idGenerator)

	if err := w.initCollections(); err != nil {
		return nil, err
	}

	for _, step := range w.steps.Items() {
		step.bindWorkflow(w.handle)
	}
	for _, tr := range w.transitions.Items() {
		tr.bindWorkflow(w.handle)
	}
	w.subs = append(w.subs,
		w.steps.Subscribe(ObserverFuncs[*Step]{Added: w.bindStep}),
		w.transitions.Subscribe(ObserverFuncs[*Transition]{Added: w.bindTransition}),
	)
	return w, nil
}

func (w *Workflow) initCollections() error {
	var err error
	if w.steps == nil {
		if w.steps, err = NewCollection[*Step](KindStep); err != nil {
			return err
		}
	}
	if w.transitions == nil {
		if w.transitions, err = NewCollection[*Transition](KindTransition); err != nil {
			return err
		}
	}
	if w.definitions == nil {
		if w.definitions, err = NewCollection[*TransitionDefinition](KindTransitionDefinition); err != nil {
			return err
		}
	}
	if w.attributes == nil {
		if w.attributes, err = NewAttributeCollection(); err != nil {
			return err
		}
	}
	if w.steps.Kind() != KindStep || w.transitions.Kind() != KindTransition ||
		w.definitions.Kind() != KindTransitionDefinition || w.attributes.Kind() != KindAttribute {
		return validationError("workflow containers were built for the wrong entity kind", nil)
	}

	for _, claim := range []func(Handle) error{
		w.steps.claim, w.transitions.claim, w.definitions.claim, w.attributes.claim,
	} {
		if err := claim(w.handle); err != nil {
			return err
		}
	}

	w.steps.SetLogger(w.logger)
	w.transitions.SetLogger(w.logger)
	w.definitions.SetLogger(w.logger)
	w.attributes.SetLogger(w.logger)
	return nil
}

func (w *Workflow) bindStep(step *Step)           { step.bindWorkflow(w.handle) }
func (w *Workflow) bindTransition(tr *Transition) { tr.bindWorkflow(w.handle) }

// Handle identifies this workflow as owner of its entities.
func (w *Workflow) Handle() Handle { return w.handle }

// Owns reports whether e carries this workflow's handle.
func (w *Workflow) Owns(e Entity) bool {
	switch v := e.(type) {
	case *Step:
		return v != nil && v.workflow == w.handle
	case *Transition:
		return v != nil && v.workflow == w.handle
	}
	return false
}

// Close detaches the workflow's own container listeners.
func (w *Workflow) Close() {
	for _, sub := range w.subs {
		sub.Unsubscribe()
	}
	w.subs = nil
}

func (w *Workflow) Steps() *Collection[*Step]                                 { return w.steps }
func (w *Workflow) Transitions() *Collection[*Transition]                     { return w.transitions }
func (w *Workflow) TransitionDefinitions() *Collection[*TransitionDefinition] { return w.definitions }
func (w *Workflow) Attributes() *AttributeCollection                          { return w.attributes }

// Logger returns the workflow logger.
func (w *Workflow) Logger() Logger { return w.logger }

func (w *Workflow) StepByName(name string) (*Step, bool) { return w.steps.Get(name) }

func (w *Workflow) TransitionByName(name string) (*Transition, bool) {
	return w.transitions.Get(name)
}

func (w *Workflow) TransitionDefinitionByName(name string) (*TransitionDefinition, bool) {
	return w.definitions.Get(name)
}

func (w *Workflow) AttributeByName(name string) (*Attribute, bool) { return w.attributes.Get(name) }

func (w *Workflow) AttributeByPropertyPath(path string) (*Attribute, bool) {
	return w.attributes.FindByPropertyPath(path)
}

// StartTransitions returns transitions flagged is_start, in container order.
func (w *Workflow) StartTransitions() []*Transition {
	return w.transitions.Where(map[string]any{"is_start": true})
}

// AllowedTransitions resolves step's allowed transition names, skipping dangling ones.
func (w *Workflow) AllowedTransitions(step *Step) []*Transition {
	if step == nil {
		return nil
	}
	out := make([]*Transition, 0, len(step.AllowedTransitions))
	for _, name := range step.AllowedTransitions {
		tr, ok := w.transitions.Get(name)
		if !ok {
			w.logger.Debug("step %s allows unknown transition %s", step.Name, name)
			continue
		}
		out = append(out, tr)
	}
	return out
}

// SourceSteps returns the steps that allow transition, in container order.
func (w *Workflow) SourceSteps(transition string) []*Step {
	return w.steps.Filter(func(s *Step) bool { return s.Allows(transition) })
}

// GetOrAddAttributeByPropertyPath returns the attribute bound to path, creating it
// (named after path with dots replaced by underscores) when absent.
func (w *Workflow) GetOrAddAttributeByPropertyPath(path string) (*Attribute, error) {
	if path == "" {
		return nil, validationError("property path is required", nil)
	}
	if attr, ok := w.attributes.FindByPropertyPath(path); ok {
		return attr, nil
	}
	attr := &Attribute{
		Name:         AttributeNameForPath(path),
		PropertyPath: path,
	}
	if err := w.attributes.Add(attr); err != nil {
		return nil, err
	}
	return attr, nil
}

func (w *Workflow) SystemEntities() []entityfield.EntityInfo { return w.systemEntities }

func (w *Workflow) SetSystemEntities(entities []entityfield.EntityInfo) {
	w.systemEntities = entities
}
