package render

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-flowchart"
)

const ErrCodeUnknownElement = "RENDER_UNKNOWN_ELEMENT"

// ErrUnknownElement marks a canvas element that is not mounted for any step.
var ErrUnknownElement = errors.New("element is not bound to a step", errors.CategoryBadInput).
	WithTextCode(ErrCodeUnknownElement)

type connKey struct {
	step       string
	transition string
}

type drawn struct {
	conn Connection
	to   string
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the bridge logger. Defaults to the workflow logger.
func WithLogger(logger flowchart.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// WithConnectionConfig overrides DefaultConnectionConfig.
func WithConnectionConfig(cfg ConnectionConfig) Option {
	return func(b *Bridge) { b.config = cfg }
}

// Bridge mirrors workflow container events onto a Canvas.
//
// A Bridge is driven by the workflow's goroutine and is not safe for concurrent use.
type Bridge struct {
	workflow *flowchart.Workflow
	canvas   Canvas
	logger   flowchart.Logger
	config   ConnectionConfig

	boxes map[string]Element
	conns map[connKey]drawn
	subs  []flowchart.Subscription
}

// NewBridge mounts every step of w, draws every connection and starts following
// container changes.
func NewBridge(w *flowchart.Workflow, canvas Canvas, opts ...Option) (*Bridge, error) {
	if w == nil {
		return nil, invalidArgument("workflow is required")
	}
	if canvas == nil {
		return nil, invalidArgument("canvas is required")
	}
	b := &Bridge{
		workflow: w,
		canvas:   canvas,
		config:   DefaultConnectionConfig,
		boxes:    make(map[string]Element),
		conns:    make(map[connKey]drawn),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.logger == nil {
		b.logger = w.Logger()
	}

	for _, step := range w.Steps().Items() {
		if err := b.mount(step); err != nil {
			_ = b.Close()
			return nil, err
		}
	}
	for _, step := range w.Steps().Items() {
		b.connectStep(step)
	}

	b.subs = append(b.subs,
		w.Steps().Subscribe(flowchart.ObserverFuncs[*flowchart.Step]{
			Added:   b.stepAdded,
			Removed: b.stepRemoved,
			Changed: b.stepChanged,
		}),
		w.Transitions().Subscribe(flowchart.ObserverFuncs[*flowchart.Transition]{
			Added:   b.transitionAdded,
			Removed: b.transitionRemoved,
			Changed: b.transitionChanged,
		}),
	)
	return b, nil
}

// Element returns the box mounted for step.
func (b *Bridge) Element(step string) (Element, bool) {
	el, ok := b.boxes[step]
	return el, ok
}

// Connection returns the connection drawn for transition out of step.
func (b *Bridge) Connection(step, transition string) (Connection, bool) {
	d, ok := b.conns[connKey{step: step, transition: transition}]
	return d.conn, ok
}

// FindStepByElement returns the step whose box is el.
func (b *Bridge) FindStepByElement(el Element) (*flowchart.Step, bool) {
	for _, step := range b.workflow.Steps().Items() {
		if mounted, ok := b.boxes[step.Name]; ok && mounted == el {
			return step, true
		}
	}
	return nil, false
}

// DragBox records a box drop: the new position is written back to the step, which
// re-renders its box and connections through the change notification.
func (b *Bridge) DragBox(el Element, pos flowchart.Position) error {
	step, ok := b.FindStepByElement(el)
	if !ok {
		return ErrUnknownElement.Clone().WithMetadata(map[string]any{"element": string(el)})
	}
	return b.workflow.MoveStep(step.Name, pos)
}

// Close stops following the workflow and releases every connection and box.
func (b *Bridge) Close() error {
	for _, sub := range b.subs {
		sub.Unsubscribe()
	}
	b.subs = nil

	var errs error
	for _, key := range b.sortedConnKeys(func(connKey, drawn) bool { return true }) {
		if err := b.disconnect(key); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	names := make([]string, 0, len(b.boxes))
	for name := range b.boxes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := b.detach(name); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return errs
}

func (b *Bridge) stepAdded(step *flowchart.Step) {
	if err := b.mount(step); err != nil {
		b.logger.Error("mount box for step %s: %v", step.Name, err)
		return
	}
	b.connectStep(step)
	// transitions targeting the new step could not be drawn before it existed
	for _, source := range b.workflow.Steps().Items() {
		for _, tr := range b.workflow.AllowedTransitions(source) {
			if tr.StepTo == step.Name {
				b.connect(source, tr)
			}
		}
	}
}

func (b *Bridge) stepRemoved(step *flowchart.Step) {
	keys := b.sortedConnKeys(func(k connKey, d drawn) bool {
		return k.step == step.Name || d.to == step.Name
	})
	for _, key := range keys {
		if err := b.disconnect(key); err != nil {
			b.logger.Error("disconnect %s from %s: %v", key.transition, key.step, err)
		}
	}
	if err := b.detach(step.Name); err != nil {
		b.logger.Error("detach box for step %s: %v", step.Name, err)
	}
}

func (b *Bridge) stepChanged(step *flowchart.Step) {
	el, ok := b.boxes[step.Name]
	if !ok {
		b.stepAdded(step)
		return
	}
	if err := b.canvas.RenderBox(el, step); err != nil {
		b.logger.Error("render box for step %s: %v", step.Name, err)
	}
	b.redrawStep(step)
}

func (b *Bridge) transitionAdded(tr *flowchart.Transition) {
	for _, step := range b.workflow.SourceSteps(tr.Name) {
		b.connect(step, tr)
	}
}

func (b *Bridge) transitionRemoved(tr *flowchart.Transition) {
	for _, key := range b.sortedConnKeys(func(k connKey, _ drawn) bool { return k.transition == tr.Name }) {
		if err := b.disconnect(key); err != nil {
			b.logger.Error("disconnect %s from %s: %v", key.transition, key.step, err)
		}
	}
}

func (b *Bridge) transitionChanged(tr *flowchart.Transition) {
	b.transitionRemoved(tr)
	b.transitionAdded(tr)
}

func (b *Bridge) mount(step *flowchart.Step) error {
	if _, exists := b.boxes[step.Name]; exists {
		return nil
	}
	el, err := b.canvas.MountBox(step)
	if err != nil {
		return errors.Wrap(err, errors.CategoryExternal, fmt.Sprintf("mount box for step %s", step.Name))
	}
	b.boxes[step.Name] = el
	return nil
}

func (b *Bridge) detach(name string) error {
	el, ok := b.boxes[name]
	if !ok {
		return nil
	}
	delete(b.boxes, name)
	if err := b.canvas.DetachBox(el); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, fmt.Sprintf("detach box for step %s", name))
	}
	return nil
}

func (b *Bridge) connectStep(step *flowchart.Step) {
	for _, tr := range b.workflow.AllowedTransitions(step) {
		b.connect(step, tr)
	}
}

// redrawStep drops the step's outgoing connections and draws the current ones.
func (b *Bridge) redrawStep(step *flowchart.Step) {
	for _, key := range b.sortedConnKeys(func(k connKey, _ drawn) bool { return k.step == step.Name }) {
		if err := b.disconnect(key); err != nil {
			b.logger.Error("disconnect %s from %s: %v", key.transition, key.step, err)
		}
	}
	b.connectStep(step)
}

func (b *Bridge) connect(step *flowchart.Step, tr *flowchart.Transition) {
	key := connKey{step: step.Name, transition: tr.Name}
	if _, exists := b.conns[key]; exists {
		return
	}
	from, ok := b.boxes[step.Name]
	if !ok {
		return
	}
	to, ok := b.boxes[tr.StepTo]
	if !ok {
		b.logger.Debug("transition %s has no target box (step_to %q)", tr.Name, tr.StepTo)
		return
	}
	cfg := b.config
	if cfg.Label == "" {
		cfg.Label = tr.Label
	}
	conn, err := b.canvas.Connect(from, to, tr, cfg)
	if err != nil {
		b.logger.Error("connect %s from %s to %s: %v", tr.Name, step.Name, tr.StepTo, err)
		return
	}
	b.conns[key] = drawn{conn: conn, to: tr.StepTo}
}

func (b *Bridge) disconnect(key connKey) error {
	d, ok := b.conns[key]
	if !ok {
		return nil
	}
	delete(b.conns, key)
	if err := b.canvas.Disconnect(d.conn); err != nil {
		return errors.Wrap(err, errors.CategoryExternal, fmt.Sprintf("disconnect %s from %s", key.transition, key.step))
	}
	return nil
}

func (b *Bridge) sortedConnKeys(match func(connKey, drawn) bool) []connKey {
	keys := make([]connKey, 0, len(b.conns))
	for k, d := range b.conns {
		if match(k, d) {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].step != keys[j].step {
			return keys[i].step < keys[j].step
		}
		return keys[i].transition < keys[j].transition
	})
	return keys
}

func invalidArgument(message string) *errors.Error {
	err := flowchart.ErrValidation.Clone()
	err.Message = message
	return err
}
