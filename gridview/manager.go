// Package gridview manages saved datagrid views: the view selector choices, the
// current selection and the save, save as, share and delete actions.
package gridview

import (
	"context"
	"sync"

	"github.com/goliatone/go-flowchart"
)

// Option configures a Manager.
type Option func(*Manager)

func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

func WithTranslator(t flowchart.Translator) Option {
	return func(m *Manager) { m.translator = t }
}

func WithLogger(l flowchart.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithChoices seeds the selector. Duplicate values are dropped.
func WithChoices(choices ...Choice) Option {
	return func(m *Manager) {
		for _, c := range choices {
			m.addChoice(c)
		}
	}
}

// WithViews seeds the known views. Each view is stamped with the grid name.
func WithViews(views ...View) Option {
	return func(m *Manager) { m.views = append(m.views, views...) }
}

func WithPermissions(p Permissions) Option {
	return func(m *Manager) { m.permissions = p }
}

// WithEnabled sets the initial selector state. Managers start enabled.
func WithEnabled(enabled bool) Option {
	return func(m *Manager) { m.enabled = enabled }
}

// Manager drives the view selector of one grid. The grid, store and notifier
// are never called while the manager lock is held.
type Manager struct {
	mu sync.Mutex

	grid        Grid
	store       Store
	notifier    Notifier
	translator  flowchart.Translator
	logger      flowchart.Logger
	choices     []Choice
	views       []View
	permissions Permissions
	enabled     bool
}

// NewManager builds a manager for grid.
func NewManager(grid Grid, opts ...Option) (*Manager, error) {
	if grid == nil {
		return nil, withMeta(ErrInvalidOptions, "collection is required", nil)
	}
	m := &Manager{
		grid:    grid,
		enabled: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.notifier == nil {
		m.notifier = nopNotifier{}
	}
	if m.translator == nil {
		m.translator = flowchart.IdentityTranslator
	}
	if m.logger == nil {
		m.logger = flowchart.NewFmtLogger(nil)
	}
	for i := range m.views {
		m.views[i].GridName = grid.Name()
	}
	return m, nil
}

// Load merges the views persisted for the grid into the known views and adds a
// choice for each of them.
func (m *Manager) Load(ctx context.Context) error {
	views, err := m.store.List(ctx, m.grid.Name())
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range views {
		if idx := m.viewIndex(v.Name); idx >= 0 {
			m.views[idx] = v
		} else {
			m.views = append(m.views, v)
		}
		m.addChoice(Choice{Label: v.Label, Value: v.Name})
	}
	return nil
}

func (m *Manager) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *Manager) Enable() {
	m.mu.Lock()
	m.enabled = true
	m.mu.Unlock()
}

func (m *Manager) Disable() {
	m.mu.Lock()
	m.enabled = false
	m.mu.Unlock()
}

// Choices returns the selector entries.
func (m *Manager) Choices() []Choice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Choice(nil), m.choices...)
}

// Views returns the known views.
func (m *Manager) Views() []View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]View(nil), m.views...)
}

// Current returns the view selected in the grid state.
func (m *Manager) Current() (View, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.currentIndex()
	if idx < 0 {
		return View{}, false
	}
	return m.views[idx], true
}

// CurrentLabel returns the label of the selected choice, or the translated
// "Please select view" prompt.
func (m *Manager) CurrentLabel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentLabel()
}

// Actions lists the toolbar actions. Nothing is offered while there are no choices.
func (m *Manager) Actions() []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.choices) == 0 {
		return nil
	}
	idx := m.currentIndex()
	hasView := idx >= 0
	share := false
	if hasView {
		switch m.views[idx].Type {
		case TypePrivate:
			share = m.permissions.Share
		case TypePublic:
			share = m.permissions.EditShared
		}
	}
	return []Action{
		{Name: ActionSave, Label: m.translator.Translate(LabelSave), Enabled: hasView && m.permissions.Edit},
		{Name: ActionSaveAs, Label: m.translator.Translate(LabelSaveAs), Enabled: m.permissions.Create},
		{Name: ActionShare, Label: m.translator.Translate(LabelShare), Enabled: share},
		{Name: ActionDelete, Label: m.translator.Translate(LabelDelete), Enabled: hasView && m.permissions.Delete},
	}
}

// ChangeView applies the named view on top of the grid's initial state and refetches.
// Selecting the already selected view is a no-op. A disabled selector refuses.
// The grid is called without holding the manager lock, so it may read the
// manager back while it re-renders.
func (m *Manager) ChangeView(ctx context.Context, name string) error {
	m.mu.Lock()
	enabled := m.enabled
	idx := m.viewIndex(name)
	var view View
	if idx >= 0 {
		view = m.views[idx]
	}
	m.mu.Unlock()

	if !enabled {
		return m.denied("change_view")
	}
	if name == m.grid.State().GridView {
		return nil
	}
	if idx < 0 {
		return withMeta(ErrViewNotFound, "", map[string]any{"name": name})
	}
	m.grid.UpdateState(mergeState(m.grid.InitialState(), view.ToGridState()))
	return m.grid.Fetch(ctx)
}

// Save stores the grid's current filters and sorters into the selected view.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	if !m.permissions.Edit {
		m.mu.Unlock()
		return m.denied(ActionSave)
	}
	idx, err := m.requireCurrent()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	state := m.grid.State()
	view := m.views[idx]
	view.Label = m.currentLabel()
	view.Filters = copyMap(state.Filters)
	view.Sorters = copyMap(state.Sorters)
	m.mu.Unlock()

	if err := m.store.Update(ctx, view); err != nil {
		return m.failed(ActionSave, err)
	}
	m.replaceView(view)
	m.notifier.Flash(FlashSuccess, m.translator.Translate(MsgViewUpdated))
	return nil
}

// SaveAs creates a private view from the grid state and selects it.
func (m *Manager) SaveAs(ctx context.Context, label string) (View, error) {
	m.mu.Lock()
	allowed := m.permissions.Create
	m.mu.Unlock()
	if !allowed {
		return View{}, m.denied(ActionSaveAs)
	}
	if label == "" {
		return View{}, withMeta(ErrInvalidOptions, "view label is required", nil)
	}
	state := m.grid.State()
	view := View{
		Label:    label,
		Type:     TypePrivate,
		GridName: m.grid.Name(),
		Filters:  copyMap(state.Filters),
		Sorters:  copyMap(state.Sorters),
	}
	id, err := m.store.Create(ctx, view)
	if err != nil {
		return View{}, m.failed(ActionSaveAs, err)
	}
	// the server id becomes the view name
	view.Name = id
	view.ID = ""

	m.mu.Lock()
	m.views = append(m.views, view)
	m.addChoice(Choice{Label: view.Label, Value: view.Name})
	m.mu.Unlock()

	state.GridView = view.Name
	m.grid.UpdateState(state)
	m.notifier.Flash(FlashSuccess, m.translator.Translate(MsgViewCreated))
	return view, nil
}

// Share makes the selected view public.
func (m *Manager) Share(ctx context.Context) error {
	m.mu.Lock()
	idx, err := m.requireCurrent()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	view := m.views[idx]
	allowed := (view.Type == TypePrivate && m.permissions.Share) ||
		(view.Type == TypePublic && m.permissions.EditShared)
	m.mu.Unlock()
	if !allowed {
		return m.denied(ActionShare)
	}

	view.Type = TypePublic
	if err := m.store.Update(ctx, view); err != nil {
		return m.failed(ActionShare, err)
	}
	m.replaceView(view)
	m.notifier.Flash(FlashSuccess, m.translator.Translate(MsgViewUpdated))
	return nil
}

// Delete removes the selected view and clears the selection.
func (m *Manager) Delete(ctx context.Context) error {
	m.mu.Lock()
	if !m.permissions.Delete {
		m.mu.Unlock()
		return m.denied(ActionDelete)
	}
	idx, err := m.requireCurrent()
	if err != nil {
		m.mu.Unlock()
		return err
	}
	name := m.views[idx].Name
	m.mu.Unlock()

	if err := m.store.Delete(ctx, name); err != nil {
		return m.failed(ActionDelete, err)
	}

	m.mu.Lock()
	if i := m.viewIndex(name); i >= 0 {
		m.views = append(m.views[:i:i], m.views[i+1:]...)
	}
	choices := m.choices[:0:0]
	for _, c := range m.choices {
		if c.Value != name {
			choices = append(choices, c)
		}
	}
	m.choices = choices
	m.mu.Unlock()

	state := m.grid.State()
	state.GridView = ""
	m.grid.UpdateState(state)
	m.notifier.Flash(FlashSuccess, m.translator.Translate(MsgViewDeleted))
	return nil
}

func (m *Manager) replaceView(view View) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.viewIndex(view.Name); i >= 0 {
		m.views[i] = view
	}
}

func (m *Manager) addChoice(c Choice) {
	for _, existing := range m.choices {
		if existing.Value == c.Value {
			return
		}
	}
	m.choices = append(m.choices, c)
}

func (m *Manager) currentChoice() (Choice, bool) {
	selected := m.grid.State().GridView
	for _, c := range m.choices {
		if c.Value == selected {
			return c, true
		}
	}
	return Choice{}, false
}

func (m *Manager) currentLabel() string {
	if c, ok := m.currentChoice(); ok {
		return c.Label
	}
	return m.translator.Translate(MsgSelectView)
}

func (m *Manager) currentIndex() int {
	c, ok := m.currentChoice()
	if !ok {
		return -1
	}
	return m.viewIndex(c.Value)
}

func (m *Manager) viewIndex(name string) int {
	for i, v := range m.views {
		if v.Name == name {
			return i
		}
	}
	return -1
}

func (m *Manager) requireCurrent() (int, error) {
	idx := m.currentIndex()
	if idx < 0 {
		return -1, withMeta(ErrNoActiveView, "", map[string]any{"grid": m.grid.Name()})
	}
	return idx, nil
}

func (m *Manager) denied(action string) error {
	return withMeta(ErrNotPermitted, "", map[string]any{"action": action, "grid": m.grid.Name()})
}

func (m *Manager) failed(action string, err error) error {
	m.logger.Error("grid view %s failed for %s: %v", action, m.grid.Name(), err)
	m.notifier.Flash(FlashError, m.translator.Translate(MsgViewError))
	return err
}
