package flowchart

// Observer receives synchronous change notifications from a Collection.
type Observer[T Entity] interface {
	OnAdded(item T)
	OnRemoved(item T)
	OnChanged(item T)
}

// ObserverFuncs adapts closures to Observer; nil hooks are skipped.
type ObserverFuncs[T Entity] struct {
	Added   func(T)
	Removed func(T)
	Changed func(T)
}

func (o ObserverFuncs[T]) OnAdded(item T) {
	if o.Added != nil {
		o.Added(item)
	}
}

func (o ObserverFuncs[T]) OnRemoved(item T) {
	if o.Removed != nil {
		o.Removed(item)
	}
}

func (o ObserverFuncs[T]) OnChanged(item T) {
	if o.Changed != nil {
		o.Changed(item)
	}
}

// Subscription detaches an observer.
type Subscription interface {
	Unsubscribe()
}

type subscription[T Entity] struct {
	collection *Collection[T]
	id         int
}

func (s *subscription[T]) Unsubscribe() {
	if s == nil || s.collection == nil {
		return
	}
	c := s.collection
	for i, entry := range c.observers {
		if entry.id == s.id {
			c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
			break
		}
	}
	s.collection = nil
}

type observerEntry[T Entity] struct {
	id       int
	observer Observer[T]
}

// Collection is an ordered container of entities with unique names.
//
// Collections are not safe for concurrent use. Observers run synchronously
// before the mutating call returns and may mutate the collection themselves.
type Collection[T Entity] struct {
	kind      Kind
	items     []T
	index     map[string]int
	observers []observerEntry[T]
	nextObsID int
	owner     Handle
	logger    Logger
}

// NewCollection builds a collection of kind seeded with items.
func NewCollection[T Entity](kind Kind, items ...T) (*Collection[T], error) {
	c := &Collection[T]{
		kind:   kind,
		index:  make(map[string]int, len(items)),
		logger: NewFmtLogger(nil),
	}
	for _, item := range items {
		if err := c.insert(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Kind reports the entity kind held by the collection.
func (c *Collection[T]) Kind() Kind { return c.kind }

// SetLogger replaces the collection logger.
func (c *Collection[T]) SetLogger(logger Logger) {
	c.logger = scopeLogger(logger, nil)
}

// Add inserts item and notifies observers. A name collision fails with ErrDuplicateName.
func (c *Collection[T]) Add(item T) error {
	if err := c.insert(item); err != nil {
		return err
	}
	for _, obs := range c.snapshot() {
		obs.OnAdded(item)
	}
	return nil
}

func (c *Collection[T]) insert(item T) error {
	if isNilEntity(item) {
		return validationError(c.kind.String()+" item is required", map[string]any{"kind": c.kind.String()})
	}
	name := item.EntityName()
	if name == "" {
		return validationError(c.kind.String()+" name is required", map[string]any{"kind": c.kind.String()})
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if _, exists := c.index[name]; exists {
		return duplicateName(c.kind, "name", name)
	}
	c.index[name] = len(c.items)
	c.items = append(c.items, item)
	return nil
}

// Get returns the item named name.
func (c *Collection[T]) Get(name string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	idx, ok := c.index[name]
	if !ok {
		return zero, false
	}
	return c.items[idx], true
}

// MustGet returns the item named name or ErrNotFound.
func (c *Collection[T]) MustGet(name string) (T, error) {
	item, ok := c.Get(name)
	if !ok {
		return item, notFound(c.kind, name)
	}
	return item, nil
}

// Has reports whether name is taken.
func (c *Collection[T]) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Remove deletes the item named name and notifies observers.
func (c *Collection[T]) Remove(name string) (T, error) {
	item, ok := c.Get(name)
	if !ok {
		return item, notFound(c.kind, name)
	}
	idx := c.index[name]
	c.items = append(c.items[:idx:idx], c.items[idx+1:]...)
	c.reindex()
	for _, obs := range c.snapshot() {
		obs.OnRemoved(item)
	}
	return item, nil
}

// Update applies fn to the item named name and emits a change notification.
// Renaming through fn is rejected and the old name is restored; remove and
// re-add instead.
func (c *Collection[T]) Update(name string, fn func(T)) error {
	return c.update(name, fn, nil)
}

// update applies fn, then check. A failed check leaves rollback to check itself.
func (c *Collection[T]) update(name string, fn func(T), check func(T) error) error {
	item, ok := c.Get(name)
	if !ok {
		return notFound(c.kind, name)
	}
	if fn != nil {
		fn(item)
	}
	if renamed := item.EntityName(); renamed != name {
		if r, ok := any(item).(renameable); ok {
			r.setEntityName(name)
		}
		c.logger.Warn("%s %s rename to %s rejected during update", c.kind, name, renamed)
		return validationError(c.kind.String()+" cannot be renamed during update", map[string]any{
			"kind": c.kind.String(),
			"name": name,
		})
	}
	if check != nil {
		if err := check(item); err != nil {
			return err
		}
	}
	c.Touch(item)
	return nil
}

// Touch notifies observers that item changed.
func (c *Collection[T]) Touch(item T) {
	for _, obs := range c.snapshot() {
		obs.OnChanged(item)
	}
}

// Where returns all items whose attributes equal attrs, in container order.
func (c *Collection[T]) Where(attrs map[string]any) []T {
	return c.Filter(func(item T) bool {
		return matchesAttributes(item, attrs)
	})
}

// FindWhere returns the first item matching attrs.
func (c *Collection[T]) FindWhere(attrs map[string]any) (T, bool) {
	var zero T
	for _, item := range c.Items() {
		if matchesAttributes(item, attrs) {
			return item, true
		}
	}
	return zero, false
}

// Filter returns all items accepted by pred, in container order.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	var out []T
	for _, item := range c.Items() {
		if pred == nil || pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Items returns a snapshot of the items in insertion order.
func (c *Collection[T]) Items() []T {
	if c == nil {
		return nil
	}
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Names returns item names in insertion order.
func (c *Collection[T]) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item.EntityName())
	}
	return out
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Subscribe registers obs for add, remove and change notifications.
func (c *Collection[T]) Subscribe(obs Observer[T]) Subscription {
	c.nextObsID++
	c.observers = append(c.observers, observerEntry[T]{id: c.nextObsID, observer: obs})
	return &subscription[T]{collection: c, id: c.nextObsID}
}

func (c *Collection[T]) claim(owner Handle) error {
	if c.owner != "" && c.owner != owner {
		return validationError(c.kind.String()+" collection is already owned by another workflow", map[string]any{
			"kind":  c.kind.String(),
			"owner": string(c.owner),
		})
	}
	c.owner = owner
	return nil
}

func (c *Collection[T]) snapshot() []Observer[T] {
	out := make([]Observer[T], 0, len(c.observers))
	for _, entry := range c.observers {
		out = append(out, entry.observer)
	}
	return out
}

func (c *Collection[T]) reindex() {
	c.index = make(map[string]int, len(c.items))
	for i, item := range c.items {
		c.index[item.EntityName()] = i
	}
}

func isNilEntity(e Entity) bool {
	if e == nil {
		return true
	}
	switch v := e.(type) {
	case *Step:
		return v == nil
	case *Transition:
		return v == nil
	case *TransitionDefinition:
		return v == nil
	case *Attribute:
		return v == nil
	}
	return false
}
