package flowchart

// AttributeCollection holds attributes and keeps property paths unique.
type AttributeCollection struct {
	*Collection[*Attribute]
}

// NewAttributeCollection builds an attribute container seeded with items.
func NewAttributeCollection(items ...*Attribute) (*AttributeCollection, error) {
	base, err := NewCollection[*Attribute](KindAttribute)
	if err != nil {
		return nil, err
	}
	ac := &AttributeCollection{Collection: base}
	for _, item := range items {
		if err := ac.checkPropertyPath(item); err != nil {
			return nil, err
		}
		if err := ac.insert(item); err != nil {
			return nil, err
		}
	}
	return ac, nil
}

// Add inserts item, rejecting a second attribute for an existing property path.
func (ac *AttributeCollection) Add(item *Attribute) error {
	if err := ac.checkPropertyPath(item); err != nil {
		return err
	}
	return ac.Collection.Add(item)
}

// Update applies fn to the attribute named name. A rename, or a move onto a
// property path bound to another attribute, is rejected and the attribute is
// restored.
func (ac *AttributeCollection) Update(name string, fn func(*Attribute)) error {
	item, ok := ac.Get(name)
	if !ok {
		return notFound(KindAttribute, name)
	}
	snapshot, err := item.copy()
	if err != nil {
		return err
	}
	before := *snapshot
	err = ac.update(name, fn, func(a *Attribute) error {
		if a.PropertyPath == "" || a.PropertyPath == before.PropertyPath {
			return nil
		}
		for _, other := range ac.Filter(func(o *Attribute) bool { return o.PropertyPath == a.PropertyPath }) {
			if other != a {
				return duplicateName(KindAttribute, "property_path", a.PropertyPath)
			}
		}
		return nil
	})
	if err != nil {
		*item = before
	}
	return err
}

// FindByPropertyPath returns the attribute bound to path.
func (ac *AttributeCollection) FindByPropertyPath(path string) (*Attribute, bool) {
	if ac == nil || path == "" {
		return nil, false
	}
	matches := ac.Filter(func(a *Attribute) bool { return a.PropertyPath == path })
	if len(matches) == 0 {
		return nil, false
	}
	if len(matches) > 1 {
		ac.logger.Error("property path %s is bound to %d attributes, using %s", path, len(matches), matches[0].Name)
	}
	return matches[0], true
}

func (ac *AttributeCollection) checkPropertyPath(item *Attribute) error {
	if item == nil || item.PropertyPath == "" {
		return nil
	}
	if _, exists := ac.FindByPropertyPath(item.PropertyPath); exists {
		return duplicateName(KindAttribute, "property_path", item.PropertyPath)
	}
	return nil
}
