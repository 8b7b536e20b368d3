// Package entityfield translates between dotted property paths and the field
// identifiers used by entity field pickers.
//
// A field identifier chains relation hops as "relation+RelatedClass" joined by
// "::" and ends with the plain field name, for example
// "customer+Acme\Entity\Customer::name" for the property path "customer.name".
package entityfield

import (
	"strings"
)

const (
	relationSeparator = "+"
	segmentSeparator  = "::"
)

// Resolver is bound to a root entity class and its field metadata.
type Resolver struct {
	entity string
	meta   Metadata
}

// NewResolver binds entity to meta. The root entity must be described by meta.
func NewResolver(entity string, meta Metadata) (*Resolver, error) {
	entity = strings.TrimSpace(entity)
	if entity == "" {
		return nil, invalidMetadata("root entity is required", nil)
	}
	if _, ok := meta[entity]; !ok {
		return nil, invalidMetadata("root entity is missing from field metadata", map[string]any{"entity": entity})
	}
	return &Resolver{entity: entity, meta: meta}, nil
}

// Entity returns the root entity class.
func (r *Resolver) Entity() string { return r.entity }

// PathByPropertyPath converts property path segments (without the root
// attribute) into a field identifier.
func (r *Resolver) PathByPropertyPath(segments []string) (string, error) {
	if len(segments) == 0 {
		return "", invalidMetadata("property path is empty", nil)
	}
	current := r.entity
	parts := make([]string, 0, len(segments))
	for i, name := range segments {
		field, err := r.lookup(current, name)
		if err != nil {
			return "", err
		}
		if i == len(segments)-1 {
			parts = append(parts, field.Name)
			break
		}
		if !field.IsRelation() {
			return "", fieldNotFound(current, strings.Join(segments[:i+2], "."))
		}
		parts = append(parts, field.Name+relationSeparator+field.RelatedEntity)
		current = field.RelatedEntity
	}
	return strings.Join(parts, segmentSeparator), nil
}

// PropertyPathByPath converts a field identifier back into a dotted property
// path (without the root attribute).
func (r *Resolver) PropertyPathByPath(fieldID string) (string, error) {
	fieldID = strings.TrimSpace(fieldID)
	if fieldID == "" {
		return "", invalidMetadata("field id is empty", nil)
	}
	current := r.entity
	parts := strings.Split(fieldID, segmentSeparator)
	names := make([]string, 0, len(parts))
	for i, part := range parts {
		name, related, hasRelation := strings.Cut(part, relationSeparator)
		field, err := r.lookup(current, name)
		if err != nil {
			return "", err
		}
		names = append(names, field.Name)
		if i == len(parts)-1 {
			break
		}
		if !hasRelation || related == "" {
			return "", fieldNotFound(current, part)
		}
		current = related
	}
	return strings.Join(names, "."), nil
}

// Field resolves the metadata of the last field addressed by segments.
func (r *Resolver) Field(segments []string) (Field, error) {
	if len(segments) == 0 {
		return Field{}, invalidMetadata("property path is empty", nil)
	}
	current := r.entity
	var field Field
	for i, name := range segments {
		f, err := r.lookup(current, name)
		if err != nil {
			return Field{}, err
		}
		field = f
		if i < len(segments)-1 {
			if !f.IsRelation() {
				return Field{}, fieldNotFound(current, strings.Join(segments[:i+2], "."))
			}
			current = f.RelatedEntity
		}
	}
	return field, nil
}

func (r *Resolver) lookup(entity, name string) (Field, error) {
	info, ok := r.meta[entity]
	if !ok {
		return Field{}, fieldNotFound(entity, name)
	}
	field, ok := info.Field(name)
	if !ok {
		return Field{}, fieldNotFound(entity, name)
	}
	return field, nil
}
