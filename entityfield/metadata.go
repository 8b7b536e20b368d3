package entityfield

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-errors"
	"github.com/mitchellh/mapstructure"
)

const (
	ErrCodeFieldNotFound   = "ENTITY_FIELD_NOT_FOUND"
	ErrCodeInvalidMetadata = "ENTITY_FIELD_INVALID_METADATA"
)

var (
	ErrFieldNotFound = errors.New("entity field not found", errors.CategoryBadInput).
				WithTextCode(ErrCodeFieldNotFound)
	ErrInvalidMetadata = errors.New("invalid entity field metadata", errors.CategoryValidation).
				WithTextCode(ErrCodeInvalidMetadata)
)

// Field describes one field of an entity. RelatedEntity is set for relations.
type Field struct {
	Name          string `json:"name" yaml:"name" mapstructure:"name"`
	Label         string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Type          string `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	RelationType  string `json:"relation_type,omitempty" yaml:"relation_type,omitempty" mapstructure:"relation_type"`
	RelatedEntity string `json:"related_entity_name,omitempty" yaml:"related_entity_name,omitempty" mapstructure:"related_entity_name"`
}

// IsRelation reports whether the field points to another entity.
func (f Field) IsRelation() bool { return f.RelatedEntity != "" }

// EntityInfo lists the fields of an entity class.
type EntityInfo struct {
	Name   string  `json:"name" yaml:"name" mapstructure:"name"`
	Label  string  `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Fields []Field `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// Field returns the field named name.
func (e EntityInfo) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Metadata maps entity class names to their field listings.
type Metadata map[string]EntityInfo

// Entities returns entity class names sorted.
func (m Metadata) Entities() []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DecodeMetadata converts raw decoded JSON/YAML into Metadata. Entity names missing
// from an entry are filled from the map key.
func DecodeMetadata(raw any) (Metadata, error) {
	if raw == nil {
		return nil, invalidMetadata("field metadata is required", nil)
	}
	if meta, ok := raw.(Metadata); ok {
		return meta, nil
	}
	out := Metadata{}
	if err := mapstructure.Decode(raw, &out); err != nil {
		return nil, invalidMetadata(fmt.Sprintf("decode field metadata: %v", err), nil)
	}
	for name, info := range out {
		if info.Name == "" {
			info.Name = name
			out[name] = info
		}
	}
	return out, nil
}

func invalidMetadata(message string, metadata map[string]any) *errors.Error {
	err := ErrInvalidMetadata.Clone()
	err.Message = message
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

func fieldNotFound(entity, field string) *errors.Error {
	err := ErrFieldNotFound.Clone()
	err.Message = fmt.Sprintf("field %s not found on %s", field, entity)
	return err.WithMetadata(map[string]any{
		"entity": entity,
		"field":  field,
	})
}
