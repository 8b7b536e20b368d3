package flowchart

import "strings"

// Attribute is a named, typed variable bound to a property path of the workflow entity.
type Attribute struct {
	Name         string         `json:"name" yaml:"name" mapstructure:"name"`
	Label        string         `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Type         string         `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	PropertyPath string         `json:"property_path,omitempty" yaml:"property_path,omitempty" mapstructure:"property_path"`
	Options      map[string]any `json:"options,omitempty" yaml:"options,omitempty" mapstructure:"options"`
}

func (a *Attribute) EntityName() string { return a.Name }

func (a *Attribute) setEntityName(name string) { a.Name = name }

func (a *Attribute) Attributes() map[string]any { return attributesOf(a) }

func (a *Attribute) copy() (*Attribute, error) {
	cp := *a
	var err error
	if cp.Options, err = deepCopyMap(a.Options); err != nil {
		return nil, err
	}
	return &cp, nil
}

// AttributeNameForPath derives the attribute name synthesized for a property path.
func AttributeNameForPath(propertyPath string) string {
	return strings.ReplaceAll(propertyPath, ".", "_")
}
