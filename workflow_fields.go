package flowchart

import (
	"strings"

	"github.com/goliatone/go-flowchart/entityfield"
)

// SetEntityFieldsData binds field metadata for the workflow entity and enables
// property path translation. fields is either entityfield.Metadata or its raw
// decoded JSON/YAML form.
func (w *Workflow) SetEntityFieldsData(fields any) error {
	if w.Entity == "" {
		return validationError("workflow entity is required to bind entity fields", map[string]any{
			"workflow": w.Name,
		})
	}
	meta, err := entityfield.DecodeMetadata(fields)
	if err != nil {
		return err
	}
	resolver, err := entityfield.NewResolver(w.Entity, meta)
	if err != nil {
		return err
	}
	w.fields = resolver
	w.logger.Debug("entity fields initialized for %s", w.Entity)
	for _, fn := range append([]func(){}, w.fieldsListeners...) {
		fn()
	}
	return nil
}

// EntityFieldsInitialized reports whether SetEntityFieldsData succeeded.
func (w *Workflow) EntityFieldsInitialized() bool { return w.fields != nil }

// OnEntityFieldsInitialized registers fn to run after each SetEntityFieldsData.
func (w *Workflow) OnEntityFieldsInitialized(fn func()) {
	if fn != nil {
		w.fieldsListeners = append(w.fieldsListeners, fn)
	}
}

// FieldIDByPropertyPath translates "entity.customer.name" into a field id. Paths
// that do not start with the entity attribute, or name it alone, yield "".
func (w *Workflow) FieldIDByPropertyPath(propertyPath string) (string, error) {
	if err := w.requireFields(); err != nil {
		return "", err
	}
	parts := strings.Split(propertyPath, ".")
	if len(parts) < 2 || parts[0] != w.EntityAttribute {
		return "", nil
	}
	return w.fields.PathByPropertyPath(parts[1:])
}

// PropertyPathByFieldID translates a field id back into a property path rooted at
// the entity attribute.
func (w *Workflow) PropertyPathByFieldID(fieldID string) (string, error) {
	if err := w.requireFields(); err != nil {
		return "", err
	}
	path, err := w.fields.PropertyPathByPath(fieldID)
	if err != nil {
		return "", err
	}
	return w.EntityAttribute + "." + path, nil
}

func (w *Workflow) requireFields() error {
	if w.fields == nil {
		return newError(ErrNotInitialized, "entity fields data must be set before translating paths", map[string]any{
			"workflow": w.Name,
		})
	}
	return nil
}
