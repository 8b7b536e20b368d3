package flowchart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-flowchart/entityfield"
)

func orderFields() map[string]any {
	return map[string]any{
		`Acme\Order`: map[string]any{
			"fields": []any{
				map[string]any{"name": "amount", "type": "integer"},
				map[string]any{"name": "customer", "type": "manyToOne", "related_entity_name": `Acme\Customer`},
			},
		},
		`Acme\Customer`: map[string]any{
			"fields": []any{
				map[string]any{"name": "name", "type": "string"},
			},
		},
	}
}

func TestFieldTranslationRequiresInitialization(t *testing.T) {
	w := newTestWorkflow(t, WithEntity(`Acme\Order`))
	assert.False(t, w.EntityFieldsInitialized())

	_, err := w.FieldIDByPropertyPath("entity.amount")
	require.Error(t, err)
	assert.True(t, IsNotInitialized(err))

	_, err = w.PropertyPathByFieldID("amount")
	assert.True(t, IsNotInitialized(err))
}

func TestFieldTranslationRoundTrip(t *testing.T) {
	w := newTestWorkflow(t, WithEntity(`Acme\Order`))
	fired := 0
	w.OnEntityFieldsInitialized(func() { fired++ })

	require.NoError(t, w.SetEntityFieldsData(orderFields()))
	assert.True(t, w.EntityFieldsInitialized())
	assert.Equal(t, 1, fired)

	id, err := w.FieldIDByPropertyPath("entity.customer.name")
	require.NoError(t, err)
	assert.Equal(t, `customer+Acme\Customer::name`, id)

	path, err := w.PropertyPathByFieldID(id)
	require.NoError(t, err)
	assert.Equal(t, "entity.customer.name", path)

	id, err = w.FieldIDByPropertyPath("entity.amount")
	require.NoError(t, err)
	assert.Equal(t, "amount", id)
}

func TestFieldTranslationIgnoresForeignRoots(t *testing.T) {
	w := newTestWorkflow(t, WithEntity(`Acme\Order`))
	require.NoError(t, w.SetEntityFieldsData(orderFields()))

	id, err := w.FieldIDByPropertyPath("customer.name")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = w.FieldIDByPropertyPath("entity")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFieldTranslationCustomEntityAttribute(t *testing.T) {
	w := newTestWorkflow(t, WithEntity(`Acme\Order`), WithEntityAttribute("order"))
	require.NoError(t, w.SetEntityFieldsData(orderFields()))

	id, err := w.FieldIDByPropertyPath("order.amount")
	require.NoError(t, err)
	assert.Equal(t, "amount", id)

	path, err := w.PropertyPathByFieldID("amount")
	require.NoError(t, err)
	assert.Equal(t, "order.amount", path)
}

func TestFieldTranslationUnknownField(t *testing.T) {
	w := newTestWorkflow(t, WithEntity(`Acme\Order`))
	require.NoError(t, w.SetEntityFieldsData(orderFields()))

	_, err := w.FieldIDByPropertyPath("entity.missing")
	require.Error(t, err)
	assert.Equal(t, entityfield.ErrCodeFieldNotFound, ErrorCode(err))
}

func TestSetEntityFieldsDataRejectsUnknownRoot(t *testing.T) {
	w := newTestWorkflow(t, WithEntity(`Acme\Invoice`))

	err := w.SetEntityFieldsData(orderFields())
	require.Error(t, err)
	assert.Equal(t, entityfield.ErrCodeInvalidMetadata, ErrorCode(err))
	assert.False(t, w.EntityFieldsInitialized())
}

func TestSetEntityFieldsDataRequiresEntity(t *testing.T) {
	w := newTestWorkflow(t)
	w.Entity = ""
	called := 0
	w.OnEntityFieldsInitialized(func() { called++ })

	err := w.SetEntityFieldsData(orderFields())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "workflow entity is required")
	assert.False(t, w.EntityFieldsInitialized())
	assert.Zero(t, called)
}

func TestSystemEntities(t *testing.T) {
	w := newTestWorkflow(t)
	assert.Empty(t, w.SystemEntities())

	w.SetSystemEntities([]entityfield.EntityInfo{{Name: `Acme\User`, Label: "User"}})
	require.Len(t, w.SystemEntities(), 1)
	assert.Equal(t, "User", w.SystemEntities()[0].Label)
}
