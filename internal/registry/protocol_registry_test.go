package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/swiftmock/internal/models"
)

func method(t *testing.T, name string, params ...models.Parameter) *models.Method {
	t.Helper()
	m, err := models.NewMethod(name, params, nil)
	require.NoError(t, err)
	return m
}

func TestProtocolRegistry_Register(t *testing.T) {
	registry := NewProtocolRegistry()

	require.NoError(t, registry.Register(&models.Protocol{Name: "Store"}))
	require.NoError(t, registry.Register(&models.Protocol{Name: "Cache"}))

	err := registry.Register(&models.Protocol{Name: "Store"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol 'Store' is already registered")

	err = registry.Register(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protocol name cannot be empty")

	assert.Equal(t, []string{"Store", "Cache"}, registry.Names())

	proto, ok := registry.Get("Cache")
	require.True(t, ok)
	assert.Equal(t, "Cache", proto.Name)
}

func TestProtocolRegistry_Flatten(t *testing.T) {
	registry := NewProtocolRegistry()

	base := &models.Protocol{
		Name:            "Base",
		AssociatedTypes: []models.AssociatedType{{Name: "Element"}},
		Properties: []models.Property{
			{Name: "count", Type: models.Named("Int")},
		},
		Methods: []*models.Method{method(t, "reset")},
	}
	middle := &models.Protocol{
		Name:     "Middle",
		Inherits: []string{"Base", "Foundation.NSObjectProtocol"},
		Methods:  []*models.Method{method(t, "reset"), method(t, "load")},
	}
	leaf := &models.Protocol{
		Name:     "Leaf",
		Inherits: []string{"Middle", "AnyObject", "Missing", "Base"},
		Properties: []models.Property{
			{Name: "count", Type: models.Named("Int")},
		},
		Methods: []*models.Method{method(t, "save")},
	}
	for _, proto := range []*models.Protocol{base, middle, leaf} {
		require.NoError(t, registry.Register(proto))
	}

	res := registry.Flatten(leaf)

	assert.Equal(t, []string{"Middle", "Base"}, res.Inherited)
	assert.Equal(t, []string{"Missing"}, res.Unresolved)

	flat := res.Protocol
	assert.Equal(t, "Leaf", flat.Name)
	assert.Equal(t, leaf.Inherits, flat.Inherits)
	require.Len(t, flat.AssociatedTypes, 1)
	require.Len(t, flat.Properties, 1)

	names := make([]string, 0, len(flat.Methods))
	for _, m := range flat.Methods {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"save", "reset", "load"}, names)

	// the registered declaration is untouched
	assert.Len(t, leaf.Methods, 1)
}

func TestProtocolRegistry_FlattenCycle(t *testing.T) {
	registry := NewProtocolRegistry()
	a := &models.Protocol{Name: "A", Inherits: []string{"B"}, Methods: []*models.Method{method(t, "a")}}
	b := &models.Protocol{Name: "B", Inherits: []string{"A"}, Methods: []*models.Method{method(t, "b")}}
	require.NoError(t, registry.Register(a))
	require.NoError(t, registry.Register(b))

	res := registry.Flatten(a)
	require.Len(t, res.Protocol.Methods, 2)
	assert.Equal(t, []string{"B"}, res.Inherited)
}

func TestIsBuiltinConformance(t *testing.T) {
	assert.True(t, IsBuiltinConformance("AnyObject"))
	assert.True(t, IsBuiltinConformance("Foundation.NSObjectProtocol"))
	assert.False(t, IsBuiltinConformance("Repository"))
}
