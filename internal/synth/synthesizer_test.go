package synth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/models"
)

func optionalProtocol(t *testing.T) *models.Protocol {
	t.Helper()
	uintType := models.Named("UInt")
	return &models.Protocol{
		Name: "OptionalProtocol",
		Methods: []*models.Method{
			mustMethod(t, "optionals",
				[]models.Parameter{param("optional", "", models.Named("Double").WithOptionality(models.Optional))},
				ret(intType.WithOptionality(models.Optional))),
			mustMethod(t, "unwrappedOptionals",
				[]models.Parameter{param("unwrapped", "", uintType.WithOptionality(models.ImplicitlyUnwrapped))},
				ret(uintType.WithOptionality(models.ImplicitlyUnwrapped))),
			mustMethod(t, "mixed",
				[]models.Parameter{
					param("unwrapped", "", uintType.WithOptionality(models.ImplicitlyUnwrapped)),
					param("optional", "", stringType.WithOptionality(models.Optional)),
					param("value", "", intType),
				},
				ret(stringType)),
		},
	}
}

func fieldTypes(holder models.ParametersHolder) []string {
	types := make([]string, len(holder.Fields))
	for i, field := range holder.Fields {
		types[i] = field.Type.String()
	}
	return types
}

func TestSynthesize_OptionalProtocol(t *testing.T) {
	artifact, err := NewSynthesizer(Config{}).Synthesize(optionalProtocol(t))
	require.NoError(t, err)

	assert.Equal(t, "MockOptionalProtocol", artifact.ClassName)
	assert.Equal(t, []string{"OptionalProtocol"}, artifact.Conformances)
	assert.Empty(t, artifact.GenericParameters)
	require.Len(t, artifact.Methods, 3)

	tests := []struct {
		unique   string
		tracking []string
		fields   []string
		names    []string
		stubbed  string
	}{
		{
			unique:   "Optionals",
			tracking: []string{"invokedOptionals", "invokedOptionalsParameters", "stubbedOptionalsResult"},
			fields:   []string{"Double?", "Void"},
			names:    []string{"optional", ""},
			stubbed:  "Int!",
		},
		{
			unique:   "UnwrappedOptionals",
			tracking: []string{"invokedUnwrappedOptionals", "invokedUnwrappedOptionalsParameters", "stubbedUnwrappedOptionalsResult"},
			fields:   []string{"UInt!", "Void"},
			names:    []string{"unwrapped", ""},
			stubbed:  "UInt!",
		},
		{
			unique:   "Mixed",
			tracking: []string{"invokedMixed", "invokedMixedParameters", "stubbedMixedResult"},
			fields:   []string{"UInt!", "String?", "Int"},
			names:    []string{"unwrapped", "optional", "value"},
			stubbed:  "String!",
		},
	}

	for i, tt := range tests {
		t.Run(tt.unique, func(t *testing.T) {
			mm := artifact.Methods[i]
			assert.Equal(t, tt.unique, mm.UniqueName)
			assert.Equal(t, tt.tracking, mm.TrackingFields())
			assert.Equal(t, "Bool", mm.Invoked.Type.String())
			assert.Equal(t, "false", mm.Invoked.Initial)
			assert.Equal(t, tt.fields, fieldTypes(mm.Parameters))

			names := make([]string, len(mm.Parameters.Fields))
			for j, field := range mm.Parameters.Fields {
				names[j] = field.Name
			}
			assert.Equal(t, tt.names, names)

			require.NotNil(t, mm.StubbedResult)
			assert.Equal(t, tt.stubbed, mm.StubbedResult.Type.String())
			assert.Empty(t, mm.Closures)
		})
	}
}

func TestSynthesize_SingleParameterPlaceholder(t *testing.T) {
	proto := &models.Protocol{
		Name: "Logger",
		Methods: []*models.Method{
			mustMethod(t, "log", []models.Parameter{param("_", "message", stringType)}, nil),
		},
	}

	artifact, err := NewSynthesizer(Config{}).Synthesize(proto)
	require.NoError(t, err)

	holder := artifact.Methods[0].Parameters
	require.Len(t, holder.Fields, 2)
	assert.Equal(t, "message", holder.Fields[0].Name)
	assert.False(t, holder.Fields[0].Placeholder)
	assert.True(t, holder.Fields[1].Placeholder)
	assert.True(t, holder.Fields[1].Type.IsVoid())
	assert.Len(t, holder.ParameterFields(), 1)
}

func TestSynthesize_ZeroParameters(t *testing.T) {
	proto := &models.Protocol{
		Name:    "Resetter",
		Methods: []*models.Method{mustMethod(t, "reset", nil, nil)},
	}

	artifact, err := NewSynthesizer(Config{}).Synthesize(proto)
	require.NoError(t, err)

	mm := artifact.Methods[0]
	assert.True(t, mm.Parameters.IsEmpty())
	assert.Nil(t, mm.StubbedResult)
	assert.Equal(t, []string{"invokedReset", "invokedResetParameters"}, mm.TrackingFields())
}

func TestSynthesize_RecordedTypes(t *testing.T) {
	inout := intType
	inout.Specifiers = []string{"inout"}
	variadic := param("values", "", stringType)
	variadic.Variadic = true

	proto := &models.Protocol{
		Name: "Store",
		Methods: []*models.Method{
			mustMethod(t, "update", []models.Parameter{param("count", "", inout), variadic}, nil),
		},
	}

	artifact, err := NewSynthesizer(Config{}).Synthesize(proto)
	require.NoError(t, err)
	assert.Equal(t, []string{"Int", "[String]"}, fieldTypes(artifact.Methods[0].Parameters))
}

func TestSynthesize_Closures(t *testing.T) {
	closure := func(result *models.TypeRef, args ...models.TypeRef) models.TypeRef {
		return models.TypeRef{Kind: models.FunctionType, Arguments: args, Result: result, Attributes: []string{"@escaping"}}
	}
	optionalDone := models.TypeRef{
		Kind:        models.TupleType,
		Arguments:   []models.TypeRef{closure(nil)},
		Optionality: models.Optional,
	}
	errType := models.Named("Error").WithOptionality(models.Optional)

	proto := &models.Protocol{
		Name: "Loader",
		Methods: []*models.Method{
			mustMethod(t, "load", []models.Parameter{
				param("id", "", intType),
				param("completion", "", closure(nil, models.Named("Data"), errType)),
				param("progress", "", closure(nil, models.Named("Double"))),
				param("done", "", optionalDone),
			}, ret(models.Named("Bool"))),
		},
	}

	artifact, err := NewSynthesizer(Config{}).Synthesize(proto)
	require.NoError(t, err)

	mm := artifact.Methods[0]
	assert.Equal(t, []string{"Int", "Void"}, fieldTypes(mm.Parameters))
	require.Len(t, mm.Closures, 3)

	completion := mm.Closures[0]
	require.NotNil(t, completion.Field)
	assert.Equal(t, "stubbedLoadCompletionResult", completion.Field.Name)
	assert.Equal(t, "(Data, Error?)?", completion.Field.Type.String())

	progress := mm.Closures[1]
	require.NotNil(t, progress.Field)
	assert.Equal(t, "stubbedLoadProgressResult", progress.Field.Name)
	assert.Equal(t, "Double?", progress.Field.Type.String())

	done := mm.Closures[2]
	assert.Nil(t, done.Field)
	assert.Empty(t, done.Arguments)
	assert.Equal(t, "done", done.Parameter.Name)
}

func TestSynthesize_Properties(t *testing.T) {
	proto := &models.Protocol{
		Name: "Settings",
		Properties: []models.Property{
			{Name: "name", Type: stringType, Settable: true},
			{Name: "count", Type: intType.WithOptionality(models.Optional)},
			{Name: "handler", Type: models.TypeRef{Kind: models.FunctionType}, Settable: true},
		},
	}

	artifact, err := NewSynthesizer(Config{}).Synthesize(proto)
	require.NoError(t, err)
	require.Len(t, artifact.Properties, 3)

	name := artifact.Properties[0]
	require.NotNil(t, name.Invoked)
	assert.Equal(t, "invokedName", name.Invoked.Name)
	assert.Equal(t, "String?", name.Invoked.Type.String())
	assert.Equal(t, "stubbedName", name.Stubbed.Name)
	assert.Equal(t, "String!", name.Stubbed.Type.String())

	count := artifact.Properties[1]
	assert.Nil(t, count.Invoked)
	assert.Equal(t, "Int!", count.Stubbed.Type.String())

	handler := artifact.Properties[2]
	assert.Equal(t, "(() -> Void)?", handler.Invoked.Type.String())
	assert.Equal(t, "(() -> Void)!", handler.Stubbed.Type.String())
}

func TestSynthesize_GenericsAndAccess(t *testing.T) {
	proto := &models.Protocol{
		Name: "Repository",
		AssociatedTypes: []models.AssociatedType{
			{Name: "Entity"},
			{Name: "Key", Constraint: "Hashable"},
		},
		Methods: []*models.Method{
			mustMethod(t, "find", []models.Parameter{param("key", "", models.Named("Key"))}, ret(models.Named("Entity").WithOptionality(models.Optional))),
		},
	}

	artifact, err := NewSynthesizer(Config{ClassPrefix: "Fake", Access: "public"}).Synthesize(proto)
	require.NoError(t, err)

	assert.Equal(t, "FakeRepository", artifact.ClassName)
	assert.Equal(t, "public", artifact.Access)
	assert.Equal(t, []string{"Entity", "Key: Hashable"}, artifact.GenericParameters)
	assert.Equal(t, "Entity!", artifact.Methods[0].StubbedResult.Type.String())
}

func TestSynthesize_MethodGenericsAreErased(t *testing.T) {
	generic := models.Named("T")
	keyed := models.Named("Key.Value")
	proto := &models.Protocol{
		Name: "Cache",
		Methods: []*models.Method{
			mustMethod(t, "get",
				[]models.Parameter{
					param("value", "", generic),
					param("key", "", keyed),
					param("count", "", intType),
				},
				ret(generic),
				models.WithGenerics("<T: Equatable, Key: Codable>", "where T: Hashable")),
			mustMethod(t, "count", nil, ret(generic.WithOptionality(models.Optional))),
		},
	}

	artifact, err := NewSynthesizer(Config{}).Synthesize(proto)
	require.NoError(t, err)
	require.Len(t, artifact.Methods, 2)

	get := artifact.Methods[0]
	assert.Equal(t, []string{"Any", "Any", "Int"}, fieldTypes(get.Parameters))
	assert.Equal(t, "Any!", get.StubbedResult.Type.String())
	assert.Equal(t, "T", get.ResultCast)

	// T is not generic on count(), so it is stored as written
	count := artifact.Methods[1]
	assert.Equal(t, "T!", count.StubbedResult.Type.String())
	assert.Empty(t, count.ResultCast)
}

func TestSynthesize_PropertyAndMethodShareName(t *testing.T) {
	proto := &models.Protocol{
		Name:       "Counter",
		Properties: []models.Property{{Name: "count", Type: intType}},
		Methods:    []*models.Method{mustMethod(t, "count", nil, ret(intType))},
	}

	artifact, err := NewSynthesizer(Config{}).Synthesize(proto)
	require.NoError(t, err)
	assert.Equal(t, "stubbedCount", artifact.Properties[0].Stubbed.Name)
	assert.Equal(t, "stubbedCountIntResult", artifact.Methods[0].StubbedResult.Name)
}

func TestSynthesize_PrefixRelatedNames(t *testing.T) {
	callback := models.TypeRef{Kind: models.FunctionType, Arguments: []models.TypeRef{intType}}
	tests := []struct {
		name       string
		properties []models.Property
		methods    func(t *testing.T) []*models.Method
		expected   []string
	}{
		{
			name: "method named after a parameters holder",
			methods: func(t *testing.T) []*models.Method {
				return []*models.Method{
					mustMethod(t, "load", nil, nil),
					mustMethod(t, "loadParameters", nil, nil),
				}
			},
			expected: []string{"invokedLoadParameters", "invokedLoadParametersVoidParameters"},
		},
		{
			name: "method named after a closure holder",
			methods: func(t *testing.T) []*models.Method {
				return []*models.Method{
					mustMethod(t, "fetch", []models.Parameter{param("completion", "", callback)}, nil),
					mustMethod(t, "fetchCompletion", nil, ret(intType)),
				}
			},
			expected: []string{"invokedFetchParameters", "invokedFetchCompletionIntParameters"},
		},
		{
			name:       "property named after a stubbed result",
			properties: []models.Property{{Name: "loadResult", Type: intType}},
			methods: func(t *testing.T) []*models.Method {
				return []*models.Method{mustMethod(t, "load", nil, ret(intType))}
			},
			expected: []string{"invokedLoadIntParameters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proto := &models.Protocol{Name: "Loader", Properties: tt.properties, Methods: tt.methods(t)}

			artifact, err := NewSynthesizer(Config{}).Synthesize(proto)
			require.NoError(t, err)

			holders := make([]string, len(artifact.Methods))
			for i, mm := range artifact.Methods {
				holders[i] = mm.Parameters.Name
			}
			assert.Equal(t, tt.expected, holders)
		})
	}
}

func TestCheckCollisions(t *testing.T) {
	callback := models.TypeRef{Kind: models.FunctionType, Arguments: []models.TypeRef{intType}}
	load := mustMethod(t, "load", []models.Parameter{param("completion", "", callback)}, nil)
	loadCompletion := mustMethod(t, "loadCompletion", nil, ret(intType))

	artifact := &models.MockArtifact{
		ProtocolName: "Loader",
		Methods: []models.MethodMock{
			methodMock(load, FieldNames{Unique: "Load"}),
			methodMock(loadCompletion, FieldNames{Unique: "LoadCompletion"}),
		},
	}

	err := checkCollisions(artifact)
	require.Error(t, err)

	var collision *errors.NamingCollisionError
	require.True(t, errors.As(err, &collision))
	assert.Equal(t, "Loader", collision.Protocol)
	assert.Equal(t, "stubbedLoadCompletionResult", collision.Field)
	assert.Equal(t, []string{"load(completion:)", "loadCompletion()"}, collision.Owners)
	assert.Equal(t, errors.NamingCollisionErrorCode, errors.CodeOf(err))
	assert.True(t, errors.IsRecoverable(err))

	artifact.Methods[1] = methodMock(loadCompletion, FieldNames{Unique: "LoadCompletionInt"})
	assert.NoError(t, checkCollisions(artifact))
}

func TestSynthesize_Deterministic(t *testing.T) {
	synth := NewSynthesizer(Config{})
	proto := optionalProtocol(t)

	first, err := synth.Synthesize(proto)
	require.NoError(t, err)
	second, err := synth.Synthesize(proto)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

var optionalities = []models.Optionality{models.Required, models.Optional, models.ImplicitlyUnwrapped}

func TestSynthesize_OptionalityPreserved_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		labels := rapid.SliceOfNDistinct(rapid.SampledFrom(overloadLabels), 1, 5, rapid.ID[string]).Draw(rt, "labels")
		params := make([]models.Parameter, len(labels))
		kinds := make([]models.Optionality, len(labels))
		for i, label := range labels {
			kinds[i] = rapid.SampledFrom(optionalities).Draw(rt, "optionality")
			typ := rapid.SampledFrom(overloadTypes).Draw(rt, "type").Base().WithOptionality(kinds[i])
			params[i] = models.NewParameter(label, "", typ)
		}
		method, err := models.NewMethod("call", params, nil)
		if err != nil {
			rt.Fatalf("building method: %v", err)
		}

		artifact, err := NewSynthesizer(Config{}).Synthesize(&models.Protocol{Name: "P", Methods: []*models.Method{method}})
		if err != nil {
			rt.Fatalf("synthesize: %v", err)
		}

		fields := artifact.Methods[0].Parameters.ParameterFields()
		if len(fields) != len(params) {
			rt.Fatalf("expected %d recorded fields, got %d", len(params), len(fields))
		}
		for i, field := range fields {
			if field.Type.Optionality != kinds[i] {
				rt.Fatalf("field %s: optionality %s, declared %s", field.Name, field.Type.Optionality, kinds[i])
			}
		}

		holder := artifact.Methods[0].Parameters
		if len(params) == 1 && (len(holder.Fields) != 2 || !holder.Fields[1].Placeholder) {
			rt.Fatalf("single parameter holder must end in a placeholder, got %d fields", len(holder.Fields))
		}
	})
}

func TestSynthesize_OverloadGroupsAreDistinct_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 8).Draw(rt, "count")
		methods := make([]*models.Method, count)
		for i := range methods {
			methods[i] = drawOverload(rt, "method")
		}

		artifact, err := NewSynthesizer(Config{}).Synthesize(&models.Protocol{Name: "P", Methods: methods})
		if err != nil {
			rt.Fatalf("synthesize: %v", err)
		}

		seen := make(map[string]bool)
		for _, mm := range artifact.Methods {
			for _, name := range mm.TrackingFields() {
				if seen[name] {
					rt.Fatalf("tracking field %q generated twice", name)
				}
				seen[name] = true
			}
		}
	})
}

var (
	relatedNames = []string{
		"load", "Load", "loadParameters", "loadResult", "loadCompletion", "loadCompletionResult",
		"loadInt", "loadVoid", "loadVoid1", "invokedLoad", "stubbedLoad", "stubbedLoadResult",
	}
	relatedLabels = []string{"completion", "result", "parameters", "value", "handler"}
)

func drawRelatedParameter(rt *rapid.T, label string) models.TypeRef {
	switch rapid.IntRange(0, 2).Draw(rt, label+"-kind") {
	case 0:
		return intType
	case 1:
		return models.TypeRef{Kind: models.FunctionType, Arguments: []models.TypeRef{intType}}
	default:
		return models.TypeRef{Kind: models.FunctionType}
	}
}

func TestSynthesize_PrefixRelatedNamesNeverCollide_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		proto := &models.Protocol{Name: "Loader"}

		propNames := rapid.SliceOfNDistinct(rapid.SampledFrom(relatedNames), 0, 4, rapid.ID[string]).Draw(rt, "properties")
		for _, name := range propNames {
			proto.Properties = append(proto.Properties, models.Property{
				Name:     name,
				Type:     intType,
				Settable: rapid.Bool().Draw(rt, "settable"),
			})
		}

		count := rapid.IntRange(0, 6).Draw(rt, "count")
		for range count {
			labels := rapid.SliceOfNDistinct(rapid.SampledFrom(relatedLabels), 0, 2, rapid.ID[string]).Draw(rt, "labels")
			params := make([]models.Parameter, len(labels))
			for i, label := range labels {
				params[i] = models.NewParameter(label, "", drawRelatedParameter(rt, "param"))
			}
			var result *models.TypeRef
			if rapid.Bool().Draw(rt, "returns") {
				result = ret(intType)
			}
			method, err := models.NewMethod(rapid.SampledFrom(relatedNames).Draw(rt, "method"), params, result)
			if err != nil {
				rt.Fatalf("building method: %v", err)
			}
			proto.Methods = append(proto.Methods, method)
		}

		artifact, err := NewSynthesizer(Config{}).Synthesize(proto)
		if err != nil {
			rt.Fatalf("synthesize %s: %v", errors.CodeOf(err), err)
		}
		if len(artifact.Methods) != len(proto.Methods) {
			rt.Fatalf("expected %d method mocks, got %d", len(proto.Methods), len(artifact.Methods))
		}
	})
}
