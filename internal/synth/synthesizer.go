package synth

import (
	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/models"
)

// DefaultClassPrefix is prepended to the protocol name to name the mock
const DefaultClassPrefix = "Mock"

// Config controls the shape of synthesized mocks
type Config struct {
	ClassPrefix string // defaults to DefaultClassPrefix
	Access      string // "public" or empty
}

// Synthesizer turns protocol declarations into mock artifacts. It keeps no
// state between calls and may be shared across goroutines.
type Synthesizer struct {
	config Config
}

// NewSynthesizer creates a synthesizer
func NewSynthesizer(config Config) *Synthesizer {
	if config.ClassPrefix == "" {
		config.ClassPrefix = DefaultClassPrefix
	}
	return &Synthesizer{config: config}
}

var (
	boolType = models.Named("Bool")
	voidType = models.Named("Void")
)

// Synthesize builds the mock artifact for a protocol whose inherited
// requirements have already been merged in
func (s *Synthesizer) Synthesize(proto *models.Protocol) (*models.MockArtifact, error) {
	artifact := &models.MockArtifact{
		ClassName:    s.config.ClassPrefix + proto.Name,
		ProtocolName: proto.Name,
		Conformances: []string{proto.Name},
		Access:       s.config.Access,
		Location:     proto.Location,
	}

	for _, assoc := range proto.AssociatedTypes {
		param := assoc.Name
		if assoc.Constraint != "" {
			param += ": " + assoc.Constraint
		}
		artifact.GenericParameters = append(artifact.GenericParameters, param)
	}

	propNames, names := UniqueNames(proto.Properties, proto.Methods)
	for i, prop := range proto.Properties {
		artifact.Properties = append(artifact.Properties, propertyMock(prop, FieldNames{Unique: propNames[i]}))
	}
	for i, method := range proto.Methods {
		artifact.Methods = append(artifact.Methods, methodMock(method, FieldNames{Unique: names[i]}))
	}

	if err := checkCollisions(artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}

func propertyMock(prop models.Property, names FieldNames) models.PropertyMock {
	base := prop.Type.StorageType().Base()
	pm := models.PropertyMock{
		Property: prop,
		Static:   prop.Static,
		Stubbed: models.Field{
			Name: names.Stubbed(),
			Type: base.Optionalized(models.ImplicitlyUnwrapped),
		},
	}
	if prop.Settable {
		pm.Invoked = &models.Field{
			Name: names.Invoked(),
			Type: base.Optionalized(models.Optional),
		}
	}
	return pm
}

var anyType = models.Named("Any")

// erasure stores types that mention a method's own generic parameters as
// Any, since those parameters are out of scope at class level
type erasure map[string]bool

func (e erasure) apply(typ models.TypeRef) (models.TypeRef, bool) {
	if !typ.Mentions(e) {
		return typ, false
	}
	return anyType.WithOptionality(typ.Optionality), true
}

// castTarget spells typ for an `as!` cast; `!` is not allowed there
func castTarget(typ models.TypeRef) string {
	if typ.Optionality == models.ImplicitlyUnwrapped {
		typ = typ.WithOptionality(models.Optional)
	}
	return typ.String()
}

func methodMock(method *models.Method, names FieldNames) models.MethodMock {
	generics := erasure(method.GenericNames())
	mm := models.MethodMock{
		Method:     method,
		UniqueName: names.Unique,
		Static:     method.IsStatic(),
		Invoked: models.Field{
			Name:    names.Invoked(),
			Type:    boolType,
			Initial: "false",
		},
		Parameters: models.ParametersHolder{Name: names.Parameters()},
	}

	for _, param := range method.RecordedParameters() {
		typ, _ := generics.apply(param.RecordedType())
		mm.Parameters.Fields = append(mm.Parameters.Fields, models.TupleField{
			Name: param.Name,
			Type: typ,
		})
	}
	if len(mm.Parameters.Fields) == 1 {
		mm.Parameters.Fields = append(mm.Parameters.Fields, models.TupleField{
			Type:        voidType,
			Placeholder: true,
		})
	}

	for _, param := range method.ClosureParameters() {
		mm.Closures = append(mm.Closures, closureStub(param, names, generics))
	}

	if !method.IsVoid() {
		result := method.Return.StorageType()
		stored, erased := generics.apply(result.Base())
		if erased {
			mm.ResultCast = castTarget(result)
		}
		mm.StubbedResult = &models.Field{
			Name: names.StubbedResult(),
			Type: stored.Optionalized(models.ImplicitlyUnwrapped),
		}
	}
	return mm
}

// closureStub prepares the arguments a mock passes to a callback. A
// closure taking no arguments is simply called.
func closureStub(param models.Parameter, names FieldNames, generics erasure) models.ClosureStub {
	fn, _ := param.Type.Closure()
	args := make([]models.TypeRef, 0, len(fn.Arguments))
	for _, arg := range fn.Arguments {
		args = append(args, arg.StorageType())
	}
	if len(args) == 1 && args[0].IsVoid() {
		args = nil
	}

	var casts []string
	for i, arg := range args {
		stored, erased := generics.apply(arg)
		if !erased {
			continue
		}
		if casts == nil {
			casts = make([]string, len(args))
		}
		casts[i] = castTarget(arg)
		args[i] = stored
	}

	stub := models.ClosureStub{Parameter: param, Arguments: args, Casts: casts}
	switch len(args) {
	case 0:
	case 1:
		stub.Field = &models.Field{
			Name: names.ClosureResult(param.Name),
			Type: args[0].Optionalized(models.Optional),
		}
	default:
		stub.Field = &models.Field{
			Name: names.ClosureResult(param.Name),
			Type: models.TypeRef{Kind: models.TupleType, Arguments: args, Optionality: models.Optional},
		}
	}
	return stub
}

// propertyMembers lists the class members a property mock declares
func propertyMembers(pm models.PropertyMock) []string {
	members := []string{pm.Property.Name}
	if pm.Invoked != nil {
		members = append(members, pm.Invoked.Name)
	}
	return append(members, pm.Stubbed.Name)
}

// methodMembers lists the stored members a method mock declares
func methodMembers(mm models.MethodMock) []string {
	members := []string{mm.Invoked.Name, mm.Parameters.Name}
	for _, closure := range mm.Closures {
		if closure.Field != nil {
			members = append(members, closure.Field.Name)
		}
	}
	if mm.StubbedResult != nil {
		members = append(members, mm.StubbedResult.Name)
	}
	return members
}

// checkCollisions verifies that no two declarations produced the same
// member name in the mock class. UniqueNames never yields one, so a
// collision here is a naming bug.
func checkCollisions(artifact *models.MockArtifact) error {
	owners := make(map[string]string)
	var collisions *errors.MultipleErrors
	claim := func(names []string, owner string) {
		for _, name := range names {
			if first, exists := owners[name]; exists {
				errors.AddToMultiple(&collisions,
					errors.NewNamingCollisionError(artifact.ProtocolName, name, first, owner).
						WithLocation(artifact.Location))
				continue
			}
			owners[name] = owner
		}
	}

	for _, pm := range artifact.Properties {
		claim(propertyMembers(pm), "var "+pm.Property.Name)
	}
	for _, mm := range artifact.Methods {
		claim(methodMembers(mm), mm.Method.Selector())
	}

	if collisions != nil && collisions.Count() == 1 {
		return collisions.Errors[0]
	}
	return collisions.ErrOrNil()
}
