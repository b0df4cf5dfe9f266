// Package mockrt executes a mock artifact in process. An Instance behaves
// like the generated Swift class: every call sets the invoked flag,
// overwrites the invoked-parameters holder, feeds stubbed arguments to
// callbacks and returns the stubbed result.
package mockrt

import (
	goerrors "errors"
	"fmt"
	"sync"

	"github.com/toyz/swiftmock/internal/models"
)

var (
	// ErrStubNotSet is returned when a stubbed result is read before a
	// test assigned it
	ErrStubNotSet = goerrors.New("stubbed value read before it was set")
	// ErrUnknownMethod is returned for a method the artifact does not declare
	ErrUnknownMethod = goerrors.New("unknown method")
	// ErrUnknownProperty is returned for a property the artifact does not declare
	ErrUnknownProperty = goerrors.New("unknown property")
	// ErrArity is returned when a call or stub has the wrong number of values
	ErrArity = goerrors.New("wrong number of arguments")
	// ErrNilRequired is returned when nil is passed where the declaration
	// is not optional
	ErrNilRequired = goerrors.New("nil value for a non-optional declaration")
	// ErrNotCallable is returned when a callback argument is not a Callback
	ErrNotCallable = goerrors.New("callback argument is not callable")
	// ErrReadOnly is returned when setting a get-only property
	ErrReadOnly = goerrors.New("property is get-only")
)

// Unit is the trailing placeholder of single-parameter holders
type Unit struct{}

// Callback is the Go stand-in for a Swift closure argument
type Callback func(args ...any)

type methodState struct {
	mock      models.MethodMock
	invoked   bool
	recorded  bool
	arguments []any
	closures  map[string][]any
	stub      any
	stubSet   bool
}

type propertyState struct {
	mock     models.PropertyMock
	assigned bool
	invoked  any
	stub     any
	stubSet  bool
}

// Instance is a live mock. It is safe for concurrent use.
type Instance struct {
	mu         sync.Mutex
	className  string
	methods    map[string]*methodState
	aliases    map[string]string
	properties map[string]*propertyState
}

// New creates a mock instance for an artifact. Methods can be addressed by
// their unique name (Mixed), their selector (mixed(unwrapped:optional:value:))
// or their plain name when no other method shares it.
func New(artifact *models.MockArtifact) *Instance {
	inst := &Instance{
		className:  artifact.ClassName,
		methods:    make(map[string]*methodState, len(artifact.Methods)),
		aliases:    make(map[string]string),
		properties: make(map[string]*propertyState, len(artifact.Properties)),
	}

	plain := make(map[string]int)
	for _, mm := range artifact.Methods {
		plain[mm.Method.Name]++
	}
	for _, mm := range artifact.Methods {
		inst.methods[mm.UniqueName] = &methodState{mock: mm, closures: make(map[string][]any)}
		inst.aliases[mm.Method.Selector()] = mm.UniqueName
		if plain[mm.Method.Name] == 1 {
			inst.aliases[mm.Method.Name] = mm.UniqueName
		}
	}
	for _, pm := range artifact.Properties {
		inst.properties[pm.Property.Name] = &propertyState{mock: pm}
	}
	return inst
}

func (i *Instance) method(name string) (*methodState, error) {
	if state, ok := i.methods[name]; ok {
		return state, nil
	}
	if unique, ok := i.aliases[name]; ok {
		return i.methods[unique], nil
	}
	return nil, fmt.Errorf("%s.%s: %w", i.className, name, ErrUnknownMethod)
}

func (i *Instance) property(name string) (*propertyState, error) {
	if state, ok := i.properties[name]; ok {
		return state, nil
	}
	return nil, fmt.Errorf("%s.%s: %w", i.className, name, ErrUnknownProperty)
}

type pendingCall struct {
	callback Callback
	args     []any
}

// Invoke calls a mocked method with one value per declared parameter,
// callbacks included. The invoked flag and parameters holder are updated
// before the stubbed result is read, as in the generated override.
func (i *Instance) Invoke(method string, args ...any) (any, error) {
	i.mu.Lock()
	state, err := i.method(method)
	if err != nil {
		i.mu.Unlock()
		return nil, err
	}

	params := state.mock.Method.Parameters
	if len(args) != len(params) {
		i.mu.Unlock()
		return nil, fmt.Errorf("%s: expected %d arguments, got %d: %w",
			state.mock.Method.Selector(), len(params), len(args), ErrArity)
	}

	var recorded []any
	var calls []pendingCall
	for idx, param := range params {
		arg := args[idx]
		if arg == nil && !param.Optionality().Nullable() {
			i.mu.Unlock()
			return nil, fmt.Errorf("%s: parameter '%s': %w", state.mock.Method.Selector(), param.Name, ErrNilRequired)
		}
		if !param.IsClosure() {
			recorded = append(recorded, arg)
			continue
		}
		if arg == nil {
			continue
		}
		callback, ok := asCallback(arg)
		if !ok {
			i.mu.Unlock()
			return nil, fmt.Errorf("%s: parameter '%s': %w", state.mock.Method.Selector(), param.Name, ErrNotCallable)
		}
		if values, stubbed := state.closures[param.Name]; stubbed {
			calls = append(calls, pendingCall{callback: callback, args: values})
		} else if !i.closureTakesArguments(state, param.Name) {
			calls = append(calls, pendingCall{callback: callback})
		}
	}
	if len(recorded) == 1 {
		recorded = append(recorded, Unit{})
	}

	state.invoked = true
	state.recorded = true
	state.arguments = recorded

	var result any
	if !state.mock.Method.IsVoid() {
		if !state.stubSet {
			err = fmt.Errorf("%s.%s: %w", i.className, state.mock.StubbedResult.Name, ErrStubNotSet)
		}
		result = state.stub
	}
	i.mu.Unlock()

	for _, call := range calls {
		call.callback(call.args...)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func asCallback(arg any) (Callback, bool) {
	switch fn := arg.(type) {
	case Callback:
		return fn, true
	case func(...any):
		return fn, true
	case func():
		return func(...any) { fn() }, true
	}
	return nil, false
}

func (i *Instance) closureTakesArguments(state *methodState, param string) bool {
	for _, closure := range state.mock.Closures {
		if closure.Parameter.Name == param {
			return closure.Field != nil
		}
	}
	return false
}

// Invoked reports the invoked flag of a method
func (i *Instance) Invoked(method string) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	state, err := i.method(method)
	if err != nil {
		return false, err
	}
	return state.invoked, nil
}

// InvokedParameters returns the arguments of the latest call, including the
// Unit placeholder of single-parameter methods. The boolean is false until
// the method has been called.
func (i *Instance) InvokedParameters(method string) ([]any, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	state, err := i.method(method)
	if err != nil {
		return nil, false, err
	}
	if !state.recorded {
		return nil, false, nil
	}
	values := make([]any, len(state.arguments))
	copy(values, state.arguments)
	return values, true, nil
}

// Stub assigns the stubbed result of a method
func (i *Instance) Stub(method string, value any) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	state, err := i.method(method)
	if err != nil {
		return err
	}
	if state.mock.StubbedResult == nil {
		return fmt.Errorf("%s returns Void: %w", state.mock.Method.Selector(), ErrUnknownMethod)
	}
	if value == nil && !state.mock.Method.Return.Optionality.Nullable() {
		return fmt.Errorf("%s: %w", state.mock.StubbedResult.Name, ErrNilRequired)
	}
	state.stub = value
	state.stubSet = true
	return nil
}

// StubbedResult reads the stubbed result of a method, failing with
// ErrStubNotSet when no value was assigned
func (i *Instance) StubbedResult(method string) (any, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	state, err := i.method(method)
	if err != nil {
		return nil, err
	}
	if state.mock.StubbedResult == nil {
		return nil, fmt.Errorf("%s returns Void: %w", state.mock.Method.Selector(), ErrUnknownMethod)
	}
	if !state.stubSet {
		return nil, fmt.Errorf("%s.%s: %w", i.className, state.mock.StubbedResult.Name, ErrStubNotSet)
	}
	return state.stub, nil
}

// StubClosure assigns the arguments passed to a callback parameter on
// every following call
func (i *Instance) StubClosure(method, param string, args ...any) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	state, err := i.method(method)
	if err != nil {
		return err
	}
	for _, closure := range state.mock.Closures {
		if closure.Parameter.Name != param {
			continue
		}
		if len(args) != len(closure.Arguments) || closure.Field == nil {
			return fmt.Errorf("%s: closure '%s' takes %d arguments: %w",
				state.mock.Method.Selector(), param, len(closure.Arguments), ErrArity)
		}
		state.closures[param] = args
		return nil
	}
	return fmt.Errorf("%s: no closure parameter '%s': %w", state.mock.Method.Selector(), param, ErrUnknownMethod)
}

// SetProperty assigns a settable property, recording the value in its
// invoked holder
func (i *Instance) SetProperty(name string, value any) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	state, err := i.property(name)
	if err != nil {
		return err
	}
	if state.mock.Invoked == nil {
		return fmt.Errorf("%s.%s: %w", i.className, name, ErrReadOnly)
	}
	if value == nil && !state.mock.Property.Type.Optionality.Nullable() {
		return fmt.Errorf("%s.%s: %w", i.className, name, ErrNilRequired)
	}
	state.invoked = value
	state.assigned = true
	return nil
}

// InvokedProperty returns the last value assigned to a property
func (i *Instance) InvokedProperty(name string) (any, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	state, err := i.property(name)
	if err != nil {
		return nil, false, err
	}
	return state.invoked, state.assigned, nil
}

// StubProperty assigns the value returned by a property getter
func (i *Instance) StubProperty(name string, value any) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	state, err := i.property(name)
	if err != nil {
		return err
	}
	if value == nil && !state.mock.Property.Type.Optionality.Nullable() {
		return fmt.Errorf("%s.%s: %w", i.className, state.mock.Stubbed.Name, ErrNilRequired)
	}
	state.stub = value
	state.stubSet = true
	return nil
}

// GetProperty reads a property through its getter
func (i *Instance) GetProperty(name string) (any, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	state, err := i.property(name)
	if err != nil {
		return nil, err
	}
	if !state.stubSet {
		return nil, fmt.Errorf("%s.%s: %w", i.className, state.mock.Stubbed.Name, ErrStubNotSet)
	}
	return state.stub, nil
}
