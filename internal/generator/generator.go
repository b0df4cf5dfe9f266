package generator

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/models"
	"github.com/toyz/swiftmock/internal/parser"
	"github.com/toyz/swiftmock/internal/registry"
	"github.com/toyz/swiftmock/internal/synth"
	"github.com/toyz/swiftmock/internal/templates"
)

// DefaultFileSuffix is appended to the protocol name to name mock files
const DefaultFileSuffix = "Mock"

// Unit is one Swift source handed to the generator
type Unit struct {
	Name   string // file path or any label used in messages
	Source string
}

// Result is the outcome for one protocol of a unit. Either Content is the
// rendered mock or Err explains why the protocol was skipped.
type Result struct {
	Unit     string
	Protocol string
	FileName string // <Protocol><FileSuffix>.swift
	Content  string
	Err      error
	Warnings []string
}

// OK reports whether a mock was produced
func (r Result) OK() bool {
	return r.Err == nil
}

// Config controls the generator
type Config struct {
	ClassPrefix string
	Access      string
	FileSuffix  string
	Workers     int // defaults to GOMAXPROCS
	Render      templates.Options
}

// Generator implements the MockGenerator interface. Units are parsed
// concurrently, protocols are indexed in input order and mocks are then
// synthesized concurrently; results keep input order.
type Generator struct {
	config      Config
	parser      parser.ProtocolParser
	synthesizer *synth.Synthesizer
	renderer    *templates.Renderer
}

// NewGenerator creates a new mock generator
func NewGenerator(config Config) (*Generator, error) {
	if config.FileSuffix == "" {
		config.FileSuffix = DefaultFileSuffix
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	switch config.Access {
	case "", "public":
	default:
		return nil, errors.ConfigurationError("access",
			fmt.Sprintf("unsupported access level '%s'", config.Access)).
			WithSuggestion("Use 'public' or leave it empty")
	}

	renderer, err := templates.NewRenderer(config.Render)
	if err != nil {
		return nil, err
	}

	return &Generator{
		config:      config,
		parser:      parser.NewParser(),
		synthesizer: synth.NewSynthesizer(synth.Config{ClassPrefix: config.ClassPrefix, Access: config.Access}),
		renderer:    renderer,
	}, nil
}

// Generate produces the mocks of a single unit
func (g *Generator) Generate(unit Unit) ([]Result, error) {
	return g.GenerateBatch(context.Background(), []Unit{unit})
}

type parsedUnit struct {
	protocols []*models.Protocol
	err       error
}

type job struct {
	unit      string
	protocol  *models.Protocol
	warnings  []string
	failure   error
	resultIdx int
}

// GenerateBatch produces the mocks of every protocol in units. A protocol
// that fails is reported in its Result and skipped; the returned error
// collects all such failures in an *errors.MultipleErrors, or is the
// context error when ctx is cancelled.
func (g *Generator) GenerateBatch(ctx context.Context, units []Unit) ([]Result, error) {
	parsed := make([]parsedUnit, len(units))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.config.Workers)
	for i, unit := range units {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			protocols, err := g.parser.ParseSource(unit.Name, unit.Source)
			parsed[i] = parsedUnit{protocols: protocols, err: err}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	jobs, index := g.plan(units, parsed)

	results := make([]Result, len(jobs))
	group, groupCtx = errgroup.WithContext(ctx)
	group.SetLimit(g.config.Workers)
	for i, j := range jobs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = g.run(index, j)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var failures *errors.MultipleErrors
	for _, result := range results {
		if result.Err != nil {
			errors.AddToMultiple(&failures, asMockError(result.Err))
		}
	}
	return results, failures.ErrOrNil()
}

// plan registers every parsed protocol and lays out one job per protocol
// or parse failure, in input order
func (g *Generator) plan(units []Unit, parsed []parsedUnit) ([]job, registry.ProtocolRegistry) {
	index := registry.NewProtocolRegistry()
	declaredIn := make(map[string]string)

	var jobs []job
	for i, unit := range units {
		for _, proto := range parsed[i].protocols {
			j := job{unit: unit.Name, protocol: proto}
			if err := index.Register(proto); err != nil {
				j.warnings = append(j.warnings, fmt.Sprintf(
					"protocol '%s' is also declared in %s; inherited requirements resolve to that declaration",
					proto.Name, declaredIn[proto.Name]))
			} else {
				declaredIn[proto.Name] = unit.Name
			}
			jobs = append(jobs, j)
		}
		for _, failure := range failuresOf(parsed[i].err) {
			jobs = append(jobs, job{unit: unit.Name, failure: failure})
		}
	}
	return jobs, index
}

func (g *Generator) run(index registry.ProtocolRegistry, j job) Result {
	if j.failure != nil {
		return Result{Unit: j.unit, Protocol: protocolOf(j.failure), Err: j.failure}
	}

	result := Result{
		Unit:     j.unit,
		Protocol: j.protocol.Name,
		FileName: j.protocol.Name + g.config.FileSuffix + ".swift",
		Warnings: j.warnings,
	}

	resolution := index.Flatten(j.protocol)
	for _, missing := range resolution.Unresolved {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"protocol '%s' inherits '%s', which is not declared in this batch; its requirements are not mocked",
			j.protocol.Name, missing))
	}
	for _, member := range resolution.Protocol.Unsupported {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"%s: %s requirement '%s' is not mocked", member.Location, member.Kind, member.Text))
	}

	artifact, err := g.synthesizer.Synthesize(resolution.Protocol)
	if err != nil {
		result.Err = err
		return result
	}

	content, err := g.renderer.Render(artifact)
	if err != nil {
		result.Err = err
		return result
	}
	result.Content = content
	return result
}

// failuresOf splits a parse error into its per-protocol failures
func failuresOf(err error) []error {
	if err == nil {
		return nil
	}
	var multiple *errors.MultipleErrors
	if errors.As(err, &multiple) {
		failures := make([]error, 0, multiple.Count())
		for _, failure := range multiple.Errors {
			failures = append(failures, failure)
		}
		return failures
	}
	return []error{err}
}

// protocolOf returns the protocol a failure is attributed to, if any
func protocolOf(err error) string {
	mockErr, ok := errors.AsMockError(err)
	if !ok {
		return ""
	}
	if name, ok := mockErr.Context()["protocol"].(string); ok {
		return name
	}
	return ""
}

func asMockError(err error) errors.MockError {
	if mockErr, ok := errors.AsMockError(err); ok {
		return mockErr
	}
	return errors.Wrap(errors.UnknownErrorCode, err.Error(), err)
}
