package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/toyz/swiftmock/internal/errors"
	"github.com/toyz/swiftmock/internal/generator"
	"github.com/toyz/swiftmock/internal/templates"
	"github.com/toyz/swiftmock/internal/utils"
)

// DefaultConfigFile is read from the working directory when no config
// path is given
const DefaultConfigFile = ".swiftmock.yaml"

// Config holds the configuration for the CLI generator. It is read from
// YAML and then overridden by command-line flags.
type Config struct {
	// Output is the directory mocks are written to. Empty writes every
	// mock next to the source file that declares the protocol.
	Output string `yaml:"output"`

	ClassPrefix     string   `yaml:"class_prefix"`
	FileSuffix      string   `yaml:"file_suffix"`
	Access          string   `yaml:"access"`
	EmptyParameters string   `yaml:"empty_parameters"`
	Header          []string `yaml:"header"`
	Workers         int      `yaml:"workers"`

	// Include and Exclude are glob patterns matched against the file name
	// and the slash-separated path of every scanned source
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() Config {
	return Config{
		FileSuffix:      generator.DefaultFileSuffix,
		EmptyParameters: string(templates.EmptyParametersRecord),
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig. With an
// empty path DefaultConfigFile is tried and may be absent; an explicit path
// must exist. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return config, nil
		}
		return config, errors.WrapConfigurationError(path, "read", err)
	}

	if err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict()); err != nil {
		return config, errors.WrapConfigurationError(path, "parse", err).
			WithSuggestion("Known keys: output, class_prefix, file_suffix, access, empty_parameters, header, workers, include, exclude")
	}

	return config, config.Validate()
}

// Validate checks every setting and returns the first invalid one as a
// ConfigurationError
func (c Config) Validate() error {
	checks := []struct {
		key string
		err error
	}{
		{"class_prefix", utils.IsSwiftIdentifier("class_prefix")(c.ClassPrefix)},
		{"file_suffix", utils.IsSwiftIdentifier("file_suffix")(c.FileSuffix)},
		{"access", utils.IsOneOf("access", "", "public")(c.Access)},
		{"empty_parameters", utils.IsOneOf("empty_parameters", "",
			string(templates.EmptyParametersRecord), string(templates.EmptyParametersOmit))(c.EmptyParameters)},
		{"workers", utils.AtLeast("workers", 0)(c.Workers)},
		{"include", utils.ValidateEach("include", utils.IsGlobPattern("include"))(c.Include)},
		{"exclude", utils.ValidateEach("exclude", utils.IsGlobPattern("exclude"))(c.Exclude)},
	}

	for _, check := range checks {
		if check.err == nil {
			continue
		}
		message := check.err.Error()
		var validationErr utils.ValidationError
		if errors.As(check.err, &validationErr) {
			message = validationErr.Message
		}
		return errors.ConfigurationError(check.key, message)
	}

	for _, line := range c.Header {
		if strings.ContainsAny(line, "\r\n") {
			return errors.ConfigurationError("header", "each entry must be a single line").
				WithSuggestion("Split multi-line headers into one list item per line")
		}
	}
	return nil
}

// GeneratorConfig converts the settings for the mock generator
func (c Config) GeneratorConfig() generator.Config {
	return generator.Config{
		ClassPrefix: c.ClassPrefix,
		Access:      c.Access,
		FileSuffix:  c.FileSuffix,
		Workers:     c.Workers,
		Render: templates.Options{
			EmptyParameters: templates.EmptyParameters(c.EmptyParameters),
			Header:          c.Header,
		},
	}
}

// MockSuffix returns the file suffix of generated mocks
func (c Config) MockSuffix() string {
	if c.FileSuffix == "" {
		return generator.DefaultFileSuffix
	}
	return c.FileSuffix
}

// OutputPath returns where the mock file name produced from source goes
func (c Config) OutputPath(source, fileName string) string {
	if c.Output != "" {
		return filepath.Join(c.Output, fileName)
	}
	return filepath.Join(filepath.Dir(source), fileName)
}
