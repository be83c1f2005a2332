package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rupor-github/gencfg"
	yaml "gopkg.in/yaml.v3"

	"stylecascade/css"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	ViewportConfig struct {
		Width  float64 `yaml:"width" validate:"gt=0"`
		Height float64 `yaml:"height" validate:"gt=0"`
	}

	EngineConfig struct {
		Medium          string            `yaml:"medium" validate:"required"`
		DefaultFontSize float64           `yaml:"default_font_size" validate:"gt=0"`
		Viewport        ViewportConfig    `yaml:"viewport"`
		InternCapacity  int               `yaml:"intern_capacity" validate:"min=1"`
		BaseURL         string            `yaml:"base_url" validate:"omitempty,url"`
		Environment     map[string]string `yaml:"environment"`
		VisitedLinks    []string          `yaml:"visited_links" validate:"dive,required"`
	}

	StylesheetsConfig struct {
		UserAgent bool     `yaml:"user_agent"`
		User      []string `yaml:"user" validate:"dive,required,filepath"`
	}

	// PropertyConfig registers a custom property the way an @property
	// rule does.
	PropertyConfig struct {
		Name         string `yaml:"name" validate:"required,startswith=--"`
		Syntax       string `yaml:"syntax" validate:"required"`
		Inherits     bool   `yaml:"inherits"`
		InitialValue string `yaml:"initial_value,omitempty"`
	}

	OutputConfig struct {
		Format DumpFormat `yaml:"format"`
		All    bool       `yaml:"all"`
	}

	Config struct {
		Version     int               `yaml:"version" validate:"eq=1"`
		Engine      EngineConfig      `yaml:"engine"`
		Stylesheets StylesheetsConfig `yaml:"stylesheets"`
		Properties  []PropertyConfig  `yaml:"properties" validate:"dive"`
		Output      OutputConfig      `yaml:"output"`
		Logging     LoggingConfig     `yaml:"logging"`
		Reporting   ReporterConfig    `yaml:"reporting"`
	}
)

// checkConfig validates what tags cannot: registration syntaxes and
// duplicate registrations.
func checkConfig(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	seen := make(map[string]struct{}, len(cfg.Properties))
	for i, p := range cfg.Properties {
		field := fmt.Sprintf("Properties[%d]", i)
		if _, ok := css.ParseCustomPropertySyntax(p.Syntax); !ok {
			sl.ReportError(p.Syntax, field+".Syntax", "Syntax", "css_syntax", "")
		}
		if _, dup := seen[p.Name]; dup {
			sl.ReportError(p.Name, field+".Name", "Name", "unique", "")
		}
		seen[p.Name] = struct{}{}
	}
	if !cfg.Output.Format.IsValid() {
		sl.ReportError(cfg.Output.Format, "Output.Format", "Format", "oneof", DumpFormatNames())
	}
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg, gencfg.WithAdditionalChecks(checkConfig)); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
