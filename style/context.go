package style

import (
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylecascade/css"
)

const (
	DefaultFontSize       = 16.0
	DefaultInternCapacity = 1024
	DefaultMedium         = "screen"
)

// Options configures a Context.
type Options struct {
	BaseURL         *url.URL
	Medium          string
	DefaultFontSize float64
	Viewport        Size
	// Environment adds or overrides env() variables.
	Environment map[string]string
	// InternCapacity bounds the number of distinct inline styles kept.
	InternCapacity int
}

var defaultEnvironment = map[string]string{
	"safe-area-inset-top":    "0px",
	"safe-area-inset-right":  "0px",
	"safe-area-inset-bottom": "0px",
	"safe-area-inset-left":   "0px",
}

// PropertyRegistration is an @property rule or its configured equivalent.
type PropertyRegistration struct {
	Name     string
	Syntax   string
	Inherits bool
	// InitialValue is nil when no initial value is given.
	InitialValue []css.Token
	Source       RegistrationSource
}

// Context owns what styles of one document share: the custom property
// registry, the environment, the parser and the inline style cache.
type Context struct {
	log         *zap.Logger
	builderLog  *zap.Logger
	opts        Options
	registry    *Registry
	environment map[string]*css.VariableData
	inline      *internCache[[]css.Declaration]

	parseMu sync.Mutex
	parser  *css.Parser

	mu                sync.Mutex
	base              *RenderStyle
	initial           *RenderStyle
	initialGeneration uint64
}

// NewContext creates a context. Zero options take defaults.
func NewContext(log *zap.Logger, opts Options) *Context {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DefaultFontSize <= 0 {
		opts.DefaultFontSize = DefaultFontSize
	}
	if opts.InternCapacity <= 0 {
		opts.InternCapacity = DefaultInternCapacity
	}
	if opts.Medium == "" {
		opts.Medium = DefaultMedium
	}
	if opts.Viewport.Width <= 0 || opts.Viewport.Height <= 0 {
		opts.Viewport = Size{Width: 1024, Height: 768}
	}

	pctx := css.ParserContext{BaseURL: opts.BaseURL}
	c := &Context{
		log:         log,
		builderLog:  log.Named("style-builder"),
		opts:        opts,
		registry:    NewRegistry(log),
		environment: make(map[string]*css.VariableData, len(defaultEnvironment)+len(opts.Environment)),
		inline:      newInternCache[[]css.Declaration](opts.InternCapacity),
		parser:      css.NewParser(log, pctx),
	}
	for name, value := range defaultEnvironment {
		c.environment[name] = css.NewVariableData(css.Tokenize(value), pctx)
	}
	for name, value := range opts.Environment {
		c.environment[name] = css.NewVariableData(css.TrimWhitespace(css.Tokenize(value)), pctx)
	}
	return c
}

// Logger returns the context logger.
func (c *Context) Logger() *zap.Logger { return c.log }

// Options returns the effective options.
func (c *Context) Options() Options { return c.opts }

// Registry returns the custom property registry.
func (c *Context) Registry() *Registry { return c.registry }

// ParserContext returns the context declarations are parsed with.
func (c *Context) ParserContext() css.ParserContext {
	return css.ParserContext{BaseURL: c.opts.BaseURL}
}

// Environment returns the value of an env() variable.
func (c *Context) Environment(name string) (*css.VariableData, bool) {
	data, ok := c.environment[name]
	return data, ok
}

// ParseStylesheet parses a stylesheet.
func (c *Context) ParseStylesheet(data []byte, source string) *css.Stylesheet {
	c.parseMu.Lock()
	defer c.parseMu.Unlock()
	return c.parser.Parse(data, source)
}

// ParseInlineStyle parses a style attribute. Equal attribute text yields
// the same declarations, so values with references share their
// substitution cache.
func (c *Context) ParseInlineStyle(text string) []css.Declaration {
	return c.inline.getOrCreate(text, func() []css.Declaration {
		c.parseMu.Lock()
		defer c.parseMu.Unlock()
		decls, _ := c.parser.ParseInlineStyle(text)
		return decls
	})
}

// RegisterProperty validates a registration and adds it to the registry.
func (c *Context) RegisterProperty(reg PropertyRegistration) error {
	if !css.IsCustomPropertyName(reg.Name) {
		return fmt.Errorf("register %q: %w", reg.Name, ErrInvalidPropertyName)
	}
	syntax, ok := css.ParseCustomPropertySyntax(reg.Syntax)
	if !ok {
		return fmt.Errorf("register %s: %w %q", reg.Name, ErrInvalidSyntax, reg.Syntax)
	}

	prop := &RegisteredProperty{
		Name:     reg.Name,
		Syntax:   syntax,
		Inherits: reg.Inherits,
		Source:   reg.Source,
	}

	tokens := css.TrimWhitespace(reg.InitialValue)
	if len(tokens) > 0 {
		r := css.NewTokenRange(tokens)
		if _, wide := css.ParseCSSWideKeyword(&r); wide {
			return fmt.Errorf("register %s: %w: CSS-wide keyword", reg.Name, ErrInvalidInitialValue)
		}
		if css.NewVariableData(tokens, c.ParserContext()).NeedsVariableResolution() {
			return fmt.Errorf("register %s: %w: contains references", reg.Name, ErrInvalidInitialValue)
		}
	}

	if syntax.IsUniversal() {
		if len(tokens) > 0 {
			prop.InitialValue = NewCustomPropertyWithData(reg.Name, css.NewVariableData(tokens, c.ParserContext()))
		}
	} else {
		if len(tokens) == 0 {
			return fmt.Errorf("register %s: %w: required for syntax %s", reg.Name, ErrInvalidInitialValue, syntax)
		}
		if !css.CollectParsedCustomPropertyValueDependencies(syntax, tokens).IsComputationallyIndependent() {
			return fmt.Errorf("register %s: %w: not computationally independent", reg.Name, ErrInvalidInitialValue)
		}
		base := c.baseStyle()
		state := newBuilderState(BuilderContext{Context: c, ParentStyle: base, RootElementStyle: base}, base.clone())
		prop.InitialValue = ParseTypedCustomPropertyInitialValue(reg.Name, syntax, tokens, state)
		if prop.InitialValue == nil {
			return fmt.Errorf("register %s: %w: %q does not match %s", reg.Name, ErrInvalidInitialValue, css.Serialize(tokens), syntax)
		}
	}

	return c.registry.Register(prop)
}

// RegisterPropertyRules registers the @property rules of a stylesheet.
// Invalid rules are skipped and reported together.
func (c *Context) RegisterPropertyRules(rules []css.PropertyRule) (err error) {
	for _, rule := range rules {
		err = multierr.Append(err, c.RegisterProperty(PropertyRegistration{
			Name:         rule.Name,
			Syntax:       rule.Syntax,
			Inherits:     rule.Inherits,
			InitialValue: rule.InitialValue,
			Source:       SourceStylesheet,
		}))
	}
	return err
}

// InitialStyle returns the style of an element with no declarations and no
// parent. It is rebuilt when the registry changes and must not be modified.
func (c *Context) InitialStyle() *RenderStyle {
	c.mu.Lock()
	defer c.mu.Unlock()

	generation := c.registry.currentGeneration()
	if c.initial != nil && c.initialGeneration == generation {
		return c.initial
	}
	s := c.baseStyleLocked().clone()
	for _, name := range c.registry.Names() {
		if p := c.registry.Get(name); p != nil && p.InitialValue != nil {
			s.SetCustomPropertyValue(p.InitialValue, p.Inherits)
		}
	}
	s.ownsInheritedCustom, s.ownsNonInheritedCustom = false, false
	c.initial, c.initialGeneration = s, generation
	return s
}

// NewStyle creates the style an element starts from before its own
// declarations are applied: initial values with the inherited properties of
// parent, if any.
func (c *Context) NewStyle(parent *RenderStyle) *RenderStyle {
	s := c.InitialStyle().clone()
	if parent != nil {
		s.inheritFrom(parent)
	}
	return s
}

func (c *Context) baseStyle() *RenderStyle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseStyleLocked()
}

// baseStyleLocked returns standard property initial values, computed once.
func (c *Context) baseStyleLocked() *RenderStyle {
	if c.base != nil {
		return c.base
	}
	fs := c.opts.DefaultFontSize
	in := computeInput{
		conv:             LengthConversion{FontSize: fs, RootFontSize: fs, Viewport: c.opts.Viewport},
		parentFontSize:   fs,
		parentFontWeight: 400,
		parentColor:      css.ColorValue(blackColor),
		defaultFontSize:  fs,
	}

	s := &RenderStyle{}
	for id := css.FirstTopPriorityProperty; id < css.NumProperties; id++ {
		if id.IsShorthand() || id.IsDirectionAware() {
			continue
		}
		v, ok := css.ParsePropertyValue(id, css.Tokenize(id.InitialValueText()), css.ParserContext{})
		if !ok {
			panic(fmt.Sprintf("style: initial value %q of %s does not parse", id.InitialValueText(), id))
		}
		s.SetValue(id, computeValue(id, v, in))
	}
	s.updateFont()
	c.base = s
	return s
}
