package state

import (
	"fmt"
	"net/url"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylecascade/config"
	"stylecascade/css"
	"stylecascade/style"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// StyleContext returns the style context described by the engine section
// of the configuration with configured properties registered. Registration
// failures are returned together with a usable context.
func (e *LocalEnv) StyleContext() (*style.Context, error) {
	if e.Styles != nil {
		return e.Styles, nil
	}
	if e.Cfg == nil {
		return nil, fmt.Errorf("configuration is not loaded")
	}
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	ctx, err := NewStyleContext(log, e.Cfg)
	if ctx != nil {
		e.Styles = ctx
	}
	return ctx, err
}

// NewStyleContext builds a style context from cfg.
func NewStyleContext(log *zap.Logger, cfg *config.Config) (*style.Context, error) {
	opts := style.Options{
		Medium:          cfg.Engine.Medium,
		DefaultFontSize: cfg.Engine.DefaultFontSize,
		Viewport:        style.Size{Width: cfg.Engine.Viewport.Width, Height: cfg.Engine.Viewport.Height},
		Environment:     cfg.Engine.Environment,
		InternCapacity:  cfg.Engine.InternCapacity,
	}
	if len(cfg.Engine.BaseURL) > 0 {
		base, err := url.Parse(cfg.Engine.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("bad base url '%s': %w", cfg.Engine.BaseURL, err)
		}
		opts.BaseURL = base
	}

	ctx := style.NewContext(log, opts)

	var err error
	for _, p := range cfg.Properties {
		reg := style.PropertyRegistration{
			Name:     p.Name,
			Syntax:   p.Syntax,
			Inherits: p.Inherits,
			Source:   style.SourceConfig,
		}
		if len(p.InitialValue) > 0 {
			reg.InitialValue = css.Tokenize(p.InitialValue)
		}
		if er := ctx.RegisterProperty(reg); er != nil {
			err = multierr.Append(err, fmt.Errorf("property %s: %w", p.Name, er))
		}
	}
	return ctx, err
}
