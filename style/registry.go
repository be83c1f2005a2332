package style

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"stylecascade/css"
)

var (
	ErrInvalidPropertyName = errors.New("not a custom property name")
	ErrInvalidSyntax       = errors.New("invalid syntax")
	ErrInvalidInitialValue = errors.New("invalid initial value")
	ErrAlreadyRegistered   = errors.New("already registered")
)

// RegistrationSource tells where a registration came from. Registrations
// from configuration cannot be replaced by @property rules.
type RegistrationSource uint8

const (
	SourceStylesheet RegistrationSource = iota
	SourceConfig
)

func (s RegistrationSource) String() string {
	if s == SourceConfig {
		return "config"
	}
	return "stylesheet"
}

// RegisteredProperty is a custom property with a declared syntax.
type RegisteredProperty struct {
	Name     string
	Syntax   *css.CustomPropertySyntax
	Inherits bool
	// InitialValue is nil only for the universal syntax without an
	// initial-value descriptor.
	InitialValue *CustomProperty
	Source       RegistrationSource
}

// Registry holds registered custom properties. It is shared by all styles
// built with one Context.
type Registry struct {
	log *zap.Logger

	mu         sync.RWMutex
	properties map[string]*RegisteredProperty
	generation uint64
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:        log.Named("registry"),
		properties: make(map[string]*RegisteredProperty),
	}
}

// Get returns the registration of name, or nil.
func (r *Registry) Get(name string) *RegisteredProperty {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.properties[name]
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.properties))
	for name := range r.properties {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Register adds an already validated registration. A configured property
// can be registered once and wins over @property rules, among @property
// rules the last one wins.
func (r *Registry) Register(p *RegisteredProperty) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.properties[p.Name]; ok {
		switch {
		case existing.Source == SourceConfig && p.Source == SourceConfig:
			return fmt.Errorf("register %s: %w", p.Name, ErrAlreadyRegistered)
		case existing.Source == SourceConfig:
			r.log.Debug("@property ignored, property registered by configuration", zap.String("name", p.Name))
			return nil
		}
		r.log.Debug("Replacing registration",
			zap.String("name", p.Name),
			zap.Stringer("source", p.Source),
			zap.Stringer("syntax", p.Syntax))
	}
	r.properties[p.Name] = p
	r.generation++
	return nil
}

func (r *Registry) currentGeneration() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generation
}
