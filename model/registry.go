package model

import (
	"sort"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-query-cache/cache"
)

// Text codes for registry failures.
const (
	TextCodeInvalidType   = "INVALID_MODEL_TYPE"
	TextCodeDuplicateType = "DUPLICATE_MODEL_TYPE"
	TextCodeUnknownType   = "UNKNOWN_MODEL_TYPE"
)

// TextCodeSerializerNotBindable marks a serializer configured for a driver
// that does not encode through a cache.StoreDriver.
const TextCodeSerializerNotBindable = "SERIALIZER_NOT_BINDABLE"

// Registry resolves and holds entity types. Options are resolved once, at
// registration, so later changes to a parent never reach its derived types.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*Type)}
}

// Register adds a root type.
func (r *Registry) Register(cfg Config) (*Type, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	opts := cache.DefaultOptions()
	if cfg.Options != nil {
		opts = *cfg.Options
	}
	if opts.Namespace == "" {
		opts.Namespace = cache.DefaultNamespace
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	drv, err := bindSerializer(cfg.Name, cfg.Driver, opts.Serializer)
	if err != nil {
		return nil, err
	}

	t := &Type{
		name:       cfg.Name,
		table:      cfg.Table,
		primaryKey: cfg.PrimaryKey,
		options:    opts,
		driver:     drv,
	}
	if t.table == "" {
		t.table = defaultTable(cfg.Name)
	}
	if t.primaryKey == "" {
		t.primaryKey = DefaultPrimaryKey
	}
	return t, r.add(t)
}

// Derive registers name as a subtype of parent. The child gets a copy of the
// parent's options with ov applied on top, the parent's table and primary
// key, and the parent's driver.
func (r *Registry) Derive(parent, name string, ov cache.Override) (*Type, error) {
	p, err := r.Lookup(parent)
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(name, validation.Required); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid derived type name").
			WithTextCode(TextCodeInvalidType)
	}

	opts := p.options.Inherit().Apply(ov)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	t := &Type{
		name:       name,
		table:      p.table,
		primaryKey: p.primaryKey,
		options:    opts,
		driver:     p.driver,
		parent:     p,
	}
	return t, r.add(t)
}

// Get returns the type registered under name.
func (r *Registry) Get(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// Lookup is Get returning an error for unregistered names.
func (r *Registry) Lookup(name string) (*Type, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, unknownType(name)
	}
	return t, nil
}

// MustGet is Get for names known to be registered.
func (r *Registry) MustGet(name string) *Type {
	t, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Names lists the registered types in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for n := range r.types {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) add(t *Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.name]; exists {
		return goerrors.New("model type already registered", goerrors.CategoryConflict).
			WithTextCode(TextCodeDuplicateType).
			WithMetadata(map[string]any{"type": t.name})
	}
	r.types[t.name] = t
	return nil
}

// bindSerializer returns a copy of drv that encodes with s. The caller's
// driver keeps its own serializer.
func bindSerializer(name string, drv cache.Driver, s cache.Serializer) (cache.Driver, error) {
	if s == nil {
		return drv, nil
	}
	sd, ok := drv.(*cache.StoreDriver)
	if !ok {
		return nil, goerrors.New("serializer requires a cache.StoreDriver", goerrors.CategoryValidation).
			WithTextCode(TextCodeSerializerNotBindable).
			WithMetadata(map[string]any{"type": name})
	}
	return sd.With(cache.WithSerializer(s)), nil
}

func validateConfig(cfg Config) error {
	err := validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Name, validation.Required),
		validation.Field(&cfg.Driver, validation.Required),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid model type").
			WithTextCode(TextCodeInvalidType)
	}
	return nil
}

func unknownType(name string) error {
	return goerrors.New("model type not registered", goerrors.CategoryNotFound).
		WithTextCode(TextCodeUnknownType).
		WithMetadata(map[string]any{"type": name})
}

// IsUnknownType reports whether err was raised for an unregistered type.
func IsUnknownType(err error) bool { return hasTextCode(err, TextCodeUnknownType) }

// IsDuplicateType reports whether err was raised for a name already taken.
func IsDuplicateType(err error) bool { return hasTextCode(err, TextCodeDuplicateType) }

func hasTextCode(err error, code string) bool {
	var e *goerrors.Error
	return goerrors.As(err, &e) && e.TextCode == code
}
