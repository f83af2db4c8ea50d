package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultTTL is the lifetime of an entry when a model does not configure one.
const DefaultTTL = time.Hour

// Options holds the per-model cache configuration.
type Options struct {
	// TTL is how long a stored result lives. Zero stores without expiry.
	TTL time.Duration
	// Policy decides cacheability for queries without an explicit override.
	Policy Policy
	// Namespace prefixes derived keys.
	Namespace string
	// Serializer, when set, rebinds the model's StoreDriver to encode with
	// it. It is not copied to derived models, which share the parent's
	// driver instead.
	Serializer Serializer
}

// DefaultOptions returns a ttl of one hour and a policy caching single-row
// lookups only.
func DefaultOptions() Options {
	return Options{
		TTL:       DefaultTTL,
		Policy:    DefaultPolicy(),
		Namespace: DefaultNamespace,
	}
}

// Validate checks the option values.
func (o Options) Validate() error {
	err := validation.ValidateStruct(&o,
		validation.Field(&o.TTL, validation.Min(time.Duration(0))),
		validation.Field(&o.Namespace, validation.Length(0, 64)),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid cache options").
			WithTextCode(TextCodeInvalidOptions)
	}
	return nil
}

// Inherit returns a copy of the options for a derived model. The serializer
// is cleared since it belongs to the driver the models share.
func (o Options) Inherit() Options {
	out := o
	out.Serializer = nil
	return out
}

// Override is a partial update applied on top of existing options. Nil
// fields leave the base value untouched.
type Override struct {
	TTL       *time.Duration
	Policy    *Policy
	Namespace *string
}

// Apply merges the override onto o and returns the result.
func (o Options) Apply(ov Override) Options {
	out := o
	if ov.TTL != nil {
		out.TTL = *ov.TTL
	}
	if ov.Policy != nil {
		out.Policy = *ov.Policy
	}
	if ov.Namespace != nil {
		out.Namespace = *ov.Namespace
	}
	return out
}

// SetOptions are the per-write options handed to Driver.Set.
type SetOptions struct {
	// TTL is applied through Expire after the value is stored. Zero skips it.
	TTL time.Duration
}

// Merge returns s with zero fields filled from defaults.
func (s SetOptions) Merge(defaults SetOptions) SetOptions {
	out := s
	if out.TTL == 0 {
		out.TTL = defaults.TTL
	}
	return out
}
