package cacheinfra

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/viccon/sturdyc"
)

// TextCodeInvalidConfig marks a rejected sturdyc sizing.
const TextCodeInvalidConfig = "INVALID_STURDYC_CONFIG"

// Config sizes an in-process sturdyc client used as a result store.
type Config struct {
	// Capacity is the entry limit across all shards.
	Capacity int
	// NumShards splits the client for concurrent access. It cannot exceed
	// Capacity.
	NumShards int
	// TTL applies client-wide. Per-query TTLs do not reach this store.
	TTL time.Duration
	// EvictionPercentage of entries is dropped when Capacity is reached.
	EvictionPercentage int
	// EvictionInterval overrides how often expired entries are swept. Zero
	// keeps the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig matches the default result TTL of one hour.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                time.Hour,
		EvictionPercentage: 10,
	}
}

// IsZero reports whether no field has been set.
func (c Config) IsZero() bool { return c == Config{} }

// Options returns the optional sturdyc settings. Sizing and TTL go to
// sturdyc.New directly.
func (c Config) Options() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}

// Validate checks the sizing.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1), validation.Max(c.Capacity)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Nanosecond)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid sturdyc config").
			WithTextCode(TextCodeInvalidConfig)
	}
	return nil
}

// IsInvalidConfig reports whether err came from Validate.
func IsInvalidConfig(err error) bool {
	var e *goerrors.Error
	return goerrors.As(err, &e) && e.TextCode == TextCodeInvalidConfig
}

// NewClient validates cfg and builds a client holding encoded result sets.
func NewClient(cfg Config) (*sturdyc.Client[[]byte], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.Options()...,
	), nil
}
