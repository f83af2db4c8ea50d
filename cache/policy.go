package cache

import (
	"bytes"
	"strconv"

	goerrors "github.com/goliatone/go-errors"
)

// LimitRule configures how a query's LIMIT participates in the cacheability
// decision. The zero value is off.
type LimitRule struct {
	enabled bool
	any     bool
	max     int
}

// LimitOff disables the limit rule, leaving the decision to Policy.Always.
func LimitOff() LimitRule { return LimitRule{} }

// LimitAny caches every query carrying a limit, whatever its value.
func LimitAny() LimitRule { return LimitRule{enabled: true, any: true} }

// LimitMax caches queries whose limit is at most n.
func LimitMax(n int) LimitRule { return LimitRule{enabled: true, max: n} }

// Enabled reports whether the rule takes part in the decision.
func (r LimitRule) Enabled() bool { return r.enabled }

// Allows reports whether a query limited to limit rows satisfies the rule.
func (r LimitRule) Allows(limit int) bool {
	if !r.enabled {
		return false
	}
	return r.any || r.max >= limit
}

func (r LimitRule) String() string {
	switch {
	case !r.enabled:
		return "false"
	case r.any:
		return "true"
	default:
		return strconv.Itoa(r.max)
	}
}

// ParseLimitRule reads the textual forms "false", "true" or a non-negative
// integer.
func ParseLimitRule(s string) (LimitRule, error) {
	switch s {
	case "", "false":
		return LimitOff(), nil
	case "true":
		return LimitAny(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return LimitRule{}, goerrors.New("invalid limit rule: want true, false or a non-negative integer", goerrors.CategoryValidation).
			WithTextCode(TextCodeInvalidOptions).
			WithMetadata(map[string]any{"if_limit": s})
	}
	return LimitMax(n), nil
}

// MarshalText renders the rule in the form ParseLimitRule reads.
func (r LimitRule) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText parses the rule from configuration text.
func (r *LimitRule) UnmarshalText(text []byte) error {
	rule, err := ParseLimitRule(string(text))
	if err != nil {
		return err
	}
	*r = rule
	return nil
}

// MarshalJSON writes the rule as a JSON boolean or number.
func (r LimitRule) MarshalJSON() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalJSON accepts a boolean, a number or a quoted form of either.
func (r *LimitRule) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*r = LimitOff()
		return nil
	}
	if s, err := strconv.Unquote(string(data)); err == nil {
		return r.UnmarshalText([]byte(s))
	}
	return r.UnmarshalText(data)
}

// Policy is the default cacheability rule for a model type.
type Policy struct {
	// Always caches every query the limit rule does not accept.
	Always bool `json:"always"`
	// IfLimit accepts queries that carry a limit.
	IfLimit LimitRule `json:"if_limit"`
}

// PolicyFromBool is the shorthand configuration where a single flag means
// "cache everything" or "cache nothing".
func PolicyFromBool(always bool) Policy {
	return Policy{Always: always}
}

// DefaultPolicy caches single-row lookups and nothing else.
func DefaultPolicy() Policy {
	return Policy{Always: false, IfLimit: LimitMax(1)}
}

// Allows applies the policy to a query. A limit of zero or less means the
// query has no limit.
func (p Policy) Allows(limit int) bool {
	return Decide(limit, limit > 0, p)
}

// Decide is the pure cacheability rule for queries without an explicit
// override. A limited query the limit rule accepts is cacheable. Every other
// query falls back to Always.
func Decide(limit int, hasLimit bool, p Policy) bool {
	if hasLimit && p.IfLimit.Allows(limit) {
		return true
	}
	return p.Always
}
