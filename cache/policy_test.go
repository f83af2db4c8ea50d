package cache

import (
	"encoding/json"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		hasLimit bool
		policy   Policy
		want     bool
	}{
		{name: "limit within ceiling", limit: 1, hasLimit: true, policy: Policy{IfLimit: LimitMax(1)}, want: true},
		{name: "limit above ceiling", limit: 5, hasLimit: true, policy: Policy{IfLimit: LimitMax(1)}, want: false},
		{name: "limit above ceiling falls back to always", limit: 5, hasLimit: true, policy: Policy{Always: true, IfLimit: LimitMax(1)}, want: true},
		{name: "any limit with always", limit: 50, hasLimit: true, policy: Policy{Always: true, IfLimit: LimitAny()}, want: true},
		{name: "any limit", limit: 5, hasLimit: true, policy: Policy{IfLimit: LimitAny()}, want: true},
		{name: "no limit always false", hasLimit: false, policy: Policy{Always: false, IfLimit: LimitAny()}, want: false},
		{name: "no limit always true", hasLimit: false, policy: Policy{Always: true, IfLimit: LimitMax(1)}, want: true},
		{name: "rule off falls back to always", limit: 10, hasLimit: true, policy: Policy{Always: true}, want: true},
		{name: "rule off and always false", limit: 10, hasLimit: true, policy: Policy{}, want: false},
		{name: "plain true", limit: 100, hasLimit: true, policy: PolicyFromBool(true), want: true},
		{name: "plain false", hasLimit: false, policy: PolicyFromBool(false), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.limit, tt.hasLimit, tt.policy); got != tt.want {
				t.Errorf("Decide(%d, %v, %+v) = %v, want %v", tt.limit, tt.hasLimit, tt.policy, got, tt.want)
			}
		})
	}
}

func TestPolicy_Allows(t *testing.T) {
	p := DefaultPolicy()

	if !p.Allows(1) {
		t.Error("default policy should cache limit 1")
	}
	if p.Allows(2) {
		t.Error("default policy should not cache limit 2")
	}
	if p.Allows(0) {
		t.Error("default policy should not cache unlimited queries")
	}
}

func TestParseLimitRule(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "true", want: "true"},
		{in: "false", want: "false"},
		{in: "", want: "false"},
		{in: "25", want: "25"},
		{in: "many", wantErr: true},
		{in: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLimitRule(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLimitRule(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !goerrors.IsCategory(err, goerrors.CategoryValidation) {
				t.Errorf("ParseLimitRule(%q) error category = %v, want validation", tt.in, err)
			}
			if err == nil && got.String() != tt.want {
				t.Errorf("ParseLimitRule(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestPolicy_JSON(t *testing.T) {
	tests := []struct {
		in        string
		want      Policy
		allows5   bool
		wantError bool
	}{
		{in: `{"always": true, "if_limit": 1}`, want: Policy{Always: true, IfLimit: LimitMax(1)}, allows5: true},
		{in: `{"always": false, "if_limit": true}`, want: Policy{IfLimit: LimitAny()}, allows5: true},
		{in: `{"always": false, "if_limit": "10"}`, want: Policy{IfLimit: LimitMax(10)}, allows5: true},
		{in: `{"always": false, "if_limit": false}`, want: Policy{}, allows5: false},
		{in: `{"always": false, "if_limit": null}`, want: Policy{}, allows5: false},
		{in: `{"if_limit": "lots"}`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var p Policy
			err := json.Unmarshal([]byte(tt.in), &p)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected an error for a malformed limit rule")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if p != tt.want {
				t.Errorf("Unmarshal() = %+v, want %+v", p, tt.want)
			}
			if p.Allows(5) != tt.allows5 {
				t.Errorf("Allows(5) = %v, want %v", p.Allows(5), tt.allows5)
			}

			out, err := json.Marshal(p)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			var back Policy
			if err := json.Unmarshal(out, &back); err != nil || back != p {
				t.Errorf("Marshal() = %s, reads back as %+v (%v)", out, back, err)
			}
		})
	}
}
