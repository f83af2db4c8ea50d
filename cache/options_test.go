package cache

import (
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.TTL != 3600*time.Second {
		t.Errorf("TTL = %v, want 1h", opts.TTL)
	}
	if opts.Policy.Always {
		t.Error("default policy should not cache everything")
	}
	if got := opts.Policy.IfLimit.String(); got != "1" {
		t.Errorf("IfLimit = %s, want 1", got)
	}
	if opts.Namespace != DefaultNamespace {
		t.Errorf("Namespace = %q, want %q", opts.Namespace, DefaultNamespace)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("default options should validate, got %v", err)
	}
}

func TestOptions_ValidateRejectsNegativeTTL(t *testing.T) {
	opts := DefaultOptions()
	opts.TTL = -time.Second

	err := opts.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsValidation(err) {
		t.Errorf("expected validation category, got %v", err)
	}
}

func TestOptions_InheritDropsSerializer(t *testing.T) {
	parent := DefaultOptions()
	parent.Serializer = JSON{}

	child := parent.Inherit()
	if child.Serializer != nil {
		t.Error("inherited options should not carry a serializer")
	}
	if child.TTL != parent.TTL || child.Policy != parent.Policy {
		t.Error("inherited options should copy ttl and policy")
	}
}

func TestOptions_ApplyOverride(t *testing.T) {
	base := DefaultOptions()
	ttl := time.Minute
	policy := PolicyFromBool(true)

	got := base.Apply(Override{TTL: &ttl, Policy: &policy})
	if got.TTL != time.Minute {
		t.Errorf("TTL = %v, want 1m", got.TTL)
	}
	if !got.Policy.Always {
		t.Error("policy override not applied")
	}
	if got.Namespace != base.Namespace {
		t.Errorf("Namespace changed to %q", got.Namespace)
	}
	if base.TTL != DefaultTTL {
		t.Error("Apply must not mutate the receiver")
	}
}

func TestSetOptions_Merge(t *testing.T) {
	defaults := SetOptions{TTL: time.Hour}

	if got := (SetOptions{}).Merge(defaults); got.TTL != time.Hour {
		t.Errorf("zero ttl should fall back, got %v", got.TTL)
	}
	if got := (SetOptions{TTL: time.Second}).Merge(defaults); got.TTL != time.Second {
		t.Errorf("explicit ttl should win, got %v", got.TTL)
	}
}
