package anki

import (
	"encoding/json"
	"testing"
)

func TestCountMarshalKnown(t *testing.T) {
	data, err := json.Marshal(KnownCount(42))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "42" {
		t.Errorf("Expected 42, got %s", data)
	}
}

func TestCountMarshalUnknown(t *testing.T) {
	data, err := json.Marshal(UnknownCount())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"unknown"` {
		t.Errorf(`Expected "unknown", got %s`, data)
	}
}

func TestCountString(t *testing.T) {
	if got := KnownCount(7).String(); got != "7" {
		t.Errorf("Expected 7, got %q", got)
	}
	if got := UnknownCount().String(); got != "unknown" {
		t.Errorf("Expected unknown, got %q", got)
	}
}

func TestCountAccessors(t *testing.T) {
	c := KnownCount(3)
	if !c.Known() || c.Value() != 3 {
		t.Errorf("Unexpected count state: %+v", c)
	}
	if UnknownCount().Known() {
		t.Error("UnknownCount should not be known")
	}
}
