package template

import (
	"testing"

	"github.com/heliograph/heliograph/pkg/errors"
)

// TestGetKnownTemplates tests registry lookup for both compiled-in templates
func TestGetKnownTemplates(t *testing.T) {
	for _, name := range Names() {
		tpl, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", name, err)
		}
		if tpl.Name != name {
			t.Errorf("Get(%q).Name = %q", name, tpl.Name)
		}
		if len(tpl.Sections) == 0 {
			t.Errorf("Get(%q) returned no sections", name)
		}
		if tpl.Sections[0].Slot != SlotSummary {
			t.Errorf("Get(%q) first section slot = %q, want summary", name, tpl.Sections[0].Slot)
		}
	}
}

// TestGetUnknownTemplate tests the UnknownTemplate failure
func TestGetUnknownTemplate(t *testing.T) {
	_, err := Get("fancy")
	if err == nil {
		t.Fatal("Get() should fail for an unregistered name")
	}
	if !errors.HasCode(err, errors.ErrCodeUnknownTemplate) {
		t.Errorf("Expected unknown-template error, got %v", err)
	}
}

// TestGetReturnsIndependentCopies tests registry immutability
func TestGetReturnsIndependentCopies(t *testing.T) {
	first, err := Get(Basic)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	first.Sections[0].Title = "Tampered"
	first.HeaderColor = "#000000"

	second, err := Get(Basic)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if second.Sections[0].Title == "Tampered" {
		t.Error("mutating a returned template leaked into the registry")
	}
	if second.HeaderColor != "#1A73E8" {
		t.Errorf("HeaderColor = %q, want #1A73E8", second.HeaderColor)
	}
}

// TestDetailedTemplateSections tests the detailed layout structure
func TestDetailedTemplateSections(t *testing.T) {
	tpl, err := Get(Detailed)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	var recommendations *Section
	var environment *Section
	for i := range tpl.Sections {
		switch {
		case tpl.Sections[i].Slot == SlotRecommendations:
			recommendations = &tpl.Sections[i]
		case tpl.Sections[i].DataKey == "environment":
			environment = &tpl.Sections[i]
		}
	}

	if recommendations == nil {
		t.Fatal("detailed template has no recommendations slot")
	}
	if recommendations.Kind != KindText {
		t.Errorf("recommendations section kind = %q, want text", recommendations.Kind)
	}
	if environment == nil {
		t.Fatal("detailed template has no environment data section")
	}
	if environment.Kind != KindData {
		t.Errorf("environment section kind = %q, want data", environment.Kind)
	}
}
