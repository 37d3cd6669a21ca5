package pii

import (
	"strings"
	"testing"
)

func TestGenerateReplacementDeterministicWithSeed(t *testing.T) {
	service1 := NewGeneratorServiceWithSeed(42)
	service2 := NewGeneratorServiceWithSeed(42)

	labels := []string{"email", "phone_number", "name", "company_name"}
	for _, label := range labels {
		got1 := service1.GenerateReplacement(label, "original value")
		got2 := service2.GenerateReplacement(label, "original value")
		if got1 != got2 {
			t.Errorf("Label %q: seeded services diverged: %q vs %q", label, got1, got2)
		}
	}
}

func TestGenerateReplacementLabelRouting(t *testing.T) {
	service := NewGeneratorServiceWithSeed(7)

	tests := []struct {
		label    string
		original string
		check    func(string) bool
		desc     string
	}{
		{"email", "a@b.com", func(s string) bool { return strings.Contains(s, "@") }, "email address"},
		{"phone_number", "555-123-4567", func(s string) bool { return strings.Contains(s, "-") }, "dashed phone"},
		{"url", "https://x.com", func(s string) bool { return strings.HasPrefix(s, "https://") }, "https url"},
		{"function title", "CEO", func(s string) bool { return s != "" && s != "[REDACTED]" }, "job title"},
		{"account_number", "12345", func(s string) bool { return len(s) == 5 }, "5-digit account"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := service.GenerateReplacement(tt.label, tt.original)
			if !tt.check(got) {
				t.Errorf("Expected %s, got %q", tt.desc, got)
			}
		})
	}
}

func TestGenerateReplacementUnknownLabel(t *testing.T) {
	service := NewGeneratorServiceWithSeed(1)
	if got := service.GenerateReplacement("something_unmapped", "value"); got != "[REDACTED]" {
		t.Errorf("Expected [REDACTED] for unknown label, got %q", got)
	}
}

func TestGenerateReplacementDiffersFromOriginal(t *testing.T) {
	service := NewGeneratorServiceWithSeed(99)
	original := "john.doe@corp.example"
	if got := service.GenerateReplacement("email", original); got == original {
		t.Errorf("Replacement should differ from original, got %q", got)
	}
}
