package pii

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func newTestRedactor() *Redactor {
	return NewRedactor(NewGeneratorServiceWithSeed(42))
}

func TestRedactTextBlackout(t *testing.T) {
	redactor := newTestRedactor()
	text := "Contact John Doe for details."
	findings := []Finding{{PIIType: "name", PIIValue: "John Doe", Private: true}}

	redacted, err := redactor.RedactText(context.Background(), text, findings, RedactModeBlackout)
	if err != nil {
		t.Fatalf("RedactText failed: %v", err)
	}

	if strings.Contains(redacted, "John Doe") {
		t.Errorf("Original value still present: %q", redacted)
	}

	// One glyph per rune of the original
	glyphCount := strings.Count(redacted, "⚫")
	if glyphCount != utf8.RuneCountInString("John Doe") {
		t.Errorf("Expected %d glyphs, got %d", utf8.RuneCountInString("John Doe"), glyphCount)
	}
}

func TestRedactTextCaseInsensitive(t *testing.T) {
	redactor := newTestRedactor()
	text := "JOHN DOE and john doe and John Doe"
	findings := []Finding{{PIIType: "name", PIIValue: "John Doe", Private: true}}

	redacted, err := redactor.RedactText(context.Background(), text, findings, RedactModeBlackout)
	if err != nil {
		t.Fatalf("RedactText failed: %v", err)
	}

	lower := strings.ToLower(redacted)
	if strings.Contains(lower, "john") || strings.Contains(lower, "doe") {
		t.Errorf("Case variants not redacted: %q", redacted)
	}
}

func TestRedactTextSkipsNonPrivate(t *testing.T) {
	redactor := newTestRedactor()
	text := "Visit Springfield or email a@b.com"
	findings := []Finding{
		{PIIType: "location", PIIValue: "Springfield", Private: false},
		{PIIType: "email", PIIValue: "a@b.com", Private: true},
	}

	redacted, err := redactor.RedactText(context.Background(), text, findings, RedactModeBlackout)
	if err != nil {
		t.Fatalf("RedactText failed: %v", err)
	}

	if !strings.Contains(redacted, "Springfield") {
		t.Error("Non-private finding should not be redacted")
	}
	if strings.Contains(redacted, "a@b.com") {
		t.Error("Private finding should be redacted")
	}
}

func TestRedactTextLongestFirst(t *testing.T) {
	redactor := newTestRedactor()
	text := "John Doe Smith wrote to John"
	findings := []Finding{
		{PIIType: "first_name", PIIValue: "John", Private: true},
		{PIIType: "name", PIIValue: "John Doe Smith", Private: true},
	}

	redacted, err := redactor.RedactText(context.Background(), text, findings, RedactModeBlackout)
	if err != nil {
		t.Fatalf("RedactText failed: %v", err)
	}

	// The full name spans 14 runes. If the short value were applied first
	// the long one would never match, leaving "Doe Smith" readable.
	if strings.Contains(redacted, "Doe Smith") {
		t.Errorf("Longer finding was not applied first: %q", redacted)
	}
}

func TestRedactTextSubstituteStableWithStore(t *testing.T) {
	redactor := newTestRedactor()
	store := NewInMemoryFindingStore()
	redactor.SetStore(store)

	findings := []Finding{{PIIType: "email", PIIValue: "john.doe@corp.example", Private: true}}

	first, err := redactor.RedactText(context.Background(), "Mail john.doe@corp.example now", findings, RedactModeSubstitute)
	if err != nil {
		t.Fatalf("RedactText failed: %v", err)
	}
	second, err := redactor.RedactText(context.Background(), "Mail john.doe@corp.example now", findings, RedactModeSubstitute)
	if err != nil {
		t.Fatalf("RedactText failed: %v", err)
	}

	if first != second {
		t.Errorf("Substitution not stable across runs: %q vs %q", first, second)
	}

	// Mapping is reversible through the store
	dummy, found, err := store.GetDummy(context.Background(), "john.doe@corp.example")
	if err != nil || !found {
		t.Fatalf("Expected stored mapping, found=%v err=%v", found, err)
	}
	original, found, err := store.GetOriginal(context.Background(), dummy)
	if err != nil || !found || original != "john.doe@corp.example" {
		t.Errorf("Reverse lookup failed: %q found=%v err=%v", original, found, err)
	}
}

func TestRedactTextSubstituteWithoutStore(t *testing.T) {
	redactor := newTestRedactor()
	findings := []Finding{{PIIType: "email", PIIValue: "a@b.com", Private: true}}

	redacted, err := redactor.RedactText(context.Background(), "Send to a@b.com", findings, RedactModeSubstitute)
	if err != nil {
		t.Fatalf("RedactText failed: %v", err)
	}
	if strings.Contains(redacted, "a@b.com") {
		t.Errorf("Original value still present: %q", redacted)
	}
	if !strings.Contains(redacted, "@") {
		t.Errorf("Expected a dummy email substitute, got %q", redacted)
	}
}

func TestRedactFile(t *testing.T) {
	dir := t.TempDir()
	mdPath := filepath.Join(dir, "doc.md")
	findingsPath := filepath.Join(dir, "doc.jsonl")

	if err := os.WriteFile(mdPath, []byte("Written by John Doe."), 0600); err != nil {
		t.Fatalf("Failed to write markdown: %v", err)
	}
	findings := []Finding{{PIIType: "name", PIIValue: "John Doe", Private: true}}
	if err := WriteFindings(findingsPath, findings); err != nil {
		t.Fatalf("Failed to write findings: %v", err)
	}

	redactor := newTestRedactor()
	outputPath, err := redactor.RedactFile(context.Background(), mdPath, findingsPath, RedactModeBlackout)
	if err != nil {
		t.Fatalf("RedactFile failed: %v", err)
	}
	if outputPath != filepath.Join(dir, "doc.redacted.md") {
		t.Errorf("Unexpected output path: %s", outputPath)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if strings.Contains(string(data), "John Doe") {
		t.Errorf("Output still contains original value: %q", string(data))
	}
}

func TestRedactFileErrors(t *testing.T) {
	dir := t.TempDir()
	redactor := newTestRedactor()

	t.Run("MissingMarkdown", func(t *testing.T) {
		_, err := redactor.RedactFile(context.Background(), filepath.Join(dir, "missing.md"), "x.jsonl", RedactModeBlackout)
		if err == nil {
			t.Error("Expected error for missing markdown file")
		}
	})

	t.Run("NotMarkdown", func(t *testing.T) {
		txtPath := filepath.Join(dir, "doc.txt")
		if err := os.WriteFile(txtPath, []byte("text"), 0600); err != nil {
			t.Fatalf("Failed to write test file: %v", err)
		}
		_, err := redactor.RedactFile(context.Background(), txtPath, "x.jsonl", RedactModeBlackout)
		if err == nil {
			t.Error("Expected error for non-markdown file")
		}
	})
}
