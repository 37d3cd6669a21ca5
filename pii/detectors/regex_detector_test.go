package detectors

import (
	"context"
	"testing"
)

func TestRegexDetector_GetName(t *testing.T) {
	patterns := map[string]string{
		"email": `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`,
	}
	detector := NewRegexDetector(patterns)
	if detector.GetName() != "regex_detector" {
		t.Errorf("Expected name 'regex_detector', got '%s'", detector.GetName())
	}
}

func TestRegexDetector_Detect_NoMatches(t *testing.T) {
	patterns := map[string]string{
		"email": `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`,
	}
	detector := NewRegexDetector(patterns)
	input := DetectorInput{Text: "This text has no email addresses."}

	output, err := detector.Detect(context.Background(), input)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if len(output.Entities) != 0 {
		t.Errorf("Expected 0 entities, got %d", len(output.Entities))
	}

	if output.Text != input.Text {
		t.Errorf("Expected text to remain unchanged, got '%s'", output.Text)
	}
}

func TestRegexDetector_Detect_EmailPattern(t *testing.T) {
	patterns := map[string]string{
		"email": PIIPatterns["email"],
	}
	detector := NewRegexDetector(patterns)
	input := DetectorInput{Text: "Contact me at john.doe@example.com or jane@test.org"}

	output, err := detector.Detect(context.Background(), input)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if len(output.Entities) != 2 {
		t.Fatalf("Expected 2 entities, got %d", len(output.Entities))
	}

	entity1 := output.Entities[0]
	if entity1.Text != "john.doe@example.com" {
		t.Errorf("Expected first entity text 'john.doe@example.com', got '%s'", entity1.Text)
	}
	if entity1.Label != "email" {
		t.Errorf("Expected label 'email', got '%s'", entity1.Label)
	}
	if entity1.StartPos != 14 {
		t.Errorf("Expected start position 14, got %d", entity1.StartPos)
	}
	if entity1.EndPos != 34 {
		t.Errorf("Expected end position 34, got %d", entity1.EndPos)
	}
	if entity1.Score != 1.0 {
		t.Errorf("Expected score 1.0, got %f", entity1.Score)
	}

	entity2 := output.Entities[1]
	if entity2.Text != "jane@test.org" {
		t.Errorf("Expected second entity text 'jane@test.org', got '%s'", entity2.Text)
	}
}

func TestRegexDetector_Detect_PhonePattern(t *testing.T) {
	patterns := map[string]string{
		"phone_number": PIIPatterns["phone_number"],
	}
	detector := NewRegexDetector(patterns)
	input := DetectorInput{Text: "Call 555-123-4567 or 555.765.4321."}

	output, err := detector.Detect(context.Background(), input)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	if len(output.Entities) != 2 {
		t.Fatalf("Expected 2 entities, got %d", len(output.Entities))
	}
	if output.Entities[0].Text != "555-123-4567" {
		t.Errorf("Expected first entity text '555-123-4567', got '%s'", output.Entities[0].Text)
	}
}

func TestRegexDetector_Detect_MultiplePatterns(t *testing.T) {
	detector := NewRegexDetector(PIIPatterns)
	input := DetectorInput{Text: "Mail john@example.com, visit https://example.com/about or call 555-123-4567"}

	output, err := detector.Detect(context.Background(), input)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	labels := make(map[string]bool)
	for _, entity := range output.Entities {
		labels[entity.Label] = true
	}

	expectedLabels := []string{"email", "url", "phone_number"}
	for _, expected := range expectedLabels {
		if !labels[expected] {
			t.Errorf("Expected to find label '%s' in detected entities", expected)
		}
	}
}

func TestRegexDetector_IgnoresInputLabels(t *testing.T) {
	// The regex detector works from its pattern table; requested labels
	// must not change its behavior.
	detector := NewRegexDetector(map[string]string{
		"email": PIIPatterns["email"],
	})
	input := DetectorInput{
		Text:   "Reach me at jane@test.org",
		Labels: []string{"phone_number"},
	}

	output, err := detector.Detect(context.Background(), input)
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if len(output.Entities) != 1 || output.Entities[0].Label != "email" {
		t.Errorf("Expected a single email entity, got %+v", output.Entities)
	}
}
