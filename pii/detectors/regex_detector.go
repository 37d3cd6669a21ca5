package detectors

import (
	"context"
	"regexp"
)

// RegexDetector implements Detector using regular expressions. It is the
// model-free fallback: structured PII only, fixed pattern table, score 1.0.
type RegexDetector struct {
	patterns map[string]*regexp.Regexp
}

func NewRegexDetector(patterns map[string]string) *RegexDetector {
	regexMap := make(map[string]*regexp.Regexp)
	for label, pattern := range patterns {
		regexMap[label] = regexp.MustCompile(pattern)
	}

	return &RegexDetector{
		patterns: regexMap,
	}
}

// GetName returns the name of this detector
func (r *RegexDetector) GetName() string {
	return DetectorNameRegex
}

// Detect processes the input and returns detected entities
func (r *RegexDetector) Detect(ctx context.Context, input DetectorInput) (DetectorOutput, error) {
	var entities []Entity

	// loop through all patterns and find matches
	for label, pattern := range r.patterns {
		matches := pattern.FindAllStringIndex(input.Text, -1)
		for _, match := range matches {
			startPos := match[0]
			endPos := match[1]
			matchedText := input.Text[startPos:endPos]
			entity := Entity{
				Text:     matchedText,
				Label:    label,
				StartPos: startPos,
				EndPos:   endPos,
				Score:    1.0,
			}
			entities = append(entities, entity)
		}
	}

	return DetectorOutput{
		Text:     input.Text,
		Entities: entities,
	}, nil
}

// Close implements the Detector interface
func (r *RegexDetector) Close() error {
	// Regex detector doesn't need cleanup
	return nil
}
