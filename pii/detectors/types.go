package detectors

// DetectorInput represents the input for PII detection
type DetectorInput struct {
	Text string `json:"text"`
	// Labels are the entity types to scan for. Detectors that work from a
	// fixed pattern table ignore this field.
	Labels []string `json:"labels,omitempty"`
	// Threshold is the minimum model score for a span to be considered at
	// all. Callers usually filter again on a stricter score afterwards.
	Threshold float64 `json:"threshold,omitempty"`
}

// DetectorOutput represents the output of PII detection
type DetectorOutput struct {
	Text     string   `json:"text"`
	Entities []Entity `json:"entities"`
}

// Entity represents a detected PII entity
type Entity struct {
	Text     string  `json:"text"`
	Label    string  `json:"label"`
	StartPos int     `json:"start_pos"`
	EndPos   int     `json:"end_pos"`
	Score    float64 `json:"score"`
}
