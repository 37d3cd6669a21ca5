package pii

import (
	"math/rand"
	"time"

	piiGenerators "github.com/hannes/pii-extract/pii/generators"
)

// GeneratorService handles dummy-PII replacement generation
type GeneratorService struct {
	rng *rand.Rand
}

// NewGeneratorService creates a new generator service
func NewGeneratorService() *GeneratorService {
	// #nosec G404 - Using math/rand for dummy PII generation, not security-critical
	return &GeneratorService{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewGeneratorServiceWithSeed creates a generator with a fixed seed for deterministic output (testing)
func NewGeneratorServiceWithSeed(seed int64) *GeneratorService {
	// #nosec G404 - Using math/rand for dummy PII generation, not security-critical
	return &GeneratorService{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GenerateReplacement generates a replacement for the given PII label and original text
func (s *GeneratorService) GenerateReplacement(label, originalText string) string {
	generator := s.getGeneratorForLabel(label)
	return generator(originalText)
}

// getGeneratorForLabel returns the appropriate generator function for the given label
func (s *GeneratorService) getGeneratorForLabel(label string) func(string) string {
	generators := map[string]func(string) string{
		"email":          func(original string) string { return piiGenerators.EmailGenerator(s.rng, original) },
		"phone_number":   func(original string) string { return piiGenerators.PhoneGenerator(s.rng, original) },
		"first_name":     func(original string) string { return piiGenerators.FirstNameGenerator(s.rng, original) },
		"last_name":      func(original string) string { return piiGenerators.SurnameGenerator(s.rng, original) },
		"name":           func(original string) string { return piiGenerators.FullNameGenerator(s.rng, original) },
		"url":            func(original string) string { return piiGenerators.URLGenerator(s.rng, original) },
		"street_address": func(original string) string { return piiGenerators.StreetAddressGenerator(s.rng, original) },
		"location":       func(original string) string { return piiGenerators.LocationGenerator(s.rng, original) },
		"company_name":   func(original string) string { return piiGenerators.CompanyNameGenerator(s.rng, original) },
		"function title": func(original string) string { return piiGenerators.JobTitleGenerator(s.rng, original) },
		"account_number": func(original string) string { return piiGenerators.AccountNumGenerator(s.rng, original) },
	}

	if generator, exists := generators[label]; exists {
		return generator
	}

	// Return generic generator for unknown labels
	return func(original string) string { return piiGenerators.GenericGenerator(s.rng, original) }
}
