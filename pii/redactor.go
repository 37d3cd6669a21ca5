package pii

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// RedactMode selects how private findings are rewritten.
type RedactMode string

const (
	// RedactModeBlackout replaces each finding with black circles of the
	// same rune length, preserving the document layout.
	RedactModeBlackout RedactMode = "blackout"
	// RedactModeSubstitute replaces each finding with a realistic dummy
	// value of the same PII type.
	RedactModeSubstitute RedactMode = "substitute"
)

const blackoutGlyph = "⚫"

// Redactor rewrites documents using previously extracted findings.
type Redactor struct {
	generator *GeneratorService
	store     MappingStore
}

// NewRedactor creates a new redactor.
func NewRedactor(generator *GeneratorService) *Redactor {
	return &Redactor{generator: generator}
}

// SetStore attaches a mapping store so substitute replacements stay stable
// across runs and can be reversed.
func (r *Redactor) SetStore(store MappingStore) {
	r.store = store
}

// RedactText replaces every private finding in text. Matching is
// case-insensitive; findings are applied longest value first.
func (r *Redactor) RedactText(ctx context.Context, text string, findings []Finding, mode RedactMode) (string, error) {
	ordered := append([]Finding(nil), findings...)
	sort.SliceStable(ordered, func(a, b int) bool {
		return len(ordered[a].PIIValue) > len(ordered[b].PIIValue)
	})

	for _, finding := range ordered {
		if !finding.Private || finding.PIIValue == "" {
			continue
		}

		pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(finding.PIIValue))
		if err != nil {
			return "", fmt.Errorf("failed to compile pattern for '%s': %w", finding.PIIValue, err)
		}

		var replacement string
		if mode == RedactModeSubstitute {
			replacement, err = r.substitute(ctx, finding)
			if err != nil {
				return "", err
			}
		} else {
			replacement = strings.Repeat(blackoutGlyph, utf8.RuneCountInString(finding.PIIValue))
		}

		text = pattern.ReplaceAllLiteralString(text, replacement)
	}

	return text, nil
}

// substitute returns the dummy value for a finding, reusing a stored mapping
// when one exists.
func (r *Redactor) substitute(ctx context.Context, finding Finding) (string, error) {
	if r.store != nil {
		dummy, found, err := r.store.GetDummy(ctx, finding.PIIValue)
		if err != nil {
			return "", fmt.Errorf("failed to look up mapping: %w", err)
		}
		if found {
			return dummy, nil
		}
	}

	dummy := r.generator.GenerateReplacement(finding.PIIType, finding.PIIValue)

	if r.store != nil {
		if err := r.store.StoreMapping(ctx, finding.PIIValue, dummy, finding.PIIType, 1.0); err != nil {
			log.Printf("[Redactor] Warning: failed to store mapping: %v", err)
		}
	}

	return dummy, nil
}

// RedactFile redacts a markdown file using a findings JSONL file and writes
// the result to <name>.redacted.md. Returns the output path.
func (r *Redactor) RedactFile(ctx context.Context, markdownPath, findingsPath string, mode RedactMode) (string, error) {
	info, err := os.Stat(markdownPath)
	if err != nil || info.IsDir() || filepath.Ext(markdownPath) != ".md" {
		return "", fmt.Errorf("the file '%s' does not exist or is not a markdown (.md) file", markdownPath)
	}

	// #nosec G304 - path was validated above and comes from the CLI/API caller
	data, err := os.ReadFile(markdownPath)
	if err != nil {
		return "", fmt.Errorf("failed to read '%s': %w", markdownPath, err)
	}

	findings, err := ReadFindings(findingsPath)
	if err != nil {
		return "", err
	}

	redacted, err := r.RedactText(ctx, string(data), findings, mode)
	if err != nil {
		return "", err
	}

	outputPath := strings.TrimSuffix(markdownPath, ".md") + ".redacted.md"
	if err := os.WriteFile(outputPath, []byte(redacted), 0600); err != nil {
		return "", fmt.Errorf("failed to write '%s': %w", outputPath, err)
	}

	return outputPath, nil
}
