package pii

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hannes/pii-extract/config"
	detectors "github.com/hannes/pii-extract/pii/detectors"
)

// Finding is one extracted PII value as written to the findings JSONL file.
type Finding struct {
	PIIType  string `json:"pii_type"`
	PIIValue string `json:"pii_value"`
	Private  bool   `json:"private"`
}

// DetectorProvider is an interface for getting the current detector
// This allows the Extractor to always use the latest detector after hot reloads
type DetectorProvider interface {
	GetDetector() (detectors.Detector, error)
}

// Extractor runs PII detection over markdown documents and produces findings.
type Extractor struct {
	provider      DetectorProvider
	labels        []string
	threshold     float64
	minScore      float64
	maxChunkChars int
	logging       config.LoggingConfig

	// Progress, when set, is called after each section has been processed.
	Progress func(done, total int)
}

// NewExtractor creates a new extractor.
// The provider should be a ModelManager that provides the current detector.
func NewExtractor(provider DetectorProvider, cfg *config.Config) *Extractor {
	return &Extractor{
		provider:      provider,
		labels:        cfg.Labels,
		threshold:     cfg.Threshold,
		minScore:      cfg.MinScore,
		maxChunkChars: cfg.MaxChunkChars,
		logging:       cfg.Logging,
	}
}

// SetLabels overrides the label set queried during extraction.
func (e *Extractor) SetLabels(labels []string) {
	if len(labels) > 0 {
		e.labels = labels
	}
}

// SplitSections splits a markdown document into sections on blank lines.
func SplitSections(text string) []string {
	return strings.Split(text, "\n\n")
}

// ChunkText splits text into chunks of up to maxLen characters without
// splitting words. Whitespace inside a chunk is normalized to single spaces.
// A single word longer than maxLen becomes its own chunk.
func ChunkText(text string, maxLen int) []string {
	words := strings.Fields(text)
	var chunks []string
	var current []string
	currentLen := 0

	for _, w := range words {
		wordLen := len(w)
		joinedLen := currentLen + wordLen
		if len(current) > 0 {
			joinedLen++ // separating space
		}
		if len(current) > 0 && joinedLen > maxLen {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{w}
			currentLen = wordLen
			continue
		}
		current = append(current, w)
		currentLen = joinedLen
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// ExtractText detects PII in a document and returns deduplicated findings,
// longest value first.
func (e *Extractor) ExtractText(ctx context.Context, text string) ([]Finding, error) {
	detector, err := e.provider.GetDetector()
	if err != nil {
		return nil, fmt.Errorf("no detector available: %w", err)
	}

	sections := SplitSections(text)
	findings := []Finding{}
	seen := make(map[string]bool)

	for i, section := range sections {
		for _, chunk := range ChunkText(section, e.maxChunkChars) {
			output, err := detector.Detect(ctx, detectors.DetectorInput{
				Text:      chunk,
				Labels:    e.labels,
				Threshold: e.threshold,
			})
			if err != nil {
				return nil, fmt.Errorf("detection failed: %w", err)
			}

			for _, entity := range output.Entities {
				if e.logging.GetLogVerbose() {
					log.Printf("[Extractor] %s => %s, %.4f", entity.Text, entity.Label, entity.Score)
				}
				if entity.Score <= e.minScore {
					continue
				}
				if seen[entity.Text] {
					continue
				}
				seen[entity.Text] = true
				findings = append(findings, Finding{
					PIIType:  entity.Label,
					PIIValue: entity.Text,
					Private:  true,
				})
			}
		}

		if e.Progress != nil {
			e.Progress(i+1, len(sections))
		}
	}

	// Longest values first so redaction never rewrites a substring of a
	// longer finding before the longer one is applied.
	sort.SliceStable(findings, func(a, b int) bool {
		return len(findings[a].PIIValue) > len(findings[b].PIIValue)
	})

	return findings, nil
}

// ExtractFile extracts PII from a markdown file and writes the findings as
// JSON Lines next to it. Returns the findings file path.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (string, error) {
	return e.ExtractFileTo(ctx, path, "")
}

// ExtractFileTo is ExtractFile with an explicit findings path. An empty
// findingsPath places the findings next to the input.
func (e *Extractor) ExtractFileTo(ctx context.Context, path, findingsPath string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("the file '%s' does not exist", path)
	}

	if filepath.Ext(path) != ".md" {
		return "", fmt.Errorf("the file '%s' should be a markdown file with extension '.md'", path)
	}

	if findingsPath == "" {
		findingsPath = strings.TrimSuffix(path, ".md") + ".jsonl"
	}
	if _, err := os.Stat(findingsPath); err == nil {
		return "", fmt.Errorf("the file '%s' already exists", findingsPath)
	}

	// #nosec G304 - path was validated above and comes from the CLI/API caller
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read '%s': %w", path, err)
	}

	findings, err := e.ExtractText(ctx, string(data))
	if err != nil {
		return "", err
	}

	if e.logging.GetLogFindings() {
		log.Printf("[Extractor] %d findings in %s", len(findings), path)
	}

	if err := WriteFindings(findingsPath, findings); err != nil {
		return "", err
	}

	return findingsPath, nil
}
