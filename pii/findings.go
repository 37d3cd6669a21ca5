package pii

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
)

// WriteFindings writes findings in JSON Lines format. The target file must
// not already exist.
func WriteFindings(path string, findings []Finding) error {
	// #nosec G304 - path is derived from a validated input path
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create findings file: %w", err)
	}

	writer := bufio.NewWriter(file)
	for _, finding := range findings {
		line, err := json.Marshal(finding)
		if err != nil {
			if closeErr := file.Close(); closeErr != nil {
				log.Printf("[Findings] Warning: failed to close file: %v", closeErr)
			}
			return fmt.Errorf("failed to marshal finding: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			if closeErr := file.Close(); closeErr != nil {
				log.Printf("[Findings] Warning: failed to close file: %v", closeErr)
			}
			return fmt.Errorf("failed to write finding: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			if closeErr := file.Close(); closeErr != nil {
				log.Printf("[Findings] Warning: failed to close file: %v", closeErr)
			}
			return fmt.Errorf("failed to write finding: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		if closeErr := file.Close(); closeErr != nil {
			log.Printf("[Findings] Warning: failed to close file: %v", closeErr)
		}
		return fmt.Errorf("failed to flush findings file: %w", err)
	}

	return file.Close()
}

// ReadFindings reads a JSON Lines findings file. Malformed lines are logged
// and skipped so one bad line does not abort a redaction run.
func ReadFindings(path string) ([]Finding, error) {
	// #nosec G304 - path comes from the CLI/API caller
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open findings file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("[Findings] Warning: failed to close file: %v", err)
		}
	}()

	var findings []Finding
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var finding Finding
		if err := json.Unmarshal([]byte(line), &finding); err != nil {
			log.Printf("[Findings] Error parsing line %d: %v", lineNumber, err)
			continue
		}
		findings = append(findings, finding)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read findings file: %w", err)
	}

	return findings, nil
}
