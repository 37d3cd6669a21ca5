package pii

import (
	"fmt"

	"github.com/hannes/pii-extract/config"
	"github.com/hannes/pii-extract/pii/detectors"
)

// StaticDetectorProvider wraps a fixed detector that never changes
type StaticDetectorProvider struct {
	detector detectors.Detector
}

// NewStaticDetectorProvider creates a provider around an existing detector
func NewStaticDetectorProvider(detector detectors.Detector) *StaticDetectorProvider {
	return &StaticDetectorProvider{detector: detector}
}

// GetDetector returns the wrapped detector
func (p *StaticDetectorProvider) GetDetector() (detectors.Detector, error) {
	if p.detector == nil {
		return nil, fmt.Errorf("no detector available")
	}
	return p.detector, nil
}

// NewDetectorProvider creates the detector provider configured by cfg.
// The GLiNER detector is wrapped in a ModelManager for hot reload support.
func NewDetectorProvider(cfg *config.Config) (DetectorProvider, error) {
	switch cfg.DetectorName {
	case detectors.DetectorNameRegex:
		return NewStaticDetectorProvider(detectors.NewRegexDetector(detectors.PIIPatterns)), nil
	case detectors.DetectorNameGLiNER, "":
		return NewModelManager(cfg.ModelDir)
	default:
		return nil, fmt.Errorf("unknown detector: %s", cfg.DetectorName)
	}
}
