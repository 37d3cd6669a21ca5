package detectors

import (
	"context"
)

// Detector names as referenced by configuration.
const (
	DetectorNameGLiNER = "gliner_onnx_detector"
	DetectorNameRegex  = "regex_detector"
)

type Detector interface {
	GetName() string
	Detect(ctx context.Context, input DetectorInput) (DetectorOutput, error)
	Close() error
}

func CloseDetector(detector Detector) error {
	return detector.Close()
}
