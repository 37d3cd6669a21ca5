package detectors

import (
	"encoding/json"
	"fmt"
	"os"
)

// Default GLiNER prompt constants, used when gliner_config.json omits them.
const (
	defaultEntToken  = "<<ENT>>"
	defaultSepToken  = "<<SEP>>"
	defaultMaxWidth  = 12
	defaultMaxSeqLen = 1024
)

// glinerConfig mirrors gliner_config.json shipped next to the exported model.
// It carries the tokenizer special-token ids and the span layout the ONNX
// graph was exported with.
type glinerConfig struct {
	MaxWidth          int    `json:"max_width"`
	MaxSequenceLength int    `json:"max_sequence_length"`
	ClsTokenID        int64  `json:"cls_token_id"`
	SepTokenID        int64  `json:"sep_token_id"`
	PadTokenID        int64  `json:"pad_token_id"`
	EntToken          string `json:"ent_token"`
	SepToken          string `json:"sep_token"`
}

// loadGLiNERConfig reads and validates gliner_config.json.
func loadGLiNERConfig(path string) (glinerConfig, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the validated model directory
	if err != nil {
		return glinerConfig{}, fmt.Errorf("failed to read model config: %w", err)
	}

	var cfg glinerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return glinerConfig{}, fmt.Errorf("failed to parse model config: %w", err)
	}

	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = defaultMaxWidth
	}
	if cfg.MaxSequenceLength <= 0 {
		cfg.MaxSequenceLength = defaultMaxSeqLen
	}
	if cfg.EntToken == "" {
		cfg.EntToken = defaultEntToken
	}
	if cfg.SepToken == "" {
		cfg.SepToken = defaultSepToken
	}

	return cfg, nil
}
