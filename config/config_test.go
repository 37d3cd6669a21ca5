package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DetectorName != "gliner_onnx_detector" {
		t.Errorf("Expected detector 'gliner_onnx_detector', got '%s'", cfg.DetectorName)
	}
	if cfg.Threshold != 0.4 {
		t.Errorf("Expected threshold 0.4, got %f", cfg.Threshold)
	}
	if cfg.MinScore != 0.5 {
		t.Errorf("Expected min score 0.5, got %f", cfg.MinScore)
	}
	if cfg.MaxChunkChars != 2048 {
		t.Errorf("Expected max chunk chars 2048, got %d", cfg.MaxChunkChars)
	}
	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("Expected listen addr ':8080', got '%s'", cfg.Server.ListenAddr)
	}
	if cfg.Database.Enabled {
		t.Error("Expected database to be disabled by default")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected database port 5432, got %d", cfg.Database.Port)
	}
}

func TestDefaultConfig_Labels(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.Labels) != len(DefaultLabels) {
		t.Fatalf("Expected %d labels, got %d", len(DefaultLabels), len(cfg.Labels))
	}

	for _, label := range []string{"name", "email", "phone_number", "street_address", "function title"} {
		found := false
		for _, l := range cfg.Labels {
			if l == label {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected label '%s' in default label set", label)
		}
	}

	// The config owns its label slice; mutating it must not change the
	// package default.
	cfg.Labels[0] = "mutated"
	if DefaultLabels[0] == "mutated" {
		t.Error("DefaultConfig must copy DefaultLabels")
	}
}
