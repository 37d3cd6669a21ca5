package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hannes/pii-extract/config"
	"github.com/hannes/pii-extract/pii"
)

// Server represents the HTTP extraction server
type Server struct {
	config       *config.Config
	extractor    *pii.Extractor
	redactor     *pii.Redactor
	modelManager *pii.ModelManager
	store        pii.FindingStore
	limiter      *rate.Limiter
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	provider, err := pii.NewDetectorProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create detector provider: %w", err)
	}

	// The model manager is only present for the GLiNER detector; the
	// regex detector has no reload surface
	modelManager, _ := provider.(*pii.ModelManager)

	store := pii.NewStoreFromConfig(cfg.Database)

	redactor := pii.NewRedactor(pii.NewGeneratorService())
	redactor.SetStore(store)

	return &Server{
		config:       cfg,
		extractor:    pii.NewExtractor(provider, cfg),
		redactor:     redactor,
		modelManager: modelManager,
		store:        store,
		limiter:      rate.NewLimiter(rate.Limit(cfg.Server.RateLimitRPS), cfg.Server.RateLimitBurst),
	}, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting PII extraction service on %s", s.config.Server.ListenAddr)
	log.Printf("Detector: %s", s.config.DetectorName)

	if s.config.Database.Enabled {
		log.Println("Database storage enabled")
	} else {
		log.Println("Using in-memory storage")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.healthCheck)
	mux.HandleFunc("/v1/extract", s.rateLimited(s.handleExtract))
	mux.HandleFunc("/v1/redact", s.rateLimited(s.handleRedact))
	mux.HandleFunc("/api/model/info", s.handleModelInfo)
	mux.HandleFunc("/api/model/reload", s.handleModelReload)

	// Create server with timeout configuration
	server := &http.Server{
		Addr:         s.config.Server.ListenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// StartWithErrorHandling starts the server with proper error handling
func (s *Server) StartWithErrorHandling() {
	if err := s.Start(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// rateLimited wraps a handler with the server-wide rate limiter
func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "Too many requests", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

// healthCheck provides a simple health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	s.corsHandler(w, r)

	status := "healthy"
	if s.modelManager != nil && !s.modelManager.IsHealthy() {
		status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	response := fmt.Sprintf(`{"status":%q,"service":"PII Extraction Service"}`, status)
	if _, err := w.Write([]byte(response)); err != nil {
		log.Printf("Failed to write health check response: %v", err)
	}
}

// corsHandler adds CORS headers to the response
func (s *Server) corsHandler(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "false")
	} else {
		// For requests with origin, echo it back (allows credentials)
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}

	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// extractRequest is the body of POST /v1/extract
type extractRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels,omitempty"`
}

// extractResponse is the body returned by POST /v1/extract
type extractResponse struct {
	RunID    string        `json:"run_id"`
	Findings []pii.Finding `json:"findings"`
}

// handleExtract runs PII extraction over the posted text
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		s.corsHandler(w, r)
		w.WriteHeader(http.StatusOK)
		return
	}
	s.corsHandler(w, r)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "Field 'text' is required", http.StatusBadRequest)
		return
	}

	if s.config.Logging.LogRequests {
		log.Printf("[Server] Extract request: %d chars", len(req.Text))
	}

	// Per-request label overrides must not leak into concurrent requests
	extractor := s.extractor
	if len(req.Labels) > 0 {
		clone := *s.extractor
		clone.SetLabels(req.Labels)
		extractor = &clone
	}

	findings, err := extractor.ExtractText(r.Context(), req.Text)
	if err != nil {
		log.Printf("[Server] Extraction failed: %v", err)
		http.Error(w, "Extraction failed", http.StatusInternalServerError)
		return
	}

	runID := uuid.New()
	if s.config.Database.Enabled {
		if err := s.store.StoreRun(r.Context(), runID, "api", findings); err != nil {
			log.Printf("[Server] Warning: failed to store run %s: %v", runID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(extractResponse{
		RunID:    runID.String(),
		Findings: findings,
	}); err != nil {
		log.Printf("Failed to encode extract response: %v", err)
	}
}

// redactRequest is the body of POST /v1/redact
type redactRequest struct {
	Text     string        `json:"text"`
	Findings []pii.Finding `json:"findings"`
	Mode     string        `json:"mode,omitempty"`
}

// redactResponse is the body returned by POST /v1/redact
type redactResponse struct {
	Text string `json:"text"`
}

// handleRedact rewrites the posted text using the supplied findings
func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		s.corsHandler(w, r)
		w.WriteHeader(http.StatusOK)
		return
	}
	s.corsHandler(w, r)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req redactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		http.Error(w, "Field 'text' is required", http.StatusBadRequest)
		return
	}

	mode := pii.RedactMode(req.Mode)
	switch mode {
	case "":
		mode = pii.RedactModeBlackout
	case pii.RedactModeBlackout, pii.RedactModeSubstitute:
	default:
		http.Error(w, "Invalid mode: must be 'blackout' or 'substitute'", http.StatusBadRequest)
		return
	}

	redacted, err := s.redactor.RedactText(r.Context(), req.Text, req.Findings, mode)
	if err != nil {
		log.Printf("[Server] Redaction failed: %v", err)
		http.Error(w, "Redaction failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(redactResponse{Text: redacted}); err != nil {
		log.Printf("Failed to encode redact response: %v", err)
	}
}

// handleModelInfo reports the state of the model manager
func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	s.corsHandler(w, r)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.modelManager == nil {
		http.Error(w, "No managed model for the configured detector", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.modelManager.GetInfo()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// reloadRequest is the body of POST /api/model/reload
type reloadRequest struct {
	Directory string `json:"directory,omitempty"`
}

// handleModelReload triggers a model hot reload
func (s *Server) handleModelReload(w http.ResponseWriter, r *http.Request) {
	s.corsHandler(w, r)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.modelManager == nil {
		http.Error(w, "No managed model for the configured detector", http.StatusNotFound)
		return
	}

	// An empty body means reload from the configured directory
	var req reloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	directory := req.Directory
	if directory == "" {
		directory = s.config.ModelDir
	}

	if err := s.modelManager.ReloadModel(directory); err != nil {
		log.Printf("[Server] Model reload failed: %v", err)
		http.Error(w, fmt.Sprintf("Reload failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"status":"reloaded"}`)); err != nil {
		log.Printf("Failed to write reload response: %v", err)
	}
}

// Close closes the server and cleans up resources
func (s *Server) Close() error {
	if s.modelManager != nil {
		if err := s.modelManager.Close(); err != nil {
			return err
		}
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
