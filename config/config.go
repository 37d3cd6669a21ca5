package config

// DefaultLabels is the GLiNER label set queried during extraction.
var DefaultLabels = []string{
	"name",
	"last_name",
	"first_name",
	"email",
	"location",
	"url",
	"street_address",
	"company_name",
	"function title",
	"account_number",
	"phone_number",
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	LogRequests bool // Log request content on the HTTP server
	LogFindings bool // Log detected findings
	LogVerbose  bool // Log per-chunk detection detail
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled      bool   // Whether to persist runs and mappings
	Host         string // Database host
	Port         int    // Database port
	Database     string // Database name
	Username     string // Database username
	Password     string // Database password
	SSLMode      string // SSL mode (disable, require, etc.)
	MaxOpenConns int    // Maximum open connections
	MaxIdleConns int    // Maximum idle connections
	MaxLifetime  int    // Connection max lifetime in seconds
	CleanupHours int    // Hours after which to cleanup old runs
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr     string  `json:"listen_addr"`
	RateLimitRPS   float64 `json:"rate_limit_rps"`
	RateLimitBurst int     `json:"rate_limit_burst"`
}

// Config holds all configuration for the PII extraction service
type Config struct {
	DetectorName  string
	ModelDir      string
	Labels        []string
	Threshold     float64 // model query threshold
	MinScore      float64 // minimum score for a finding to be reported
	MaxChunkChars int     // maximum characters per detection chunk
	Server        ServerConfig
	Database      DatabaseConfig
	Logging       LoggingConfig
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DetectorName:  "gliner_onnx_detector",
		ModelDir:      "model/gliner",
		Labels:        append([]string(nil), DefaultLabels...),
		Threshold:     0.4,
		MinScore:      0.5,
		MaxChunkChars: 2048,
		Server: ServerConfig{
			ListenAddr:     ":8080",
			RateLimitRPS:   10,
			RateLimitBurst: 20,
		},
		Database: DatabaseConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "pii_extract",
			Username:     "postgres",
			Password:     "",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 25,
			MaxLifetime:  300,
			CleanupHours: 24,
		},
		Logging: LoggingConfig{
			LogRequests: false,
			LogFindings: true,
			LogVerbose:  false,
		},
	}
}

// GetLogFindings returns whether to log detected findings
func (lc LoggingConfig) GetLogFindings() bool {
	return lc.LogFindings
}

// GetLogVerbose returns whether to log per-chunk detail
func (lc LoggingConfig) GetLogVerbose() bool {
	return lc.LogVerbose
}
