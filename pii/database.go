package pii

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/hannes/pii-extract/config"
)

// MappingStore defines the interface for original/dummy PII mapping operations
type MappingStore interface {
	// StoreMapping stores a PII mapping with confidence level
	StoreMapping(ctx context.Context, original, dummy string, piiType string, confidence float64) error

	// GetDummy retrieves dummy data for original PII
	GetDummy(ctx context.Context, original string) (string, bool, error)

	// GetOriginal retrieves original PII for dummy data
	GetOriginal(ctx context.Context, dummy string) (string, bool, error)
}

// FindingStore defines the interface for persisting extraction runs and mappings
type FindingStore interface {
	MappingStore

	// StoreRun persists all findings of a single extraction run
	StoreRun(ctx context.Context, runID uuid.UUID, document string, findings []Finding) error

	// GetRunFindings retrieves findings for a run, longest value first
	GetRunFindings(ctx context.Context, runID uuid.UUID) ([]Finding, error)

	// GetRunCount returns the total number of stored runs
	GetRunCount(ctx context.Context) (int, error)

	// CleanupOldRuns removes runs older than specified duration
	CleanupOldRuns(ctx context.Context, olderThan time.Duration) (int64, error)

	// Close closes the store
	Close() error
}

// PostgresFindingStore implements FindingStore for PostgreSQL
type PostgresFindingStore struct {
	db *sql.DB
}

// NewPostgresFindingStore creates a new PostgreSQL finding store
func NewPostgresFindingStore(cfg config.DatabaseConfig) (*PostgresFindingStore, error) {
	// Build connection string
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, cfg.SSLMode)

	// Open database connection
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create tables if they don't exist
	if err := createTablesIfNotExist(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &PostgresFindingStore{db: db}, nil
}

// createTablesIfNotExist creates the pii_findings and pii_mappings tables
func createTablesIfNotExist(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS pii_findings (
		id SERIAL PRIMARY KEY,
		run_id UUID NOT NULL,
		document VARCHAR(500) NOT NULL,
		pii_type VARCHAR(50) NOT NULL,
		pii_value VARCHAR(500) NOT NULL,
		private BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_pii_findings_run_id ON pii_findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_pii_findings_created_at ON pii_findings(created_at);
	CREATE INDEX IF NOT EXISTS idx_pii_findings_pii_type ON pii_findings(pii_type);

	CREATE TABLE IF NOT EXISTS pii_mappings (
		id SERIAL PRIMARY KEY,
		original_pii VARCHAR(500) NOT NULL UNIQUE,
		dummy_pii VARCHAR(500) NOT NULL UNIQUE,
		pii_type VARCHAR(50) NOT NULL,
		confidence REAL DEFAULT 1.0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		last_accessed_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		access_count INTEGER DEFAULT 1
	);

	CREATE INDEX IF NOT EXISTS idx_pii_mappings_original ON pii_mappings(original_pii);
	CREATE INDEX IF NOT EXISTS idx_pii_mappings_dummy ON pii_mappings(dummy_pii);
	CREATE INDEX IF NOT EXISTS idx_pii_mappings_created_at ON pii_mappings(created_at);
	`

	_, err := db.Exec(query)
	return err
}

// StoreRun persists all findings of a single extraction run in one transaction
func (p *PostgresFindingStore) StoreRun(ctx context.Context, runID uuid.UUID, document string, findings []Finding) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
	INSERT INTO pii_findings (run_id, document, pii_type, pii_value, private, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	`

	for _, finding := range findings {
		if _, err := tx.ExecContext(ctx, query, runID, document, finding.PIIType, finding.PIIValue, finding.Private); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("[FindingStore] Warning: rollback failed: %v", rbErr)
			}
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	return nil
}

// GetRunFindings retrieves findings for a run, longest value first
func (p *PostgresFindingStore) GetRunFindings(ctx context.Context, runID uuid.UUID) ([]Finding, error) {
	query := `
	SELECT pii_type, pii_value, private FROM pii_findings
	WHERE run_id = $1
	ORDER BY length(pii_value) DESC
	`

	rows, err := p.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query findings: %w", err)
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.PIIType, &f.PIIValue, &f.Private); err != nil {
			return nil, fmt.Errorf("failed to scan finding row: %w", err)
		}
		findings = append(findings, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating finding rows: %w", err)
	}

	return findings, nil
}

// GetRunCount returns the total number of stored runs
func (p *PostgresFindingStore) GetRunCount(ctx context.Context) (int, error) {
	var count int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT run_id) FROM pii_findings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get run count: %w", err)
	}
	return count, nil
}

// CleanupOldRuns removes runs older than specified duration
func (p *PostgresFindingStore) CleanupOldRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
	DELETE FROM pii_findings
	WHERE created_at < NOW() - INTERVAL '%d seconds'
	`

	result, err := p.db.ExecContext(ctx, fmt.Sprintf(query, int(olderThan.Seconds())))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// StoreMapping stores a PII mapping in the database with confidence level
func (p *PostgresFindingStore) StoreMapping(ctx context.Context, original, dummy string, piiType string, confidence float64) error {
	query := `
	INSERT INTO pii_mappings (original_pii, dummy_pii, pii_type, confidence, created_at, last_accessed_at, access_count)
	VALUES ($1, $2, $3, $4, NOW(), NOW(), 1)
	ON CONFLICT (original_pii)
	DO UPDATE SET
		last_accessed_at = NOW(),
		access_count = pii_mappings.access_count + 1,
		confidence = EXCLUDED.confidence
	`

	_, err := p.db.ExecContext(ctx, query, original, dummy, piiType, confidence)
	return err
}

// GetDummy retrieves dummy data for original PII
func (p *PostgresFindingStore) GetDummy(ctx context.Context, original string) (string, bool, error) {
	query := `
	SELECT dummy_pii FROM pii_mappings
	WHERE original_pii = $1
	`

	var dummy string
	err := p.db.QueryRowContext(ctx, query, original).Scan(&dummy)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}

	// Update access statistics
	updateQuery := `
	UPDATE pii_mappings
	SET last_accessed_at = NOW(), access_count = access_count + 1
	WHERE original_pii = $1
	`
	p.db.ExecContext(ctx, updateQuery, original) // Don't fail if this fails

	return dummy, true, nil
}

// GetOriginal retrieves original PII for dummy data
func (p *PostgresFindingStore) GetOriginal(ctx context.Context, dummy string) (string, bool, error) {
	query := `
	SELECT original_pii FROM pii_mappings
	WHERE dummy_pii = $1
	`

	var original string
	err := p.db.QueryRowContext(ctx, query, dummy).Scan(&original)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}

	// Update access statistics
	updateQuery := `
	UPDATE pii_mappings
	SET last_accessed_at = NOW(), access_count = access_count + 1
	WHERE dummy_pii = $1
	`
	p.db.ExecContext(ctx, updateQuery, dummy) // Don't fail if this fails

	return original, true, nil
}

// Close closes the database connection
func (p *PostgresFindingStore) Close() error {
	return p.db.Close()
}

// storedRun holds one run's findings in memory
type storedRun struct {
	document  string
	findings  []Finding
	createdAt time.Time
}

// InMemoryFindingStore implements FindingStore for in-memory storage (fallback)
type InMemoryFindingStore struct {
	mu              sync.RWMutex
	runs            map[uuid.UUID]storedRun
	originalToDummy map[string]string
	dummyToOriginal map[string]string
}

// NewInMemoryFindingStore creates a new in-memory finding store
func NewInMemoryFindingStore() *InMemoryFindingStore {
	return &InMemoryFindingStore{
		runs:            make(map[uuid.UUID]storedRun),
		originalToDummy: make(map[string]string),
		dummyToOriginal: make(map[string]string),
	}
}

// StoreRun persists all findings of a single extraction run in memory
func (i *InMemoryFindingStore) StoreRun(ctx context.Context, runID uuid.UUID, document string, findings []Finding) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	copied := make([]Finding, len(findings))
	copy(copied, findings)
	i.runs[runID] = storedRun{
		document:  document,
		findings:  copied,
		createdAt: time.Now(),
	}
	return nil
}

// GetRunFindings retrieves findings for a run, longest value first
func (i *InMemoryFindingStore) GetRunFindings(ctx context.Context, runID uuid.UUID) ([]Finding, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	run, exists := i.runs[runID]
	if !exists {
		return nil, nil
	}

	findings := make([]Finding, len(run.findings))
	copy(findings, run.findings)
	sort.SliceStable(findings, func(a, b int) bool {
		return len(findings[a].PIIValue) > len(findings[b].PIIValue)
	})
	return findings, nil
}

// GetRunCount returns the total number of stored runs
func (i *InMemoryFindingStore) GetRunCount(ctx context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.runs), nil
}

// CleanupOldRuns removes runs older than specified duration
func (i *InMemoryFindingStore) CleanupOldRuns(ctx context.Context, olderThan time.Duration) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	var removed int64
	for runID, run := range i.runs {
		if run.createdAt.Before(cutoff) {
			delete(i.runs, runID)
			removed++
		}
	}
	return removed, nil
}

// StoreMapping stores a PII mapping in memory with confidence level
func (i *InMemoryFindingStore) StoreMapping(ctx context.Context, original, dummy string, piiType string, confidence float64) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.originalToDummy[original] = dummy
	i.dummyToOriginal[dummy] = original
	// Note: in-memory store doesn't persist confidence, but accepts it for interface compatibility
	return nil
}

// GetDummy retrieves dummy data for original PII
func (i *InMemoryFindingStore) GetDummy(ctx context.Context, original string) (string, bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	dummy, exists := i.originalToDummy[original]
	return dummy, exists, nil
}

// GetOriginal retrieves original PII for dummy data
func (i *InMemoryFindingStore) GetOriginal(ctx context.Context, dummy string) (string, bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	original, exists := i.dummyToOriginal[dummy]
	return original, exists, nil
}

// Close is a no-op for in-memory storage
func (i *InMemoryFindingStore) Close() error {
	return nil
}

// NewStoreFromConfig creates a finding store based on configuration, falling
// back to in-memory storage when the database is disabled or unreachable
func NewStoreFromConfig(cfg config.DatabaseConfig) FindingStore {
	if !cfg.Enabled {
		log.Println("[FindingStore] Database disabled, using in-memory store")
		return NewInMemoryFindingStore()
	}

	store, err := NewPostgresFindingStore(cfg)
	if err != nil {
		log.Printf("[FindingStore] Warning: failed to connect to PostgreSQL: %v", err)
		log.Println("[FindingStore] Falling back to in-memory store")
		return NewInMemoryFindingStore()
	}

	log.Printf("[FindingStore] Connected to PostgreSQL at %s:%d", cfg.Host, cfg.Port)
	return store
}
