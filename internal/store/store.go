package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"seopipe/internal/model"
)

// ErrNotFound is returned when no record exists for the requested id.
var ErrNotFound = errors.New("record not found")

// Verify at compile time that Store implements all interfaces.
var (
	_ RecordReader  = (*Store)(nil)
	_ RecordWriter  = (*Store)(nil)
	_ RecordUpdater = (*Store)(nil)
)

// Store provides data access to the SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and initialises the schema.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// currentSchemaVersion is bumped whenever the schema changes.
// Add a new migration function in the migrations slice below.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	// Ensure the schema_version table exists.
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		// Fresh database: initialize to version 0.
		if _, err := s.db.Exec(`INSERT INTO schema_version (version) VALUES (0)`); err != nil {
			return fmt.Errorf("init schema version: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	// migrations is an ordered list of migration functions.
	// Index 0 = migration from v0 to v1, etc.
	migrations := []func() error{
		s.migrateV1, // v0 → v1: initial schema
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](); err != nil {
			return fmt.Errorf("migration v%d→v%d: %w", i, i+1, err)
		}
		if _, err := s.db.Exec(`UPDATE schema_version SET version = ?`, i+1); err != nil {
			return fmt.Errorf("update schema version to %d: %w", i+1, err)
		}
	}

	return nil
}

// migrateV1 creates the initial schema (v0 → v1).
func (s *Store) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id                        TEXT PRIMARY KEY,
		kind                      TEXT NOT NULL,
		status                    TEXT NOT NULL,
		target_keyword            TEXT NOT NULL,
		input_content             TEXT,
		input_url                 TEXT,
		word_count                INTEGER,
		keyword_density           REAL,
		avg_sentence_length       REAL,
		readability_score         REAL,
		seo_score                 REAL,
		issues                    TEXT,
		target_length             INTEGER,
		tone                      TEXT,
		optimized_keyword_density REAL,
		optimized_content         TEXT,
		optimized_improvements    TEXT,
		processing_time_ms        INTEGER,
		created_at                TEXT NOT NULL,
		completed_at              TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_records_kind ON records(kind, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_records_status ON records(status, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

const recordColumns = `id, kind, status, target_keyword, input_content, input_url,
	word_count, keyword_density, avg_sentence_length, readability_score, seo_score, issues,
	target_length, tone, optimized_keyword_density,
	optimized_content, optimized_improvements, processing_time_ms, created_at, completed_at`

// CreateRecord inserts a new record.
func (s *Store) CreateRecord(ctx context.Context, rec model.Record) error {
	row, err := flattenRecord(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.args()...,
	)
	return err
}

// GetRecord returns a record by id, or ErrNotFound.
func (s *Store) GetRecord(ctx context.Context, id string) (*model.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListRecords returns records of the given kind, newest first. An empty kind
// returns all records.
func (s *Store) ListRecords(ctx context.Context, kind string) ([]model.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records`
	var args []interface{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// AtomicUpdate applies mutate to the current state of the record and persists
// the result as a single transaction. Returns ErrNotFound if the record does
// not exist. If mutate returns an error the transaction is rolled back and
// the error returned unchanged.
func (s *Store) AtomicUpdate(ctx context.Context, id string, mutate func(*model.Record) error) (*model.Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := mutate(rec); err != nil {
		return nil, err
	}

	flat, err := flattenRecord(*rec)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE records SET
			kind = ?, status = ?, target_keyword = ?, input_content = ?, input_url = ?,
			word_count = ?, keyword_density = ?, avg_sentence_length = ?, readability_score = ?, seo_score = ?, issues = ?,
			target_length = ?, tone = ?, optimized_keyword_density = ?,
			optimized_content = ?, optimized_improvements = ?, processing_time_ms = ?, created_at = ?, completed_at = ?
		WHERE id = ?`,
		append(flat.args()[1:], id)...,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}

// ---------------------------------------------------------------------------
// row mapping
// ---------------------------------------------------------------------------

// flatRecord is the row shape of the records table. The record union is
// flattened into nullable columns on write and rebuilt on read.
type flatRecord struct {
	ID, Kind, Status, TargetKeyword string
	InputContent, InputURL          sql.NullString
	WordCount                       sql.NullInt64
	KeywordDensity                  sql.NullFloat64
	AvgSentenceLength               sql.NullFloat64
	ReadabilityScore                sql.NullFloat64
	SEOScore                        sql.NullFloat64
	Issues                          sql.NullString
	TargetLength                    sql.NullInt64
	Tone                            sql.NullString
	OptimizedKeywordDensity         sql.NullFloat64
	OptimizedContent                sql.NullString
	OptimizedImprovements           sql.NullString
	ProcessingTimeMs                sql.NullInt64
	CreatedAt                       string
	CompletedAt                     sql.NullString
}

func (f *flatRecord) args() []interface{} {
	return []interface{}{
		f.ID, f.Kind, f.Status, f.TargetKeyword, f.InputContent, f.InputURL,
		f.WordCount, f.KeywordDensity, f.AvgSentenceLength, f.ReadabilityScore, f.SEOScore, f.Issues,
		f.TargetLength, f.Tone, f.OptimizedKeywordDensity,
		f.OptimizedContent, f.OptimizedImprovements, f.ProcessingTimeMs, f.CreatedAt, f.CompletedAt,
	}
}

func flattenRecord(rec model.Record) (*flatRecord, error) {
	f := &flatRecord{
		ID:            rec.ID,
		Kind:          rec.Kind,
		Status:        rec.Status,
		TargetKeyword: rec.TargetKeyword,
		CreatedAt:     rec.CreatedAt,
	}
	if rec.OptimizedContent != nil {
		f.OptimizedContent = sql.NullString{String: *rec.OptimizedContent, Valid: true}
	}
	if rec.OptimizedImprovements != nil {
		b, err := json.Marshal(rec.OptimizedImprovements)
		if err != nil {
			return nil, fmt.Errorf("marshal improvements: %w", err)
		}
		f.OptimizedImprovements = sql.NullString{String: string(b), Valid: true}
	}
	if rec.ProcessingTimeMs != nil {
		f.ProcessingTimeMs = sql.NullInt64{Int64: *rec.ProcessingTimeMs, Valid: true}
	}
	if rec.CompletedAt != nil {
		f.CompletedAt = sql.NullString{String: *rec.CompletedAt, Valid: true}
	}

	switch {
	case rec.Analysis != nil:
		a := rec.Analysis
		f.InputContent = nullStr(a.InputContent)
		f.InputURL = nullStr(a.InputURL)
		f.WordCount = nullIntFromPtr(a.WordCount)
		f.KeywordDensity = nullFloat(a.KeywordDensity)
		f.AvgSentenceLength = nullFloat(a.AvgSentenceLength)
		f.ReadabilityScore = nullFloat(a.ReadabilityScore)
		f.SEOScore = nullFloat(a.SEOScore)
		if a.Issues != nil {
			b, err := json.Marshal(a.Issues)
			if err != nil {
				return nil, fmt.Errorf("marshal issues: %w", err)
			}
			f.Issues = sql.NullString{String: string(b), Valid: true}
		}
	case rec.Optimization != nil:
		o := rec.Optimization
		f.InputContent = nullStr(o.InputContent)
		f.TargetLength = sql.NullInt64{Int64: int64(o.TargetLength), Valid: true}
		f.Tone = nullStr(o.Tone)
		f.OptimizedKeywordDensity = nullFloat(o.OptimizedKeywordDensity)
	default:
		return nil, fmt.Errorf("record %s has no payload for kind %q", rec.ID, rec.Kind)
	}
	return f, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*model.Record, error) {
	var f flatRecord
	err := row.Scan(
		&f.ID, &f.Kind, &f.Status, &f.TargetKeyword, &f.InputContent, &f.InputURL,
		&f.WordCount, &f.KeywordDensity, &f.AvgSentenceLength, &f.ReadabilityScore, &f.SEOScore, &f.Issues,
		&f.TargetLength, &f.Tone, &f.OptimizedKeywordDensity,
		&f.OptimizedContent, &f.OptimizedImprovements, &f.ProcessingTimeMs, &f.CreatedAt, &f.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	rec := model.Record{
		ID:            f.ID,
		Kind:          f.Kind,
		Status:        f.Status,
		TargetKeyword: f.TargetKeyword,
		CreatedAt:     f.CreatedAt,
	}
	if f.OptimizedContent.Valid {
		rec.OptimizedContent = &f.OptimizedContent.String
	}
	if f.OptimizedImprovements.Valid {
		if err := json.Unmarshal([]byte(f.OptimizedImprovements.String), &rec.OptimizedImprovements); err != nil {
			return nil, fmt.Errorf("unmarshal improvements: %w", err)
		}
	}
	if f.ProcessingTimeMs.Valid {
		rec.ProcessingTimeMs = &f.ProcessingTimeMs.Int64
	}
	if f.CompletedAt.Valid {
		rec.CompletedAt = &f.CompletedAt.String
	}

	switch f.Kind {
	case model.KindAnalysis:
		a := &model.AnalysisPayload{
			InputContent: f.InputContent.String,
			InputURL:     f.InputURL.String,
		}
		a.WordCount = intPtrFromNull(f.WordCount)
		a.KeywordDensity = floatPtr(f.KeywordDensity)
		a.AvgSentenceLength = floatPtr(f.AvgSentenceLength)
		a.ReadabilityScore = floatPtr(f.ReadabilityScore)
		a.SEOScore = floatPtr(f.SEOScore)
		if f.Issues.Valid {
			if err := json.Unmarshal([]byte(f.Issues.String), &a.Issues); err != nil {
				return nil, fmt.Errorf("unmarshal issues: %w", err)
			}
		}
		rec.Analysis = a
	case model.KindOptimization:
		o := &model.OptimizationPayload{
			InputContent: f.InputContent.String,
			TargetLength: int(f.TargetLength.Int64),
			Tone:         f.Tone.String,
		}
		o.OptimizedKeywordDensity = floatPtr(f.OptimizedKeywordDensity)
		rec.Optimization = o
	default:
		return nil, fmt.Errorf("record %s has unknown kind %q", f.ID, f.Kind)
	}

	return &rec, nil
}

func nullStr(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullIntFromPtr(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtrFromNull(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
