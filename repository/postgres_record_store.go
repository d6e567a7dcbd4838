package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sbc-validator-backend/extraction"
	"sbc-validator-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS sbc_records (
		id UUID PRIMARY KEY,
		group_name VARCHAR(255) NOT NULL,
		upload_date VARCHAR(10) NOT NULL,
		penalty_a VARCHAR(10) NOT NULL,
		penalty_b VARCHAR(10) NOT NULL,
		filename VARCHAR(255) NOT NULL,
		storage_path TEXT,
		s3_url TEXT,
		penalty_a_explanation TEXT,
		penalty_b_explanation TEXT,
		checksum VARCHAR(64),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE sbc_records ADD COLUMN IF NOT EXISTS penalty_a_explanation TEXT`,
	`ALTER TABLE sbc_records ADD COLUMN IF NOT EXISTS penalty_b_explanation TEXT`,
	`ALTER TABLE sbc_records ADD COLUMN IF NOT EXISTS storage_path TEXT`,
	`ALTER TABLE sbc_records ADD COLUMN IF NOT EXISTS checksum VARCHAR(64)`,
	`CREATE INDEX IF NOT EXISTS idx_sbc_records_created_at ON sbc_records (created_at DESC)`,
}

// PostgresRecordStore handles sbc_records in PostgreSQL
type PostgresRecordStore struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewPostgresRecordStore connects and pings the database
func NewPostgresRecordStore(ctx context.Context, connString string) (*PostgresRecordStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return NewPostgresRecordStoreFromPool(pool), nil
}

// NewPostgresRecordStoreFromPool wraps an existing pool
func NewPostgresRecordStoreFromPool(db *pgxpool.Pool) *PostgresRecordStore {
	return &PostgresRecordStore{db: db, now: time.Now}
}

func (r *PostgresRecordStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Create creates a new record
func (r *PostgresRecordStore) Create(ctx context.Context, rec *models.SBCRecord) error {
	prepareForInsert(rec, r.now)

	query := `
		INSERT INTO sbc_records (
			id, group_name, upload_date, penalty_a, penalty_b, filename, storage_path,
			s3_url, penalty_a_explanation, penalty_b_explanation, checksum, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(
		ctx, query,
		rec.ID,
		rec.GroupName,
		rec.UploadDate,
		string(rec.PenaltyA),
		string(rec.PenaltyB),
		rec.Filename,
		rec.StoragePath,
		rec.S3URL,
		rec.PenaltyAExplanation,
		rec.PenaltyBExplanation,
		rec.Checksum,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

// GetByID retrieves a record by ID
func (r *PostgresRecordStore) GetByID(ctx context.Context, id uuid.UUID) (*models.SBCRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM sbc_records WHERE id = $1`

	rec, err := scanPostgresRecord(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// List retrieves all records, newest first
func (r *PostgresRecordStore) List(ctx context.Context) ([]*models.SBCRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM sbc_records ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*models.SBCRecord{}
	for rows.Next() {
		rec, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PostgresRecordStore) UpdateAnswers(ctx context.Context, id uuid.UUID, upd models.AnswerUpdate) error {
	query := `
		UPDATE sbc_records
		SET penalty_a = $1, penalty_b = $2, penalty_a_explanation = $3, penalty_b_explanation = $4
		WHERE id = $5`

	tag, err := r.db.Exec(ctx, query,
		string(upd.PenaltyA), string(upd.PenaltyB),
		upd.PenaltyAExplanation, upd.PenaltyBExplanation,
		id,
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete deletes a record
func (r *PostgresRecordStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sbc_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *PostgresRecordStore) Close() error {
	r.db.Close()
	return nil
}

func scanPostgresRecord(row pgx.Row) (*models.SBCRecord, error) {
	rec := &models.SBCRecord{}
	var penaltyA, penaltyB string
	err := row.Scan(
		&rec.ID,
		&rec.GroupName,
		&rec.UploadDate,
		&penaltyA,
		&penaltyB,
		&rec.Filename,
		&rec.StoragePath,
		&rec.S3URL,
		&rec.PenaltyAExplanation,
		&rec.PenaltyBExplanation,
		&rec.Checksum,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.PenaltyA = extraction.Answer(penaltyA)
	rec.PenaltyB = extraction.Answer(penaltyB)
	return rec, nil
}
