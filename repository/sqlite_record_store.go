package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sbc-validator-backend/extraction"
	"sbc-validator-backend/models"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Timestamps are stored as fixed-width UTC text so they sort lexically
const (
	sqliteTimeFormat = "2006-01-02 15:04:05.000000000"
	sqliteTimeParse  = "2006-01-02 15:04:05.999999999"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS sbc_records (
		id TEXT PRIMARY KEY,
		group_name TEXT NOT NULL,
		upload_date TEXT NOT NULL,
		penalty_a TEXT NOT NULL,
		penalty_b TEXT NOT NULL,
		filename TEXT NOT NULL,
		storage_path TEXT,
		s3_url TEXT,
		penalty_a_explanation TEXT,
		penalty_b_explanation TEXT,
		checksum TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sbc_records_created_at ON sbc_records(created_at);
	`

// SQLiteRecordStore keeps sbc_records in a local SQLite file. It is the
// development default when no Postgres URL is configured.
type SQLiteRecordStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRecordStore opens the database at path; ":memory:" gives a
// private in-memory database.
func NewSQLiteRecordStore(path string) (*SQLiteRecordStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path cannot be empty")
	}

	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// single writer; also keeps one shared :memory: database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return &SQLiteRecordStore{db: db, now: time.Now}, nil
}

func (s *SQLiteRecordStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) Create(ctx context.Context, rec *models.SBCRecord) error {
	prepareForInsert(rec, s.now)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sbc_records (
			id, group_name, upload_date, penalty_a, penalty_b, filename, storage_path,
			s3_url, penalty_a_explanation, penalty_b_explanation, checksum, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(),
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
		rec.CreatedAt.UTC().Format(sqliteTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *SQLiteRecordStore) GetByID(ctx context.Context, id uuid.UUID) (*models.SBCRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM sbc_records WHERE id = ?`, id.String())

	rec, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteRecordStore) List(ctx context.Context) ([]*models.SBCRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM sbc_records ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*models.SBCRecord{}
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteRecordStore) UpdateAnswers(ctx context.Context, id uuid.UUID, upd models.AnswerUpdate) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sbc_records
		SET penalty_a = ?, penalty_b = ?, penalty_a_explanation = ?, penalty_b_explanation = ?
		WHERE id = ?`,
		string(upd.PenaltyA), string(upd.PenaltyB),
		upd.PenaltyAExplanation, upd.PenaltyBExplanation,
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteRecordStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sbc_records WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLiteRecordStore) Close() error {
	return s.db.Close()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row sqlScanner) (*models.SBCRecord, error) {
	rec := &models.SBCRecord{}
	var id, penaltyA, penaltyB, createdAt string
	err := row.Scan(
		&id,
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
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse record id %q: %w", id, err)
	}
	if rec.CreatedAt, err = time.ParseInLocation(sqliteTimeParse, createdAt, time.UTC); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.PenaltyA = extraction.Answer(penaltyA)
	rec.PenaltyB = extraction.Answer(penaltyB)
	return rec, nil
}
