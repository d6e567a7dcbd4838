package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"sbc-validator-backend/models"

	"github.com/google/uuid"
)

var ErrRecordNotFound = errors.New("record not found")

// RecordStore persists processed SBC records in the sbc_records table
type RecordStore interface {
	// EnsureSchema creates the table and indexes when missing
	EnsureSchema(ctx context.Context) error
	// Create inserts rec, filling ID, CreatedAt and UploadDate when unset
	Create(ctx context.Context, rec *models.SBCRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SBCRecord, error)
	// List returns every record, newest first
	List(ctx context.Context) ([]*models.SBCRecord, error)
	UpdateAnswers(ctx context.Context, id uuid.UUID, upd models.AnswerUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// StoreConfig selects and configures the record store
type StoreConfig struct {
	DatabaseURL string
	SQLitePath  string
}

// DefaultSQLitePath is used when neither a Postgres URL nor a path is given
const DefaultSQLitePath = "sbc_records.db"

// OpenRecordStore connects to PostgreSQL when DatabaseURL is a postgres URL
// and opens SQLite otherwise. A failed Postgres connection is returned as an
// error; it never falls back to SQLite.
func OpenRecordStore(ctx context.Context, cfg StoreConfig) (RecordStore, error) {
	if IsPostgresURL(cfg.DatabaseURL) {
		store, err := NewPostgresRecordStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	path := cfg.SQLitePath
	if path == "" {
		path = DefaultSQLitePath
	}
	store, err := NewSQLiteRecordStore(path)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// IsPostgresURL reports whether url names a PostgreSQL database
func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

func prepareForInsert(rec *models.SBCRecord, now func() time.Time) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now().UTC()
	}
	if rec.UploadDate == "" {
		rec.UploadDate = rec.CreatedAt.Format(models.UploadDateLayout)
	}
}

const recordColumns = `id, group_name, upload_date, penalty_a, penalty_b, filename,
		COALESCE(storage_path, ''), s3_url, COALESCE(penalty_a_explanation, ''),
		COALESCE(penalty_b_explanation, ''), COALESCE(checksum, ''), created_at`
