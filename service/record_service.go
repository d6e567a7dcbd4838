package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"sbc-validator-backend/extraction"
	"sbc-validator-backend/metrics"
	"sbc-validator-backend/models"
	"sbc-validator-backend/repository"
	"sbc-validator-backend/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrInvalidFileType  = errors.New("invalid file type, please upload a PDF file")
	ErrRecordNotFound   = errors.New("record not found")
	ErrProcessingFailed = errors.New("error processing file")
	ErrNoDocument       = errors.New("record has no stored document")
)

// UploadWarning is returned when a document was processed and saved but
// could not be stored
const UploadWarning = "File processed but document storage failed. Data saved without a document link."

// RecordService runs uploaded SBC documents through the extraction engine
// and manages the resulting records
type RecordService struct {
	store      repository.RecordStore
	storage    storage.Storage
	engine     *extraction.Engine
	metrics    *metrics.Collector
	logger     *slog.Logger
	presignTTL time.Duration
	now        func() time.Time
}

// RecordServiceOption is a functional option for RecordService
type RecordServiceOption func(*RecordService)

func WithRecordStore(store repository.RecordStore) RecordServiceOption {
	return func(s *RecordService) {
		s.store = store
	}
}

// WithStorage sets where source documents are kept. Without it uploads are
// processed and saved with a warning.
func WithStorage(st storage.Storage) RecordServiceOption {
	return func(s *RecordService) {
		s.storage = st
	}
}

func WithEngine(engine *extraction.Engine) RecordServiceOption {
	return func(s *RecordService) {
		s.engine = engine
	}
}

func WithMetrics(m *metrics.Collector) RecordServiceOption {
	return func(s *RecordService) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) RecordServiceOption {
	return func(s *RecordService) {
		s.logger = logger
	}
}

// WithPresignTTL sets how long presigned document links stay valid
func WithPresignTTL(ttl time.Duration) RecordServiceOption {
	return func(s *RecordService) {
		s.presignTTL = ttl
	}
}

// NewRecordService creates a new record service
func NewRecordService(opts ...RecordServiceOption) *RecordService {
	s := &RecordService{
		logger:     slog.Default(),
		presignTTL: time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessUploadRequest is one uploaded document
type ProcessUploadRequest struct {
	Filename string
	Data     []byte
}

// ProcessUploadResult holds the saved record. Warning is set when the
// document itself could not be stored.
type ProcessUploadResult struct {
	Record  *models.SBCRecord
	Warning string
}

// ProcessUpload classifies a PDF, stores the document and saves the record.
// A storage failure only produces a warning; an engine failure is returned
// wrapped in ErrProcessingFailed and nothing is saved.
func (s *RecordService) ProcessUpload(ctx context.Context, req ProcessUploadRequest) (*ProcessUploadResult, error) {
	if s.store == nil {
		return nil, errors.New("record store not set")
	}
	if s.engine == nil {
		return nil, errors.New("extraction engine not set")
	}
	if !IsPDF(req.Filename) {
		s.metrics.RecordRejected()
		return nil, ErrInvalidFileType
	}

	start := s.now()
	result := s.engine.ProcessBytes(ctx, req.Data)
	s.metrics.RecordResult(result, s.now().Sub(start))
	if !result.Success {
		s.logger.Warn("sbc processing failed", "filename", req.Filename, "error", result.Error)
		return nil, fmt.Errorf("%w: %s", ErrProcessingFailed, result.Error)
	}

	checksum := Checksum(req.Data)
	rec := &models.SBCRecord{
		ID:                  uuid.New(),
		GroupName:           result.CompanyName,
		UploadDate:          s.now().Format(models.UploadDateLayout),
		PenaltyA:            result.EssentialCoverage,
		PenaltyB:            result.ValueStandards,
		Filename:            req.Filename,
		PenaltyAExplanation: result.EssentialCoverageExplanation,
		PenaltyBExplanation: result.ValueStandardsExplanation,
		Checksum:            checksum,
	}

	var warning string
	if key, err := s.storeDocument(ctx, rec.ID, req.Filename, req.Data, checksum); err != nil {
		s.logger.Warn("document storage failed, saving record without a link",
			"record_id", rec.ID, "filename", req.Filename, "error", err)
		s.metrics.RecordStorageFailure("upload")
		warning = UploadWarning
	} else {
		url := s.storage.URL(key)
		rec.StoragePath = key
		rec.S3URL = &url
	}

	if err := s.store.Create(ctx, rec); err != nil {
		if rec.StoragePath != "" {
			if delErr := s.storage.Delete(ctx, rec.StoragePath); delErr != nil {
				s.logger.Warn("failed to clean up stored document", "key", rec.StoragePath, "error", delErr)
			}
		}
		return nil, fmt.Errorf("save record: %w", err)
	}

	s.logger.Info("sbc processed",
		"record_id", rec.ID,
		"company", rec.GroupName,
		"essential_coverage", rec.PenaltyA,
		"value_standards", rec.PenaltyB,
	)
	return &ProcessUploadResult{Record: rec, Warning: warning}, nil
}

func (s *RecordService) storeDocument(ctx context.Context, id uuid.UUID, filename string, data []byte, checksum string) (string, error) {
	if s.storage == nil {
		return "", errors.New("document storage not configured")
	}
	return s.storage.Upload(ctx, id, filename, bytes.NewReader(data), storage.WithChecksum(checksum))
}

// ListRecords returns every record, newest first
func (s *RecordService) ListRecords(ctx context.Context) ([]*models.SBCRecord, error) {
	if s.store == nil {
		return nil, errors.New("record store not set")
	}
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	for _, rec := range records {
		normalizeAnswers(rec)
	}
	return records, nil
}

// GetRecord retrieves a record by ID
func (s *RecordService) GetRecord(ctx context.Context, id uuid.UUID) (*models.SBCRecord, error) {
	if s.store == nil {
		return nil, errors.New("record store not set")
	}
	rec, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	normalizeAnswers(rec)
	return rec, nil
}

// DeleteRecord removes the stored document, then the record. Failing to
// delete the document is logged and does not stop the record delete.
func (s *RecordService) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return err
	}

	if rec.StoragePath != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, rec.StoragePath); err != nil {
			s.logger.Warn("failed to delete stored document", "record_id", id, "key", rec.StoragePath, "error", err)
			s.metrics.RecordStorageFailure("delete")
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("delete record: %w", err)
	}
	s.logger.Info("record deleted", "record_id", id)
	return nil
}

// Document is either a temporary link or an open stream of the source PDF.
// The caller must close Body when it is set.
type Document struct {
	URL         string
	Body        io.ReadCloser
	Filename    string
	ContentType string
}

// OpenDocument returns a presigned link when the storage backend supports
// it, and a stream otherwise
func (s *RecordService) OpenDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	rec, err := s.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.StoragePath == "" || s.storage == nil {
		return nil, ErrNoDocument
	}

	doc := &Document{Filename: rec.Filename, ContentType: "application/pdf"}
	if p, ok := s.storage.(storage.Presigner); ok {
		url, err := p.PresignGet(ctx, rec.StoragePath, s.presignTTL)
		if err != nil {
			return nil, fmt.Errorf("presign document: %w", err)
		}
		doc.URL = url
		return doc, nil
	}

	body, err := s.storage.Download(ctx, rec.StoragePath)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrNoDocument
	}
	if err != nil {
		s.metrics.RecordStorageFailure("download")
		return nil, fmt.Errorf("open document: %w", err)
	}
	doc.Body = body
	return doc, nil
}

// Checksum returns the hex BLAKE2b-256 digest of data
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// IsPDF reports whether filename has a .pdf extension, in any case
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

func normalizeAnswers(rec *models.SBCRecord) {
	rec.PenaltyA = extraction.ParseAnswer(string(rec.PenaltyA))
	rec.PenaltyB = extraction.ParseAnswer(string(rec.PenaltyB))
}
