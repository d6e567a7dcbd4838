package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sbc-validator-backend/extraction"
	"sbc-validator-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteRecordStore {
	t.Helper()
	store, err := NewSQLiteRecordStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store
}

func sampleRecord() *models.SBCRecord {
	url := "https://sbc-docs.s3.us-east-1.amazonaws.com/text-extraction-pdf/x.pdf"
	return &models.SBCRecord{
		GroupName:           "Acme Risk Solutions",
		PenaltyA:            extraction.AnswerYes,
		PenaltyB:            extraction.AnswerNo,
		Filename:            "acme.pdf",
		StoragePath:         "text-extraction-pdf/x.pdf",
		S3URL:               &url,
		PenaltyAExplanation: "essential",
		PenaltyBExplanation: "value",
		Checksum:            "abc123",
	}
}

func TestSQLiteRecordStoreCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	store.now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC) }

	rec := sampleRecord()
	require.NoError(t, store.Create(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, "2025-03-14", rec.UploadDate)

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestSQLiteRecordStoreNullableColumns(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := &models.SBCRecord{
		GroupName: "Unknown Company",
		PenaltyA:  extraction.AnswerUnknown,
		PenaltyB:  extraction.AnswerUnknown,
		Filename:  "scan.pdf",
	}
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.S3URL)
	assert.Empty(t, got.StoragePath)
	assert.Empty(t, got.Checksum)
}

func TestSQLiteRecordStoreGetMissing(t *testing.T) {
	_, err := newTestStore(t).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestSQLiteRecordStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		rec := sampleRecord()
		rec.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Create(ctx, rec))
		ids = append(ids, rec.ID)
	}

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, ids[2], records[0].ID)
	assert.Equal(t, ids[1], records[1].ID)
	assert.Equal(t, ids[0], records[2].ID)
}

func TestSQLiteRecordStoreListEmpty(t *testing.T) {
	records, err := newTestStore(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestSQLiteRecordStoreKeepsRawAnswers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := sampleRecord()
	rec.PenaltyB = extraction.Answer("S")
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, extraction.Answer("S"), got.PenaltyB)
}

func TestSQLiteRecordStoreUpdateAnswers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := sampleRecord()
	require.NoError(t, store.Create(ctx, rec))

	upd := models.AnswerUpdate{
		PenaltyA:            extraction.AnswerNo,
		PenaltyB:            extraction.AnswerYes,
		PenaltyAExplanation: "new a",
		PenaltyBExplanation: "new b",
	}
	require.NoError(t, store.UpdateAnswers(ctx, rec.ID, upd))

	got, err := store.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, extraction.AnswerNo, got.PenaltyA)
	assert.Equal(t, extraction.AnswerYes, got.PenaltyB)
	assert.Equal(t, "new a", got.PenaltyAExplanation)
	assert.Equal(t, "new b", got.PenaltyBExplanation)
	assert.Equal(t, rec.GroupName, got.GroupName)

	assert.ErrorIs(t, store.UpdateAnswers(ctx, uuid.New(), upd), ErrRecordNotFound)
}

func TestSQLiteRecordStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rec := sampleRecord()
	require.NoError(t, store.Create(ctx, rec))
	require.NoError(t, store.Delete(ctx, rec.ID))

	_, err := store.GetByID(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, store.Delete(ctx, rec.ID), ErrRecordNotFound)
}

func TestSQLiteRecordStoreEnsureSchemaTwice(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.EnsureSchema(context.Background()))
}

func TestSQLiteRecordStoreFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "records.db")

	store, err := NewSQLiteRecordStore(path)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))
	rec := sampleRecord()
	require.NoError(t, store.Create(ctx, rec))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteRecordStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.GroupName, got.GroupName)
}
