package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"sbc-validator-backend/extraction"
	"sbc-validator-backend/metrics"
	"sbc-validator-backend/models"
	"sbc-validator-backend/repository"
	"sbc-validator-backend/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var acmePages = []string{
	"Acme Risk Solutions Employee Benefits Plan\n" +
		"The overall deductible: $1,500 individual / $3,000 family\n",
	"Does this plan provide Minimum Essential Coverage? Yes\n" +
		"Does this plan meet the Minimum Value Standards? No\n",
}

type stubPages struct {
	pages []string
	err   error
}

func (s stubPages) ExtractPages(context.Context, string) ([]string, error) {
	return s.pages, s.err
}

func (s stubPages) ExtractPagesFromBytes(context.Context, []byte) ([]string, error) {
	return s.pages, s.err
}

type failingStorage struct {
	storage.Storage
	deleted []string
}

func (f *failingStorage) Upload(context.Context, uuid.UUID, string, io.Reader, ...storage.UploadOption) (string, error) {
	return "", errors.New("bucket unavailable")
}

func (f *failingStorage) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return errors.New("bucket unavailable")
}

type presigningStorage struct {
	*storage.LocalStorage
}

func (p presigningStorage) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://signed.example.com/" + key + "?ttl=" + ttl.String(), nil
}

type fixture struct {
	svc     *RecordService
	store   *repository.SQLiteRecordStore
	storage *storage.LocalStorage
	metrics *metrics.Collector
}

func newFixture(t *testing.T, pages stubPages, opts ...RecordServiceOption) fixture {
	t.Helper()

	store, err := repository.NewSQLiteRecordStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.EnsureSchema(context.Background()))

	local, err := storage.NewLocalStorage(t.TempDir(), storage.DefaultKeyPrefix)
	require.NoError(t, err)

	m := metrics.NewCollector("test", nil)
	base := []RecordServiceOption{
		WithRecordStore(store),
		WithStorage(local),
		WithEngine(extraction.NewEngine(extraction.WithPageExtractor(pages))),
		WithMetrics(m),
	}
	return fixture{
		svc:     NewRecordService(append(base, opts...)...),
		store:   store,
		storage: local,
		metrics: m,
	}
}

func TestProcessUpload(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stubPages{pages: acmePages})

	res, err := f.svc.ProcessUpload(ctx, ProcessUploadRequest{Filename: "Acme SBC.pdf", Data: []byte("%PDF-1.7")})
	require.NoError(t, err)
	assert.Empty(t, res.Warning)

	rec := res.Record
	assert.Equal(t, "Acme Risk Solutions", rec.GroupName)
	assert.Equal(t, extraction.AnswerYes, rec.PenaltyA)
	assert.Equal(t, extraction.AnswerNo, rec.PenaltyB)
	assert.Equal(t, "Acme SBC.pdf", rec.Filename)
	assert.Equal(t, Checksum([]byte("%PDF-1.7")), rec.Checksum)
	assert.Equal(t, storage.DefaultKeyPrefix+"/"+rec.ID.String()+".pdf", rec.StoragePath)
	require.NotNil(t, rec.S3URL)
	assert.Equal(t, rec.StoragePath, *rec.S3URL)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, rec.UploadDate)
	assert.Contains(t, rec.PenaltyBExplanation, "$1,500 individual / $3,000 family deductible")

	stored, err := f.svc.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.GroupName, stored.GroupName)
	assert.Equal(t, rec.PenaltyAExplanation, stored.PenaltyAExplanation)

	body, err := f.storage.Download(ctx, rec.StoragePath)
	require.NoError(t, err)
	data, _ := io.ReadAll(body)
	body.Close()
	assert.Equal(t, "%PDF-1.7", string(data))
}

func TestProcessUploadRejectsNonPDF(t *testing.T) {
	f := newFixture(t, stubPages{pages: acmePages})

	for _, name := range []string{"plan.docx", "plan", "plan.pdf.exe", ""} {
		_, err := f.svc.ProcessUpload(context.Background(), ProcessUploadRequest{Filename: name, Data: []byte("x")})
		assert.ErrorIs(t, err, ErrInvalidFileType, name)
	}

	records, err := f.svc.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProcessUploadEngineFailure(t *testing.T) {
	f := newFixture(t, stubPages{err: errors.New("pdftotext: exit status 1")})

	_, err := f.svc.ProcessUpload(context.Background(), ProcessUploadRequest{Filename: "bad.pdf", Data: []byte("x")})
	require.ErrorIs(t, err, ErrProcessingFailed)
	assert.Contains(t, err.Error(), "pdftotext: exit status 1")

	records, err := f.svc.ListRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProcessUploadBlankDocument(t *testing.T) {
	f := newFixture(t, stubPages{pages: []string{"  ", ""}})

	_, err := f.svc.ProcessUpload(context.Background(), ProcessUploadRequest{Filename: "scan.pdf", Data: []byte("x")})
	require.ErrorIs(t, err, ErrProcessingFailed)
	assert.Contains(t, err.Error(), extraction.ErrNoExtractableText.Error())
}

func TestProcessUploadStorageFailureIsWarning(t *testing.T) {
	failing := &failingStorage{}
	f := newFixture(t, stubPages{pages: acmePages}, WithStorage(failing))

	res, err := f.svc.ProcessUpload(context.Background(), ProcessUploadRequest{Filename: "acme.pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, UploadWarning, res.Warning)
	assert.Nil(t, res.Record.S3URL)
	assert.Empty(t, res.Record.StoragePath)

	stored, err := f.svc.GetRecord(context.Background(), res.Record.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.S3URL)
	assert.Equal(t, extraction.AnswerYes, stored.PenaltyA)
}

func TestProcessUploadWithoutStorage(t *testing.T) {
	f := newFixture(t, stubPages{pages: acmePages}, WithStorage(nil))

	res, err := f.svc.ProcessUpload(context.Background(), ProcessUploadRequest{Filename: "acme.pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, UploadWarning, res.Warning)
}

func TestProcessUploadNotConfigured(t *testing.T) {
	_, err := NewRecordService().ProcessUpload(context.Background(), ProcessUploadRequest{Filename: "a.pdf"})
	assert.EqualError(t, err, "record store not set")
}

func TestListRecordsNormalizesAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stubPages{pages: acmePages})

	legacy := &models.SBCRecord{GroupName: "Legacy Co", PenaltyA: "maybe", PenaltyB: "S", Filename: "old.pdf"}
	require.NoError(t, f.store.Create(ctx, legacy))

	records, err := f.svc.ListRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, extraction.AnswerUnknown, records[0].PenaltyA)
	assert.Equal(t, extraction.AnswerUnknown, records[0].PenaltyB)
}

func TestGetRecordNotFound(t *testing.T) {
	f := newFixture(t, stubPages{})
	_, err := f.svc.GetRecord(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDeleteRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stubPages{pages: acmePages})

	res, err := f.svc.ProcessUpload(ctx, ProcessUploadRequest{Filename: "acme.pdf", Data: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecord(ctx, res.Record.ID))

	_, err = f.svc.GetRecord(ctx, res.Record.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
	_, err = f.storage.Download(ctx, res.Record.StoragePath)
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)

	assert.ErrorIs(t, f.svc.DeleteRecord(ctx, res.Record.ID), ErrRecordNotFound)
}

func TestDeleteRecordStorageFailureStillDeletesRow(t *testing.T) {
	ctx := context.Background()
	failing := &failingStorage{}
	f := newFixture(t, stubPages{pages: acmePages}, WithStorage(failing))

	rec := &models.SBCRecord{GroupName: "Acme", PenaltyA: "Yes", PenaltyB: "No", Filename: "a.pdf", StoragePath: "text-extraction-pdf/a.pdf"}
	require.NoError(t, f.store.Create(ctx, rec))

	require.NoError(t, f.svc.DeleteRecord(ctx, rec.ID))
	assert.Equal(t, []string{"text-extraction-pdf/a.pdf"}, failing.deleted)

	_, err := f.svc.GetRecord(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestOpenDocumentStream(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stubPages{pages: acmePages})

	res, err := f.svc.ProcessUpload(ctx, ProcessUploadRequest{Filename: "acme.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)

	doc, err := f.svc.OpenDocument(ctx, res.Record.ID)
	require.NoError(t, err)
	require.NotNil(t, doc.Body)
	defer doc.Body.Close()
	assert.Empty(t, doc.URL)
	assert.Equal(t, "acme.pdf", doc.Filename)
	data, _ := io.ReadAll(doc.Body)
	assert.Equal(t, "%PDF", string(data))
}

func TestOpenDocumentPresigned(t *testing.T) {
	ctx := context.Background()
	local, err := storage.NewLocalStorage(t.TempDir(), storage.DefaultKeyPrefix)
	require.NoError(t, err)
	f := newFixture(t, stubPages{pages: acmePages}, WithStorage(presigningStorage{local}), WithPresignTTL(15*time.Minute))

	res, err := f.svc.ProcessUpload(ctx, ProcessUploadRequest{Filename: "acme.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)

	doc, err := f.svc.OpenDocument(ctx, res.Record.ID)
	require.NoError(t, err)
	assert.Nil(t, doc.Body)
	assert.True(t, strings.HasPrefix(doc.URL, "https://signed.example.com/"+res.Record.StoragePath), doc.URL)
	assert.Contains(t, doc.URL, "ttl=15m0s")
}

func TestOpenDocumentWithoutStoredFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, stubPages{pages: acmePages})

	rec := &models.SBCRecord{GroupName: "Acme", PenaltyA: "Yes", PenaltyB: "No", Filename: "a.pdf"}
	require.NoError(t, f.store.Create(ctx, rec))

	_, err := f.svc.OpenDocument(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNoDocument)

	missing := &models.SBCRecord{GroupName: "Acme", PenaltyA: "Yes", PenaltyB: "No", Filename: "b.pdf", StoragePath: "text-extraction-pdf/gone.pdf"}
	require.NoError(t, f.store.Create(ctx, missing))
	_, err = f.svc.OpenDocument(ctx, missing.ID)
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestChecksum(t *testing.T) {
	assert.Len(t, Checksum(nil), 64)
	assert.Equal(t, Checksum([]byte("a")), Checksum([]byte("a")))
	assert.NotEqual(t, Checksum([]byte("a")), Checksum([]byte("b")))
}

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF("plan.pdf"))
	assert.True(t, IsPDF("PLAN.PDF"))
	assert.False(t, IsPDF("plan.pdfx"))
	assert.False(t, IsPDF("pdf"))
}
