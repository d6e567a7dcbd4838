package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"sbc-validator-backend/models"
	"sbc-validator-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	apiName    = "SBC Compliant Validator API"
	apiVersion = "1.0.0"

	defaultMaxUploadBytes = 10 << 20
)

// RecordHandler handles HTTP requests for SBC records
type RecordHandler struct {
	records        *service.RecordService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewRecordHandler creates a new record handler. maxUploadBytes <= 0 uses
// the 10 MB default.
func NewRecordHandler(records *service.RecordService, maxUploadBytes int64, logger *slog.Logger) *RecordHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordHandler{
		records:        records,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes mounts the info, health and record endpoints on r
func (h *RecordHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.Info)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		api.GET("/records", h.ListRecords)
		api.GET("/records/:id", h.GetRecord)
		api.GET("/records/:id/document", h.GetDocument)
		api.DELETE("/records/:id", h.DeleteRecord)

		api.POST("/upload", h.Upload)
	}
}

// Info handles GET /
func (h *RecordHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": apiName,
		"version": apiVersion,
		"endpoints": gin.H{
			"health":        "/api/health",
			"records":       "/api/records",
			"upload":        "/api/upload",
			"record":        "/api/records/{record_id}",
			"document":      "/api/records/{record_id}/document",
			"delete_record": "/api/records/{record_id}",
			"metrics":       "/metrics",
		},
	})
}

// Health handles GET /api/health
func (h *RecordHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "SBC Processor API is running",
	})
}

// UploadResponse is the data block of a successful upload
type UploadResponse struct {
	ID                  uuid.UUID `json:"id"`
	CompanyName         string    `json:"company_name"`
	PenaltyA            string    `json:"penalty_a"`
	PenaltyB            string    `json:"penalty_b"`
	PenaltyAExplanation string    `json:"penalty_a_explanation"`
	PenaltyBExplanation string    `json:"penalty_b_explanation"`
	Filename            string    `json:"filename"`
}

func newUploadResponse(rec *models.SBCRecord) UploadResponse {
	return UploadResponse{
		ID:                  rec.ID,
		CompanyName:         rec.GroupName,
		PenaltyA:            rec.PenaltyA.String(),
		PenaltyB:            rec.PenaltyB.String(),
		PenaltyAExplanation: rec.PenaltyAExplanation,
		PenaltyBExplanation: rec.PenaltyBExplanation,
		Filename:            rec.Filename,
	}
}

// Upload handles POST /api/upload
func (h *RecordHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Filename == "" {
		respondError(c, http.StatusBadRequest, CodeMissingFile, "No file selected")
		return
	}

	if !service.IsPDF(fileHeader.Filename) {
		respondError(c, http.StatusBadRequest, CodeInvalidFileType, "Invalid file type. Please upload a PDF file.")
		return
	}

	if fileHeader.Size > h.maxUploadBytes {
		respondError(c, http.StatusBadRequest, CodeFileTooLarge,
			fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeFileReadError, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		respondError(c, http.StatusInternalServerError, CodeFileReadError, err.Error())
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		respondError(c, http.StatusBadRequest, CodeFileTooLarge,
			fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxUploadBytes))
		return
	}

	result, err := h.records.ProcessUpload(c.Request.Context(), service.ProcessUploadRequest{
		Filename: fileHeader.Filename,
		Data:     data,
	})
	switch {
	case errors.Is(err, service.ErrInvalidFileType):
		respondError(c, http.StatusBadRequest, CodeInvalidFileType, "Invalid file type. Please upload a PDF file.")
		return
	case errors.Is(err, service.ErrProcessingFailed):
		respondError(c, http.StatusBadRequest, CodeProcessingFailed, err.Error())
		return
	case err != nil:
		h.logger.Error("upload failed", "filename", fileHeader.Filename, "error", err)
		respondError(c, http.StatusInternalServerError, CodeInternalError, "Internal server error")
		return
	}

	resp := gin.H{
		"success": true,
		"message": "File processed successfully!",
		"data":    newUploadResponse(result.Record),
	}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	c.JSON(http.StatusOK, resp)
}

// ListRecords handles GET /api/records
func (h *RecordHandler) ListRecords(c *gin.Context) {
	records, err := h.records.ListRecords(c.Request.Context())
	if err != nil {
		h.logger.Error("list records failed", "error", err)
		respondError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
		return
	}
	if records == nil {
		records = []*models.SBCRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"records": records,
	})
}

// GetRecord handles GET /api/records/:id
func (h *RecordHandler) GetRecord(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}

	rec, err := h.records.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.respondRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rec,
	})
}

// GetDocument handles GET /api/records/:id/document. S3 documents redirect
// to a presigned link; local documents are streamed inline.
func (h *RecordHandler) GetDocument(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}

	doc, err := h.records.OpenDocument(c.Request.Context(), id)
	if errors.Is(err, service.ErrNoDocument) {
		respondError(c, http.StatusNotFound, CodeDocumentNotFound, "No stored document for this record")
		return
	}
	if err != nil {
		h.respondRecordError(c, err)
		return
	}

	if doc.URL != "" {
		c.Redirect(http.StatusFound, doc.URL)
		return
	}
	defer doc.Body.Close()

	disposition := mime.FormatMediaType("inline", map[string]string{"filename": doc.Filename})
	c.DataFromReader(http.StatusOK, -1, doc.ContentType, doc.Body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// DeleteRecord handles DELETE /api/records/:id
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	id, ok := parseRecordID(c)
	if !ok {
		return
	}

	if err := h.records.DeleteRecord(c.Request.Context(), id); err != nil {
		h.respondRecordError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Record deleted successfully",
	})
}

func parseRecordID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRecordID, "Invalid record ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *RecordHandler) respondRecordError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrRecordNotFound) {
		respondError(c, http.StatusNotFound, CodeRecordNotFound, "Record not found")
		return
	}
	h.logger.Error("record request failed", "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, CodeInternalError, err.Error())
}
