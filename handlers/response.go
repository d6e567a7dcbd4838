package handlers

import (
	"github.com/gin-gonic/gin"
)

// Error codes returned in the error envelope
const (
	CodeMissingFile      = "MISSING_FILE"
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeFileReadError    = "FILE_READ_ERROR"
	CodeInvalidFileType  = "INVALID_FILE_TYPE"
	CodeProcessingFailed = "PROCESSING_FAILED"
	CodeInvalidRecordID  = "INVALID_RECORD_ID"
	CodeRecordNotFound   = "RECORD_NOT_FOUND"
	CodeDocumentNotFound = "DOCUMENT_NOT_FOUND"
	CodeInternalError    = "INTERNAL_ERROR"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
