package utils

import (
	"fmt"
	"path"
	"strings"
)

const (
	// MaxExportSize is 10MB in bytes
	MaxExportSize = 10 * 1024 * 1024
	// AllowedExportFormat is CSV
	AllowedExportFormat = ".csv"
	// ExportPrefix is the object key prefix for archived exports
	ExportPrefix = "exports/"
)

// Export validation error codes
const (
	CodeExportTooLarge    = "EXPORT_TOO_LARGE"
	CodeInvalidFileName   = "INVALID_FILE_NAME"
	CodeInvalidFileFormat = "INVALID_FILE_FORMAT"
)

// ExportFileError represents an export file validation error
type ExportFileError struct {
	Code    string
	Message string
}

func (e *ExportFileError) Error() string {
	return e.Message
}

// ValidateExportFile validates the export file name and size
func ValidateExportFile(filename string, size int) error {
	if size > MaxExportSize {
		return &ExportFileError{
			Code:    CodeExportTooLarge,
			Message: fmt.Sprintf("Export size exceeds maximum allowed size of %d MB", MaxExportSize/(1024*1024)),
		}
	}

	base := path.Base(filename)
	if base != filename || strings.ContainsAny(filename, `\/`) || filename == "" {
		return &ExportFileError{
			Code:    CodeInvalidFileName,
			Message: "Export file name must not contain a path",
		}
	}

	if strings.ToLower(path.Ext(filename)) != AllowedExportFormat {
		return &ExportFileError{
			Code:    CodeInvalidFileFormat,
			Message: fmt.Sprintf("Only %s exports are allowed", AllowedExportFormat),
		}
	}

	return nil
}

// ExportKey returns the storage key for an export file name
func ExportKey(filename string) string {
	if filename == "" {
		return ""
	}
	return ExportPrefix + path.Base(filename)
}
