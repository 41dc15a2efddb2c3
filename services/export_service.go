package services

import (
	"context"
	"fmt"

	"github.com/kendall-kelly/warranty-dispatch-api/utils"
)

// ExportContentType is the content type of archived order exports
const ExportContentType = "text/csv; charset=utf-8"

// ExportService archives CSV exports and hands out download links
type ExportService interface {
	// StoreExport validates and uploads an export, returns its storage key
	StoreExport(ctx context.Context, filename string, content []byte) (string, error)

	// GetExportURL generates a download URL for an archived export
	GetExportURL(ctx context.Context, key string) (string, error)

	// DeleteExport removes an archived export
	DeleteExport(ctx context.Context, key string) error
}

// S3ExportService implements ExportService using AWS S3 for storage
type S3ExportService struct {
	s3Service S3Interface
}

var exportServiceInstance ExportService

// InitExportService initializes the export service with an S3 backend
func InitExportService(s3Service S3Interface) ExportService {
	exportServiceInstance = &S3ExportService{
		s3Service: s3Service,
	}
	return exportServiceInstance
}

// GetExportService returns the initialized export service instance, nil when
// export archiving is not configured
func GetExportService() ExportService {
	return exportServiceInstance
}

// SetExportService sets the export service instance (primarily for testing)
func SetExportService(service ExportService) {
	exportServiceInstance = service
}

// StoreExport validates and uploads an export to S3 under exports/
func (s *S3ExportService) StoreExport(ctx context.Context, filename string, content []byte) (string, error) {
	if err := utils.ValidateExportFile(filename, len(content)); err != nil {
		return "", err
	}

	key, err := s.s3Service.UploadFile(ctx, utils.ExportKey(filename), ExportContentType, content)
	if err != nil {
		return "", fmt.Errorf("failed to store export: %w", err)
	}

	return key, nil
}

// GetExportURL generates a presigned URL for an archived export
func (s *S3ExportService) GetExportURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate export URL: %w", err)
	}

	return url, nil
}

// DeleteExport deletes an archived export from S3
func (s *S3ExportService) DeleteExport(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, key); err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}

	return nil
}
