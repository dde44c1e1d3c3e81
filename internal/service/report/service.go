package report

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/storage"
)

const (
	ExamsList    = "exams-list"
	DiseasesList = "diseases-list"

	defaultContentType = "application/octet-stream"
	msgFileNotFound    = "File not found"
)

// Service serves pre-rendered report and document files from the object
// store. It never renders anything itself.
type Service struct {
	store     storage.Store
	reports   map[string]string
	documents map[string]string
}

// NewService takes the report name to object key map and the document type to
// object key map.
func NewService(store storage.Store, reports, documents map[string]string) *Service {
	return &Service{store: store, reports: reports, documents: documents}
}

// Report opens the named report. The caller closes the returned body.
func (s *Service) Report(ctx context.Context, name string) (*storage.Object, error) {
	key, ok := s.reports[name]
	if !ok {
		return nil, apperrors.NotFound(msgFileNotFound)
	}
	return s.open(ctx, key)
}

// Document opens the document configured for docType.
func (s *Service) Document(ctx context.Context, docType int) (*storage.Object, error) {
	key, ok := s.documents[strconv.Itoa(docType)]
	if !ok {
		return nil, apperrors.NotFound(fmt.Sprintf("No document configured for type %d", docType))
	}
	return s.open(ctx, key)
}

// Upload stores a freshly rendered report under its configured key.
func (s *Service) Upload(ctx context.Context, name string, obj *storage.Object) error {
	key, ok := s.reports[name]
	if !ok {
		return apperrors.NotFound(fmt.Sprintf("Unknown report %q", name))
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	if err := s.store.Put(ctx, key, obj.Body, obj.Size, contentType); err != nil {
		return fmt.Errorf("failed to upload report %s: %w", name, err)
	}
	return nil
}

func (s *Service) open(ctx context.Context, key string) (*storage.Object, error) {
	obj, err := s.store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperrors.NotFound(msgFileNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	if obj.ContentType == "" {
		obj.ContentType = defaultContentType
	}
	return obj, nil
}
