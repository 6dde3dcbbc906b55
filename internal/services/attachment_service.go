package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	attachmentURLExpiry = 15 * time.Minute
	maxAttachmentSize   = 10 << 20
)

var allowedPhotoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Photo is a stored attachment plus a short-lived download URL.
type Photo struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// AttachmentService stores request photos under requests/<request-id>/<object-id>
// and hands out presigned download URLs.
type AttachmentService interface {
	Upload(ctx context.Context, requestID uuid.UUID, reader io.Reader, size int64, contentType string) (*Photo, error)
	List(ctx context.Context, requestID uuid.UUID) ([]Photo, error)
	Delete(ctx context.Context, requestID uuid.UUID, key string) error
}

type attachmentService struct {
	store  ObjectStore
	bucket string
}

func NewAttachmentService(store ObjectStore, bucket string) AttachmentService {
	return &attachmentService{store: store, bucket: bucket}
}

func (s *attachmentService) Upload(ctx context.Context, requestID uuid.UUID, reader io.Reader, size int64, contentType string) (*Photo, error) {
	ext, ok := allowedPhotoTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrValidation, contentType)
	}
	if size <= 0 || size > maxAttachmentSize {
		return nil, fmt.Errorf("%w: attachment size must be between 1 byte and %d bytes", ErrValidation, maxAttachmentSize)
	}

	key := attachmentKey(requestID, uuid.New().String()+ext)
	if err := s.store.Upload(ctx, s.bucket, key, reader, size, contentType); err != nil {
		return nil, fmt.Errorf("%w: attachment upload: %v", ErrWriteFailed, err)
	}

	url, err := s.store.PresignedURL(ctx, s.bucket, key, attachmentURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: presign after upload: %v", ErrWriteFailed, err)
	}
	return &Photo{Key: key, URL: url}, nil
}

func (s *attachmentService) List(ctx context.Context, requestID uuid.UUID) ([]Photo, error) {
	keys, err := s.store.ListKeys(ctx, s.bucket, attachmentPrefix(requestID))
	if err != nil {
		return nil, fmt.Errorf("%w: attachment listing: %v", ErrLookupFailed, err)
	}

	photos := make([]Photo, 0, len(keys))
	for _, key := range keys {
		url, err := s.store.PresignedURL(ctx, s.bucket, key, attachmentURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("%w: presign %s: %v", ErrLookupFailed, key, err)
		}
		photos = append(photos, Photo{Key: key, URL: url})
	}
	return photos, nil
}

func (s *attachmentService) Delete(ctx context.Context, requestID uuid.UUID, key string) error {
	// A key outside the request's prefix must not be deletable through this
	// request's endpoint.
	if !strings.HasPrefix(key, attachmentPrefix(requestID)) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: key does not belong to this request", ErrValidation)
	}
	if err := s.store.Remove(ctx, s.bucket, key); err != nil {
		return fmt.Errorf("%w: attachment delete: %v", ErrWriteFailed, err)
	}
	return nil
}

func attachmentPrefix(requestID uuid.UUID) string {
	return "requests/" + requestID.String() + "/"
}

func attachmentKey(requestID uuid.UUID, name string) string {
	return path.Join("requests", requestID.String(), name)
}
