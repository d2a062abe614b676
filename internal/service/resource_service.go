package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/sprint-connect-api/internal/dto"
	"github.com/noah-isme/sprint-connect-api/internal/models"
	"github.com/noah-isme/sprint-connect-api/internal/observability"
	"github.com/noah-isme/sprint-connect-api/internal/repository"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the MIME type is not permitted.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
	// ErrUploadStorageUnavailable indicates no file storage is configured.
	ErrUploadStorageUnavailable = errors.New("file storage is not configured")
	// ErrResourceNotFound indicates the shared resource does not exist.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrResourceURLRequired indicates a link resource without a URL.
	ErrResourceURLRequired = errors.New("url is required for link resources")
	// ErrResourceFileRequired indicates a file resource sent without a file.
	ErrResourceFileRequired = errors.New("file is required for file resources")
	// ErrAlreadyUpvoted indicates the user already upvoted the resource.
	ErrAlreadyUpvoted = errors.New("resource already upvoted")
)

// FileStorage abstracts upload destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// ResourceService shares study material inside a circle.
type ResourceService interface {
	List(ctx context.Context, circleID, userID uint) ([]dto.ResourceResponse, error)
	Create(ctx context.Context, circleID, userID uint, payload dto.ResourceCreateRequest) (dto.ResourceResponse, error)
	Upload(ctx context.Context, circleID, userID uint, payload dto.ResourceCreateRequest, file *multipart.FileHeader) (dto.ResourceResponse, error)
	Upvote(ctx context.Context, resourceID, userID uint) (dto.ResourceResponse, error)
}

type resourceService struct {
	repo      repository.ResourceRepository
	circles   CircleService
	storage   FileStorage
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	maxSize   int64
	tracer    trace.Tracer
	now       func() time.Time
}

// NewResourceService constructs the resource service. storage may be nil, in
// which case only link and note resources can be shared.
func NewResourceService(repo repository.ResourceRepository, circles CircleService, storage FileStorage, maxSizeMB int, validate *validator.Validate, logger zerolog.Logger) ResourceService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &resourceService{
		repo:      repo,
		circles:   circles,
		storage:   storage,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "resource_service").Logger(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		tracer:    otel.Tracer("github.com/noah-isme/sprint-connect-api/internal/service/resource"),
		now:       time.Now,
	}
}

func (s *resourceService) List(ctx context.Context, circleID, userID uint) ([]dto.ResourceResponse, error) {
	if err := s.circles.EnsureMember(ctx, circleID, userID); err != nil {
		return nil, err
	}

	resources, err := s.repo.ListByCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ResourceResponse, 0, len(resources))
	for _, resource := range resources {
		out = append(out, dto.NewResourceResponse(resource))
	}
	return out, nil
}

func (s *resourceService) Create(ctx context.Context, circleID, userID uint, payload dto.ResourceCreateRequest) (dto.ResourceResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ResourceResponse{}, err
	}
	switch payload.Kind {
	case models.ResourceKindFile:
		return dto.ResourceResponse{}, ErrResourceFileRequired
	case models.ResourceKindLink:
		if strings.TrimSpace(payload.URL) == "" {
			return dto.ResourceResponse{}, ErrResourceURLRequired
		}
	}

	if err := s.circles.EnsureMember(ctx, circleID, userID); err != nil {
		return dto.ResourceResponse{}, err
	}

	resource := s.newResource(circleID, userID, payload)
	resource.URL = strings.TrimSpace(payload.URL)
	if err := s.repo.Create(ctx, &resource); err != nil {
		return dto.ResourceResponse{}, err
	}

	s.logger.Info().Uint("circle_id", circleID).Uint("resource_id", resource.ID).Str("kind", resource.Kind).Msg("resource shared")
	return dto.NewResourceResponse(resource), nil
}

// Upload validates, fingerprints and stores a file before recording it as a
// circle resource.
func (s *resourceService) Upload(ctx context.Context, circleID, userID uint, payload dto.ResourceCreateRequest, file *multipart.FileHeader) (dto.ResourceResponse, error) {
	ctx, span := s.tracer.Start(ctx, "resources.upload")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("upload.max_bytes", s.maxSize),
		attribute.Int64("upload.circle_id", int64(circleID)),
	)

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if payload.Kind == "" {
		payload.Kind = models.ResourceKindFile
	}
	if strings.TrimSpace(payload.Title) == "" && file != nil {
		payload.Title = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ResourceResponse{}, err
	}
	if file == nil {
		span.SetStatus(codes.Error, "validation failed")
		return dto.ResourceResponse{}, ErrResourceFileRequired
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if err := s.circles.EnsureMember(ctx, circleID, userID); err != nil {
		return dto.ResourceResponse{}, err
	}
	if s.storage == nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		return dto.ResourceResponse{}, ErrUploadStorageUnavailable
	}

	if file.Size > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.ResourceResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.ResourceResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.ResourceResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		observability.UploadRejected().WithLabelValues("size").Inc()
		span.RecordError(ErrUploadTooLarge)
		span.SetStatus(codes.Error, "payload too large")
		return dto.ResourceResponse{}, ErrUploadTooLarge
	}

	fileType := normalizeMime(mimetype.Detect(buf.Bytes()).String())
	span.SetAttributes(attribute.String("upload.detected_mime", fileType))
	if !isAllowedType(fileType) {
		observability.UploadRejected().WithLabelValues("type").Inc()
		span.RecordError(ErrUploadTypeNotAllowed)
		span.SetStatus(codes.Error, "type not allowed")
		return dto.ResourceResponse{}, ErrUploadTypeNotAllowed
	}

	checksum := sha256.Sum256(buf.Bytes())
	name := fmt.Sprintf("circle-%d/%s", circleID, sanitizeFileName(file.Filename, s.now()))
	span.SetAttributes(
		attribute.String("upload.key", name),
		attribute.Int64("upload.size_bytes", int64(buf.Len())),
	)

	url, err := s.storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()))
	if err != nil {
		observability.UploadRejected().WithLabelValues("storage").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.ResourceResponse{}, err
	}

	resource := s.newResource(circleID, userID, payload)
	resource.URL = url
	resource.MimeType = fileType
	resource.SizeBytes = int64(buf.Len())
	resource.Checksum = hex.EncodeToString(checksum[:])

	if err := s.repo.Create(ctx, &resource); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.ResourceResponse{}, err
	}

	span.SetStatus(codes.Ok, "stored")
	s.logger.Info().Uint("circle_id", circleID).Uint("resource_id", resource.ID).Str("mime", fileType).Msg("resource uploaded")

	return dto.NewResourceResponse(resource), nil
}

func (s *resourceService) Upvote(ctx context.Context, resourceID, userID uint) (dto.ResourceResponse, error) {
	resource, err := s.repo.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ResourceResponse{}, ErrResourceNotFound
		}
		return dto.ResourceResponse{}, err
	}

	if err := s.circles.EnsureMember(ctx, resource.CircleID, userID); err != nil {
		return dto.ResourceResponse{}, err
	}

	updated, err := s.repo.Upvote(ctx, resourceID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return dto.ResourceResponse{}, ErrAlreadyUpvoted
		}
		return dto.ResourceResponse{}, err
	}
	return dto.NewResourceResponse(updated), nil
}

func (s *resourceService) newResource(circleID, userID uint, payload dto.ResourceCreateRequest) models.CircleResource {
	return models.CircleResource{
		CircleID:    circleID,
		UploadedBy:  userID,
		Title:       sanitizeText(s.sanitizer, payload.Title),
		Description: sanitizeText(s.sanitizer, payload.Description),
		Kind:        payload.Kind,
	}
}

func sanitizeFileName(name string, at time.Time) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ToLower(base)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)
	base = strings.Trim(base, "-")
	if base == "" {
		base = fmt.Sprintf("resource-%d", at.Unix())
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = ".bin"
	}
	return base + ext
}

func normalizeMime(m string) string {
	lower := strings.ToLower(strings.TrimSpace(m))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = strings.TrimSpace(lower[:idx])
	}
	if strings.HasPrefix(lower, "image/") {
		return "image"
	}
	switch lower {
	case "application/zip", "application/x-zip-compressed":
		return "application/zip"
	default:
		return lower
	}
}

var allowedDocumentTypes = map[string]bool{
	"application/pdf":  true,
	"application/zip":  true,
	"text/plain":       true,
	"text/csv":         true,
	"application/json": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
}

func isAllowedType(m string) bool {
	return m == "image" || allowedDocumentTypes[m]
}
