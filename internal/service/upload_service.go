package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/observability"
	"github.com/trolukyanrl/jorhatx/internal/repository"
	"github.com/trolukyanrl/jorhatx/pkg/cloudinary"
)

var (
	// ErrUploadTooLarge indicates the file exceeds the size limit.
	ErrUploadTooLarge = errors.New("file exceeds the upload size limit")
	// ErrUploadUnsupportedType indicates a non-image payload.
	ErrUploadUnsupportedType = errors.New("only image uploads are accepted")
	// ErrUploadEmpty indicates a zero-byte payload.
	ErrUploadEmpty = errors.New("empty upload")
	// ErrUploadNotFound indicates no stored asset matches the id.
	ErrUploadNotFound = errors.New("upload not found")
)

// UploadService validates and stores listing images.
type UploadService interface {
	Upload(ctx context.Context, uploaderID, filename string, reader io.Reader) (dto.UploadResponse, error)
	ByPublicID(ctx context.Context, publicID string) (dto.UploadResponse, error)
	ViewURL(publicID string) string
}

type uploadService struct {
	uploads  repository.UploadRepository
	store    *cloudinary.Service
	maxBytes int64
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewUploadService constructs the upload service. maxBytes caps the
// accepted payload size.
func NewUploadService(uploads repository.UploadRepository, store *cloudinary.Service, maxBytes int64, logger zerolog.Logger) UploadService {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &uploadService{
		uploads:  uploads,
		store:    store,
		maxBytes: maxBytes,
		logger:   logger.With().Str("component", "upload_service").Logger(),
		tracer:   otel.Tracer("upload-service"),
	}
}

func (s *uploadService) Upload(ctx context.Context, uploaderID, filename string, reader io.Reader) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.store")
	defer span.End()

	start := time.Now()

	// Read one byte past the limit so oversized payloads are detected
	// without buffering the whole stream.
	data, err := io.ReadAll(io.LimitReader(reader, s.maxBytes+1))
	if err != nil {
		return dto.UploadResponse{}, err
	}
	if len(data) == 0 {
		observability.UploadRejected().WithLabelValues("empty").Inc()
		return dto.UploadResponse{}, ErrUploadEmpty
	}
	if int64(len(data)) > s.maxBytes {
		observability.UploadRejected().WithLabelValues("too_large").Inc()
		return dto.UploadResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		observability.UploadRejected().WithLabelValues("unsupported_type").Inc()
		return dto.UploadResponse{}, ErrUploadUnsupportedType
	}

	checksum := sha256.Sum256(data)
	checksumHex := hex.EncodeToString(checksum[:])

	// Identical bytes already stored: reuse the existing asset instead
	// of pushing a duplicate to the CDN.
	if existing, err := s.uploads.ByChecksum(ctx, checksumHex); err == nil {
		return dto.NewUploadResponse(existing), nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UploadResponse{}, err
	}

	asset, err := s.store.Upload(ctx, filename, bytes.NewReader(data))
	if err != nil {
		return dto.UploadResponse{}, err
	}

	upload := models.Upload{
		PublicID:   asset.PublicID,
		URL:        asset.URL,
		MimeType:   detected.String(),
		SizeBytes:  int64(len(data)),
		Checksum:   checksumHex,
		UploaderID: uploaderID,
	}
	if err := s.uploads.Create(ctx, &upload); err != nil {
		return dto.UploadResponse{}, err
	}

	observability.UploadLatency().Observe(time.Since(start).Seconds())

	s.logger.Info().
		Str("public_id", upload.PublicID).
		Str("uploader_id", uploaderID).
		Int64("size_bytes", upload.SizeBytes).
		Msg("image stored")

	return dto.NewUploadResponse(upload), nil
}

func (s *uploadService) ByPublicID(ctx context.Context, publicID string) (dto.UploadResponse, error) {
	upload, err := s.uploads.ByPublicID(ctx, strings.TrimSpace(publicID))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UploadResponse{}, ErrUploadNotFound
	}
	if err != nil {
		return dto.UploadResponse{}, err
	}
	return dto.NewUploadResponse(upload), nil
}

func (s *uploadService) ViewURL(publicID string) string {
	return s.store.ViewURL(publicID)
}
