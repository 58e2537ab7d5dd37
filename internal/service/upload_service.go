package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-virtual-api/internal/dto"
	"github.com/noah-isme/campus-virtual-api/internal/models"
	appErrors "github.com/noah-isme/campus-virtual-api/pkg/errors"
	"github.com/noah-isme/campus-virtual-api/pkg/storage"
)

const sniffLength = 3072

// UploadConfig tunes accepted uploads.
type UploadConfig struct {
	MaxBytes     int64
	AllowedMIMEs []string
	// FilesURL is the absolute URL prefix of the download route.
	FilesURL string
}

// UploadService stores submission files and hands out signed download links.
type UploadService struct {
	store   *storage.LocalStorage
	signer  *storage.SignedURLSigner
	config  UploadConfig
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewUploadService constructs an UploadService.
func NewUploadService(store *storage.LocalStorage, signer *storage.SignedURLSigner, cfg UploadConfig, metrics *MetricsService, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.FilesURL = strings.TrimRight(cfg.FilesURL, "/")
	return &UploadService{store: store, signer: signer, config: cfg, metrics: metrics, logger: logger, now: time.Now}
}

// Upload sniffs the content type of r, enforces the allow-list and size
// limit, and stores the file.
func (s *UploadService) Upload(ctx context.Context, claims *models.SessionClaims, filename string, r io.Reader) (*dto.UploadResult, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(r, head)
	switch {
	case errors.Is(err, io.EOF):
		return nil, appErrors.FieldError("file", "file is empty")
	case err != nil && !errors.Is(err, io.ErrUnexpectedEOF):
		return nil, appErrors.Internal(err, "failed to read upload")
	}
	head = head[:n]

	mt := mimetype.Detect(head)
	if !s.allowed(mt) {
		return nil, appErrors.FieldError("file", fmt.Sprintf("file type %s is not allowed", mt.String()))
	}

	fileID := uuid.NewString()
	name := sanitiseFileName(filename, mt.Extension())
	rel := path.Join(s.now().UTC().Format("2006/01"), fileID, name)

	size, err := s.store.Save(rel, io.MultiReader(bytes.NewReader(head), r), s.config.MaxBytes)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, appErrors.FieldError("file", fmt.Sprintf("file exceeds the %d byte limit", s.config.MaxBytes))
		}
		return nil, appErrors.Internal(err, "failed to store upload")
	}

	token, expiresAt, err := s.signer.Generate(fileID, rel)
	if err != nil {
		_ = s.store.Delete(rel)
		return nil, appErrors.Internal(err, "failed to sign upload")
	}

	s.metrics.AddUploadBytes(size)
	s.logger.Info("file uploaded",
		zap.String("file_id", fileID),
		zap.String("user_id", claims.User.ID),
		zap.String("content_type", mt.String()),
		zap.Int64("size", size),
	)

	return &dto.UploadResult{
		FileID:      fileID,
		FileName:    name,
		ContentType: mt.String(),
		Size:        size,
		URL:         s.config.FilesURL + "/" + token,
		ExpiresAt:   expiresAt,
	}, nil
}

// Open resolves a signed token to the stored file and its display name.
func (s *UploadService) Open(token string) (*os.File, string, error) {
	_, rel, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
	}
	file, err := s.store.Open(rel)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		return nil, "", appErrors.Internal(err, "failed to open file")
	}
	return file, path.Base(rel), nil
}

func (s *UploadService) allowed(mt *mimetype.MIME) bool {
	if len(s.config.AllowedMIMEs) == 0 {
		return true
	}
	for _, m := range s.config.AllowedMIMEs {
		if mt.Is(m) {
			return true
		}
	}
	return false
}

// sanitiseFileName keeps letters, digits, dots, dashes and underscores of
// the base name and falls back to "file" plus the detected extension.
func sanitiseFileName(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	clean := strings.Trim(b.String(), ".")
	if clean == "" {
		return "file" + ext
	}
	if runes := []rune(clean); len(runes) > 120 {
		clean = string(runes[len(runes)-120:])
	}
	return clean
}
