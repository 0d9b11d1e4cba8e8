package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/parivartan/platform-api/internal/pkg/logger"
)

// MaxImageSize is the largest accepted image upload
const MaxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStorage saves files under a directory served at baseURL
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates the storage directory when missing
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}, nil
}

// SaveImage stores an image upload under a fresh uuid name
func (ls *LocalStorage) SaveImage(_ context.Context, fileHeader *multipart.FileHeader, dir string) (*FileInfo, error) {
	if fileHeader == nil {
		return nil, apperrors.NewBadRequestError("file is required")
	}
	if fileHeader.Size > MaxImageSize {
		return nil, apperrors.NewBadRequestError("image must be 5MB or smaller")
	}
	dir = filepath.Clean("/" + dir)[1:]

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, apperrors.NewBadRequestError("only JPEG, PNG, GIF and WebP images are allowed")
	}

	fullDirPath := filepath.Join(ls.basePath, dir)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + ext
	dstPath := filepath.Join(fullDirPath, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head[:n]), file))
	if err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	rel := name
	if dir != "" {
		rel = filepath.ToSlash(filepath.Join(dir, name))
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("saved_as", rel).Msg("File saved")
	return &FileInfo{
		URL:          ls.baseURL + "/uploads/" + rel,
		Path:         dstPath,
		OriginalName: fileHeader.Filename,
		Size:         written,
		ContentType:  contentType,
	}, nil
}

// Delete removes a stored file by its URL. Missing files are not an error.
func (ls *LocalStorage) Delete(_ context.Context, fileURL string) error {
	path, ok := ls.pathFor(fileURL)
	if !ok {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Error().Err(err).Str("path", path).Msg("Failed to delete file")
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// pathFor maps a public URL back inside basePath, refusing anything outside it
func (ls *LocalStorage) pathFor(fileURL string) (string, bool) {
	prefix := ls.baseURL + "/uploads/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", false
	}
	rel := filepath.Clean("/" + strings.TrimPrefix(fileURL, prefix))[1:]
	if rel == "" {
		return "", false
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel)), true
}
