package filestorage

import (
	"context"
	"mime/multipart"
)

// FileInfo describes a stored upload
type FileInfo struct {
	URL          string `json:"url"`
	Path         string `json:"-"`
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	ContentType  string `json:"contentType"`
}

// FileStorage saves uploads and removes them again
type FileStorage interface {
	// SaveImage validates that the upload is an image and stores it under dir
	SaveImage(ctx context.Context, fileHeader *multipart.FileHeader, dir string) (*FileInfo, error)

	// Delete removes a file previously returned by SaveImage; unknown URLs are ignored
	Delete(ctx context.Context, fileURL string) error
}
