package filestorage

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/parivartan/platform-api/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimal PNG signature plus padding
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestLocalStorage_SaveAndDeleteImage(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/")
	require.NoError(t, err)

	info, err := ls.SaveImage(context.Background(), fileHeader(t, "me.png", pngBytes), "avatars")
	require.NoError(t, err)

	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, int64(len(pngBytes)), info.Size)
	assert.Contains(t, info.URL, "http://localhost:8080/uploads/avatars/")
	assert.FileExists(t, info.Path)

	require.NoError(t, ls.Delete(context.Background(), info.URL))
	_, err = os.Stat(info.Path)
	assert.True(t, os.IsNotExist(err))

	// deleting twice or foreign urls is a no-op
	assert.NoError(t, ls.Delete(context.Background(), info.URL))
	assert.NoError(t, ls.Delete(context.Background(), "https://cdn.example/x.png"))
}

func TestLocalStorage_RejectsNonImages(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	_, err = ls.SaveImage(context.Background(), fileHeader(t, "notes.txt", []byte("hello world")), "posts")
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))

	_, err = ls.SaveImage(context.Background(), nil, "posts")
	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
}

func TestLocalStorage_PathForStaysInsideBase(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "http://h")
	require.NoError(t, err)

	p, ok := ls.pathFor("http://h/uploads/../../etc/passwd")
	require.True(t, ok)
	assert.Contains(t, p, ls.basePath)
	assert.NotContains(t, p, "..")
}
