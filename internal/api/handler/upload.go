package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// stageFile copies the multipart file part named field into dir and returns
// the local path. An absent part yields an empty path and no error. The
// caller removes the file once it is done with it.
func stageFile(c echo.Context, field, dir string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("stage %s: open part: %w", field, err)
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("stage %s: %w", field, err)
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	path := filepath.Join(dir, field+"-"+uuid.NewString()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", field, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("stage %s: copy: %w", field, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("stage %s: %w", field, err)
	}
	return path, nil
}

// discard removes a staged file if it is still there.
func discard(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}
