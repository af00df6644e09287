package handler

import (
	"mime"
	"mime/multipart"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"bookshelf/internal/config"
)

const defaultContentType = "application/octet-stream"

// uploadForm is the metadata part of POST /api/books.
type uploadForm struct {
	Title       string `form:"title" validate:"required,max=300"`
	Author      string `form:"author" validate:"required,max=300"`
	Description string `form:"description" validate:"max=5000"`
	Tags        string `form:"tags" validate:"max=1000"`
}

func (f *uploadForm) trim() {
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)
	f.Description = strings.TrimSpace(f.Description)
}

type uploadRejection struct {
	status  int
	code    string
	message string
}

// checkUpload enforces the size limit and the allowed type list. EPUB files
// are accepted by extension because browsers often send them untyped.
func checkUpload(fh *multipart.FileHeader, cfg config.UploadConfig) *uploadRejection {
	if cfg.MaxUploadMB > 0 && fh.Size > cfg.MaxUploadMB<<20 {
		return &uploadRejection{fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds the upload size limit"}
	}
	if fh.Size == 0 {
		return &uploadRejection{fiber.StatusBadRequest, "FILE_EMPTY", "file is empty"}
	}
	if len(cfg.AllowedTypes) == 0 || strings.EqualFold(filepath.Ext(fh.Filename), ".epub") {
		return nil
	}
	if !slices.Contains(cfg.AllowedTypes, mediaType(fh)) {
		return &uploadRejection{fiber.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "file type is not allowed"}
	}
	return nil
}

// mediaType returns the part's content type without parameters.
func mediaType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		return defaultContentType
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return defaultContentType
	}
	return mt
}
