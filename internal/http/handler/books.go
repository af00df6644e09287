package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"bookshelf/internal/config"
	"bookshelf/internal/model"
	"bookshelf/internal/service"
)

type signedURLResponse struct {
	URL string `json:"url"`
}

type downloadRequest struct {
	FilePath string `json:"file_path" validate:"required"`
	FileName string `json:"file_name"`
}

type deleteResponse struct {
	ID string `json:"id"`
}

// ListBooks godoc
// @Summary      List books
// @Description  Lists books newest first. With tag, only books carrying that exact tag; with q, a case-insensitive match on title, author or description. A blank q lists everything.
// @Tags         books
// @Produce      json
// @Param        tag  query     string  false  "Exact tag"
// @Param        q    query     string  false  "Search text"
// @Success      200  {object}  envelope[[]model.Book]
// @Failure      502  {object}  errorPayload
// @Router       /api/books [get]
func ListBooks(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var (
			books []model.Book
			err   error
		)
		// Query values point into the request buffer; copies outlive it in spans.
		tag, q := utils.CopyString(c.Query("tag")), strings.TrimSpace(utils.CopyString(c.Query("q")))
		switch {
		case tag != "":
			books, err = svc.GetBooksByTag(ctx, tag)
		case q != "":
			books, err = svc.SearchBooks(ctx, q)
		default:
			books, err = svc.GetAllBooks(ctx)
		}
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeOK(c, fiber.StatusOK, books)
	}
}

// ListTags godoc
// @Summary      List tags
// @Description  Distinct tags of the most recently listed books.
// @Tags         books
// @Produce      json
// @Success      200  {object}  envelope[[]string]
// @Router       /api/tags [get]
func ListTags(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return writeOK(c, fiber.StatusOK, svc.GetAllTags())
	}
}

// UploadBook godoc
// @Summary      Upload a book
// @Description  Stores the file, then its catalog entry. Requires a session.
// @Tags         books
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file         formData  file    true   "Book file"
// @Param        title        formData  string  true   "Title"
// @Param        author       formData  string  true   "Author"
// @Param        description  formData  string  false  "Description"
// @Param        tags         formData  string  false  "Comma separated tags"
// @Success      201  {object}  envelope[model.Book]
// @Failure      400  {object}  errorPayload
// @Failure      401  {object}  errorPayload
// @Failure      413  {object}  errorPayload
// @Failure      415  {object}  errorPayload
// @Failure      500  {object}  errorPayload
// @Failure      502  {object}  errorPayload
// @Router       /api/books [post]
func UploadBook(svc service.BookService, cfg config.UploadConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		var form uploadForm
		if err := c.BodyParser(&form); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid form")
		}
		form.trim()
		if err := validate.Struct(form); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err))
		}
		if r := checkUpload(fh, cfg); r != nil {
			return writeError(c, r.status, r.code, r.message)
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		book, err := svc.UploadBook(c.UserContext(), service.BookInput{
			Title:       form.Title,
			Author:      form.Author,
			Description: form.Description,
			Tags:        form.Tags,
		}, service.FileUpload{
			Name:        fh.Filename,
			ContentType: mediaType(fh),
			Size:        fh.Size,
			Reader:      f,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeOK(c, fiber.StatusCreated, book)
	}
}

// SignedURL godoc
// @Summary      Get a signed download URL
// @Description  Issues a one-hour URL for a stored file. name, if given, becomes the saved file name.
// @Tags         downloads
// @Produce      json
// @Param        path  query     string  true   "Storage key (file_path)"
// @Param        name  query     string  false  "Download file name"
// @Success      200   {object}  envelope[signedURLResponse]
// @Failure      400   {object}  errorPayload
// @Failure      404   {object}  errorPayload
// @Failure      502   {object}  errorPayload
// @Router       /api/signed-url [get]
func SignedURL(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := utils.CopyString(c.Query("path"))
		if path == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "path is required")
		}
		u, err := svc.GetSignedURL(c.UserContext(), path, utils.CopyString(c.Query("name")))
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeOK(c, fiber.StatusOK, signedURLResponse{URL: u})
	}
}

// DownloadBook godoc
// @Summary      Download a book
// @Description  Returns a signed URL and counts the download. Counting never fails the request.
// @Tags         downloads
// @Accept       json
// @Produce      json
// @Param        id    path      string           true  "Book ID"
// @Param        body  body      downloadRequest  true  "File to download"
// @Success      200   {object}  envelope[service.Download]
// @Failure      400   {object}  errorPayload
// @Failure      404   {object}  errorPayload
// @Failure      502   {object}  errorPayload
// @Router       /api/books/{id}/download [post]
func DownloadBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req downloadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err))
		}
		// The id outlives the request in the background download count.
		id := utils.CopyString(c.Params("id"))
		dl, err := svc.DownloadBook(c.UserContext(), id, req.FilePath, req.FileName)
		if err != nil {
			return writeServiceError(c, err)
		}
		return writeOK(c, fiber.StatusOK, dl)
	}
}

// DeleteBook godoc
// @Summary      Delete a book
// @Description  Removes the catalog entry, then the stored file. Requires a session.
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true   "Book ID"
// @Param        file_path  query     string  false  "Storage key as the client knows it; only the entry's own file is removed"
// @Success      200        {object}  envelope[deleteResponse]
// @Failure      400        {object}  errorPayload
// @Failure      401        {object}  errorPayload
// @Failure      500        {object}  errorPayload
// @Router       /api/books/{id} [delete]
func DeleteBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := utils.CopyString(c.Params("id"))
		if err := validate.Var(id, "uuid"); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "id must be a UUID")
		}
		if err := svc.DeleteBook(c.UserContext(), id, utils.CopyString(c.Query("file_path"))); err != nil {
			return writeServiceError(c, err)
		}
		return writeOK(c, fiber.StatusOK, deleteResponse{ID: id})
	}
}

// Session godoc
// @Summary      Current session
// @Description  The signed-in user, or null.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  envelope[model.User]
// @Router       /api/session [get]
func Session(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return writeOK(c, fiber.StatusOK, svc.CurrentUser(c.UserContext()))
	}
}
