package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/config"
	"bookshelf/internal/http/middleware"
	"bookshelf/internal/model"
	"bookshelf/internal/repository/postgres"
	"bookshelf/internal/service"
	serviceMocks "bookshelf/internal/service/mocks"
	"bookshelf/internal/storage"
)

var uploadCfg = config.UploadConfig{MaxUploadMB: 1, AllowedTypes: config.DefaultAllowedTypes}

func newTestApp(svc service.BookService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	RegisterRoutes(app, Deps{Books: svc, Health: okPinger{}, Upload: uploadCfg, Gatherer: prometheus.NewRegistry()})
	return app
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type multipartFile struct {
	name        string
	contentType string
	body        []byte
}

func multipartRequest(t *testing.T, fields map[string]string, file *multipartFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.name))
		if file.contentType != "" {
			h.Set("Content-Type", file.contentType)
		}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/books", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(postgres.NewBookPostgres(db)))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[envelope[healthResponse]](t, resp)
		assert.True(t, body.Success)
		assert.Equal(t, "healthy", body.Data.Status)
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		body := decode[errorPayload](t, resp)
		assert.False(t, body.Success)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Code)
	})

	require.NoError(t, dbMock.ExpectationsWereMet())
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(new(serviceMocks.MockBookService))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSwaggerDoc(t *testing.T) {
	app := newTestApp(new(serviceMocks.MockBookService))

	req := httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	req.Header.Set("X-Forwarded-Proto", "https, http")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Bookshelf API")
	assert.Contains(t, string(body), `"https"`)
}

func TestListBooks(t *testing.T) {
	books := []model.Book{{ID: "1", Title: "Foo", Author: "Bar", Tags: []string{"x", "y"}}}

	tests := []struct {
		name  string
		query string
		setup func(m *serviceMocks.MockBookService)
	}{
		{"all", "", func(m *serviceMocks.MockBookService) {
			m.On("GetAllBooks", mock.Anything).Return(books, nil).Once()
		}},
		{"by tag", "?tag=x", func(m *serviceMocks.MockBookService) {
			m.On("GetBooksByTag", mock.Anything, "x").Return(books, nil).Once()
		}},
		{"search", "?q=foo", func(m *serviceMocks.MockBookService) {
			m.On("SearchBooks", mock.Anything, "foo").Return(books, nil).Once()
		}},
		{"blank search lists everything", "?q=%20%20", func(m *serviceMocks.MockBookService) {
			m.On("GetAllBooks", mock.Anything).Return(books, nil).Once()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockBookService)
			tt.setup(mockSvc)
			app := newTestApp(mockSvc)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/books"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			body := decode[envelope[[]model.Book]](t, resp)
			assert.True(t, body.Success)
			assert.Equal(t, books, body.Data)
			mockSvc.AssertExpectations(t)
		})
	}

	t.Run("fetch error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("GetAllBooks", mock.Anything).Return(nil, fmt.Errorf("%w: %w", service.ErrFetch, errors.New("timeout")))
		app := newTestApp(mockSvc)

		req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
		req.Header.Set(middleware.RequestIDHeader, "rid-1")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

		body := decode[errorPayload](t, resp)
		assert.False(t, body.Success)
		assert.Equal(t, "FETCH_ERROR", body.Code)
		assert.Equal(t, "rid-1", body.RequestID)
		assert.NotContains(t, body.Error, "timeout")
	})
}

func TestListTags(t *testing.T) {
	mockSvc := new(serviceMocks.MockBookService)
	mockSvc.On("GetAllTags").Return([]string{"a", "b"})
	app := newTestApp(mockSvc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/tags", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"a", "b"}, decode[envelope[[]string]](t, resp).Data)
}

func TestUploadBook(t *testing.T) {
	validFields := map[string]string{"title": " Foo ", "author": "Bar", "description": "d", "tags": "x, y"}
	pdf := &multipartFile{name: "foo.pdf", contentType: "application/pdf", body: []byte("%PDF-1.7")}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("UploadBook", mock.Anything,
			service.BookInput{Title: "Foo", Author: "Bar", Description: "d", Tags: "x, y"},
			mock.MatchedBy(func(f service.FileUpload) bool {
				data, _ := io.ReadAll(f.Reader)
				return f.Name == "foo.pdf" && f.ContentType == "application/pdf" && f.Size == 8 && string(data) == "%PDF-1.7"
			}),
		).Return(&model.Book{ID: "1", Title: "Foo"}, nil).Once()
		app := newTestApp(mockSvc)

		resp, err := app.Test(multipartRequest(t, validFields, pdf))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		body := decode[envelope[model.Book]](t, resp)
		assert.True(t, body.Success)
		assert.Equal(t, "1", body.Data.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("epub accepted by extension", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("UploadBook", mock.Anything, mock.Anything, mock.MatchedBy(func(f service.FileUpload) bool {
			return f.Name == "dune.EPUB" && f.ContentType == "application/octet-stream"
		})).Return(&model.Book{ID: "2"}, nil).Once()
		app := newTestApp(mockSvc)

		file := &multipartFile{name: "dune.EPUB", contentType: "application/octet-stream", body: []byte("PK")}
		resp, err := app.Test(multipartRequest(t, validFields, file))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	rejections := []struct {
		name     string
		fields   map[string]string
		file     *multipartFile
		wantCode int
		wantErr  string
	}{
		{"missing file", validFields, nil, http.StatusBadRequest, "file is required"},
		{"missing title", map[string]string{"author": "Bar"}, pdf, http.StatusBadRequest, "title is required"},
		{"blank author", map[string]string{"title": "Foo", "author": "   "}, pdf, http.StatusBadRequest, "author is required"},
		{"disallowed type", validFields, &multipartFile{name: "x.exe", contentType: "application/x-msdownload", body: []byte("MZ")}, http.StatusUnsupportedMediaType, "file type is not allowed"},
		{"too large", validFields, &multipartFile{name: "big.pdf", contentType: "application/pdf", body: make([]byte, 1<<20+1)}, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit"},
		{"empty file", validFields, &multipartFile{name: "e.pdf", contentType: "application/pdf"}, http.StatusBadRequest, "file is empty"},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockBookService)
			app := newTestApp(mockSvc)

			resp, err := app.Test(multipartRequest(t, tt.fields, tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantErr, decode[errorPayload](t, resp).Error)
			mockSvc.AssertNotCalled(t, "UploadBook", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	serviceErrors := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"no session", service.ErrAuthRequired, http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"blob write", fmt.Errorf("%w: %w", service.ErrBlobWrite, storage.ErrObjectExists), http.StatusBadGateway, "BLOB_WRITE_ERROR"},
		{"db", fmt.Errorf("%w: %w", service.ErrDB, errors.New("constraint")), http.StatusInternalServerError, "DB_ERROR"},
	}
	for _, tt := range serviceErrors {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockBookService)
			mockSvc.On("UploadBook", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			app := newTestApp(mockSvc)

			resp, err := app.Test(multipartRequest(t, validFields, pdf))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantKind, decode[errorPayload](t, resp).Code)
		})
	}
}

func TestSignedURL(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("GetSignedURL", mock.Anything, "k.pdf", "My Book.pdf").Return("https://signed", nil)
		app := newTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/signed-url?path=k.pdf&name=My%20Book.pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "https://signed", decode[envelope[signedURLResponse]](t, resp).Data.URL)
	})

	t.Run("missing path", func(t *testing.T) {
		app := newTestApp(new(serviceMocks.MockBookService))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/signed-url", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("object missing", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("GetSignedURL", mock.Anything, "gone.pdf", "").
			Return("", fmt.Errorf("%w: %w", service.ErrSign, storage.ErrObjectNotFound))
		app := newTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/signed-url?path=gone.pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("store error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("GetSignedURL", mock.Anything, "k.pdf", "").
			Return("", fmt.Errorf("%w: %w", service.ErrSign, errors.New("dial tcp")))
		app := newTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/signed-url?path=k.pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		assert.Equal(t, "SIGN_ERROR", decode[errorPayload](t, resp).Code)
	})
}

func TestDownloadBook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("DownloadBook", mock.Anything, "book-1", "k.pdf", "Foo.pdf").
			Return(&service.Download{URL: "https://signed", FileName: "Foo.pdf"}, nil)
		app := newTestApp(mockSvc)

		req := httptest.NewRequest(http.MethodPost, "/api/books/book-1/download", strings.NewReader(`{"file_path":"k.pdf","file_name":"Foo.pdf"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[envelope[service.Download]](t, resp)
		assert.Equal(t, service.Download{URL: "https://signed", FileName: "Foo.pdf"}, body.Data)
	})

	t.Run("missing file path", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		app := newTestApp(mockSvc)

		req := httptest.NewRequest(http.MethodPost, "/api/books/book-1/download", strings.NewReader(`{"file_name":"Foo.pdf"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "file_path is required", decode[errorPayload](t, resp).Error)
		mockSvc.AssertNotCalled(t, "DownloadBook", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("sign failure", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("DownloadBook", mock.Anything, "book-1", "gone.pdf", "").
			Return(nil, fmt.Errorf("%w: %w", service.ErrSign, storage.ErrObjectNotFound))
		app := newTestApp(mockSvc)

		req := httptest.NewRequest(http.MethodPost, "/api/books/book-1/download", strings.NewReader(`{"file_path":"gone.pdf"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

const bookID = "3f6c2a1e-9b7d-4c1a-8e2f-5d4b3a291c0e"

func TestDeleteBook(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"success", nil, http.StatusOK, ""},
		{"no session", fmt.Errorf("%w: %w", service.ErrAuthRequired, errors.New("no session")), http.StatusUnauthorized, "sign in required"},
		{"db error", fmt.Errorf("%w: %w", service.ErrDB, errors.New("locked")), http.StatusInternalServerError, "database operation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockBookService)
			mockSvc.On("DeleteBook", mock.Anything, bookID, "k.pdf").Return(tt.err).Once()
			app := newTestApp(mockSvc)

			resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/books/"+bookID+"?file_path=k.pdf", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			mockSvc.AssertExpectations(t)

			if tt.err == nil {
				assert.Equal(t, bookID, decode[envelope[deleteResponse]](t, resp).Data.ID)
				return
			}
			assert.Equal(t, tt.wantMsg, decode[errorPayload](t, resp).Error)
		})
	}

	t.Run("malformed id", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		app := newTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/books/not-a-uuid", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decode[errorPayload](t, resp).Code)
		mockSvc.AssertNotCalled(t, "DeleteBook", mock.Anything, mock.Anything, mock.Anything)
	})
}

// Values handed to the service must stay intact after fasthttp recycles the
// request, since spans keep them until export.
func TestHandlers_CopyRequestValues(t *testing.T) {
	otherID := "0b8e7d6c-5a4f-4e3d-9c2b-1a0f9e8d7c6b"

	var tags, paths, ids []string
	mockSvc := new(serviceMocks.MockBookService)
	mockSvc.On("GetBooksByTag", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { tags = append(tags, args.String(1)) }).
		Return([]model.Book{}, nil)
	mockSvc.On("GetSignedURL", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { paths = append(paths, args.String(1)) }).
		Return("https://blob/x", nil)
	mockSvc.On("DeleteBook", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { ids = append(ids, args.String(1)) }).
		Return(nil)
	app := newTestApp(mockSvc)

	for _, target := range []string{
		"/api/books?tag=aaaa", "/api/books?tag=bbbb",
		"/api/signed-url?path=aaaa.pdf", "/api/signed-url?path=bbbb.pdf",
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	for _, id := range []string{bookID, otherID} {
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/books/"+id, nil))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	assert.Equal(t, []string{"aaaa", "bbbb"}, tags)
	assert.Equal(t, []string{"aaaa.pdf", "bbbb.pdf"}, paths)
	assert.Equal(t, []string{bookID, otherID}, ids)
}

func TestSession(t *testing.T) {
	t.Run("signed in", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("CurrentUser", mock.Anything).Return(&model.User{ID: "u-1", Email: "a@b.c"})
		app := newTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/session", nil))
		require.NoError(t, err)
		body := decode[envelope[*model.User]](t, resp)
		require.NotNil(t, body.Data)
		assert.Equal(t, "u-1", body.Data.ID)
	})

	t.Run("anonymous", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockBookService)
		mockSvc.On("CurrentUser", mock.Anything).Return(nil)
		app := newTestApp(mockSvc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/session", nil))
		require.NoError(t, err)

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"success":true,"data":null}`, string(raw))
	})
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp(new(serviceMocks.MockBookService))
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("kaboom") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.ErrTeapot })

	tests := []struct {
		path     string
		wantCode int
		wantKind string
	}{
		{"/nope", http.StatusNotFound, "NOT_FOUND"},
		{"/boom", http.StatusInternalServerError, "INTERNAL_ERROR"},
		{"/teapot", http.StatusTeapot, "REQUEST_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			body := decode[errorPayload](t, resp)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantKind, body.Code)
			assert.NotEmpty(t, body.RequestID)
		})
	}
}
