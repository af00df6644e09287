package handler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"bookshelf/internal/http/middleware"
	"bookshelf/internal/service"
	"bookshelf/internal/storage"
)

// envelope is the body of every successful API response.
type envelope[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// errorPayload is the body of every failed API response. Error is a safe,
// human-readable message; internal error details are logged, never returned.
type errorPayload struct {
	Success   bool   `json:"success" example:"false"`
	Error     string `json:"error" example:"resource not found"`
	Code      string `json:"code" example:"NOT_FOUND"`
	RequestID string `json:"request_id"`
}

func writeOK[T any](c *fiber.Ctx, status int, data T) error {
	return c.Status(status).JSON(envelope[T]{Success: true, Data: data})
}

// writeError writes a standardized JSON error response.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "VALIDATION_ERROR", "NOT_FOUND")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		Success:   false,
		Error:     message,
		Code:      code,
		RequestID: middleware.RequestIDFrom(c),
	})
}

// writeServiceError maps a BookService error kind onto a status and code.
func writeServiceError(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	switch {
	case errors.Is(err, service.ErrAuthRequired):
		status, code, msg = fiber.StatusUnauthorized, "AUTH_REQUIRED", "sign in required"
	case errors.Is(err, service.ErrBlobWrite):
		status, code, msg = fiber.StatusBadGateway, "BLOB_WRITE_ERROR", "could not store the file"
	case errors.Is(err, service.ErrDB):
		status, code, msg = fiber.StatusInternalServerError, "DB_ERROR", "database operation failed"
	case errors.Is(err, service.ErrSign) && errors.Is(err, storage.ErrObjectNotFound):
		status, code, msg = fiber.StatusNotFound, "NOT_FOUND", "file not found"
	case errors.Is(err, service.ErrSign):
		status, code, msg = fiber.StatusBadGateway, "SIGN_ERROR", "could not create a download link"
	case errors.Is(err, service.ErrFetch):
		status, code, msg = fiber.StatusBadGateway, "FETCH_ERROR", "could not load books"
	}

	level := slog.LevelWarn
	if status >= fiber.StatusInternalServerError {
		level = slog.LevelError
	}
	slog.Log(c.UserContext(), level, "request failed",
		"request_id", middleware.RequestIDFrom(c),
		"code", code,
		"error", err,
	)
	return writeError(c, status, code, msg)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		}
		if status < fiber.StatusInternalServerError {
			return writeError(c, status, "REQUEST_ERROR", strings.ToLower(utils.StatusMessage(status)))
		}
		slog.ErrorContext(c.UserContext(), "unhandled error", "request_id", middleware.RequestIDFrom(c), "error", err)
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}
