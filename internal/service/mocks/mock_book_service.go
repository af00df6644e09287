package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bookshelf/internal/model"
	"bookshelf/internal/service"
)

type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) UploadBook(ctx context.Context, in service.BookInput, file service.FileUpload) (*model.Book, error) {
	args := m.Called(ctx, in, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Book), args.Error(1)
}

func (m *MockBookService) GetAllBooks(ctx context.Context) ([]model.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *MockBookService) GetBooksByTag(ctx context.Context, tag string) ([]model.Book, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *MockBookService) SearchBooks(ctx context.Context, query string) ([]model.Book, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Book), args.Error(1)
}

func (m *MockBookService) GetAllTags() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockBookService) GetSignedURL(ctx context.Context, filePath, downloadName string) (string, error) {
	args := m.Called(ctx, filePath, downloadName)
	return args.String(0), args.Error(1)
}

func (m *MockBookService) DownloadBook(ctx context.Context, bookID, filePath, fileName string) (*service.Download, error) {
	args := m.Called(ctx, bookID, filePath, fileName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Download), args.Error(1)
}

func (m *MockBookService) IncrementDownloadCount(ctx context.Context, bookID string) {
	m.Called(ctx, bookID)
}

func (m *MockBookService) DeleteBook(ctx context.Context, bookID, filePath string) error {
	args := m.Called(ctx, bookID, filePath)
	return args.Error(0)
}

func (m *MockBookService) CurrentUser(ctx context.Context) *model.User {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*model.User)
}
