package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bookshelf/internal/model"
)

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) CurrentUser(ctx context.Context) (*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
