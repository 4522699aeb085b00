package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storyboard-server/internal/models"
	"storyboard-server/internal/repository"
)

// UserRepository is a testify double for repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (m *UserRepository) CreateUser(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id string) (*models.Account, error) {
	args := m.Called(ctx, id)
	acc, _ := args.Get(0).(*models.Account)
	return acc, args.Error(1)
}

// TokenRepository is a testify double for repository.TokenRepository.
type TokenRepository struct {
	mock.Mock
}

var _ repository.TokenRepository = (*TokenRepository)(nil)

func (m *TokenRepository) SetToken(ctx context.Context, userID string, td *models.TokenDetails) error {
	args := m.Called(ctx, userID, td)
	return args.Error(0)
}

func (m *TokenRepository) DeleteToken(ctx context.Context, accessUUID string) (int64, error) {
	args := m.Called(ctx, accessUUID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TokenRepository) GetUserIDByAccessUUID(ctx context.Context, accessUUID string) (string, error) {
	args := m.Called(ctx, accessUUID)
	return args.String(0), args.Error(1)
}
