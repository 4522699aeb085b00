package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storyboard-server/internal/models"
	"storyboard-server/internal/remote"
)

// Store is a testify double for remote.Store.
type Store struct {
	mock.Mock
}

var _ remote.Store = (*Store)(nil)

func (m *Store) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	args := m.Called(ctx, username, password)
	resp, _ := args.Get(0).(*models.AuthResponse)
	return resp, args.Error(1)
}

func (m *Store) Register(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*models.AuthResponse)
	return resp, args.Error(1)
}

func (m *Store) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Store) UploadImage(ctx context.Context, upload remote.ImageUpload) (*remote.ImageData, error) {
	args := m.Called(ctx, upload)
	img, _ := args.Get(0).(*remote.ImageData)
	return img, args.Error(1)
}

func (m *Store) ListImages(ctx context.Context) ([]remote.ImageData, error) {
	args := m.Called(ctx)
	imgs, _ := args.Get(0).([]remote.ImageData)
	return imgs, args.Error(1)
}

func (m *Store) UpdateImage(ctx context.Context, image remote.ImageData) (*remote.ImageData, error) {
	args := m.Called(ctx, image)
	img, _ := args.Get(0).(*remote.ImageData)
	return img, args.Error(1)
}

func (m *Store) DeleteImage(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
