// Package remote is the client side of the storyboard backend: the calls the
// app makes for login, registration and the image library.
package remote

import (
	"context"
	"fmt"
	"io"

	"storyboard-server/internal/models"
)

// Endpoint paths relative to the base URL.
const (
	EndpointLogin       = "/auth/login"
	EndpointRegister    = "/auth/register"
	EndpointLogout      = "/auth/logout"
	EndpointUploadImage = "/api/images/upload"
	EndpointGetImages   = "/api/images"
	EndpointUpdateImage = "/api/images/update"
	EndpointDeleteImage = "/api/images/delete"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:3000"

// ImageData is an image as exchanged with the backend.
type ImageData struct {
	ID          string `json:"id,omitempty"`
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

// Record converts the wire image to a store record.
func (d ImageData) Record() models.ImageRecord {
	return models.ImageRecord{URI: d.URI, Title: d.Title, Description: d.Description, Time: d.Time}
}

// ImageUpload is a drawing to upload with its metadata.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
	Title       string
	Description string
	Time        string
}

// Store is the remote backend capability.
type Store interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, email, password string) (*models.AuthResponse, error)
	// Logout revokes the bearer token the store was built with.
	Logout(ctx context.Context) error
	UploadImage(ctx context.Context, upload ImageUpload) (*ImageData, error)
	ListImages(ctx context.Context) ([]ImageData, error)
	UpdateImage(ctx context.Context, image ImageData) (*ImageData, error)
	DeleteImage(ctx context.Context, id string) error
}

// Error is a non-2xx response from the backend.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap lets errors.Is match models.ErrRemote.
func (e *Error) Unwrap() error {
	return models.ErrRemote
}
