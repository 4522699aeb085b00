package credentials

import (
	"context"

	"go.uber.org/zap"

	"storyboard-server/internal/models"
	"storyboard-server/internal/remote"
)

// Compile-time check to ensure RemoteChecker implements Checker
var _ Checker = (*RemoteChecker)(nil)

// RemoteChecker forwards credentials to the backend and surfaces the
// backend's message on failure.
type RemoteChecker struct {
	backend remote.Store
	logger  *zap.Logger
}

// NewRemoteChecker creates a checker over backend.
func NewRemoteChecker(backend remote.Store, logger *zap.Logger) *RemoteChecker {
	return &RemoteChecker{backend: backend, logger: logger.Named("RemoteChecker")}
}

func (c *RemoteChecker) Login(ctx context.Context, identifier, secret string) (*models.AuthResponse, error) {
	resp, err := c.backend.Login(ctx, identifier, secret)
	if err != nil {
		c.logger.Warn("Remote login failed", zap.String("identifier", identifier), zap.Error(err))
		return nil, wrapRemote(err, MsgLoginFailed)
	}
	return resp, nil
}

func (c *RemoteChecker) Register(ctx context.Context, email, secret string) (*models.AuthResponse, error) {
	resp, err := c.backend.Register(ctx, email, secret)
	if err != nil {
		c.logger.Warn("Remote registration failed", zap.String("email", email), zap.Error(err))
		return nil, wrapRemote(err, MsgRegisterFailed)
	}
	return resp, nil
}

func wrapRemote(err error, fallback string) error {
	msg := remote.MessageOf(err)
	if msg == "" {
		msg = fallback
	}
	return &Error{Message: msg, Err: err}
}
