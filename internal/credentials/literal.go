package credentials

import (
	"context"
	"crypto/subtle"

	"storyboard-server/internal/models"
)

// Demo credentials accepted by LiteralChecker.
const (
	DemoUsername = "sm2025"
	DemoPassword = "smcomputer"
	DemoToken    = "mock-token"
)

// Compile-time check to ensure LiteralChecker implements Checker
var _ Checker = LiteralChecker{}

// LiteralChecker accepts exactly one embedded username/password pair.
// It is a placeholder for demos, not authentication.
type LiteralChecker struct{}

// Login returns DemoToken for the demo pair and MsgInvalidCredentials otherwise.
func (LiteralChecker) Login(_ context.Context, identifier, secret string) (*models.AuthResponse, error) {
	idOK := subtle.ConstantTimeCompare([]byte(identifier), []byte(DemoUsername)) == 1
	pwOK := subtle.ConstantTimeCompare([]byte(secret), []byte(DemoPassword)) == 1
	if !idOK || !pwOK {
		return nil, &Error{Message: MsgInvalidCredentials, Err: models.ErrInvalidCredentials}
	}
	return &models.AuthResponse{Token: DemoToken}, nil
}

// Register is not supported by the literal check.
func (LiteralChecker) Register(context.Context, string, string) (*models.AuthResponse, error) {
	return nil, &Error{Message: MsgRegisterFailed, Err: models.ErrUnavailable}
}
