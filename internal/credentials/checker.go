// Package credentials checks login and registration credentials for the app
// and drives the resulting session changes.
package credentials

import (
	"context"

	"storyboard-server/internal/models"
)

// User-facing messages shown by the app.
const (
	MsgInvalidCredentials  = "아이디 또는 비밀번호가 올바르지 않습니다."
	MsgLoginFailed         = "로그인에 실패했습니다."
	MsgRegisterFailed      = "회원가입에 실패했습니다."
	MsgLoginFieldsMissing  = "이메일과 비밀번호를 모두 입력해주세요."
	MsgSignUpFieldsMissing = "모든 필드를 입력해주세요."
	MsgPasswordMismatch    = "비밀번호가 일치하지 않습니다."
)

// Checker verifies credentials and returns the issued token.
type Checker interface {
	Login(ctx context.Context, identifier, secret string) (*models.AuthResponse, error)
	Register(ctx context.Context, email, secret string) (*models.AuthResponse, error)
}

// Error is a credential failure whose Error() text is the message shown to
// the user. It unwraps to the underlying cause.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }
