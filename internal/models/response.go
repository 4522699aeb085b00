package models

// Error codes returned to the app in ErrorResponse.Code.
const (
	ErrCodeBadRequest       = 40000
	ErrCodeValidation       = 40001
	ErrCodeWrongCredentials = 40101
	ErrCodeTokenInvalid     = 40102
	ErrCodeTokenExpired     = 40103
	ErrCodeNotFound         = 40400
	ErrCodeDuplicateUser    = 40901
	ErrCodeInternal         = 50000
	ErrCodeRemote           = 50201
	ErrCodeUnavailable      = 50300
)

// ErrorResponse is the JSON body of every failed API call.
// Message mirrors the "message" field the mobile client reads.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
