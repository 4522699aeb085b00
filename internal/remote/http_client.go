package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"storyboard-server/internal/models"
)

// Fallback messages when the backend gives no message of its own.
const (
	msgLoginFailed    = "로그인에 실패했습니다."
	msgRegisterFailed = "회원가입에 실패했습니다."
	msgLogoutFailed   = "로그아웃에 실패했습니다."
	msgUploadFailed   = "이미지 업로드에 실패했습니다."
	msgListFailed     = "이미지 목록을 가져오는데 실패했습니다."
	msgUpdateFailed   = "이미지 정보 업데이트에 실패했습니다."
	msgDeleteFailed   = "이미지 삭제에 실패했습니다."
)

// Compile-time check to ensure HTTPStore implements Store
var _ Store = (*HTTPStore)(nil)

// HTTPStore talks to the backend over JSON/HTTP.
type HTTPStore struct {
	baseURL    string
	httpClient *http.Client
	token      string
	logger     *zap.Logger
}

// NewHTTPStore creates a client for baseURL (DefaultBaseURL when empty).
func NewHTTPStore(baseURL string, timeout time.Duration, logger *zap.Logger) (*HTTPStore, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL for remote store: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("RemoteStore"),
	}, nil
}

// WithToken returns a copy of the client that sends token as a bearer token.
func (c *HTTPStore) WithToken(token string) *HTTPStore {
	cp := *c
	cp.token = token
	return &cp
}

type credentialsRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

func (c *HTTPStore) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, EndpointLogin, credentialsRequest{Username: username, Password: password}, &resp, msgLoginFailed)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPStore) Register(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, EndpointRegister, credentialsRequest{Email: email, Password: password}, &resp, msgRegisterFailed)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPStore) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, EndpointLogout, nil, nil, msgLogoutFailed)
}

func (c *HTTPStore) UploadImage(ctx context.Context, upload ImageUpload) (*ImageData, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	filename := upload.Filename
	if filename == "" {
		filename = "upload.jpg"
	}
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart file part: %w", err)
	}
	if upload.Content != nil {
		if _, err := io.Copy(part, upload.Content); err != nil {
			return nil, fmt.Errorf("failed to copy image content: %w", err)
		}
	}
	for name, value := range map[string]string{
		"title":       upload.Title,
		"description": upload.Description,
		"time":        upload.Time,
	} {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write multipart field %s: %w", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, EndpointUploadImage, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out ImageData
	if err := c.do(req, &out, msgUploadFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPStore) ListImages(ctx context.Context) ([]ImageData, error) {
	var out []ImageData
	if err := c.doJSON(ctx, http.MethodGet, EndpointGetImages, nil, &out, msgListFailed); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPStore) UpdateImage(ctx context.Context, image ImageData) (*ImageData, error) {
	var out ImageData
	path := EndpointUpdateImage + "/" + url.PathEscape(image.ID)
	if err := c.doJSON(ctx, http.MethodPut, path, image, &out, msgUpdateFailed); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPStore) DeleteImage(ctx context.Context, id string) error {
	path := EndpointDeleteImage + "/" + url.PathEscape(id)
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil, msgDeleteFailed)
}

func (c *HTTPStore) doJSON(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("internal error marshalling request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out, fallback)
}

func (c *HTTPStore) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("internal error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *HTTPStore) do(req *http.Request, out any, fallback string) error {
	log := c.logger.With(zap.String("method", req.Method), zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Remote request failed", zap.Error(err))
		return fmt.Errorf("%w: %w", models.ErrRemote, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read remote response body", zap.Int("status", resp.StatusCode), zap.Error(err))
		return fmt.Errorf("%w: read body: %w", models.ErrRemote, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		remoteErr := &Error{StatusCode: resp.StatusCode, Message: fallback}
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(respBody, &payload) == nil && payload.Message != "" {
			remoteErr.Message = payload.Message
		}
		log.Warn("Remote returned error status", zap.Int("status", resp.StatusCode), zap.String("message", remoteErr.Message))
		return remoteErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		log.Error("Failed to decode remote response", zap.Error(err))
		return fmt.Errorf("%w: decode response: %w", models.ErrRemote, err)
	}
	return nil
}

// MessageOf returns the user-facing message of a remote error, or "" when err
// did not come from a backend response.
func MessageOf(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}
