package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storyboard-server/internal/credentials"
	"storyboard-server/internal/models"
	"storyboard-server/internal/repository"
)

// Compile-time check to ensure serviceImpl implements Service
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	demo      credentials.Checker
	cfg       Config
	logger    *zap.Logger
	validate  *validator.Validate
	now       func() time.Time
}

// NewService creates the account service.
func NewService(userRepo repository.UserRepository, tokenRepo repository.TokenRepository, cfg Config, logger *zap.Logger) Service {
	s := &serviceImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		cfg:       cfg,
		logger:    logger.Named("AuthService"),
		validate:  validator.New(),
		now:       time.Now,
	}
	if cfg.DemoLogin {
		s.demo = credentials.LiteralChecker{}
	}
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *serviceImpl) Register(ctx context.Context, email, password string) (*models.User, *models.TokenDetails, error) {
	email = normalizeEmail(email)
	logFields := []zap.Field{zap.String("email", email)}
	s.logger.Info("Registering new user", logFields...)

	if email == "" || password == "" {
		return nil, nil, fmt.Errorf("email and password are required: %w", models.ErrInvalidInput)
	}
	if err := s.validate.Var(email, "email,max=254"); err != nil {
		s.logger.Warn("Registration attempt with invalid email format", append(logFields, zap.Error(err))...)
		return nil, nil, fmt.Errorf("invalid email format: %w", models.ErrInvalidInput)
	}

	hash, err := hashPassword(password, s.cfg.PasswordPepper)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", append(logFields, zap.Error(err))...)
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{Email: email, PasswordHash: hash}
	if err := s.userRepo.CreateUser(ctx, account); err != nil {
		return nil, nil, err
	}

	td, err := s.issueToken(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("User registered successfully", zap.String("userID", account.ID), zap.String("email", email))
	return &models.User{ID: account.ID, Email: account.Email}, td, nil
}

func (s *serviceImpl) Login(ctx context.Context, identifier, password string) (*models.TokenDetails, *models.User, error) {
	if s.demo != nil && identifier == credentials.DemoUsername {
		resp, err := s.demo.Login(ctx, identifier, password)
		if err != nil {
			s.logger.Warn("Demo login failed")
			return nil, nil, models.ErrInvalidCredentials
		}
		s.logger.Info("Demo user logged in")
		return &models.TokenDetails{AccessToken: resp.Token, AccessUUID: resp.Token},
			&models.User{ID: credentials.DemoUsername, Email: credentials.DemoUsername}, nil
	}

	email := normalizeEmail(identifier)
	s.logger.Info("Login attempt", zap.String("email", email))
	account, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			s.logger.Warn("Login failed: user not found", zap.String("email", email))
			return nil, nil, models.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !checkPasswordHash(password, account.PasswordHash, s.cfg.PasswordPepper) {
		s.logger.Warn("Login failed: invalid password", zap.String("userID", account.ID))
		return nil, nil, models.ErrInvalidCredentials
	}

	td, err := s.issueToken(ctx, account)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("User logged in successfully", zap.String("userID", account.ID))
	return td, &models.User{ID: account.ID, Email: account.Email}, nil
}

// Logout revokes accessUUID. Unknown or already expired tokens are not an error.
func (s *serviceImpl) Logout(ctx context.Context, accessUUID string) error {
	log := s.logger.With(zap.String("accessUUID", accessUUID))
	if s.demo != nil && accessUUID == credentials.DemoToken {
		log.Info("Demo user logged out")
		return nil
	}
	n, err := s.tokenRepo.DeleteToken(ctx, accessUUID)
	if err != nil {
		log.Error("Failed to delete token during logout", zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if n == 0 {
		log.Info("No token found to delete during logout")
	} else {
		log.Info("Token deleted during logout")
	}
	return nil
}

func (s *serviceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	if s.demo != nil && tokenString == credentials.DemoToken {
		return &models.Claims{
			UserID:           credentials.DemoUsername,
			Email:            credentials.DemoUsername,
			RegisteredClaims: jwt.RegisteredClaims{ID: credentials.DemoToken},
		}, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		}
		s.logger.Warn("Failed to parse access token", zap.Error(err))
		return nil, models.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, models.ErrTokenInvalid
	}
	userID, err := s.tokenRepo.GetUserIDByAccessUUID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			s.logger.Debug("Access token revoked or unknown", zap.String("accessUUID", claims.ID))
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error checking access token existence: %w", err)
	}
	if userID != claims.UserID {
		s.logger.Error("Access token user mismatch", zap.String("tokenUserID", claims.UserID), zap.String("storedUserID", userID))
		return nil, models.ErrTokenInvalid
	}
	return claims, nil
}

func (s *serviceImpl) issueToken(ctx context.Context, account *models.Account) (*models.TokenDetails, error) {
	now := s.now()
	td := &models.TokenDetails{
		AccessUUID: uuid.NewString(),
		AtExpires:  now.Add(s.cfg.AccessTokenTTL).Unix(),
	}
	claims := &models.Claims{
		UserID: account.ID,
		Email:  account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        td.AccessUUID,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(time.Unix(td.AtExpires, 0)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err), zap.String("userID", account.ID))
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	td.AccessToken = signed

	if err := s.tokenRepo.SetToken(ctx, account.ID, td); err != nil {
		return nil, fmt.Errorf("failed to save token details: %w", err)
	}
	return td, nil
}
