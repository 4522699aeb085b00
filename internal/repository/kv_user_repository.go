package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storyboard-server/internal/kv"
	"storyboard-server/internal/models"
)

// Compile-time check to ensure kvUserRepository implements UserRepository
var _ UserRepository = (*kvUserRepository)(nil)

// kvUserRepository keeps accounts in slot storage for deployments without
// Postgres. Accounts are indexed by email and by id.
type kvUserRepository struct {
	slots  kv.Store
	logger *zap.Logger
	mu     sync.Mutex
}

type accountRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewKVUserRepository creates a UserRepository over slots.
func NewKVUserRepository(slots kv.Store, logger *zap.Logger) UserRepository {
	return &kvUserRepository{
		slots:  slots,
		logger: logger.Named("KVUserRepo"),
	}
}

func emailKey(email string) string { return "account:email:" + email }
func idKey(id string) string       { return "account:id:" + id }

func (r *kvUserRepository) CreateUser(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.slots.Get(ctx, emailKey(account.Email))
	if err == nil {
		r.logger.Warn("Attempted to create duplicate user", zap.String("email", account.Email))
		return models.ErrUserAlreadyExists
	}
	if !errors.Is(err, models.ErrKeyNotFound) {
		return fmt.Errorf("failed to check existing user: %w", err)
	}

	account.ID = uuid.NewString()
	account.CreatedAt = time.Now().UTC()
	raw, err := json.Marshal(accountRecord(*account))
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}
	if err := r.slots.Set(ctx, idKey(account.ID), string(raw)); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}
	if err := r.slots.Set(ctx, emailKey(account.Email), account.ID); err != nil {
		return fmt.Errorf("failed to index account email: %w", err)
	}
	r.logger.Info("User created successfully", zap.String("userID", account.ID), zap.String("email", account.Email))
	return nil
}

func (r *kvUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.Account, error) {
	id, err := r.slots.Get(ctx, emailKey(email))
	if err != nil {
		if errors.Is(err, models.ErrKeyNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	return r.GetUserByID(ctx, id)
}

func (r *kvUserRepository) GetUserByID(ctx context.Context, id string) (*models.Account, error) {
	raw, err := r.slots.Get(ctx, idKey(id))
	if err != nil {
		if errors.Is(err, models.ErrKeyNotFound) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user by id: %w", err)
	}
	var rec accountRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		r.logger.Error("Corrupted account record", zap.String("userID", id), zap.Error(err))
		return nil, fmt.Errorf("corrupted account record %s: %w", id, err)
	}
	account := models.Account(rec)
	return &account, nil
}
