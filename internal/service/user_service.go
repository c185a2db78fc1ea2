package service

import (
	"context"
	"fmt"

	"github.com/digkill/TGCreditBot/internal/models"
)

// UserStore is the ledger persistence the services rely on.
type UserStore interface {
	FindByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	Create(ctx context.Context, telegramID int64, credit int) (bool, error)
	Debit(ctx context.Context, telegramID int64, threshold, amount int) (bool, error)
	Grant(ctx context.Context, telegramID int64, amount int) (*models.User, error)
	ListTelegramIDs(ctx context.Context) ([]int64, error)
}

type UserService struct {
	users          UserStore
	startingCredit int
}

func NewUserService(users UserStore, startingCredit int) *UserService {
	return &UserService{users: users, startingCredit: startingCredit}
}

// Resolve returns the account for telegramID, creating it with the starting
// balance on first contact. A concurrent first contact from the same user is
// absorbed by the unique key.
func (s *UserService) Resolve(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	if _, err := s.users.Create(ctx, telegramID, s.startingCredit); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	user, err = s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d missing after create", telegramID)
	}
	return user, nil
}

func (s *UserService) Find(ctx context.Context, telegramID int64) (*models.User, error) {
	user, err := s.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Grant adds credit to an existing account. It returns nil when the user has
// never contacted the bot.
func (s *UserService) Grant(ctx context.Context, telegramID int64, amount int) (*models.User, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	user, err := s.users.Grant(ctx, telegramID, amount)
	if err != nil {
		return nil, fmt.Errorf("grant credit: %w", err)
	}
	return user, nil
}

func (s *UserService) ListTelegramIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.users.ListTelegramIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list telegram ids: %w", err)
	}
	return ids, nil
}
