package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/olusegun-dev/bankcore/internal/models"
	"github.com/olusegun-dev/bankcore/internal/repository"
	"github.com/olusegun-dev/bankcore/internal/service/refgen"
)

// AccountService opens accounts and answers account lookups.
// Balance mutation lives in the transfer coordinator, not here.
type AccountService struct {
	storage repository.Storage
	refgen  *refgen.Generator
}

func NewService(storage repository.Storage) *AccountService {
	return &AccountService{
		storage: storage,
		refgen:  refgen.New(storage.Account()),
	}
}

// OpenAccount creates an account with a fresh collision checked number,
// zero balance and ACTIVE status
func (s *AccountService) OpenAccount(ctx context.Context, userID uuid.UUID, accountType string) (models.Account, error) {
	var account models.Account

	if accountType == "" {
		accountType = models.AccountTypeSavings
	}

	number, err := s.refgen.NextAccountNumber(ctx)
	if err != nil {
		return account, fmt.Errorf("can't assign account number: %w", err)
	}

	account, err = s.storage.Account().CreateAccount(ctx, repository.CreateAccountParams{
		UserID:        userID,
		AccountNumber: number,
		Type:          accountType,
	})
	if err != nil {
		return account, fmt.Errorf("can't create account: %w", err)
	}

	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (models.Account, error) {
	return s.storage.Account().GetAccount(ctx, repository.GetAccountParams{ID: accountID})
}

func (s *AccountService) GetByAccountNumber(ctx context.Context, accountNumber string) (models.Account, error) {
	return s.storage.Account().GetAccount(ctx, repository.GetAccountParams{AccountNumber: accountNumber})
}

func (s *AccountService) ListUserAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	return s.storage.Account().ListUserAccounts(ctx, userID)
}
