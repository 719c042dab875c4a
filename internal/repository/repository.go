package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olusegun-dev/bankcore/internal/models"
)

// CreateAccountParams is the seed for a new account record.
// Balance always starts at zero, the number is assigned by the caller.
type CreateAccountParams struct {
	UserID        uuid.UUID
	AccountNumber string
	Type          string
}

// GetAccountParams selects a single account: every non-zero field
// must match. At least one field has to be set.
type GetAccountParams struct {
	ID            uuid.UUID
	AccountNumber string
	UserID        uuid.UUID
}

// Account repository interface
type AccountRepo interface {
	// Create account with zero balance and ACTIVE status
	// If account number is taken must return apperrors.ErrAccountNumberTaken
	CreateAccount(ctx context.Context, arg CreateAccountParams) (models.Account, error)

	// Get single account matching every set field of arg
	// If no account matches must return apperrors.ErrAccountNotFound
	GetAccount(ctx context.Context, arg GetAccountParams) (models.Account, error)

	// List all accounts owned by the user, newest first
	ListUserAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error)

	// AdjustBalance applies delta to the account balance as one conditional
	// update: the row is changed only if the resulting balance stays >= 0.
	// Negative result must return apperrors.ErrInsufficientFunds,
	// missing account apperrors.ErrAccountNotFound.
	// This is the only sanctioned balance mutation.
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) (models.Account, error)
}

// CreateTransactionParams is the seed for a new transaction record
type CreateTransactionParams struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Type      string
	Reference string
	Detail    models.TransactionDetail
	Status    string
}

// Transaction repository interface
type TransactionRepo interface {
	// Create transaction record
	// Reference is the idempotency key: if it exists already must return
	// apperrors.ErrReferenceTaken, never overwrite
	CreateTransaction(ctx context.Context, arg CreateTransactionParams) (models.Transaction, error)

	// SetStatus advances the transaction status
	// Terminal statuses never regress: moving out of COMPLETED or FAILED
	// must return apperrors.ErrInvalidTransition
	SetStatus(ctx context.Context, transactionID uuid.UUID, status string) (models.Transaction, error)

	// Get transaction by its unique reference
	// If not found must return apperrors.ErrTransactionNotFound
	GetByReference(ctx context.Context, reference string) (models.Transaction, error)

	// List transactions recorded against the account, newest first
	ListAccountTransactions(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error)

	// SumAmount aggregates amounts of all transactions with the given
	// type and status. Read only, reporting use
	SumAmount(ctx context.Context, txType string, status string) (decimal.Decimal, error)
}

// CreatePayeeParams is the seed for a new payee record
type CreatePayeeParams struct {
	UserID        uuid.UUID
	AccountNumber string
	AccountName   string
	BankCode      string
	RecipientID   string
}

// Payee repository interface
type PayeeRepo interface {
	// Save payee with its gateway recipient id
	SavePayee(ctx context.Context, arg CreatePayeeParams) (models.Payee, error)

	// Get payee by destination. If absent must return apperrors.ErrPayeeNotFound
	GetPayee(ctx context.Context, accountNumber string, bankCode string) (models.Payee, error)
}

// Storage aggregates the repositories over one database handle.
// InTx runs fn against a Storage bound to a single transaction: every
// mutation made through it commits or rolls back as one unit of work.
type Storage interface {
	Account() AccountRepo
	Transaction() TransactionRepo
	Payee() PayeeRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}
