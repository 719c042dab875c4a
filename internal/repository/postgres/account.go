package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/olusegun-dev/bankcore/internal/apperrors"
	"github.com/olusegun-dev/bankcore/internal/models"
	"github.com/olusegun-dev/bankcore/internal/repository"
)

type AccountRepo struct {
	DB DBTX
}

const createAccount = `-- name: CreateAccount
INSERT INTO accounts (id, user_id, account_number, balance, type, status, created_at, modified_at)
VALUES ($1, $2, $3, 0, $4, $5, $6, $6)
RETURNING id, user_id, account_number, balance, type, status, created_at, modified_at
`

func (r *AccountRepo) CreateAccount(ctx context.Context, arg repository.CreateAccountParams) (models.Account, error) {
	now := time.Now()

	rows, _ := r.DB.Query(ctx, createAccount, uuid.New(), arg.UserID, arg.AccountNumber, arg.Type, models.AccountStatusActive, now)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, apperrors.ErrAccountNumberTaken
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *AccountRepo) GetAccount(ctx context.Context, arg repository.GetAccountParams) (models.Account, error) {
	var account models.Account

	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if arg.ID != uuid.Nil {
		args = append(args, arg.ID)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}
	if arg.AccountNumber != "" {
		args = append(args, arg.AccountNumber)
		conds = append(conds, fmt.Sprintf("account_number = $%d", len(args)))
	}
	if arg.UserID != uuid.Nil {
		args = append(args, arg.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}

	if len(conds) == 0 {
		return account, errors.New("at least one account field must be set")
	}

	query := `
	SELECT id, user_id, account_number, balance, type, status, created_at, modified_at FROM accounts
	WHERE ` + strings.Join(conds, " AND ")

	rows, _ := r.DB.Query(ctx, query, args...)
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrAccountNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

const listUserAccounts = `-- name: ListUserAccounts
SELECT id, user_id, account_number, balance, type, status, created_at, modified_at FROM accounts
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *AccountRepo) ListUserAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	rows, _ := r.DB.Query(ctx, listUserAccounts, userID)
	accounts, err := pgx.CollectRows(rows, rowToAccount)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

// Balance check and mutation in one statement: the condition runs under
// the row lock, so concurrent debits cannot observe a stale balance.
// Never split this into a select followed by an update.
const adjustBalance = `-- name: AdjustBalance
UPDATE accounts
SET balance = balance + $2, modified_at = $3
WHERE id = $1 AND balance + $2 >= 0
RETURNING id, user_id, account_number, balance, type, status, created_at, modified_at
`

func (r *AccountRepo) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) (models.Account, error) {
	rows, _ := r.DB.Query(ctx, adjustBalance, accountID, delta, time.Now())
	account, err := pgx.CollectOneRow(rows, rowToAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		// No row updated: either the account is missing or the condition failed
		var exists bool
		if scanErr := r.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)", accountID).Scan(&exists); scanErr != nil {
			return account, fmt.Errorf("db error: %w", scanErr)
		}
		if !exists {
			return account, apperrors.ErrAccountNotFound
		}
		return account, apperrors.ErrInsufficientFunds
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

func rowToAccount(row pgx.CollectableRow) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.UserID, &a.AccountNumber, &a.Balance, &a.Type, &a.Status, &a.CreatedAt, &a.ModifiedAt)
	return a, err
}
