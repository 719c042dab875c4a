package postgres

import (
	"context"
	"errors"
	"fmt"
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

type TransactionRepo struct {
	DB DBTX
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, user_id, account_id, amount, type, reference, detail, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
RETURNING id, user_id, account_id, amount, type, reference, detail, status, created_at, updated_at
`

func (r *TransactionRepo) CreateTransaction(ctx context.Context, arg repository.CreateTransactionParams) (models.Transaction, error) {
	now := time.Now()

	rows, _ := r.DB.Query(ctx, createTransaction,
		uuid.New(), arg.UserID, arg.AccountID, arg.Amount, arg.Type, arg.Reference, arg.Detail, arg.Status, now)
	transaction, err := pgx.CollectOneRow(rows, rowToTransaction)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return transaction, apperrors.ErrReferenceTaken
		}

		return transaction, fmt.Errorf("db error: %w", err)
	}

	return transaction, nil
}

// Status may only move forward: the update condition accepts the change
// only while the current status is PENDING, the single non-terminal state.
const setTransactionStatus = `-- name: SetTransactionStatus
UPDATE transactions
SET status = $2, updated_at = $3
WHERE id = $1 AND status = 'PENDING'
RETURNING id, user_id, account_id, amount, type, reference, detail, status, created_at, updated_at
`

func (r *TransactionRepo) SetStatus(ctx context.Context, transactionID uuid.UUID, status string) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, setTransactionStatus, transactionID, status, time.Now())
	transaction, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return transaction, nil
	case errors.Is(err, pgx.ErrNoRows):
		var exists bool
		if scanErr := r.DB.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)", transactionID).Scan(&exists); scanErr != nil {
			return transaction, fmt.Errorf("db error: %w", scanErr)
		}
		if !exists {
			return transaction, apperrors.ErrTransactionNotFound
		}
		return transaction, apperrors.ErrInvalidTransition
	default:
		return transaction, fmt.Errorf("db error: %w", err)
	}
}

const getByReference = `-- name: GetByReference
SELECT id, user_id, account_id, amount, type, reference, detail, status, created_at, updated_at FROM transactions
WHERE reference = $1
`

func (r *TransactionRepo) GetByReference(ctx context.Context, reference string) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, getByReference, reference)
	transaction, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return transaction, nil
	case errors.Is(err, pgx.ErrNoRows):
		return transaction, apperrors.ErrTransactionNotFound
	default:
		return transaction, fmt.Errorf("db error: %w", err)
	}
}

const listAccountTransactions = `-- name: ListAccountTransactions
SELECT id, user_id, account_id, amount, type, reference, detail, status, created_at, updated_at FROM transactions
WHERE account_id = $1
ORDER BY created_at DESC
`

func (r *TransactionRepo) ListAccountTransactions(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, listAccountTransactions, accountID)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return transactions, nil
}

const sumAmount = `-- name: SumAmount
SELECT COALESCE(SUM(amount), 0) FROM transactions
WHERE type = $1 AND status = $2
`

func (r *TransactionRepo) SumAmount(ctx context.Context, txType string, status string) (decimal.Decimal, error) {
	var sum decimal.Decimal

	err := r.DB.QueryRow(ctx, sumAmount, txType, status).Scan(&sum)
	if err != nil {
		return sum, fmt.Errorf("db error: %w", err)
	}

	return sum, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.AccountID, &t.Amount, &t.Type, &t.Reference, &t.Detail, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
