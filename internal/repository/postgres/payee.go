package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/olusegun-dev/bankcore/internal/apperrors"
	"github.com/olusegun-dev/bankcore/internal/models"
	"github.com/olusegun-dev/bankcore/internal/repository"
)

type PayeeRepo struct {
	DB DBTX
}

// Save payee keyed by destination
// Concurrent saves of the same destination keep the first recipient id
const savePayee = `-- name: SavePayee
WITH inserted AS (
	INSERT INTO payees (id, user_id, account_number, account_name, bank_code, recipient_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (account_number, bank_code) DO NOTHING
	RETURNING id, user_id, account_number, account_name, bank_code, recipient_id, created_at
)
SELECT * FROM inserted
UNION
SELECT id, user_id, account_number, account_name, bank_code, recipient_id, created_at FROM payees
WHERE account_number = $3 AND bank_code = $5
`

func (r *PayeeRepo) SavePayee(ctx context.Context, arg repository.CreatePayeeParams) (models.Payee, error) {
	rows, _ := r.DB.Query(ctx, savePayee,
		uuid.New(), arg.UserID, arg.AccountNumber, arg.AccountName, arg.BankCode, arg.RecipientID, time.Now())
	payee, err := pgx.CollectOneRow(rows, rowToPayee)

	if err != nil {
		return payee, fmt.Errorf("db error: %w", err)
	}

	return payee, nil
}

const getPayee = `-- name: GetPayee
SELECT id, user_id, account_number, account_name, bank_code, recipient_id, created_at FROM payees
WHERE account_number = $1 AND bank_code = $2
`

func (r *PayeeRepo) GetPayee(ctx context.Context, accountNumber string, bankCode string) (models.Payee, error) {
	rows, _ := r.DB.Query(ctx, getPayee, accountNumber, bankCode)
	payee, err := pgx.CollectOneRow(rows, rowToPayee)

	switch {
	case err == nil:
		return payee, nil
	case errors.Is(err, pgx.ErrNoRows):
		return payee, apperrors.ErrPayeeNotFound
	default:
		return payee, fmt.Errorf("db error: %w", err)
	}
}

func rowToPayee(row pgx.CollectableRow) (models.Payee, error) {
	var p models.Payee
	err := row.Scan(&p.ID, &p.UserID, &p.AccountNumber, &p.AccountName, &p.BankCode, &p.RecipientID, &p.CreatedAt)
	return p, err
}
