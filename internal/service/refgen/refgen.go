package refgen

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/olusegun-dev/bankcore/internal/apperrors"
	"github.com/olusegun-dev/bankcore/internal/repository"
)

const (
	accountNumberLength = 10

	// Retry budget for account number collisions. Ten random digits give
	// ten billion numbers, so hitting the cap means something is wrong
	// with the number space, not bad luck
	maxAttempts = 10
)

// Generator produces collision checked account numbers and
// payment references used as transaction idempotency keys
type Generator struct {
	accounts repository.AccountRepo
}

func New(accounts repository.AccountRepo) *Generator {
	return &Generator{accounts: accounts}
}

// NextAccountNumber returns a random 10 digit number that no existing
// account uses. After the retry budget is exhausted it fails with
// apperrors.ErrReferenceExhausted instead of looping forever
func (g *Generator) NextAccountNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		number, err := randomDigits(accountNumberLength)
		if err != nil {
			return "", fmt.Errorf("can't generate account number: %w", err)
		}

		_, err = g.accounts.GetAccount(ctx, repository.GetAccountParams{AccountNumber: number})
		switch {
		case errors.Is(err, apperrors.ErrAccountNotFound):
			return number, nil
		case err == nil:
			continue // taken, try again
		default:
			return "", fmt.Errorf("can't check account number: %w", err)
		}
	}

	return "", apperrors.ErrReferenceExhausted
}

// NextPaymentReference returns an opaque unique reference.
// Collision probability of a random UUID is negligible; the unique
// constraint on transactions.reference is the final backstop
func (g *Generator) NextPaymentReference() string {
	return uuid.NewString()
}

func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + d.Int64())
	}

	return string(digits), nil
}
