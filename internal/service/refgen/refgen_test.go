package refgen

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/olusegun-dev/bankcore/internal/apperrors"
	"github.com/olusegun-dev/bankcore/internal/models"
	"github.com/olusegun-dev/bankcore/internal/repository"
)

// fakeAccountRepo answers GetAccount from a canned script, everything
// else is unused by the generator
type fakeAccountRepo struct {
	repository.AccountRepo

	getAccount func(ctx context.Context, arg repository.GetAccountParams) (models.Account, error)
	calls      int
}

func (f *fakeAccountRepo) GetAccount(ctx context.Context, arg repository.GetAccountParams) (models.Account, error) {
	f.calls++
	return f.getAccount(ctx, arg)
}

func TestGenerator_NextAccountNumber(t *testing.T) {
	t.Run("free number returned", func(t *testing.T) {
		repo := &fakeAccountRepo{
			getAccount: func(ctx context.Context, arg repository.GetAccountParams) (models.Account, error) {
				return models.Account{}, apperrors.ErrAccountNotFound
			},
		}

		number, err := New(repo).NextAccountNumber(t.Context())

		require.NoError(t, err)
		require.Len(t, number, 10, "account number should have 10 digits")
		for _, c := range number {
			require.True(t, c >= '0' && c <= '9', "account number should contain digits only, got %q", number)
		}
		require.Equal(t, 1, repo.calls, "free number should be found on first attempt")
	})

	t.Run("collision retried", func(t *testing.T) {
		taken := 3
		repo := &fakeAccountRepo{}
		repo.getAccount = func(ctx context.Context, arg repository.GetAccountParams) (models.Account, error) {
			if repo.calls <= taken {
				return models.Account{ID: uuid.New(), AccountNumber: arg.AccountNumber, Balance: decimal.Zero}, nil
			}
			return models.Account{}, apperrors.ErrAccountNotFound
		}

		number, err := New(repo).NextAccountNumber(t.Context())

		require.NoError(t, err)
		require.Len(t, number, 10)
		require.Equal(t, taken+1, repo.calls, "generator should retry past taken numbers")
	})

	t.Run("retry budget exhausted", func(t *testing.T) {
		repo := &fakeAccountRepo{
			getAccount: func(ctx context.Context, arg repository.GetAccountParams) (models.Account, error) {
				return models.Account{ID: uuid.New()}, nil // every number is taken
			},
		}

		_, err := New(repo).NextAccountNumber(t.Context())

		require.ErrorIs(t, err, apperrors.ErrReferenceExhausted)
		require.Equal(t, maxAttempts, repo.calls, "generator must stop after the retry budget")
	})
}

func TestGenerator_NextPaymentReference(t *testing.T) {
	g := New(nil)

	first := g.NextPaymentReference()
	second := g.NextPaymentReference()

	require.NotEmpty(t, first)
	require.NotEqual(t, first, second, "references must be unique")

	_, err := uuid.Parse(first)
	require.NoError(t, err, "reference should be a valid UUID")
}
