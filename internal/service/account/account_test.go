package account

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/olusegun-dev/bankcore/internal/apperrors"
	"github.com/olusegun-dev/bankcore/internal/models"
	"github.com/olusegun-dev/bankcore/internal/repository"
	"github.com/olusegun-dev/bankcore/internal/repository/postgres"
	"github.com/olusegun-dev/bankcore/internal/testutil"
)

func TestAccountService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Helper function to create AccountService within transaction
	inTx := func(t *testing.T, fn func(s *AccountService, storage repository.Storage)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			fn(NewService(storage), storage)
		})
	}

	t.Run("OpenAccount", func(t *testing.T) {
		t.Run("open ok", func(t *testing.T) {
			inTx(t, func(s *AccountService, _ repository.Storage) {
				userID := uuid.New()

				account, err := s.OpenAccount(t.Context(), userID, models.AccountTypeCurrent)

				require.NoError(t, err, "opening account should be ok")
				require.Equal(t, userID, account.UserID)
				require.Len(t, account.AccountNumber, 10, "account number should have 10 digits")
				require.True(t, account.Balance.IsZero(), "account must open with zero balance")
				require.Equal(t, models.AccountTypeCurrent, account.Type)
				require.Equal(t, models.AccountStatusActive, account.Status)
			})
		})

		t.Run("default type", func(t *testing.T) {
			inTx(t, func(s *AccountService, _ repository.Storage) {
				account, err := s.OpenAccount(t.Context(), uuid.New(), "")

				require.NoError(t, err)
				require.Equal(t, models.AccountTypeSavings, account.Type)
			})
		})

		t.Run("numbers are unique", func(t *testing.T) {
			inTx(t, func(s *AccountService, _ repository.Storage) {
				seen := make(map[string]bool)
				for range 5 {
					account, err := s.OpenAccount(t.Context(), uuid.New(), "")
					require.NoError(t, err)
					require.False(t, seen[account.AccountNumber], "account number %s assigned twice", account.AccountNumber)
					seen[account.AccountNumber] = true
				}
			})
		})
	})

	t.Run("lookups", func(t *testing.T) {
		inTx(t, func(s *AccountService, _ repository.Storage) {
			userID := uuid.New()
			created, err := s.OpenAccount(t.Context(), userID, "")
			require.NoError(t, err)

			byID, err := s.GetAccount(t.Context(), created.ID)
			require.NoError(t, err)
			require.Equal(t, created.ID, byID.ID)

			byNumber, err := s.GetByAccountNumber(t.Context(), created.AccountNumber)
			require.NoError(t, err)
			require.Equal(t, created.ID, byNumber.ID)

			accounts, err := s.ListUserAccounts(t.Context(), userID)
			require.NoError(t, err)
			require.Len(t, accounts, 1)

			_, err = s.GetAccount(t.Context(), uuid.New())
			require.ErrorIs(t, err, apperrors.ErrAccountNotFound)
		})
	})
}
