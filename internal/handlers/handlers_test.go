package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/olusegun-dev/bankcore/internal/gateway"
	"github.com/olusegun-dev/bankcore/internal/logger"
	"github.com/olusegun-dev/bankcore/internal/models"
	"github.com/olusegun-dev/bankcore/internal/repository"
	"github.com/olusegun-dev/bankcore/internal/repository/postgres"
	"github.com/olusegun-dev/bankcore/internal/service/account"
	"github.com/olusegun-dev/bankcore/internal/service/transfer"
	"github.com/olusegun-dev/bankcore/internal/testutil"
)

const testSecretKey = "test-secret"

// stubGateway accepts every deposit and payout
type stubGateway struct{}

func (stubGateway) InitializeDeposit(context.Context, string, decimal.Decimal) (gateway.DepositIntent, error) {
	return gateway.DepositIntent{Reference: uuid.NewString(), AuthorizationURL: "https://pay.example.com/checkout"}, nil
}

func (stubGateway) VerifyDeposit(context.Context, string, decimal.Decimal) (bool, error) {
	return true, nil
}

func (stubGateway) CreateRecipient(_ context.Context, accountNumber, _, _ string) (string, error) {
	return "RCP_" + accountNumber, nil
}

func (stubGateway) InitiatePayout(context.Context, string, decimal.Decimal, string) (gateway.PayoutIntent, error) {
	return gateway.PayoutIntent{Reference: uuid.NewString(), TransferCode: "TRF_1"}, nil
}

func accessToken(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   userID.String(),
		"email": "user@bank.test",
		"exp":   jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	signed, err := token.SignedString([]byte(testSecretKey))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, method, url, token, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	return resp, string(raw)
}

func Test_API(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run http server backed by production services over a rolled back tx
	withTx := func(dbpool *pgxpool.Pool, t *testing.T, fn func(url string, storage repository.Storage)) {
		testutil.InTx(dbpool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			accountService := account.NewService(storage)
			transferService := transfer.NewService(storage, stubGateway{}, nil)

			srv := httptest.NewServer(NewRouter(accountService, transferService, testSecretKey, logger.NewNoOp()))
			defer srv.Close()

			fn(srv.URL, storage)
		})
	}

	// openFunded creates an account for the user holding the given balance
	openFunded := func(t *testing.T, storage repository.Storage, userID uuid.UUID, number string, balance string) models.Account {
		t.Helper()

		created, err := storage.Account().CreateAccount(t.Context(), repository.CreateAccountParams{
			UserID: userID, AccountNumber: number, Type: models.AccountTypeSavings,
		})
		require.NoError(t, err)

		funded, err := storage.Account().AdjustBalance(t.Context(), created.ID, decimal.RequireFromString(balance))
		require.NoError(t, err)
		return funded
	}

	t.Run("open account ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			userID := uuid.New()

			resp, body := doRequest(t, "POST", url+"/api/v1/accounts", accessToken(t, userID), `{"type": "CURRENT"}`)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var got struct {
				ID            uuid.UUID `json:"id"`
				AccountNumber string    `json:"account_number"`
				Balance       float64   `json:"balance"`
				Type          string    `json:"type"`
				Status        string    `json:"status"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			require.Len(t, got.AccountNumber, 10, "account number should be 10 digits")
			require.Zero(t, got.Balance, "new account should hold nothing")
			require.Equal(t, models.AccountTypeCurrent, got.Type)
			require.Equal(t, models.AccountStatusActive, got.Status)
		})
	})

	t.Run("unauthorized without token", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			resp, body := doRequest(t, "POST", url+"/api/v1/accounts", "", `{}`)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Unauthorized"
				}`, body)
		})
	})

	t.Run("unauthorized with forged token", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"uid": uuid.NewString()})
			signed, err := forged.SignedString([]byte("wrong-secret"))
			require.NoError(t, err)

			resp, body := doRequest(t, "GET", url+"/api/v1/accounts", signed, "")

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("foreign account hidden", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			other := openFunded(t, storage, uuid.New(), "6000000001", "100.00")

			resp, body := doRequest(t, "GET", url+"/api/v1/accounts/"+other.ID.String(), accessToken(t, uuid.New()), "")

			require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Account not found"
				}`, body)
		})
	})

	t.Run("transfer ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			userID := uuid.New()
			sender := openFunded(t, storage, userID, "6000000002", "100.00")
			receiver := openFunded(t, storage, uuid.New(), "6000000003", "50.00")

			data := fmt.Sprintf(`{"sender_account_id": %q, "receiver_account_number": %q, "amount": 30}`, sender.ID, receiver.AccountNumber)
			resp, body := doRequest(t, "POST", url+"/api/v1/transactions/transfer", accessToken(t, userID), data)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var got struct {
				Type   string `json:"type"`
				Status string `json:"status"`
				Detail struct {
					ReceiverAccountNumber string `json:"receiver_account_number"`
				} `json:"detail"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			require.Equal(t, models.TransactionTypeTransfer, got.Type)
			require.Equal(t, models.TransactionCompleted, got.Status)
			require.Equal(t, receiver.AccountNumber, got.Detail.ReceiverAccountNumber)

			current, err := storage.Account().GetAccount(t.Context(), repository.GetAccountParams{ID: sender.ID})
			require.NoError(t, err)
			require.True(t, current.Balance.Equal(decimal.RequireFromString("70.00")))
		})
	})

	t.Run("transfer insufficient funds", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			userID := uuid.New()
			sender := openFunded(t, storage, userID, "6000000004", "10.00")
			receiver := openFunded(t, storage, uuid.New(), "6000000005", "0.00")

			data := fmt.Sprintf(`{"sender_account_id": %q, "receiver_account_number": %q, "amount": 50}`, sender.ID, receiver.AccountNumber)
			resp, body := doRequest(t, "POST", url+"/api/v1/transactions/transfer", accessToken(t, userID), data)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Insufficient funds"
				}`, body)
		})
	})

	t.Run("transfer malformed receiver number", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			userID := uuid.New()
			sender := openFunded(t, storage, userID, "6000000006", "100.00")

			data := fmt.Sprintf(`{"sender_account_id": %q, "receiver_account_number": "12345", "amount": 30}`, sender.ID)
			resp, body := doRequest(t, "POST", url+"/api/v1/transactions/transfer", accessToken(t, userID), data)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "validation_failed",
					"message": "Request validation failed",
					"fields": {
						"receiver_account_number": "Value must be exactly 10 characters"
					}
				}`, body)
		})
	})

	t.Run("deposit lifecycle over http", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			userID := uuid.New()
			account := openFunded(t, storage, userID, "6000000007", "0.00")

			data := fmt.Sprintf(`{"account_id": %q, "amount": 150}`, account.ID)
			resp, body := doRequest(t, "POST", url+"/api/v1/transactions/deposit", accessToken(t, userID), data)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var initiated struct {
				Transaction struct {
					Reference string `json:"reference"`
					Status    string `json:"status"`
				} `json:"transaction"`
				URL string `json:"url"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &initiated))
			require.Equal(t, models.TransactionPending, initiated.Transaction.Status)
			require.Equal(t, "https://pay.example.com/checkout", initiated.URL)

			// Verification endpoint is called back by the gateway, no auth
			data = fmt.Sprintf(`{"reference": %q}`, initiated.Transaction.Reference)
			resp, body = doRequest(t, "POST", url+"/api/v1/transactions/deposit/verify", "", data)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			current, err := storage.Account().GetAccount(t.Context(), repository.GetAccountParams{ID: account.ID})
			require.NoError(t, err)
			require.True(t, current.Balance.Equal(decimal.RequireFromString("150.00")), "verified deposit should credit the account")

			// Gateway retries the callback
			resp, body = doRequest(t, "POST", url+"/api/v1/transactions/deposit/verify", "", data)

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Transaction already settled"
				}`, body)
		})
	})

	t.Run("withdraw ok", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			userID := uuid.New()
			sender := openFunded(t, storage, userID, "6000000008", "100.00")

			data := fmt.Sprintf(`{
				"sender_account_id": %q,
				"receiver_account_number": "9876543210",
				"receiver_account_name": "Jane Doe",
				"bank_code": "058",
				"amount": 40,
				"note": "rent"
			}`, sender.ID)
			resp, body := doRequest(t, "POST", url+"/api/v1/transactions/withdraw", accessToken(t, userID), data)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var got struct {
				Type      string `json:"type"`
				Status    string `json:"status"`
				Reference string `json:"reference"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			require.Equal(t, models.TransactionTypeWithdrawal, got.Type)
			require.Equal(t, models.TransactionPending, got.Status)
			require.NotEmpty(t, got.Reference)

			current, err := storage.Account().GetAccount(t.Context(), repository.GetAccountParams{ID: sender.ID})
			require.NoError(t, err)
			require.True(t, current.Balance.Equal(decimal.RequireFromString("60.00")))
		})
	})

	t.Run("transaction visible to owner only", func(t *testing.T) {
		withTx(pg.Pool, t, func(url string, storage repository.Storage) {
			userID := uuid.New()
			sender := openFunded(t, storage, userID, "6000000009", "100.00")
			receiver := openFunded(t, storage, uuid.New(), "6000000010", "0.00")

			data := fmt.Sprintf(`{"sender_account_id": %q, "receiver_account_number": %q, "amount": 30}`, sender.ID, receiver.AccountNumber)
			resp, body := doRequest(t, "POST", url+"/api/v1/transactions/transfer", accessToken(t, userID), data)
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var created struct {
				Reference string `json:"reference"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &created))

			resp, body = doRequest(t, "GET", url+"/api/v1/transactions/"+created.Reference, accessToken(t, userID), "")
			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			// Same reference, different user
			resp, body = doRequest(t, "GET", url+"/api/v1/transactions/"+created.Reference, accessToken(t, uuid.New()), "")
			require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})
}
