package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olusegun-dev/bankcore/internal/handlers/middleware"
	"github.com/olusegun-dev/bankcore/internal/logger"
	"github.com/olusegun-dev/bankcore/internal/models"
	"github.com/olusegun-dev/bankcore/internal/service/transfer"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	accountService accountService,
	transferService transferService,
	secretKey string,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(secretKey)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	api := http.NewServeMux()

	api.Handle("POST /accounts", withAuth(handleOpenAccount(accountService, logger)))
	api.Handle("GET /accounts", withAuth(handleListAccounts(accountService, logger)))
	api.Handle("GET /accounts/{id}", withAuth(handleGetAccount(accountService, logger)))
	api.Handle("GET /accounts/{id}/transactions", withAuth(handleListAccountTransactions(accountService, transferService, logger)))

	api.Handle("POST /transactions/deposit", withAuth(handleDepositInitiate(transferService, logger)))
	api.Handle("POST /transactions/deposit/verify", handleDepositVerify(transferService, logger))
	api.Handle("POST /transactions/transfer", withAuth(handleInternalTransfer(transferService, logger)))
	api.Handle("POST /transactions/withdraw", withAuth(handleWithdraw(transferService, logger)))
	api.Handle("GET /transactions/{reference}", withAuth(handleGetTransaction(transferService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", api))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type accountService interface {
	// Open account for the user with a fresh generated account number
	OpenAccount(ctx context.Context, userID uuid.UUID, accountType string) (models.Account, error)

	// Get single account by id
	// Has to return apperrors.ErrAccountNotFound if absent
	GetAccount(ctx context.Context, accountID uuid.UUID) (models.Account, error)

	// List accounts owned by the user
	ListUserAccounts(ctx context.Context, userID uuid.UUID) ([]models.Account, error)
}

type transferService interface {
	DepositInitiate(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, email string, amount decimal.Decimal) (transfer.DepositResult, error)
	DepositVerify(ctx context.Context, reference string) (models.Transaction, error)
	InternalTransfer(ctx context.Context, userID uuid.UUID, senderAccountID uuid.UUID, receiverAccountNumber string, amount decimal.Decimal) (models.Transaction, error)
	Withdraw(ctx context.Context, params transfer.WithdrawParams) (models.Transaction, error)

	GetTransaction(ctx context.Context, reference string) (models.Transaction, error)
	ListAccountTransactions(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error)
}
