package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olusegun-dev/bankcore/internal/handlers/render"
	"github.com/olusegun-dev/bankcore/internal/handlers/userctx"
	"github.com/olusegun-dev/bankcore/internal/logger"
	"github.com/olusegun-dev/bankcore/internal/models"
	"github.com/olusegun-dev/bankcore/internal/service/transfer"
)

type transactionResponse struct {
	ID        uuid.UUID                `json:"id"`
	AccountID uuid.UUID                `json:"account_id"`
	Amount    float64                  `json:"amount"`
	Type      string                   `json:"type"`
	Reference string                   `json:"reference"`
	Detail    models.TransactionDetail `json:"detail"`
	Status    string                   `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
}

func toTransactionResponse(t models.Transaction) transactionResponse {
	amount, _ := t.Amount.Float64()
	return transactionResponse{
		ID:        t.ID,
		AccountID: t.AccountID,
		Amount:    amount,
		Type:      t.Type,
		Reference: t.Reference,
		Detail:    t.Detail,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
	}
}

func handleDepositInitiate(transferService transferService, l logger.Logger) http.Handler {
	type request struct {
		AccountID uuid.UUID       `json:"account_id" validate:"required"`
		Amount    decimal.Decimal `json:"amount" validate:"required"`
	}

	type response struct {
		Transaction transactionResponse `json:"transaction"`
		URL         string              `json:"url"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		result, err := transferService.DepositInitiate(r.Context(), user.ID, req.AccountID, user.Email, req.Amount)
		if err != nil {
			l.Error("Failed to initiate deposit", "error", err)
			serviceError(w, l, err)
			return
		}

		render.JSON(w, response{
			Transaction: toTransactionResponse(result.Transaction),
			URL:         result.PaymentURL,
		})
	})
}

// Deposit verification is driven by gateway callbacks and may be retried
// any number of times; the coordinator keeps it idempotent
func handleDepositVerify(transferService transferService, l logger.Logger) http.Handler {
	type request struct {
		Reference string `json:"reference" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		transaction, err := transferService.DepositVerify(r.Context(), req.Reference)
		if err != nil {
			l.Warn("Deposit verification failed", "reference", req.Reference, "error", err)
			serviceError(w, l, err)
			return
		}

		render.JSON(w, toTransactionResponse(transaction))
	})
}

func handleInternalTransfer(transferService transferService, l logger.Logger) http.Handler {
	type request struct {
		SenderAccountID       uuid.UUID       `json:"sender_account_id" validate:"required"`
		ReceiverAccountNumber string          `json:"receiver_account_number" validate:"required,len=10,numeric"`
		Amount                decimal.Decimal `json:"amount" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		transaction, err := transferService.InternalTransfer(r.Context(), user.ID, req.SenderAccountID, req.ReceiverAccountNumber, req.Amount)
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, toTransactionResponse(transaction))
	})
}

func handleWithdraw(transferService transferService, l logger.Logger) http.Handler {
	type request struct {
		SenderAccountID       uuid.UUID       `json:"sender_account_id" validate:"required"`
		ReceiverAccountNumber string          `json:"receiver_account_number" validate:"required,numeric"`
		ReceiverAccountName   string          `json:"receiver_account_name" validate:"required"`
		BankCode              string          `json:"bank_code" validate:"required,numeric"`
		Amount                decimal.Decimal `json:"amount" validate:"required"`
		Note                  string          `json:"note"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		req, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		transaction, err := transferService.Withdraw(r.Context(), transfer.WithdrawParams{
			UserID:                user.ID,
			SenderAccountID:       req.SenderAccountID,
			ReceiverAccountNumber: req.ReceiverAccountNumber,
			ReceiverAccountName:   req.ReceiverAccountName,
			BankCode:              req.BankCode,
			Amount:                req.Amount,
			Note:                  req.Note,
		})
		if err != nil {
			serviceError(w, l, err)
			return
		}

		render.JSON(w, toTransactionResponse(transaction))
	})
}

func handleGetTransaction(transferService transferService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		transaction, err := transferService.GetTransaction(r.Context(), r.PathValue("reference"))
		if err != nil {
			serviceError(w, l, err)
			return
		}

		if transaction.UserID != user.ID {
			render.ServiceError(w, "Invalid transaction reference", http.StatusNotFound)
			return
		}

		render.JSON(w, toTransactionResponse(transaction))
	})
}

func handleListAccountTransactions(accountService accountService, transferService transferService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		accountID, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid account id", http.StatusBadRequest)
			return
		}

		account, err := accountService.GetAccount(r.Context(), accountID)
		if err != nil {
			serviceError(w, l, err)
			return
		}
		if account.UserID != user.ID {
			render.ServiceError(w, "Account not found", http.StatusNotFound)
			return
		}

		transactions, err := transferService.ListAccountTransactions(r.Context(), account.ID)
		if err != nil {
			l.Error("Failed to list transactions", "error", err)
			serviceError(w, l, err)
			return
		}

		response := make([]transactionResponse, 0, len(transactions))
		for _, t := range transactions {
			response = append(response, toTransactionResponse(t))
		}
		render.JSON(w, response)
	})
}
