package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/olusegun-dev/bankcore/internal/handlers/render"
	"github.com/olusegun-dev/bankcore/internal/handlers/userctx"
	"github.com/olusegun-dev/bankcore/internal/logger"
	"github.com/olusegun-dev/bankcore/internal/models"
)

type accountResponse struct {
	ID            uuid.UUID `json:"id"`
	AccountNumber string    `json:"account_number"`
	Balance       float64   `json:"balance"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toAccountResponse(a models.Account) accountResponse {
	balance, _ := a.Balance.Float64()
	return accountResponse{
		ID:            a.ID,
		AccountNumber: a.AccountNumber,
		Balance:       balance,
		Type:          a.Type,
		Status:        a.Status,
		CreatedAt:     a.CreatedAt,
	}
}

func handleOpenAccount(accountService accountService, l logger.Logger) http.Handler {
	type request struct {
		Type string `json:"type" validate:"omitempty,oneof=SAVINGS CURRENT"`
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

		account, err := accountService.OpenAccount(r.Context(), user.ID, req.Type)
		if err != nil {
			l.Error("Failed to open account", "error", err)
			serviceError(w, l, err)
			return
		}

		render.JSON(w, toAccountResponse(account))
	})
}

func handleListAccounts(accountService accountService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		accounts, err := accountService.ListUserAccounts(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to list accounts", "error", err)
			serviceError(w, l, err)
			return
		}

		response := make([]accountResponse, 0, len(accounts))
		for _, a := range accounts {
			response = append(response, toAccountResponse(a))
		}
		render.JSON(w, response)
	})
}

func handleGetAccount(accountService accountService, l logger.Logger) http.Handler {
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

		// Accounts are visible to their owner only
		if account.UserID != user.ID {
			render.ServiceError(w, "Account not found", http.StatusNotFound)
			return
		}

		render.JSON(w, toAccountResponse(account))
	})
}
