package handlers

import (
	"errors"
	"net/http"

	"github.com/olusegun-dev/bankcore/internal/apperrors"
	"github.com/olusegun-dev/bankcore/internal/handlers/render"
	"github.com/olusegun-dev/bankcore/internal/logger"
)

// serviceError maps a coordinator error to a stable error kind and a
// human readable message. Internal details never reach the response.
func serviceError(w http.ResponseWriter, l logger.Logger, err error) {
	switch {
	case errors.Is(err, apperrors.ErrAccountNotFound):
		render.ServiceError(w, "Account not found", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		render.ServiceError(w, "Invalid transaction reference", http.StatusNotFound)
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		render.ServiceError(w, "Insufficient funds", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrAmountNotPositive):
		render.ServiceError(w, "Amount must be above zero", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrSelfTransfer):
		render.ServiceError(w, "You cannot transfer to your own account", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrAccountInactive):
		render.ServiceError(w, "Account is not active", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrAmountMismatch):
		render.ServiceError(w, "Payment could not be verified", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrInvalidTransition):
		render.ServiceError(w, "Transaction already settled", http.StatusConflict)
	case errors.Is(err, apperrors.ErrReferenceTaken):
		render.ServiceError(w, "Duplicate transaction reference", http.StatusConflict)
	case errors.Is(err, apperrors.ErrRecipientRejected):
		render.ServiceError(w, "Invalid payment account, please try another payout method", http.StatusBadRequest)
	case errors.Is(err, apperrors.ErrGatewayUnavailable):
		render.ServiceError(w, "Payment gateway not available, try again in a few seconds", http.StatusBadGateway)
	default:
		l.Error("Unhandled service error", "error", err)
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
}
