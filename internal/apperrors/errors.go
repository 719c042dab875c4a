package apperrors

import (
	"errors"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInactive     = errors.New("account is not active")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPayeeNotFound       = errors.New("payee not found")

	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrReferenceTaken     = errors.New("transaction reference already exists")
	ErrAccountNumberTaken = errors.New("account number already exists")
	ErrReferenceExhausted = errors.New("could not generate a free account number")

	ErrInvalidTransition = errors.New("transaction status cannot move backward")

	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrAmountMismatch     = errors.New("verified amount does not match recorded amount")
	ErrRecipientRejected  = errors.New("gateway rejected payout recipient")

	ErrAmountNotPositive = errors.New("amount must be above zero")
	ErrSelfTransfer      = errors.New("cannot transfer to own account")
)
