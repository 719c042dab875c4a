package gateway

import (
	"context"

	"github.com/shopspring/decimal"
)

// DepositIntent is a provider hosted payment the customer still has to complete
type DepositIntent struct {
	// Reference identifies the payment on both sides, used as idempotency key
	Reference string

	// AuthorizationURL is the provider hosted payment page
	AuthorizationURL string
}

// PayoutIntent is a provider accepted payout to an external bank account
type PayoutIntent struct {
	Reference    string
	TransferCode string
}

// Gateway abstracts the external payment provider.
// Implementations do blocking network IO with a bounded timeout and must
// return apperrors.ErrGatewayUnavailable (wrapped) when the provider call
// fails or times out. A failed call never means "payment failed", only
// "outcome unknown": callers decide what that implies.
type Gateway interface {
	// InitializeDeposit asks the provider for a hosted payment page
	InitializeDeposit(ctx context.Context, email string, amount decimal.Decimal) (DepositIntent, error)

	// VerifyDeposit checks the payment settled with exactly the expected
	// amount. Returns false when the provider reports a different amount
	// or a non successful payment
	VerifyDeposit(ctx context.Context, reference string, expected decimal.Decimal) (bool, error)

	// CreateRecipient registers an external bank account with the provider
	// and returns the provider assigned recipient id
	CreateRecipient(ctx context.Context, accountNumber string, accountName string, bankCode string) (string, error)

	// InitiatePayout asks the provider to move funds to the recipient
	InitiatePayout(ctx context.Context, recipientID string, amount decimal.Decimal, note string) (PayoutIntent, error)
}
