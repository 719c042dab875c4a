package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit    = "DEPOSIT"
	TransactionTypeTransfer   = "TRANSFER"
	TransactionTypeWithdrawal = "WITHDRAWAL"
)

const (
	// TransactionPending is the only non-terminal status
	TransactionPending   = "PENDING"
	TransactionCompleted = "COMPLETED"
	TransactionFailed    = "FAILED"
)

const GatewayPaystack = "paystack"

// TransactionDetail carries the fields relevant to one transaction type.
// Exactly the fields for the transaction's type are set, the rest stay empty.
type TransactionDetail struct {
	// Gateway name, set for gateway mediated deposits and withdrawals
	Gateway string `json:"gateway,omitempty"`

	// Counterparty account number, set for transfers and withdrawals
	ReceiverAccountNumber string `json:"receiver_account_number,omitempty"`

	// Gateway assigned recipient id, set for withdrawals
	RecipientID string `json:"recipient_id,omitempty"`
}

// Transaction explains one movement of money on an account.
// Amount is always positive, the direction is implied by Type.
// Reference is the idempotency key: unique across all transactions.
type Transaction struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Type      string
	Reference string
	Detail    TransactionDetail
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DepositDetail builds the detail variant for a gateway deposit.
func DepositDetail(gateway string) TransactionDetail {
	return TransactionDetail{Gateway: gateway}
}

// TransferDetail builds the detail variant for an internal transfer.
func TransferDetail(receiverAccountNumber string) TransactionDetail {
	return TransactionDetail{ReceiverAccountNumber: receiverAccountNumber}
}

// WithdrawalDetail builds the detail variant for an external payout.
func WithdrawalDetail(gateway, receiverAccountNumber, recipientID string) TransactionDetail {
	return TransactionDetail{
		Gateway:               gateway,
		ReceiverAccountNumber: receiverAccountNumber,
		RecipientID:           recipientID,
	}
}
