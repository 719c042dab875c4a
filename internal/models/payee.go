package models

import (
	"time"

	"github.com/google/uuid"
)

// Payee is a saved external bank destination for payouts.
// Created lazily on the first payout to (AccountNumber, BankCode) and
// reused afterwards so the gateway recipient is registered only once.
type Payee struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountNumber string
	AccountName   string
	BankCode      string
	RecipientID   string
	CreatedAt     time.Time
}
