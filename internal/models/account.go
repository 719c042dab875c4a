package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AccountStatusActive = "ACTIVE"
	AccountStatusFrozen = "FROZEN"
	AccountStatusClosed = "CLOSED"
)

const (
	AccountTypeSavings = "SAVINGS"
	AccountTypeCurrent = "CURRENT"
)

// Account is a financial record: it is created once and never deleted.
// Balance is mutated only through AccountRepo.AdjustBalance.
type Account struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	AccountNumber string
	Balance       decimal.Decimal
	Type          string
	Status        string
	CreatedAt     time.Time
	ModifiedAt    time.Time
}

func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}
