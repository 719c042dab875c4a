package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olusegun-dev/bankcore/internal/apperrors"
	"github.com/olusegun-dev/bankcore/internal/gateway"
	"github.com/olusegun-dev/bankcore/internal/logger"
	"github.com/olusegun-dev/bankcore/internal/models"
	"github.com/olusegun-dev/bankcore/internal/repository"
	"github.com/olusegun-dev/bankcore/internal/service/refgen"
)

// TransferService coordinates every movement of money: deposits through
// the payment gateway, transfers between internal accounts and payouts
// to external bank accounts. All ledger and transaction mutations of one
// operation happen inside a single unit of work; the gateway is only
// ever called outside of it.
type TransferService struct {
	storage repository.Storage
	gateway gateway.Gateway
	refgen  *refgen.Generator
	logger  logger.Logger
}

func NewService(storage repository.Storage, gw gateway.Gateway, l logger.Logger) *TransferService {
	if l == nil {
		l = logger.NewNoOp()
	}

	return &TransferService{
		storage: storage,
		gateway: gw,
		refgen:  refgen.New(storage.Account()),
		logger:  l,
	}
}

// DepositResult is a deposit waiting for the customer on the provider's
// hosted payment page
type DepositResult struct {
	Transaction models.Transaction
	PaymentURL  string
}

// DepositInitiate obtains a hosted payment URL from the gateway and
// records a PENDING deposit under the provider's reference. No balance
// is touched: funds are not guaranteed until the gateway confirms.
// A failed gateway call leaves no trace.
func (s *TransferService) DepositInitiate(ctx context.Context, userID uuid.UUID, accountID uuid.UUID, email string, amount decimal.Decimal) (DepositResult, error) {
	var result DepositResult

	if !amount.IsPositive() {
		return result, apperrors.ErrAmountNotPositive
	}

	account, err := s.storage.Account().GetAccount(ctx, repository.GetAccountParams{ID: accountID, UserID: userID})
	if err != nil {
		return result, err
	}
	if !account.IsActive() {
		return result, apperrors.ErrAccountInactive
	}

	intent, err := s.gateway.InitializeDeposit(ctx, email, amount)
	if err != nil {
		return result, fmt.Errorf("can't initialize deposit: %w", err)
	}

	transaction, err := s.storage.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
		UserID:    account.UserID,
		AccountID: account.ID,
		Amount:    amount,
		Type:      models.TransactionTypeDeposit,
		Reference: intent.Reference,
		Detail:    models.DepositDetail(models.GatewayPaystack),
		Status:    models.TransactionPending,
	})
	if err != nil {
		return result, fmt.Errorf("can't record deposit: %w", err)
	}

	s.logger.Info("Deposit initiated", "reference", transaction.Reference, "account", account.AccountNumber)

	result.Transaction = transaction
	result.PaymentURL = intent.AuthorizationURL
	return result, nil
}

// DepositVerify settles a pending deposit: it confirms the payment with
// the gateway and then credits the account and completes the transaction
// atomically. Safe to retry: a reference that is already COMPLETED or
// FAILED is rejected before any mutation, and every failure path leaves
// the transaction PENDING so verification can run again.
func (s *TransferService) DepositVerify(ctx context.Context, reference string) (models.Transaction, error) {
	transaction, err := s.storage.Transaction().GetByReference(ctx, reference)
	if err != nil {
		return transaction, err
	}
	if transaction.Status != models.TransactionPending {
		return transaction, fmt.Errorf("deposit %s already settled: %w", reference, apperrors.ErrInvalidTransition)
	}

	verified, err := s.gateway.VerifyDeposit(ctx, reference, transaction.Amount)
	if err != nil {
		// Outcome unknown, keep the deposit PENDING for a later retry
		return transaction, fmt.Errorf("can't verify deposit: %w", err)
	}
	if !verified {
		return transaction, apperrors.ErrAmountMismatch
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.Account().AdjustBalance(ctx, transaction.AccountID, transaction.Amount); err != nil {
			return err
		}

		settled, err := st.Transaction().SetStatus(ctx, transaction.ID, models.TransactionCompleted)
		if err != nil {
			return err
		}

		transaction = settled
		return nil
	})
	if err != nil {
		return transaction, fmt.Errorf("deposit settlement failed: %w", err)
	}

	s.logger.Info("Deposit settled", "reference", reference, "amount", transaction.Amount)
	return transaction, nil
}

// InternalTransfer moves funds between two internal accounts owned by
// different users. Sender debit, receiver credit and the COMPLETED
// transaction record commit as one unit of work, with balance mutations
// applied in account id order so two opposite transfers between the same
// pair of accounts cannot deadlock.
func (s *TransferService) InternalTransfer(ctx context.Context, userID uuid.UUID, senderAccountID uuid.UUID, receiverAccountNumber string, amount decimal.Decimal) (models.Transaction, error) {
	var transaction models.Transaction

	if !amount.IsPositive() {
		return transaction, apperrors.ErrAmountNotPositive
	}

	sender, err := s.storage.Account().GetAccount(ctx, repository.GetAccountParams{ID: senderAccountID, UserID: userID})
	if err != nil {
		return transaction, err
	}
	if !sender.IsActive() {
		return transaction, apperrors.ErrAccountInactive
	}

	// Fast fail only: the conditional debit below is the authoritative
	// check, this balance may be stale the moment it is read
	if sender.Balance.LessThanOrEqual(amount) {
		return transaction, apperrors.ErrInsufficientFunds
	}

	receiver, err := s.storage.Account().GetAccount(ctx, repository.GetAccountParams{AccountNumber: receiverAccountNumber})
	if err != nil {
		return transaction, err
	}
	if receiver.UserID == sender.UserID {
		return transaction, apperrors.ErrSelfTransfer
	}
	if !receiver.IsActive() {
		return transaction, apperrors.ErrAccountInactive
	}

	// Row locks are taken in account id order regardless of direction
	adjustments := [2]struct {
		accountID uuid.UUID
		delta     decimal.Decimal
	}{
		{sender.ID, amount.Neg()},
		{receiver.ID, amount},
	}
	if receiver.ID.String() < sender.ID.String() {
		adjustments[0], adjustments[1] = adjustments[1], adjustments[0]
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		for _, adj := range adjustments {
			if _, err := st.Account().AdjustBalance(ctx, adj.accountID, adj.delta); err != nil {
				return err
			}
		}

		created, err := st.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
			UserID:    sender.UserID,
			AccountID: sender.ID,
			Amount:    amount,
			Type:      models.TransactionTypeTransfer,
			Reference: s.refgen.NextPaymentReference(),
			Detail:    models.TransferDetail(receiver.AccountNumber),
			Status:    models.TransactionCompleted,
		})
		if err != nil {
			return err
		}

		transaction = created
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			return transaction, apperrors.ErrInsufficientFunds
		}
		return transaction, fmt.Errorf("transfer failed: %w", err)
	}

	s.logger.Info("Internal transfer completed",
		"reference", transaction.Reference, "sender", sender.AccountNumber, "receiver", receiver.AccountNumber, "amount", amount)
	return transaction, nil
}

// WithdrawParams describes a payout to an external bank account
type WithdrawParams struct {
	UserID          uuid.UUID
	SenderAccountID uuid.UUID

	ReceiverAccountNumber string
	ReceiverAccountName   string
	BankCode              string

	Amount decimal.Decimal
	Note   string
}

// Withdraw pays out to an external bank account through the gateway.
// The payout is initiated first; only once the gateway has accepted it
// is the sender debited and a PENDING withdrawal recorded, atomically.
// A gateway rejection therefore leaves the account untouched, and a
// gateway accepted payout always has a matching local debit.
func (s *TransferService) Withdraw(ctx context.Context, params WithdrawParams) (models.Transaction, error) {
	var transaction models.Transaction

	if !params.Amount.IsPositive() {
		return transaction, apperrors.ErrAmountNotPositive
	}

	sender, err := s.storage.Account().GetAccount(ctx, repository.GetAccountParams{ID: params.SenderAccountID, UserID: params.UserID})
	if err != nil {
		return transaction, err
	}
	if !sender.IsActive() {
		return transaction, apperrors.ErrAccountInactive
	}
	if sender.Balance.LessThanOrEqual(params.Amount) {
		return transaction, apperrors.ErrInsufficientFunds
	}

	// Recipient registration has no balance effect, so it happens before
	// the unit of work rather than holding it open across network calls
	recipientID, err := s.resolveRecipient(ctx, params)
	if err != nil {
		return transaction, err
	}

	payout, err := s.gateway.InitiatePayout(ctx, recipientID, params.Amount, params.Note)
	if err != nil {
		return transaction, fmt.Errorf("can't initiate payout: %w", err)
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.Account().AdjustBalance(ctx, sender.ID, params.Amount.Neg()); err != nil {
			return err
		}

		created, err := st.Transaction().CreateTransaction(ctx, repository.CreateTransactionParams{
			UserID:    sender.UserID,
			AccountID: sender.ID,
			Amount:    params.Amount,
			Type:      models.TransactionTypeWithdrawal,
			Reference: payout.Reference,
			Detail:    models.WithdrawalDetail(models.GatewayPaystack, params.ReceiverAccountNumber, recipientID),
			Status:    models.TransactionPending,
		})
		if err != nil {
			return err
		}

		transaction = created
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientFunds) {
			return transaction, apperrors.ErrInsufficientFunds
		}
		return transaction, fmt.Errorf("withdrawal failed: %w", err)
	}

	s.logger.Info("Withdrawal initiated",
		"reference", transaction.Reference, "sender", sender.AccountNumber, "amount", params.Amount)
	return transaction, nil
}

// GetTransaction returns the transaction recorded under the reference
func (s *TransferService) GetTransaction(ctx context.Context, reference string) (models.Transaction, error) {
	return s.storage.Transaction().GetByReference(ctx, reference)
}

// ListAccountTransactions returns the account's transactions, newest first
func (s *TransferService) ListAccountTransactions(ctx context.Context, accountID uuid.UUID) ([]models.Transaction, error) {
	return s.storage.Transaction().ListAccountTransactions(ctx, accountID)
}

// resolveRecipient returns the gateway recipient id for the destination,
// registering and caching it on first use
func (s *TransferService) resolveRecipient(ctx context.Context, params WithdrawParams) (string, error) {
	payee, err := s.storage.Payee().GetPayee(ctx, params.ReceiverAccountNumber, params.BankCode)
	switch {
	case err == nil:
		return payee.RecipientID, nil
	case errors.Is(err, apperrors.ErrPayeeNotFound):
	default:
		return "", err
	}

	recipientID, err := s.gateway.CreateRecipient(ctx, params.ReceiverAccountNumber, params.ReceiverAccountName, params.BankCode)
	if err != nil {
		return "", fmt.Errorf("can't register payout recipient: %w", err)
	}
	if recipientID == "" {
		return "", apperrors.ErrRecipientRejected
	}

	_, err = s.storage.Payee().SavePayee(ctx, repository.CreatePayeeParams{
		UserID:        params.UserID,
		AccountNumber: params.ReceiverAccountNumber,
		AccountName:   params.ReceiverAccountName,
		BankCode:      params.BankCode,
		RecipientID:   recipientID,
	})
	if err != nil {
		// The recipient is already registered with the gateway, losing the
		// cache entry only costs a repeat registration next time
		s.logger.Warn("Failed to cache payee", "account_number", params.ReceiverAccountNumber, "error", err)
	}

	return recipientID, nil
}
