package engine

import (
	"fmt"

	"github.com/ruralpay/payments-engine/internal/models"
)

// AccountFinder looks up the current account snapshot.
type AccountFinder interface {
	Find(id models.AccountID) (models.Account, bool)
}

// TransactionFinder looks up the current transaction snapshot.
type TransactionFinder interface {
	Find(id models.TransactionID) (models.Transaction, bool)
}

// Validate turns a raw request into a Command, or into the reasons it cannot
// be executed. It never mutates the stores.
//
// Deposit and withdrawal checks are independent and every failing one is
// reported. Dispute, resolve and chargeback checks form a chain where each
// step needs the previous one, so only the first failure is reported.
func Validate(req models.Request, accounts AccountFinder, transactions TransactionFinder) (Command, []Reason) {
	switch r := req.(type) {
	case models.DepositRequest:
		return buildDeposit(r, accounts, transactions)
	case models.WithdrawalRequest:
		return buildWithdrawal(r, accounts, transactions)
	case models.DisputeRequest:
		return buildDispute(r, accounts, transactions)
	case models.ResolveRequest:
		return buildResolve(r, accounts, transactions)
	case models.ChargebackRequest:
		return buildChargeback(r, accounts, transactions)
	default:
		panic(fmt.Sprintf("engine: unsupported request type %T", req))
	}
}

func buildDeposit(r models.DepositRequest, accounts AccountFinder, transactions TransactionFinder) (Command, []Reason) {
	// An unknown account is validated as a fresh active one. It only becomes
	// durable if the executor stores it.
	account, ok := accounts.Find(r.AccountID)
	if !ok {
		account = models.NewActiveAccount(r.AccountID)
	}

	var reasons reasonList
	active, err := activeAccount(account, true)
	reasons.add(err)
	reasons.add(nonNegativeAmount(r.Amount))
	reasons.add(uniqueTransactionID(r.TransactionID, transactions))
	if len(reasons) > 0 {
		return nil, reasons
	}

	return depositCommand{
		transaction: models.NewDeposit(r.TransactionID, active.ID(), r.Amount),
		account:     active,
	}, nil
}

func buildWithdrawal(r models.WithdrawalRequest, accounts AccountFinder, transactions TransactionFinder) (Command, []Reason) {
	var reasons reasonList
	active, err := activeAccount(accounts.Find(r.AccountID))
	reasons.add(err)
	reasons.add(nonNegativeAmount(r.Amount))
	reasons.add(uniqueTransactionID(r.TransactionID, transactions))
	if len(reasons) > 0 {
		return nil, reasons
	}

	return withdrawalCommand{
		transaction: models.NewWithdrawal(r.TransactionID, active.ID(), r.Amount),
		account:     active,
	}, nil
}

func buildDispute(r models.DisputeRequest, accounts AccountFinder, transactions TransactionFinder) (Command, []Reason) {
	tx, err := existingTransaction(r.TransactionID, transactions)
	if err != nil {
		return nil, []Reason{err.(Reason)}
	}
	deposit, err := depositState(tx)
	if err != nil {
		return nil, []Reason{err.(Reason)}
	}
	active, err := activeAccount(accounts.Find(deposit.AccountID()))
	if err != nil {
		return nil, []Reason{err.(Reason)}
	}
	return openDisputeCommand{transaction: deposit, account: active}, nil
}

func buildResolve(r models.ResolveRequest, accounts AccountFinder, transactions TransactionFinder) (Command, []Reason) {
	disputed, active, reason := disputedWithAccount(r.TransactionID, accounts, transactions)
	if reason != nil {
		return nil, []Reason{reason.(Reason)}
	}
	return resolveDisputeCommand{transaction: disputed, account: active}, nil
}

func buildChargeback(r models.ChargebackRequest, accounts AccountFinder, transactions TransactionFinder) (Command, []Reason) {
	disputed, active, reason := disputedWithAccount(r.TransactionID, accounts, transactions)
	if reason != nil {
		return nil, []Reason{reason.(Reason)}
	}
	return chargebackCommand{transaction: disputed, account: active}, nil
}

func disputedWithAccount(id models.TransactionID, accounts AccountFinder, transactions TransactionFinder) (models.DisputedDeposit, models.ActiveAccount, error) {
	tx, err := existingTransaction(id, transactions)
	if err != nil {
		return models.DisputedDeposit{}, models.ActiveAccount{}, err
	}
	disputed, err := disputedState(tx)
	if err != nil {
		return models.DisputedDeposit{}, models.ActiveAccount{}, err
	}
	active, err := activeAccount(accounts.Find(disputed.AccountID()))
	if err != nil {
		return models.DisputedDeposit{}, models.ActiveAccount{}, err
	}
	return disputed, active, nil
}

// reasonList collects independent check failures.
type reasonList []Reason

func (l *reasonList) add(err error) {
	if err != nil {
		*l = append(*l, err.(Reason))
	}
}

// The checks below return a Reason as error, or nil.

func activeAccount(account models.Account, found bool) (models.ActiveAccount, error) {
	if !found {
		return models.ActiveAccount{}, ReasonAccountNotFound
	}
	switch a := account.(type) {
	case models.ActiveAccount:
		return a, nil
	case models.FrozenAccount:
		return models.ActiveAccount{}, ReasonAccountFrozen
	default:
		panic(fmt.Sprintf("engine: unsupported account type %T", account))
	}
}

func nonNegativeAmount(amount models.Amount) error {
	if amount.IsNegative() {
		return ReasonNegativeAmount
	}
	return nil
}

func uniqueTransactionID(id models.TransactionID, transactions TransactionFinder) error {
	if _, exists := transactions.Find(id); exists {
		return ReasonDuplicateTransactionID
	}
	return nil
}

func existingTransaction(id models.TransactionID, transactions TransactionFinder) (models.Transaction, error) {
	tx, ok := transactions.Find(id)
	if !ok {
		return nil, ReasonTransactionNotFound
	}
	return tx, nil
}

func depositState(tx models.Transaction) (models.Deposit, error) {
	deposit, ok := tx.(models.Deposit)
	if !ok {
		return models.Deposit{}, ReasonTransactionNotInDepositState
	}
	return deposit, nil
}

func disputedState(tx models.Transaction) (models.DisputedDeposit, error) {
	disputed, ok := tx.(models.DisputedDeposit)
	if !ok {
		return models.DisputedDeposit{}, ReasonTransactionNotInDisputedState
	}
	return disputed, nil
}
