package models

import "github.com/shopspring/decimal"

// AccountID identifies a client account.
type AccountID uint16

// Account is the current snapshot of a client balance. It is either an
// ActiveAccount or a FrozenAccount; no other implementation exists.
type Account interface {
	ID() AccountID
	Available() Amount
	Held() Amount
	Total() Amount
	Locked() bool

	account()
}

// ActiveAccount accepts deposits, withdrawals and dispute operations.
type ActiveAccount struct {
	id        AccountID
	available Amount
	held      Amount
}

// NewActiveAccount returns an empty active account.
func NewActiveAccount(id AccountID) ActiveAccount {
	return ActiveAccount{id: id, available: decimal.Zero, held: decimal.Zero}
}

func (a ActiveAccount) ID() AccountID     { return a.id }
func (a ActiveAccount) Available() Amount { return a.available }
func (a ActiveAccount) Held() Amount      { return a.held }
func (a ActiveAccount) Total() Amount     { return a.available.Add(a.held) }
func (a ActiveAccount) Locked() bool      { return false }
func (ActiveAccount) account()            {}

// Deposit credits the deposited amount to the available balance.
func (a ActiveAccount) Deposit(tx Deposit) ActiveAccount {
	return ActiveAccount{id: a.id, available: a.available.Add(tx.amount), held: a.held}
}

// Withdraw debits the available balance. It reports false and returns the
// account untouched when the available balance would become negative.
func (a ActiveAccount) Withdraw(tx Withdrawal) (ActiveAccount, bool) {
	remaining := a.available.Sub(tx.amount)
	if remaining.IsNegative() {
		return a, false
	}
	return ActiveAccount{id: a.id, available: remaining, held: a.held}, true
}

// Hold moves amount from available to held. The available balance may go
// negative when the disputed funds were already withdrawn.
func (a ActiveAccount) Hold(amount Amount) ActiveAccount {
	return ActiveAccount{id: a.id, available: a.available.Sub(amount), held: a.held.Add(amount)}
}

// Release moves amount from held back to available.
func (a ActiveAccount) Release(amount Amount) ActiveAccount {
	return ActiveAccount{id: a.id, available: a.available.Add(amount), held: a.held.Sub(amount)}
}

// ChargeBack removes amount from held and freezes the account.
func (a ActiveAccount) ChargeBack(amount Amount) FrozenAccount {
	return FrozenAccount{id: a.id, available: a.available, held: a.held.Sub(amount)}
}

// FrozenAccount is terminal. Nothing transitions out of it.
type FrozenAccount struct {
	id        AccountID
	available Amount
	held      Amount
}

func (a FrozenAccount) ID() AccountID     { return a.id }
func (a FrozenAccount) Available() Amount { return a.available }
func (a FrozenAccount) Held() Amount      { return a.held }
func (a FrozenAccount) Total() Amount     { return a.available.Add(a.held) }
func (a FrozenAccount) Locked() bool      { return true }
func (FrozenAccount) account()            {}
