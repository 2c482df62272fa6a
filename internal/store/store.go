// Package store keeps the latest snapshot of every account and transaction.
// Stores are owned by a single engine and are not safe for concurrent use.
package store

import "github.com/ruralpay/payments-engine/internal/models"

// AccountStore maps account ids to their current snapshot.
type AccountStore struct {
	accounts map[models.AccountID]models.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{accounts: make(map[models.AccountID]models.Account)}
}

// Find returns the current snapshot of the account, if any.
func (s *AccountStore) Find(id models.AccountID) (models.Account, bool) {
	account, ok := s.accounts[id]
	return account, ok
}

// Store upserts the account under its own id.
func (s *AccountStore) Store(account models.Account) {
	s.accounts[account.ID()] = account
}

// All returns the current snapshots in no particular order.
func (s *AccountStore) All() []models.Account {
	all := make([]models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		all = append(all, account)
	}
	return all
}

func (s *AccountStore) Len() int {
	return len(s.accounts)
}

// TransactionStore maps transaction ids to their current lifecycle snapshot.
type TransactionStore struct {
	transactions map[models.TransactionID]models.Transaction
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{transactions: make(map[models.TransactionID]models.Transaction)}
}

func (s *TransactionStore) Find(id models.TransactionID) (models.Transaction, bool) {
	tx, ok := s.transactions[id]
	return tx, ok
}

// Store upserts the transaction under its own id, replacing any earlier
// lifecycle snapshot.
func (s *TransactionStore) Store(tx models.Transaction) {
	s.transactions[tx.ID()] = tx
}

func (s *TransactionStore) All() []models.Transaction {
	all := make([]models.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		all = append(all, tx)
	}
	return all
}

func (s *TransactionStore) Len() int {
	return len(s.transactions)
}
