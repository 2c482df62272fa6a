// Package engine replays operation requests against account and transaction
// state, one request at a time and in arrival order.
package engine

import (
	"sort"

	"github.com/ruralpay/payments-engine/internal/models"
	"github.com/ruralpay/payments-engine/internal/store"
)

// Reporter receives diagnostics for requests that had no effect.
type Reporter interface {
	Rejected(err *RejectionError)
	WithdrawalDropped(index int, tx models.Withdrawal, available models.Amount)
}

type nopReporter struct{}

func (nopReporter) Rejected(*RejectionError)                                {}
func (nopReporter) WithdrawalDropped(int, models.Withdrawal, models.Amount) {}

// Engine owns its stores exclusively. It is not safe for concurrent use.
type Engine struct {
	accounts     *store.AccountStore
	transactions *store.TransactionStore
	reporter     Reporter
}

type Option func(*Engine)

// WithReporter routes rejections and dropped withdrawals to r.
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		accounts:     store.NewAccountStore(),
		transactions: store.NewTransactionStore(),
		reporter:     nopReporter{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process validates and applies one request. index is the request's position
// in the input and is only used for reporting. A rejected request returns a
// *RejectionError and leaves every store unchanged; a withdrawal dropped for
// insufficient funds is not an error.
func (e *Engine) Process(index int, req models.Request) error {
	cmd, reasons := Validate(req, e.accounts, e.transactions)
	if len(reasons) > 0 {
		rejection := &RejectionError{Index: index, Kind: req.Kind(), Reasons: reasons}
		e.reporter.Rejected(rejection)
		return rejection
	}

	outcome := Execute(cmd)
	e.accounts.Store(outcome.Account)
	if outcome.Transaction != nil {
		e.transactions.Store(outcome.Transaction)
	}
	if outcome.Dropped {
		w := cmd.(withdrawalCommand)
		e.reporter.WithdrawalDropped(index, w.transaction, w.account.Available())
	}
	return nil
}

// Account returns the current snapshot of an account.
func (e *Engine) Account(id models.AccountID) (models.Account, bool) {
	return e.accounts.Find(id)
}

// Transaction returns the current snapshot of a transaction.
func (e *Engine) Transaction(id models.TransactionID) (models.Transaction, bool) {
	return e.transactions.Find(id)
}

// Accounts returns every known account ordered by id.
func (e *Engine) Accounts() []models.Account {
	accounts := e.accounts.All()
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID() < accounts[j].ID() })
	return accounts
}
