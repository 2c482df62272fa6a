package engine

import (
	"testing"

	"github.com/ruralpay/payments-engine/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(s string) models.Amount {
	return decimal.RequireFromString(s)
}

func deposit(client models.AccountID, tx models.TransactionID, amount string) models.Request {
	return models.DepositRequest{AccountID: client, TransactionID: tx, Amount: amt(amount)}
}

func withdrawal(client models.AccountID, tx models.TransactionID, amount string) models.Request {
	return models.WithdrawalRequest{AccountID: client, TransactionID: tx, Amount: amt(amount)}
}

func dispute(tx models.TransactionID) models.Request    { return models.DisputeRequest{TransactionID: tx} }
func resolve(tx models.TransactionID) models.Request    { return models.ResolveRequest{TransactionID: tx} }
func chargeback(tx models.TransactionID) models.Request { return models.ChargebackRequest{TransactionID: tx} }

// assertAccount checks balances and the total = available + held invariant.
func assertAccount(t *testing.T, e *Engine, id models.AccountID, available, held string, locked bool) {
	t.Helper()
	acc, ok := e.Account(id)
	require.True(t, ok, "account %d not found", id)
	assert.True(t, amt(available).Equal(acc.Available()), "available: want %s, got %s", available, acc.Available())
	assert.True(t, amt(held).Equal(acc.Held()), "held: want %s, got %s", held, acc.Held())
	assert.True(t, acc.Available().Add(acc.Held()).Equal(acc.Total()), "total must equal available + held")
	assert.Equal(t, locked, acc.Locked())
}

func assertRejected(t *testing.T, err error, reasons ...Reason) {
	t.Helper()
	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, reasons, rejection.Reasons)
}

func processAll(t *testing.T, e *Engine, reqs ...models.Request) []error {
	t.Helper()
	errs := make([]error, len(reqs))
	for i, req := range reqs {
		errs[i] = e.Process(i, req)
	}
	return errs
}
