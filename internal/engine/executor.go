package engine

import (
	"fmt"

	"github.com/ruralpay/payments-engine/internal/models"
)

// Outcome is what a command writes back: exactly one account snapshot and at
// most one transaction snapshot.
type Outcome struct {
	Account     models.Account
	Transaction models.Transaction

	// Dropped is set when a withdrawal was skipped because the available
	// balance no longer covered it. Nothing is recorded in that case.
	Dropped bool
}

// Execute computes the new snapshots for a command. It has no side effects.
func Execute(cmd Command) Outcome {
	switch c := cmd.(type) {
	case depositCommand:
		return Outcome{Account: c.account.Deposit(c.transaction), Transaction: c.transaction}
	case withdrawalCommand:
		account, ok := c.account.Withdraw(c.transaction)
		if !ok {
			return Outcome{Account: account, Dropped: true}
		}
		return Outcome{Account: account, Transaction: c.transaction}
	case openDisputeCommand:
		return Outcome{
			Account:     c.account.Hold(c.transaction.Amount()),
			Transaction: c.transaction.OpenDispute(),
		}
	case resolveDisputeCommand:
		return Outcome{
			Account:     c.account.Release(c.transaction.Amount()),
			Transaction: c.transaction.Resolve(),
		}
	case chargebackCommand:
		return Outcome{
			Account:     c.account.ChargeBack(c.transaction.Amount()),
			Transaction: c.transaction.ChargeBack(),
		}
	default:
		panic(fmt.Sprintf("engine: unsupported command type %T", cmd))
	}
}
