package engine

import "github.com/ruralpay/payments-engine/internal/models"

// Command is a fully validated request. It carries every snapshot needed to
// execute it, so execution never fails for business reasons. Commands are
// only built by Validate.
type Command interface {
	command()
}

type depositCommand struct {
	transaction models.Deposit
	account     models.ActiveAccount
}

type withdrawalCommand struct {
	transaction models.Withdrawal
	account     models.ActiveAccount
}

type openDisputeCommand struct {
	transaction models.Deposit
	account     models.ActiveAccount
}

type resolveDisputeCommand struct {
	transaction models.DisputedDeposit
	account     models.ActiveAccount
}

type chargebackCommand struct {
	transaction models.DisputedDeposit
	account     models.ActiveAccount
}

func (depositCommand) command()        {}
func (withdrawalCommand) command()     {}
func (openDisputeCommand) command()    {}
func (resolveDisputeCommand) command() {}
func (chargebackCommand) command()     {}
