package models

// TransactionID is unique across every transaction kind for a whole run.
type TransactionID uint32

// TransactionState names the lifecycle stage of a stored transaction.
type TransactionState string

const (
	StateDeposit            TransactionState = "deposit"
	StateDisputedDeposit    TransactionState = "disputed_deposit"
	StateChargedBackDeposit TransactionState = "charged_back_deposit"
	StateWithdrawal         TransactionState = "withdrawal"
)

// Transaction is the latest snapshot of a recorded transaction. The
// implementations are Deposit, DisputedDeposit, ChargedBackDeposit and
// Withdrawal.
type Transaction interface {
	ID() TransactionID
	AccountID() AccountID
	Amount() Amount
	State() TransactionState

	transaction()
}

type record struct {
	id        TransactionID
	accountID AccountID
	amount    Amount
}

func (r record) ID() TransactionID    { return r.id }
func (r record) AccountID() AccountID { return r.accountID }
func (r record) Amount() Amount       { return r.amount }

// Deposit is a deposit with no open dispute.
type Deposit struct{ record }

func NewDeposit(id TransactionID, accountID AccountID, amount Amount) Deposit {
	return Deposit{record{id: id, accountID: accountID, amount: amount}}
}

func (Deposit) State() TransactionState { return StateDeposit }
func (Deposit) transaction()            {}

// OpenDispute starts a dispute on the deposit.
func (d Deposit) OpenDispute() DisputedDeposit { return DisputedDeposit(d) }

// DisputedDeposit is a deposit whose funds are held pending a decision.
type DisputedDeposit struct{ record }

func (DisputedDeposit) State() TransactionState { return StateDisputedDeposit }
func (DisputedDeposit) transaction()            {}

// Resolve closes the dispute and returns the deposit to its plain state.
func (d DisputedDeposit) Resolve() Deposit { return Deposit(d) }

// ChargeBack closes the dispute by reversing the deposit.
func (d DisputedDeposit) ChargeBack() ChargedBackDeposit { return ChargedBackDeposit(d) }

// ChargedBackDeposit is terminal.
type ChargedBackDeposit struct{ record }

func (ChargedBackDeposit) State() TransactionState { return StateChargedBackDeposit }
func (ChargedBackDeposit) transaction()            {}

// Withdrawal is terminal on creation.
type Withdrawal struct{ record }

func NewWithdrawal(id TransactionID, accountID AccountID, amount Amount) Withdrawal {
	return Withdrawal{record{id: id, accountID: accountID, amount: amount}}
}

func (Withdrawal) State() TransactionState { return StateWithdrawal }
func (Withdrawal) transaction()            {}
