package models

// RequestKind is the operation type tag of a raw request.
type RequestKind string

const (
	KindDeposit    RequestKind = "deposit"
	KindWithdrawal RequestKind = "withdrawal"
	KindDispute    RequestKind = "dispute"
	KindResolve    RequestKind = "resolve"
	KindChargeback RequestKind = "chargeback"
)

// Request is a raw, not yet validated operation request.
type Request interface {
	Kind() RequestKind

	request()
}

type DepositRequest struct {
	AccountID     AccountID
	TransactionID TransactionID
	Amount        Amount
}

type WithdrawalRequest struct {
	AccountID     AccountID
	TransactionID TransactionID
	Amount        Amount
}

type DisputeRequest struct {
	TransactionID TransactionID
}

type ResolveRequest struct {
	TransactionID TransactionID
}

type ChargebackRequest struct {
	TransactionID TransactionID
}

func (DepositRequest) Kind() RequestKind    { return KindDeposit }
func (WithdrawalRequest) Kind() RequestKind { return KindWithdrawal }
func (DisputeRequest) Kind() RequestKind    { return KindDispute }
func (ResolveRequest) Kind() RequestKind    { return KindResolve }
func (ChargebackRequest) Kind() RequestKind { return KindChargeback }

func (DepositRequest) request()    {}
func (WithdrawalRequest) request() {}
func (DisputeRequest) request()    {}
func (ResolveRequest) request()    {}
func (ChargebackRequest) request() {}
