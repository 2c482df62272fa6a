package engine

import (
	"fmt"
	"strings"

	"github.com/ruralpay/payments-engine/internal/models"
)

// Reason is a business rule violated by a request. Reasons are comparable
// with errors.Is.
type Reason string

const (
	ReasonAccountNotFound               Reason = "AccountNotFound"
	ReasonAccountFrozen                 Reason = "AccountFrozen"
	ReasonNegativeAmount                Reason = "NegativeAmount"
	ReasonDuplicateTransactionID        Reason = "DuplicateTransactionId"
	ReasonTransactionNotFound           Reason = "TransactionNotFound"
	ReasonTransactionNotInDepositState  Reason = "TransactionNotInDepositState"
	ReasonTransactionNotInDisputedState Reason = "TransactionNotInDisputedState"
)

func (r Reason) Error() string { return string(r) }

// RejectionError reports a request that failed validation. Stores are left
// untouched by a rejected request.
type RejectionError struct {
	Index   int
	Kind    models.RequestKind
	Reasons []Reason
}

func (e *RejectionError) Error() string {
	reasons := make([]string, len(e.Reasons))
	for i, r := range e.Reasons {
		reasons[i] = string(r)
	}
	return fmt.Sprintf("request %d (%s) rejected: %s", e.Index, e.Kind, strings.Join(reasons, ", "))
}

func (e *RejectionError) Unwrap() []error {
	errs := make([]error, len(e.Reasons))
	for i, r := range e.Reasons {
		errs[i] = r
	}
	return errs
}
