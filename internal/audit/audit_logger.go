// Package audit is the diagnostic channel for records and requests that had
// no effect on account state.
package audit

import (
	"time"

	"github.com/ruralpay/payments-engine/internal/engine"
	"github.com/ruralpay/payments-engine/internal/ingest"
	"github.com/ruralpay/payments-engine/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	EventMalformed         = "MALFORMED_RECORD"
	EventRejected          = "REQUEST_REJECTED"
	EventWithdrawalDropped = "WITHDRAWAL_DROPPED"
)

type AuditEvent struct {
	Timestamp     time.Time
	EventType     string
	RunID         string
	Index         int
	TransactionID models.TransactionID
	AccountID     models.AccountID
	Details       logrus.Fields
}

// AuditLogger implements engine.Reporter and replay.Reporter.
type AuditLogger struct {
	log   logrus.FieldLogger
	runID string
}

func NewAuditLogger(log logrus.FieldLogger, runID string) *AuditLogger {
	return &AuditLogger{log: log, runID: runID}
}

func (a *AuditLogger) Malformed(err *ingest.RecordError) {
	a.emit(logrus.WarnLevel, AuditEvent{
		EventType: EventMalformed,
		Index:     err.Index,
		Details:   logrus.Fields{"error": err.Err.Error()},
	})
}

func (a *AuditLogger) Rejected(err *engine.RejectionError) {
	reasons := make([]string, len(err.Reasons))
	for i, r := range err.Reasons {
		reasons[i] = string(r)
	}
	a.emit(logrus.WarnLevel, AuditEvent{
		EventType: EventRejected,
		Index:     err.Index,
		Details:   logrus.Fields{"kind": string(err.Kind), "reasons": reasons},
	})
}

func (a *AuditLogger) WithdrawalDropped(index int, tx models.Withdrawal, available models.Amount) {
	a.emit(logrus.InfoLevel, AuditEvent{
		EventType:     EventWithdrawalDropped,
		Index:         index,
		TransactionID: tx.ID(),
		AccountID:     tx.AccountID(),
		Details: logrus.Fields{
			"amount":    tx.Amount().String(),
			"available": available.String(),
		},
	})
}

func (a *AuditLogger) emit(level logrus.Level, event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	fields := logrus.Fields{
		"audit":      true,
		"event_type": event.EventType,
		"index":      event.Index,
		"timestamp":  event.Timestamp,
	}
	if a.runID != "" {
		fields["run_id"] = a.runID
	}
	if event.TransactionID != 0 {
		fields["tx"] = event.TransactionID
	}
	if event.AccountID != 0 {
		fields["client"] = event.AccountID
	}
	for k, v := range event.Details {
		fields[k] = v
	}

	entry := a.log.WithFields(fields)
	switch level {
	case logrus.WarnLevel:
		entry.Warn("audit event")
	default:
		entry.Info("audit event")
	}
}
