package services

import (
	"time"

	"github.com/ruralpay/payments-engine/internal/audit"
	"github.com/ruralpay/payments-engine/internal/engine"
	"github.com/ruralpay/payments-engine/internal/ingest"
	"github.com/ruralpay/payments-engine/internal/models"
	"github.com/ruralpay/payments-engine/internal/replay"
	"github.com/ruralpay/payments-engine/internal/report"
)

// RunResult is the outcome of replaying one uploaded CSV.
type RunResult struct {
	RunID      string          `json:"runId"`
	Summary    replay.Summary  `json:"summary"`
	Accounts   []report.Row    `json:"accounts"`
	Rejections []RejectionView `json:"rejections"`
	Malformed  []MalformedView `json:"malformed"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type RejectionView struct {
	Index   int      `json:"index"`
	Kind    string   `json:"kind"`
	Reasons []string `json:"reasons"`
}

type MalformedView struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// runRecorder keeps the diagnostics of a run for the response and forwards
// them to the audit log.
type runRecorder struct {
	audit      *audit.AuditLogger
	rejections []RejectionView
	malformed  []MalformedView
}

func newRunRecorder(a *audit.AuditLogger) *runRecorder {
	return &runRecorder{
		audit:      a,
		rejections: []RejectionView{},
		malformed:  []MalformedView{},
	}
}

func (r *runRecorder) Rejected(err *engine.RejectionError) {
	reasons := make([]string, len(err.Reasons))
	for i, reason := range err.Reasons {
		reasons[i] = string(reason)
	}
	r.rejections = append(r.rejections, RejectionView{Index: err.Index, Kind: string(err.Kind), Reasons: reasons})
	r.audit.Rejected(err)
}

func (r *runRecorder) WithdrawalDropped(index int, tx models.Withdrawal, available models.Amount) {
	r.audit.WithdrawalDropped(index, tx, available)
}

func (r *runRecorder) Malformed(err *ingest.RecordError) {
	r.malformed = append(r.malformed, MalformedView{Index: err.Index, Error: err.Err.Error()})
	r.audit.Malformed(err)
}
