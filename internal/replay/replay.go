// Package replay drains a record source into an engine in arrival order.
package replay

import (
	"errors"
	"fmt"
	"io"

	"github.com/ruralpay/payments-engine/internal/engine"
	"github.com/ruralpay/payments-engine/internal/ingest"
	"github.com/ruralpay/payments-engine/internal/models"
)

// Source yields indexed requests until io.EOF. Malformed records are returned
// as *ingest.RecordError; any other error aborts the run.
type Source interface {
	Next() (int, models.Request, error)
}

// Processor applies one request, returning *engine.RejectionError when the
// request is rejected.
type Processor interface {
	Process(index int, req models.Request) error
}

// Reporter receives malformed records.
type Reporter interface {
	Malformed(err *ingest.RecordError)
}

// Summary counts what happened to every record of a run.
type Summary struct {
	Records   int `json:"records"`
	Applied   int `json:"applied"`
	Rejected  int `json:"rejected"`
	Malformed int `json:"malformed"`
}

// Run processes every record from src. It stops early only when src fails.
func Run(src Source, proc Processor, reporter Reporter) (Summary, error) {
	var summary Summary
	for {
		index, req, err := src.Next()
		if errors.Is(err, io.EOF) {
			return summary, nil
		}

		var recErr *ingest.RecordError
		if errors.As(err, &recErr) {
			summary.Records++
			summary.Malformed++
			if reporter != nil {
				reporter.Malformed(recErr)
			}
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("error reading record %d: %w", index, err)
		}

		summary.Records++
		if err := proc.Process(index, req); err != nil {
			var rejection *engine.RejectionError
			if !errors.As(err, &rejection) {
				return summary, fmt.Errorf("error processing record %d: %w", index, err)
			}
			summary.Rejected++
			continue
		}
		summary.Applied++
	}
}
