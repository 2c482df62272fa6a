// Command replay applies a CSV file of operations and prints the final state
// of every client account as CSV on stdout.
//
//	replay transactions.csv > accounts.csv
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/ruralpay/payments-engine/internal/audit"
	"github.com/ruralpay/payments-engine/internal/config"
	"github.com/ruralpay/payments-engine/internal/engine"
	"github.com/ruralpay/payments-engine/internal/ingest"
	"github.com/ruralpay/payments-engine/internal/replay"
	"github.com/ruralpay/payments-engine/internal/report"
	"github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <transactions.csv>\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	log := config.NewLogger(cfg.Log, os.Stderr)

	if err := run(os.Args[1], log); err != nil {
		log.WithError(err).Error("Replay failed")
		os.Exit(1)
	}
}

func run(path string, log logrus.FieldLogger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	reader, err := ingest.NewReader(bufio.NewReader(f))
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	auditor := audit.NewAuditLogger(log.WithField("file", path), runID)
	eng := engine.New(engine.WithReporter(auditor))

	summary, err := replay.Run(reader, eng, auditor)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	if err := report.WriteCSV(out, report.Rows(eng.Accounts())); err != nil {
		return err
	}
	if err := out.Flush(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"run_id":    runID,
		"records":   summary.Records,
		"applied":   summary.Applied,
		"rejected":  summary.Rejected,
		"malformed": summary.Malformed,
	}).Debug("Replay finished")
	return nil
}
