// Package report renders the final account snapshot.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ruralpay/payments-engine/internal/models"
)

// Header is the first line of the CSV report.
var Header = []string{"client", "available", "held", "total", "locked"}

// Row is one account in the report.
type Row struct {
	Client    models.AccountID `json:"client"`
	Available models.Amount    `json:"available"`
	Held      models.Amount    `json:"held"`
	Total     models.Amount    `json:"total"`
	Locked    bool             `json:"locked"`
}

// Rows builds report rows ordered by client id.
func Rows(accounts []models.Account) []Row {
	rows := make([]Row, 0, len(accounts))
	for _, acc := range accounts {
		rows = append(rows, Row{
			Client:    acc.ID(),
			Available: acc.Available(),
			Held:      acc.Held(),
			Total:     acc.Total(),
			Locked:    acc.Locked(),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Client < rows[j].Client })
	return rows
}

// WriteCSV writes the header followed by one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("error writing report header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.Client), 10),
			row.Available.String(),
			row.Held.String(),
			row.Total.String(),
			strconv.FormatBool(row.Locked),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("error writing report row for client %d: %w", row.Client, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
