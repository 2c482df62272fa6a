// Package ingest turns CSV operation records into engine requests.
//
// The expected header is "type,client,tx,amount". Whitespace around every
// field is ignored and the amount column may be left out entirely for
// dispute, resolve and chargeback records. Type tags are lower case.
// Amounts are plain decimals without exponent, truncated to four fractional
// digits.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ruralpay/payments-engine/internal/models"
)

// ErrMissingColumn is returned when the header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// RecordError describes a malformed record. Reading can continue after it.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Record is one CSV row after trimming.
type Record struct {
	Type   string `validate:"required,oneof=deposit withdrawal dispute resolve chargeback"`
	Client string `validate:"required,numeric"`
	Tx     string `validate:"required,numeric"`
	Amount string `validate:"required_if=Type deposit,required_if=Type withdrawal,omitempty,numeric"`
}

type columns struct {
	kind, client, tx, amount int
}

// Reader yields requests from a CSV stream in file order.
type Reader struct {
	csv      *csv.Reader
	validate *validator.Validate
	cols     columns
	index    int
	done     bool
}

// NewReader reads the header from r. An empty input yields a reader with no
// records.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	reader := &Reader{csv: cr, validate: validator.New()}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		reader.done = true
		return reader, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}
	reader.cols = cols
	return reader, nil
}

func parseHeader(header []string) (columns, error) {
	cols := columns{kind: -1, client: -1, tx: -1, amount: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "type":
			cols.kind = i
		case "client":
			cols.client = i
		case "tx":
			cols.tx = i
		case "amount":
			cols.amount = i
		}
	}
	for name, idx := range map[string]int{"type": cols.kind, "client": cols.client, "tx": cols.tx} {
		if idx < 0 {
			return cols, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

// Next returns the next request and its zero-based record index. It returns
// io.EOF after the last record and a *RecordError for a malformed record;
// any other error comes from the underlying stream and is fatal.
func (r *Reader) Next() (int, models.Request, error) {
	if r.done {
		return 0, nil, io.EOF
	}

	fields, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		r.done = true
		return 0, nil, io.EOF
	}

	index := r.index
	r.index++

	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return index, nil, &RecordError{Index: index, Err: err}
	}
	if err != nil {
		return index, nil, err
	}

	req, err := r.parse(fields)
	if err != nil {
		return index, nil, &RecordError{Index: index, Err: err}
	}
	return index, req, nil
}

func (r *Reader) parse(fields []string) (models.Request, error) {
	rec := Record{
		Type:   field(fields, r.cols.kind),
		Client: field(fields, r.cols.client),
		Tx:     field(fields, r.cols.tx),
		Amount: field(fields, r.cols.amount),
	}
	if err := r.validate.Struct(&rec); err != nil {
		return nil, describe(err)
	}
	return rec.Request()
}

// Request converts a validated record into its typed request.
func (rec Record) Request() (models.Request, error) {
	client, err := strconv.ParseUint(rec.Client, 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid client %q: %w", rec.Client, err)
	}
	tx, err := strconv.ParseUint(rec.Tx, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid tx %q: %w", rec.Tx, err)
	}
	accountID, txID := models.AccountID(client), models.TransactionID(tx)

	switch models.RequestKind(rec.Type) {
	case models.KindDeposit, models.KindWithdrawal:
		amount, err := models.ParseAmount(rec.Amount)
		if err != nil {
			return nil, err
		}
		if rec.Type == string(models.KindDeposit) {
			return models.DepositRequest{AccountID: accountID, TransactionID: txID, Amount: amount}, nil
		}
		return models.WithdrawalRequest{AccountID: accountID, TransactionID: txID, Amount: amount}, nil
	case models.KindDispute:
		return models.DisputeRequest{TransactionID: txID}, nil
	case models.KindResolve:
		return models.ResolveRequest{TransactionID: txID}, nil
	case models.KindChargeback:
		return models.ChargebackRequest{TransactionID: txID}, nil
	}
	return nil, fmt.Errorf("unknown operation type %q", rec.Type)
}

func field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("field %s failed on '%s'", strings.ToLower(fe.Field()), fe.Tag())
	}
	return errors.New(strings.Join(msgs, "; "))
}
