// Package statement reads and validates transaction CSV exports.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dvloznov/spendwise/internal/domain"
	"github.com/shopspring/decimal"
)

// Columns is the required header, in order.
var Columns = []string{"Date", "Description", "Amount"}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-Jan-2006",
	"Jan 2, 2006",
}

// Parse validates the header and every row, returning transactions in file
// order. Any structural problem rejects the whole file with a
// *ValidationError; no transaction is returned in that case.
func Parse(r io.Reader) ([]domain.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ValidationError{Kind: KindEmptyFile, Message: "CSV file is empty."}
	}
	if err != nil {
		return nil, malformed(err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var txs []domain.Transaction
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(err)
		}
		if isBlank(record) {
			row--
			continue
		}
		if len(record) != len(Columns) {
			return nil, &ValidationError{
				Kind:    KindColumnCount,
				Row:     row,
				Message: fmt.Sprintf("CSV must have exactly 3 columns. Found %d columns in row %d.", len(record), row),
			}
		}

		tx, err := parseRecord(record, row)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	if len(txs) == 0 {
		return nil, &ValidationError{Kind: KindEmptyFile, Message: "CSV file is empty."}
	}
	return txs, nil
}

func validateHeader(header []string) error {
	if len(header) != len(Columns) {
		return &ValidationError{
			Kind:    KindColumnCount,
			Message: fmt.Sprintf("CSV must have exactly 3 columns. Found %d columns.", len(header)),
		}
	}
	for i, column := range Columns {
		field := strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
		if !strings.EqualFold(column, field) {
			return &ValidationError{
				Kind: KindColumnNames,
				Message: fmt.Sprintf("CSV columns must be: %s. Found: %s",
					strings.Join(Columns, ", "), strings.Join(header, ", ")),
			}
		}
	}
	return nil
}

func parseRecord(record []string, row int) (domain.Transaction, error) {
	date, err := ParseDate(record[0])
	if err != nil {
		return domain.Transaction{}, invalidData(KindInvalidDate, row, err)
	}

	amount, err := ParseAmount(record[2])
	if err != nil {
		return domain.Transaction{}, invalidData(KindInvalidAmount, row, err)
	}

	return domain.Transaction{
		Date:        date,
		Description: record[1],
		Amount:      amount,
	}, nil
}

// ParseDate accepts the supported layouts and returns the calendar date at
// UTC midnight. Any time of day is dropped.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseAmount parses a signed decimal amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unrecognized amount %q", s)
	}
	return d, nil
}

func malformed(err error) *ValidationError {
	return &ValidationError{
		Kind:    KindMalformed,
		Message: fmt.Sprintf("Error processing file: %v", err),
		Err:     err,
	}
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
