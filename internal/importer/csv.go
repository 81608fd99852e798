// Package importer parses transaction rows from bank export files.
//
// Every source produces the same row shape; scoring and persistence happen
// downstream in the engine.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgersage/ledgersage/internal/model"
)

const (
	csvDateLayout = "2006-01-02"
	csvNumFields  = 3
	csvColDate    = 0
	csvColDesc    = 1
	csvColAmount  = 2
)

// ParseCSV reads rows in the form `transdate,desc,amount` with a header row.
// Any malformed row fails the whole parse; imports are all-or-nothing.
func ParseCSV(r io.Reader) ([]model.ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = csvNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	// Header only, or empty file.
	if len(records) <= 1 {
		return nil, nil
	}

	var rows []model.ImportRow
	for i, rec := range records[1:] {
		row, err := parseCSVRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCSVRow(rec []string) (model.ImportRow, error) {
	date, err := time.Parse(csvDateLayout, strings.TrimSpace(rec[csvColDate]))
	if err != nil {
		return model.ImportRow{}, fmt.Errorf("parsing date %q: %w", rec[csvColDate], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(rec[csvColAmount]))
	if err != nil {
		return model.ImportRow{}, fmt.Errorf("parsing amount %q: %w", rec[csvColAmount], err)
	}

	return model.ImportRow{
		Date:        date,
		Description: rec[csvColDesc],
		Amount:      amount,
	}, nil
}
