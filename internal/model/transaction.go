package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single financial transaction belonging to a project.
type Transaction struct {
	Date           time.Time
	ID             string
	ProjectID      string
	Description    string
	Category       string
	SourceAcc      string
	DestinationAcc string
	Amount         decimal.Decimal
	Score          decimal.NullDecimal
}

// Scored reports whether the transaction has been through a matching pass.
// An unscored transaction carries a null score, never zero.
func (t *Transaction) Scored() bool {
	return t.Score.Valid
}

// ImportRow is a raw transaction row as parsed from an import source,
// before categorization and persistence.
type ImportRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}
