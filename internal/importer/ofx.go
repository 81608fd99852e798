package importer

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/ledgersage/ledgersage/internal/model"
)

var severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)

// preprocessOFX fixes common formatting issues in bank OFX exports before
// handing them to the parser.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Some banks emit mixed-case SEVERITY values; the parser wants upper.
	return severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
}

// ParseOFX reads an OFX/QFX statement and returns its transactions as
// import rows. Bank and credit card statements are both handled.
func ParseOFX(r io.Reader) ([]model.ImportRow, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("parsing OFX file: %w", err)
	}

	var rows []model.ImportRow

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			for _, ofxTx := range stmt.BankTranList.Transactions {
				rows = append(rows, convertOFXTransaction(ofxTx))
			}
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			for _, ofxTx := range stmt.BankTranList.Transactions {
				rows = append(rows, convertOFXTransaction(ofxTx))
			}
		}
	}

	return rows, nil
}

func convertOFXTransaction(ofxTx ofxgo.Transaction) model.ImportRow {
	return model.ImportRow{
		Date:        ofxTx.DtPosted.Time,
		Description: ofxDescription(ofxTx),
		Amount:      decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2),
	}
}

// ofxDescription picks the most descriptive text available for matching.
func ofxDescription(ofxTx ofxgo.Transaction) string {
	if ofxTx.Payee != nil && ofxTx.Payee.Name != "" {
		return strings.TrimSpace(string(ofxTx.Payee.Name))
	}

	name := strings.TrimSpace(string(ofxTx.Name))
	if name == "" {
		name = strings.TrimSpace(string(ofxTx.Memo))
	}
	return name
}
