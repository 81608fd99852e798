package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseOFX(t *testing.T) {
	rows, err := ParseOFX(strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "STARBUCKS STORE #1234", rows[0].Description)
	assert.True(t, rows[0].Amount.Equal(decimal.RequireFromString("-25.50")),
		"amount = %s", rows[0].Amount)
	assert.Equal(t, 2024, rows[0].Date.Year())
	assert.Equal(t, "Whole Foods Market", rows[1].Description)
}

func TestParseOFXMixedCaseSeverity(t *testing.T) {
	content := strings.ReplaceAll(sampleBankOFX, "<SEVERITY>INFO", "<SEVERITY>Info</SEVERITY>")

	rows, err := ParseOFX(strings.NewReader(content))
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParseOFXGarbage(t *testing.T) {
	_, err := ParseOFX(strings.NewReader("not an ofx file"))
	assert.Error(t, err)
}
