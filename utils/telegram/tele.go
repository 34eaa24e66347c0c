// Package telegram renders the Portuguese HTML messages the bots send.
package telegram

import (
	"html"
	"time"

	"github.com/leekchan/accounting"

	"access-system/utils/helpers"
)

const dateLayout = "02/01/2006"
const dateTimeLayout = "02/01/2006 15:04"

var brl = newBRL()

func newBRL() *accounting.Accounting {
	ac := accounting.DefaultAccounting("R$ ", 2)
	ac.Thousand = "."
	ac.Decimal = ","
	return ac
}

// FormatBRL renders an amount in centavos, e.g. 123456 -> "R$ 1.234,56".
func FormatBRL(centavos int64) string {
	return brl.FormatMoney(float64(centavos) / 100)
}

// FormatDate renders t as a calendar day in the São Paulo timezone.
func FormatDate(t time.Time) string {
	return t.In(helpers.LocationSaoPaulo()).Format(dateLayout)
}

func FormatDateTime(t time.Time) string {
	return t.In(helpers.LocationSaoPaulo()).Format(dateTimeLayout)
}

// Escape makes catalogue text safe inside HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}
