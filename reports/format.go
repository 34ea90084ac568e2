package reports

import (
	"strings"
	"time"

	"github.com/maluks/consignment_backend/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatMoney renders an amount as BRL, e.g. "R$ 1.234,50".
// Rounding is decimal-exact, half away from zero.
func FormatMoney(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, cents := fixed[:len(fixed)-3], fixed[len(fixed)-2:]

	var sb strings.Builder
	sb.WriteString("R$ ")
	sb.WriteString(sign)
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(digit)
	}
	sb.WriteByte(',')
	sb.WriteString(cents)
	return sb.String()
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func originLabel(origin models.StockOrigin) string {
	if origin == models.StockOriginFactory {
		return "Fábrica"
	}
	return "Loja"
}

func statusLabel(status models.ConsignmentStatus) string {
	switch status {
	case models.ConsignmentStatusClosed:
		return "Fechada"
	case models.ConsignmentStatusCancelled:
		return "Cancelada"
	default:
		return "Aberta"
	}
}
