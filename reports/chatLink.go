package reports

import (
	"net/url"
	"strings"

	"github.com/maluks/consignment_backend/config"
	"github.com/maluks/consignment_backend/models"
	"github.com/maluks/consignment_backend/utils"
)

const chatBaseURL = "https://wa.me/"

// BuildChatLink returns a chat deep link for phone with text pre-filled.
// The phone is normalised to international digits; numbers without a country code use CHAT_DEFAULT_REGION.
func BuildChatLink(phone string, text string) (string, error) {
	digits, err := utils.NormalizePhone(phone, config.ChatDefaultRegion())
	if err != nil {
		return "", models.NewValidationError("invalid phone number %q: %v", phone, err)
	}
	link := chatBaseURL + digits
	if text = strings.TrimSpace(text); text != "" {
		// spaces as %20, the way chat clients expect them
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	}
	return link, nil
}

// NoteChatSummary is the message sent to a seller about one note: totals, then open installments.
func NoteChatSummary(sellerName string, note *models.ConsignmentNoteDetail) string {
	var sb strings.Builder
	balance := note.Balance

	if sellerName != "" {
		sb.WriteString("Olá, " + sellerName + "!\n")
	}
	sb.WriteString("Resumo da nota " + note.Number + " (" + formatDate(note.IssueDate) + ")\n")
	sb.WriteString("Total original: " + FormatMoney(balance.OriginalTotal) + "\n")
	sb.WriteString("Devolvido: " + FormatMoney(balance.ReturnedValue) + "\n")
	sb.WriteString("Vendido: " + FormatMoney(balance.SoldValue()) + "\n")
	sb.WriteString("Pago: " + FormatMoney(balance.TotalPaid) + "\n")
	sb.WriteString("Saldo: " + FormatMoney(balance.OutstandingBalance))

	for _, inst := range note.Installments {
		if inst.IsPaid {
			continue
		}
		sb.WriteString(printer.Sprintf("\nParcela %d - venc. %s - %s", inst.SequenceNo, formatOptionalDate(inst.DueDate), FormatMoney(inst.Amount.Sub(inst.PaidAmount))))
	}
	return sb.String()
}
