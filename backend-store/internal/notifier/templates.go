package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
)

// OrderConfirmation is sent to the buyer when an order is placed
func OrderConfirmation(to string, o *domain.Order, currency string) *Email {
	subject := fmt.Sprintf("Order #%d confirmed", o.ID)
	lines := orderLines(o, currency)
	return &Email{
		To:       to,
		Subject:  subject,
		BodyText: fmt.Sprintf("Thanks for your order.\n\n%s\nTotal: %s %s\n", strings.Join(lines, "\n"), o.Total.StringFixed(2), strings.ToUpper(currency)),
		BodyHTML: fmt.Sprintf("<p>Thanks for your order.</p><ul>%s</ul><p><strong>Total: %s %s</strong></p>", htmlList(lines), o.Total.StringFixed(2), strings.ToUpper(currency)),
	}
}

// PaymentReceipt is sent to the buyer when a payment succeeds
func PaymentReceipt(to string, o *domain.Order, p *domain.Payment) *Email {
	subject := fmt.Sprintf("Receipt for order #%d", o.ID)
	amount := p.Amount.StringFixed(2) + " " + strings.ToUpper(p.Currency)
	return &Email{
		To:       to,
		Subject:  subject,
		BodyText: fmt.Sprintf("We received your payment of %s.\nTransaction: %s\n", amount, p.TransactionID),
		BodyHTML: fmt.Sprintf("<p>We received your payment of <strong>%s</strong>.</p><p>Transaction: %s</p>", amount, html.EscapeString(p.TransactionID)),
	}
}

func orderLines(o *domain.Order, currency string) []string {
	lines := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("%d x product #%d @ %s = %s %s",
			it.Quantity, it.ProductID, it.UnitPrice.StringFixed(2), it.LineTotal.StringFixed(2), strings.ToUpper(currency)))
	}
	return lines
}

func htmlList(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("<li>")
		b.WriteString(html.EscapeString(l))
		b.WriteString("</li>")
	}
	return b.String()
}
