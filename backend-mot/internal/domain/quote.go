package domain

import (
	"strings"
	"time"
)

// QuoteStatus is the customer's answer to a quote
type QuoteStatus string

const (
	QuotePending  QuoteStatus = "Pending"
	QuoteAccepted QuoteStatus = "Accepted"
	QuoteDeclined QuoteStatus = "Declined"
)

// ParseQuoteStatus matches s case-insensitively and returns the canonical
// spelling
func ParseQuoteStatus(s string) (QuoteStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range []QuoteStatus{QuotePending, QuoteAccepted, QuoteDeclined} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", ErrInvalidQuoteStatus
}

// IsCustomerAnswer reports whether a customer may set s on their own quote
func (s QuoteStatus) IsCustomerAnswer() bool {
	return s == QuoteAccepted || s == QuoteDeclined
}

// Quote is the garage's price for a booking, in pence
type Quote struct {
	ID        int64       `json:"id"`
	BookingID int64       `json:"booking_id"`
	Amount    int64       `json:"amount"`
	Status    QuoteStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// Validate checks the amount and defaults the status
func (q *Quote) Validate() error {
	if q.Amount < 0 {
		return ErrInvalidQuoteAmount
	}
	if q.Status == "" {
		q.Status = QuotePending
	}
	return nil
}
