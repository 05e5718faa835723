package model

import "time"

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "PAID"
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPending PaymentStatus = "PENDING"
	PaymentFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) String() string { return string(s) }

func (s PaymentStatus) Valid() bool {
	return s == PaymentPaid || s == PaymentUnpaid || s == PaymentPending || s == PaymentFailed
}

type LeadPayment struct {
	Status        PaymentStatus `firestore:"status"        json:"status"`
	Amount        float64       `firestore:"amount"        json:"amount"`
	Currency      string        `firestore:"currency"      json:"currency,omitempty"`
	Method        string        `firestore:"method"        json:"method,omitempty"`
	TransactionID string        `firestore:"transactionId" json:"transaction_id,omitempty"`
}

// Lead is a document of the "leads" collection written by the web funnel.
type Lead struct {
	ID        string      `firestore:"-"         json:"id"`
	Name      string      `firestore:"name"      json:"name"`
	Phone     string      `firestore:"phone"     json:"phone"`
	Email     string      `firestore:"email"     json:"email,omitempty"`
	Source    string      `firestore:"source"    json:"source"`
	Category  string      `firestore:"category"  json:"category,omitempty"`
	Status    string      `firestore:"status"    json:"status,omitempty"` // NEW|CONTACTED|SCHEDULED|COMPLETED|CANCELLED
	Payment   LeadPayment `firestore:"payment"   json:"payment"`
	CreatedAt time.Time   `firestore:"createdAt" json:"created_at"`
}

// PaymentLabel returns the payment status or "N/A" when the lead has none.
func (l Lead) PaymentLabel() string {
	if l.Payment.Status == "" {
		return "N/A"
	}
	return l.Payment.Status.String()
}

// LeadStats aggregates the leads collection by payment status.
type LeadStats struct {
	Total   int     `json:"total"`
	Paid    int     `json:"paid"`
	Unpaid  int     `json:"unpaid"`
	Pending int     `json:"pending"`
	Failed  int     `json:"failed"`
	Revenue float64 `json:"revenue"`
}

// Add folds one lead into the stats.
func (s *LeadStats) Add(l Lead) {
	s.Total++
	switch l.Payment.Status {
	case PaymentPaid:
		s.Paid++
		s.Revenue += l.Payment.Amount
	case PaymentUnpaid:
		s.Unpaid++
	case PaymentPending:
		s.Pending++
	case PaymentFailed:
		s.Failed++
	}
}
