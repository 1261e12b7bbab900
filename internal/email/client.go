// Package email defines the interface for alert email delivery and provides a
// Resend-backed implementation.
package email

import (
	"context"
	"time"
)

// HighLevelAlertParams holds the data for the counsellor alert sent when a
// submission is classified high.
type HighLevelAlertParams struct {
	To           string // counsellor / admin inbox
	StudentName  string
	StudentEmail string
	SubmissionID string
	Total        int
	MaxTotal     int
	ModelLabel   string // model verdict; may equal the rule label
	ModelSource  string // "model" or "rule"
	SubmittedAt  time.Time
}

// Sender is the interface the alert observer uses to send email.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	SendHighLevelAlert(ctx context.Context, p HighLevelAlertParams) error
}

// noopSender discards every message. Used when RESEND_API_KEY is unset.
type noopSender struct{}

// NewNoopSender returns a Sender that does nothing.
func NewNoopSender() Sender { return noopSender{} }

func (noopSender) SendHighLevelAlert(context.Context, HighLevelAlertParams) error { return nil }
