package alerts

import (
	"context"
	"fmt"

	"github.com/mamadbah2/smartstore/internal/domain/models"
	client "github.com/mamadbah2/smartstore/pkg/clients/whatsapp"
)

// WhatsAppSink texts alerts at or above a minimum severity to a manager number.
type WhatsAppSink struct {
	client      client.Client
	to          string
	minSeverity models.Severity
}

// NewWhatsAppSink builds a sink sending to the given recipient.
func NewWhatsAppSink(c client.Client, to string, minSeverity models.Severity) *WhatsAppSink {
	if minSeverity == "" {
		minSeverity = models.SeverityWarning
	}
	return &WhatsAppSink{client: c, to: to, minSeverity: minSeverity}
}

// Name identifies the sink in logs.
func (s *WhatsAppSink) Name() string { return "whatsapp" }

// Deliver sends alerts at or above the minimum severity as a text message.
func (s *WhatsAppSink) Deliver(ctx context.Context, alert models.Alert) error {
	if rank(alert.Severity) < rank(s.minSeverity) {
		return nil
	}

	_, err := s.client.SendTextMessage(ctx, client.SendTextMessageRequest{
		To:   s.to,
		Body: FormatText(alert),
	})
	if err != nil {
		return fmt.Errorf("send alert to whatsapp: %w", err)
	}
	return nil
}

func rank(s models.Severity) int {
	switch s {
	case models.SeverityError:
		return 2
	case models.SeverityWarning:
		return 1
	default:
		return 0
	}
}
