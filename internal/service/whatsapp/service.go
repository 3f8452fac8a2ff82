package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/smartstore/internal/config"
	"github.com/mamadbah2/smartstore/internal/domain/models"
	"github.com/mamadbah2/smartstore/internal/service/commands"
	client "github.com/mamadbah2/smartstore/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// ErrEmptyMessage indicates an inbound message carried no text we can read.
var ErrEmptyMessage = errors.New("empty message body")

const unauthorizedReply = "This number is not authorized to run inventory commands."

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Translator turns free text into a slash command.
type Translator interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

// MetaWhatsAppService runs operator commands received over the WhatsApp Cloud API
// and replies to the sender.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	dispatcher commands.Dispatcher
	translator Translator
	operators  map[string]struct{}
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. translator may be nil, in
// which case only literal commands are understood. Only senders listed by
// cfg.Operators may run commands.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, c client.Client, dispatcher commands.Dispatcher, translator Translator, logger *zap.Logger) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	operators := make(map[string]struct{})
	for _, number := range cfg.Operators() {
		operators[normalizeNumber(number)] = struct{}{}
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     c,
		dispatcher: dispatcher,
		translator: translator,
		operators:  operators,
		logger:     logger,
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads. Delivery receipts are ignored.
// Every message is attempted; the first failure is returned.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := strings.TrimSpace(extractMessageText(msg))
	if text == "" {
		return ErrEmptyMessage
	}

	if !s.isOperator(msg.From) {
		s.logger.Warn("command from unknown sender refused", zap.String("from", msg.From))
		return s.send(ctx, msg.From, unauthorizedReply, false)
	}

	cmd := s.resolveCommand(ctx, text)

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		s.logger.Info("command rejected",
			zap.String("from", msg.From),
			zap.String("command", string(cmd.Type)),
			zap.Error(err))
		reply = commands.DescribeError(err)
	} else {
		s.logger.Info("command executed",
			zap.String("from", msg.From),
			zap.String("command", string(cmd.Type)),
			zap.Strings("args", cmd.Args))
	}

	return s.send(ctx, msg.From, reply, false)
}

// resolveCommand parses text, falling back to the translator for free text.
func (s *MetaWhatsAppService) resolveCommand(ctx context.Context, text string) models.Command {
	cmd := models.ParseCommand(text)
	if cmd.Type != models.CommandUnknown || s.translator == nil {
		return cmd
	}

	translated, err := s.translator.TranslateToCommand(ctx, text)
	if err != nil {
		s.logger.Debug("free text not translated", zap.Error(err))
		return cmd
	}

	s.logger.Debug("free text translated", zap.String("input", text), zap.String("command", translated))
	return models.ParseCommand(translated)
}

// SendOutbound lets internal operators push quick notifications via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	return s.send(ctx, req.To, req.Message, req.PreviewURL)
}

func (s *MetaWhatsAppService) send(ctx context.Context, to, body string, previewURL bool) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:         to,
		Body:       body,
		PreviewURL: previewURL,
	})
	if err != nil {
		return fmt.Errorf("send message to %s: %w", to, err)
	}
	return nil
}

func (s *MetaWhatsAppService) isOperator(from string) bool {
	_, ok := s.operators[normalizeNumber(from)]
	return ok
}

// normalizeNumber keeps only digits, so "+224 620-00-00" matches the "22462000000" senders arrive as.
func normalizeNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
