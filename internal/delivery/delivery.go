package delivery

import (
	"context"

	"github.com/1Levick3/Analyser-chess/internal/config"
	"github.com/1Levick3/Analyser-chess/internal/errors"
	"github.com/1Levick3/Analyser-chess/internal/logger"
)

// Deliverer sends a rendered report to one channel. Implementations own the
// splitting of oversized documents into transport-sized parts; failures are
// reported back as DELIVERY_ERROR and never corrupt the checkpoint.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, document string) error
}

// FromConfig builds the configured delivery channel.
func FromConfig(cfg config.Config) (Deliverer, error) {
	switch cfg.DeliveryChannel {
	case "telegram":
		if cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
			return nil, errors.NewValidationError("TELEGRAM_TOKEN/TELEGRAM_CHAT_ID", "required for telegram delivery")
		}
		return NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, cfg.TelegramMarkdown), nil
	case "email":
		if cfg.EmailFrom == "" || cfg.EmailTo == "" {
			return nil, errors.NewValidationError("EMAIL_FROM/EMAIL_TO", "required for email delivery")
		}
		return NewEmail(cfg.AWSRegion, cfg.EmailFrom, cfg.EmailFromName, cfg.EmailTo)
	case "none", "":
		return NewLogSink(), nil
	default:
		return nil, errors.NewValidationError("DELIVERY_CHANNEL", "must be telegram, email or none")
	}
}

// LogSink writes the document to the log instead of an external channel.
// Useful for dry runs and local development.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink() *LogSink {
	return &LogSink{log: logger.Default().WithPrefix("delivery")}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, document string) error {
	s.log.Info("report (%d bytes):\n%s", len(document), document)
	return nil
}
