package alerting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"ge-price-monitor/internal/logging"
	"ge-price-monitor/internal/quote"
)

// Notification carries one fired threshold to a delivery channel.
type Notification struct {
	SessionID string
	ItemID    int
	ItemName  string
	Rule      Rule
	Price     int64
	Quote     quote.Quote
	IconPath  string
	Timeout   time.Duration
	FiredAt   time.Time
}

// NewNotification builds a notification from a trigger.
func NewNotification(sessionID, itemName string, q quote.Quote, t Trigger) Notification {
	return Notification{
		SessionID: sessionID,
		ItemID:    q.ItemID,
		ItemName:  itemName,
		Rule:      t.Rule,
		Price:     t.Price,
		Quote:     q,
		FiredAt:   time.Now().UTC(),
	}
}

// Title is the short heading shown by every channel.
func (n Notification) Title() string {
	return fmt.Sprintf("%s Price Alert", n.ItemName)
}

// Message is the single-line body shown by every channel.
func (n Notification) Message() string {
	return Trigger{Rule: n.Rule, Price: n.Price}.Message()
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier pushes messages through the Telegram Bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	client   *resty.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier constructs a Telegram notifier.
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		client:   client,
		logger:   logging.Component(logger, "alert_telegram"),
	}
}

// Notify calls sendMessage with the rendered alert.
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetPathParam("token", n.botToken).
		SetBody(map[string]string{
			"chat_id": n.chatID,
			"text":    renderMessage(note),
		}).
		ForceContentType("application/json").
		SetResult(&result).
		SetError(&result).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("telegram unexpected status: %d", resp.StatusCode())
	}
	if !result.OK {
		if result.Description != "" {
			return fmt.Errorf("telegram returned ok=false: %s", result.Description)
		}
		return errors.New("telegram returned ok=false")
	}

	n.logger.Info().Int("item_id", note.ItemID).
		Str("rule", note.Rule.Name).
		Msg("alert sent (telegram)")
	return nil
}

func renderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("[%s]\n", note.Title()))
	builder.WriteString(note.Message())
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Low: %s coins\n", quote.FormatPrice(note.Quote.Low)))
	builder.WriteString(fmt.Sprintf("High: %s coins\n", quote.FormatPrice(note.Quote.High)))
	builder.WriteString(fmt.Sprintf("Target: %s coins (%s)\n", quote.FormatCoins(note.Rule.Target), note.Rule.Name))
	if !note.FiredAt.IsZero() {
		builder.WriteString(fmt.Sprintf("At: %s UTC\n", note.FiredAt.UTC().Format(time.RFC3339)))
	}
	return builder.String()
}

// LogNotifier writes alerts to the structured log.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier constructs a log-only notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logging.Component(logger, "alert_log")}
}

// Notify logs the alert at warn level.
func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	n.logger.Warn().
		Str("session", note.SessionID).
		Int("item_id", note.ItemID).
		Str("item", note.ItemName).
		Str("rule", note.Rule.Name).
		Int64("price", note.Price).
		Int64("target", note.Rule.Target).
		Msg(note.Message())
	return nil
}

// Multi fans a notification out to every channel, collecting failures.
type Multi []Notifier

// Notify delivers to all channels even if some fail.
func (m Multi) Notify(ctx context.Context, note Notification) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = Multi(nil)
)
