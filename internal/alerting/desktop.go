package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"ge-price-monitor/internal/logging"
)

// SendFunc delivers one OS notification.
type SendFunc func(title, message, iconPath string) error

// DesktopNotifier raises an OS-level notification.
type DesktopNotifier struct {
	send    SendFunc
	timeout time.Duration
	logger  zerolog.Logger
}

// NewDesktopNotifier constructs a notifier backed by the OS notification service.
func NewDesktopNotifier(timeout time.Duration, logger zerolog.Logger) *DesktopNotifier {
	return newDesktopNotifier(beeep.Notify, timeout, logger)
}

func newDesktopNotifier(send SendFunc, timeout time.Duration, logger zerolog.Logger) *DesktopNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DesktopNotifier{
		send:    send,
		timeout: timeout,
		logger:  logging.Component(logger, "alert_desktop"),
	}
}

// Notify shows the alert. The OS decides expiry; timeout bounds how long we wait for delivery.
func (d *DesktopNotifier) Notify(ctx context.Context, note Notification) error {
	timeout := d.timeout
	if note.Timeout > 0 {
		timeout = note.Timeout
	}

	done := make(chan error, 1)
	go func() {
		done <- d.send(note.Title(), note.Message(), note.IconPath)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("desktop notification timed out after %s", timeout)
	case err := <-done:
		if err != nil {
			return fmt.Errorf("desktop notification: %w", err)
		}
	}

	d.logger.Info().Int("item_id", note.ItemID).Str("rule", note.Rule.Name).Msg("alert sent (desktop)")
	return nil
}

var _ Notifier = (*DesktopNotifier)(nil)
