package telegram

import (
	"fmt"
	"time"

	coreconfig "github.com/m3rciful/mediareq/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultPollTimeout = 10 * time.Second

// PollTimeout returns the configured long poll timeout.
func PollTimeout(cfg coreconfig.TelegramConfig) time.Duration {
	if cfg.LongPollTimeoutSeconds <= 0 {
		return defaultPollTimeout
	}
	return time.Duration(cfg.LongPollTimeoutSeconds) * time.Second
}

// BuildPoller returns a webhook or long poller for the configured run mode.
// The configuration is expected to be normalized.
func BuildPoller(cfg *coreconfig.Config) tele.Poller {
	if cfg.Telegram.RunMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	return &tele.LongPoller{Timeout: PollTimeout(cfg.Telegram)}
}
