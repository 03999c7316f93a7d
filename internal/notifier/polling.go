package notifier

import (
	"net/http"
	"time"

	tele "gopkg.in/telebot.v3"
)

// newPoller picks long polling, or a webhook when a public URL is set. The
// webhook does not listen on its own; WebhookHandler is mounted on the HTTP
// server instead.
func newPoller(publicURL string) (tele.Poller, *tele.Webhook) {
	if publicURL == "" {
		return &tele.LongPoller{Timeout: 30 * time.Second}, nil
	}
	wh := &tele.Webhook{
		Endpoint:       &tele.WebhookEndpoint{PublicURL: publicURL},
		AllowedUpdates: []string{"message"},
	}
	return wh, wh
}

// WebhookHandler returns the handler for incoming updates, or nil in long
// polling mode.
func (t *TelegramNotifier) WebhookHandler() http.Handler {
	if t.webhook == nil {
		return nil
	}
	return t.webhook
}
