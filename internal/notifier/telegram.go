package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Options configures the Telegram bot.
type Options struct {
	Token  string
	ChatID string
	// WebhookURL switches from long polling to a webhook served at /webhook.
	WebhookURL string
	Proxy      string
	// Offline skips the startup getMe call.
	Offline bool
}

// sender is the part of *tele.Bot used for pushes.
type sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramNotifier pushes messages to one chat and serves bot commands.
type TelegramNotifier struct {
	bot     *tele.Bot
	sender  sender
	chat    tele.Recipient
	webhook *tele.Webhook
	logger  *zap.Logger
	backoff func(attempt int) time.Duration
}

// NewTelegramNotifier creates the bot with optional proxy support.
func NewTelegramNotifier(opts Options, logger *zap.Logger) (*TelegramNotifier, error) {
	chatID, err := strconv.ParseInt(opts.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("telegram chat id %q: %w", opts.ChatID, err)
	}

	transport := &http.Transport{}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	poller, webhook := newPoller(opts.WebhookURL)
	bot, err := tele.NewBot(tele.Settings{
		Token:     opts.Token,
		Poller:    poller,
		ParseMode: tele.ModeHTML,
		Client:    &http.Client{Timeout: 30 * time.Second, Transport: transport},
		Offline:   opts.Offline,
		OnError: func(err error, c tele.Context) {
			logger.Error("telegram handler failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:     bot,
		sender:  bot,
		chat:    tele.ChatID(chatID),
		webhook: webhook,
		logger:  logger,
		backoff: func(attempt int) time.Duration { return time.Duration(1<<uint(attempt)) * time.Second },
	}, nil
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	if _, err := t.sender.Send(t.chat, text, tele.ModeHTML, tele.NoPreview); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := t.Send(text); err != nil {
			lastErr = err
			if i == maxRetries {
				break
			}
			backoff := t.backoff(i)
			t.logger.Warn("telegram send failed, retrying",
				zap.Int("attempt", i+1),
				zap.Int("attempts", maxRetries+1),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}

// Start serves commands until Stop. It blocks.
func (t *TelegramNotifier) Start() {
	t.logger.Info("telegram bot started", zap.Bool("webhook", t.webhook != nil))
	t.bot.Start()
}

// Stop stops the poller.
func (t *TelegramNotifier) Stop() {
	t.bot.Stop()
	t.logger.Info("telegram bot stopped")
}
