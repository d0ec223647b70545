package telegram

import (
	"fmt"
	"strconv"
	"time"

	"github.com/yizhaofeng1/ai-trader/config"
	"github.com/yizhaofeng1/ai-trader/pkg/logger"

	"gopkg.in/telebot.v3"
)

// Notifier pushes final signal summaries to a fixed Telegram chat. When no
// bot token is configured every call is a no-op, so callers never need to
// branch on configuration.
type Notifier struct {
	cfg  *config.TelegramConfig
	log  *logger.Logger
	bot  *telebot.Bot
	chat *telebot.Chat
}

func NewNotifier(cfg *config.TelegramConfig, log *logger.Logger) (*Notifier, error) {
	n := &Notifier{cfg: cfg, log: log}

	if cfg.BotToken == "" || cfg.ChatID == "" {
		log.Info("Telegram notifier disabled, no bot token configured")
		return n, nil
	}

	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", cfg.ChatID, err)
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.BotToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			log.Error("Telegram bot error", logger.ErrorField(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	n.bot = bot
	n.chat = &telebot.Chat{ID: chatID}
	return n, nil
}

func (n *Notifier) Enabled() bool {
	return n.bot != nil
}

// NotifySignal sends the evaluated decision for one analysis.
func (n *Notifier) NotifySignal(symbol, rawSignal, finalSignal, reason string) {
	if n.bot == nil {
		return
	}

	message := fmt.Sprintf(
		"📊 *%s*\nAI signal: `%s`\nFinal signal: `%s`\n%s",
		symbol, rawSignal, finalSignal, reason,
	)

	if _, err := n.bot.Send(n.chat, message, telebot.ModeMarkdown); err != nil {
		n.log.Error("Failed to send telegram signal notification",
			logger.StringField("symbol", symbol),
			logger.ErrorField(err),
		)
	}
}
