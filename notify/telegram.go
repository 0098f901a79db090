package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Telegram sends notifications to a fixed set of Telegram chats.
type Telegram struct {
	api     *tgbotapi.BotAPI
	chatIDs []int64
}

// NewTelegram returns a Telegram notifier authenticated with botToken,
// broadcasting to chatIDs.
func NewTelegram(botToken string, chatIDs []int64) (*Telegram, error) {
	if botToken == "" {
		return nil, fmt.Errorf("notify: telegram bot token is required")
	}
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("notify: create telegram bot: %w", err)
	}
	return &Telegram{api: api, chatIDs: chatIDs}, nil
}

// Send posts title/message to every configured chat. It returns an
// error only if delivery failed to every chat.
func (t *Telegram) Send(_ context.Context, title, message string) error {
	if len(t.chatIDs) == 0 {
		log.Warn().Msg("notify: no telegram chat ids configured, dropping notification")
		return nil
	}

	text := fmt.Sprintf("*%s*\n\n%s", title, message)

	var lastErr error
	delivered := 0
	for _, chatID := range t.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = "Markdown"
		if _, err := t.api.Send(msg); err != nil {
			log.Error().Err(err).Int64("chat_id", chatID).Str("title", title).Msg("failed to deliver telegram notification")
			lastErr = err
			continue
		}
		delivered++
	}

	if delivered == 0 && lastErr != nil {
		return fmt.Errorf("notify: telegram delivery failed to all chats: %w", lastErr)
	}
	return nil
}
