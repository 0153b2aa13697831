// Package telegram wraps the Telegram Bot API calls this service issues.
//
// It exposes the four operations the relay needs behind a small interface so
// handlers can be tested against fakes. No call is retried: a failed call is
// the caller's signal to log, degrade, or surface a generic failure.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Client is the outbound messaging surface used by the webhook flow, the
// chat bridge, and the lead relay.
type Client interface {
	// SendMessage delivers text to a chat. A nil error means the platform
	// accepted the message; callers that need to branch on delivery (the
	// staff-group report) inspect the error.
	SendMessage(ctx context.Context, chatID int64, text string, deco *Decoration) error

	// AnswerCallback acknowledges a button press so the client stops its
	// spinner. Acknowledging the same press twice is harmless.
	AnswerCallback(ctx context.Context, callbackID string) error

	// ForwardMessage relays an existing message to another chat.
	ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error

	// RecentUpdates fetches a bounded batch from the update feed without
	// consuming it; repeated calls re-read the same rolling window.
	RecentUpdates(ctx context.Context, limit int) ([]telego.Update, error)
}

// BotClient implements Client against the live Bot API.
type BotClient struct {
	bot *telego.Bot
	log *slog.Logger
}

// NewBotClient validates the token and constructs a client.
func NewBotClient(token string, log *slog.Logger) (*BotClient, error) {
	if log == nil {
		log = slog.Default()
	}

	bot, err := telego.NewBot(token, telego.WithDefaultLogger(false, false))
	if err != nil {
		return nil, fmt.Errorf("initialize telegram bot: %w", err)
	}

	return &BotClient{bot: bot, log: log.With("component", "telegram.client")}, nil
}

func (c *BotClient) SendMessage(ctx context.Context, chatID int64, text string, deco *Decoration) error {
	params := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	if markup := deco.replyMarkup(); markup != nil {
		params = params.WithReplyMarkup(markup)
	}

	if _, err := c.bot.SendMessage(ctx, params); err != nil {
		c.log.Warn("sendMessage failed", "chat_id", chatID, "error", err)
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (c *BotClient) AnswerCallback(ctx context.Context, callbackID string) error {
	err := c.bot.AnswerCallbackQuery(ctx, &telego.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
	})
	if err != nil {
		c.log.Warn("answerCallbackQuery failed", "callback_id", callbackID, "error", err)
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func (c *BotClient) ForwardMessage(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	_, err := c.bot.ForwardMessage(ctx, &telego.ForwardMessageParams{
		ChatID:     tu.ID(toChatID),
		FromChatID: tu.ID(fromChatID),
		MessageID:  messageID,
	})
	if err != nil {
		c.log.Warn("forwardMessage failed", "to", toChatID, "error", err)
		return fmt.Errorf("forward message: %w", err)
	}
	return nil
}

func (c *BotClient) RecentUpdates(ctx context.Context, limit int) ([]telego.Update, error) {
	updates, err := c.bot.GetUpdates(ctx, &telego.GetUpdatesParams{
		Limit:          limit,
		AllowedUpdates: []string{"message", "callback_query"},
	})
	if err != nil {
		return nil, fmt.Errorf("get updates: %w", err)
	}
	return updates, nil
}
