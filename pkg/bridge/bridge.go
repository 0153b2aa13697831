// Package bridge connects the on-page chat widget to a staff Telegram
// account through the support bot.
//
// The browser polls for staff replies and pushes visitor messages; the
// staff side is plain Telegram. Correlation is textual: every message about
// a widget session carries a "#id:<session>" marker, and a staff reply is
// attributed by finding that marker in the message it replies to.
//
// Polling reads a rolling window of the bot's update feed without consuming
// it, so the same update can be seen by any number of concurrent polls.
// Delivery to the browser is therefore at-least-once; the widget dedupes by
// message id. The same applies to staff button presses: acknowledging one
// twice is harmless, so duplicates are tolerated rather than tracked.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mymmrac/telego"

	"github.com/Saterlix/Nova/pkg/telegram"
)

// pollLimit bounds how much of the update feed one poll re-reads.
const pollLimit = 50

var sessionMarkerRe = regexp.MustCompile(`#id:(sess_[a-zA-Z0-9]+)`)

// Marker returns the session tag embedded in every message about a session.
func Marker(sessionID string) string {
	return "#id:" + sessionID
}

// Message is one staff reply as delivered to the widget.
type Message struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Date int64  `json:"date"`
	From string `json:"from"`
}

// Bridge relays between widget sessions and the staff account.
type Bridge struct {
	gw         telegram.Client
	employeeID int64
	log        *slog.Logger
}

// New wires a bridge over the support bot's gateway client.
func New(gw telegram.Client, employeeID int64, log *slog.Logger) *Bridge {
	if log == nil {
		log = slog.Default()
	}

	return &Bridge{
		gw:         gw,
		employeeID: employeeID,
		log:        log.With("component", "bridge"),
	}
}

// Poll fetches recent updates and returns the staff messages addressed to
// the given session. Upstream failure yields an empty batch, not an error:
// the widget's next poll is the retry.
func (b *Bridge) Poll(ctx context.Context, sessionID string) []Message {
	updates, err := b.gw.RecentUpdates(ctx, pollLimit)
	if err != nil {
		b.log.Warn("failed to fetch updates", "error", err)
		return []Message{}
	}

	// Button presses found in the batch are acknowledged on the spot, and
	// the staff member gets a force-reply prompt that re-embeds the session
	// marker so their next message stays attributable.
	for _, update := range updates {
		if update.CallbackQuery != nil {
			b.handleCallback(ctx, update.CallbackQuery)
		}
	}

	marker := Marker(sessionID)
	out := []Message{}
	for _, update := range updates {
		msg := update.Message
		if msg == nil || msg.Chat.ID != b.employeeID {
			continue
		}

		replyText := ""
		if msg.ReplyToMessage != nil {
			replyText = msg.ReplyToMessage.Text
		}
		if !strings.Contains(replyText, marker) {
			continue
		}

		text := msg.Text
		if text == "" {
			text = "[non-text message]"
		}
		out = append(out, Message{ID: msg.MessageID, Text: text, Date: msg.Date, From: "support"})
	}

	return out
}

// Send forwards a visitor message to the staff account.
func (b *Bridge) Send(ctx context.Context, text string) error {
	if err := b.gw.SendMessage(ctx, b.employeeID, "🌐 Site Visitor:\n"+text, nil); err != nil {
		return fmt.Errorf("notify staff account: %w", err)
	}
	return nil
}

func (b *Bridge) handleCallback(ctx context.Context, cb *telego.CallbackQuery) {
	if err := b.gw.AnswerCallback(ctx, cb.ID); err != nil {
		b.log.Warn("failed to acknowledge callback", "callback_id", cb.ID, "error", err)
	}

	originalText := ""
	if msg, ok := cb.Message.(*telego.Message); ok {
		originalText = msg.Text
	}

	match := sessionMarkerRe.FindStringSubmatch(originalText)
	if match == nil {
		return
	}

	prompt := fmt.Sprintf("Reply for #id:%s\n✍️ Type your message and send it:", match[1])
	err := b.gw.SendMessage(ctx, b.employeeID, prompt, &telegram.Decoration{
		ForceReply:  true,
		Placeholder: "Type your reply...",
	})
	if err != nil {
		b.log.Warn("failed to send reply prompt", "session_id", match[1], "error", err)
	}
}
