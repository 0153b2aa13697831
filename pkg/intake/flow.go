// Package intake drives the guided lead-intake dialogue over Telegram.
//
// The dialogue runs Idle → AwaitingName → AwaitingContact → AwaitingIssue
// and ends by reporting the collected lead to a staff group. Conversation
// state lives in a Store keyed by chat id; every prompt also embeds the
// fields captured so far, so a cold store (restart, expired TTL) can rebuild
// the state from the reply chain alone.
package intake

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"

	"github.com/Saterlix/Nova/pkg/telegram"
)

// Controller handles inbound webhook updates for the intake bot.
type Controller struct {
	gw          telegram.Client
	sessions    Store
	groupChatID int64
	log         *slog.Logger
}

// NewController wires the flow controller. groupChatID may be zero; the
// finish step then tells the user the staff group is unconfigured.
func NewController(gw telegram.Client, sessions Store, groupChatID int64, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}

	return &Controller{
		gw:          gw,
		sessions:    sessions,
		groupChatID: groupChatID,
		log:         log.With("component", "intake.controller"),
	}
}

// HandleUpdate processes one webhook update. Commands are matched first and
// always short-circuit the state machine, even mid-flow. Text that matches
// neither a command nor a known step is a no-op.
func (c *Controller) HandleUpdate(ctx context.Context, update telego.Update) error {
	msg := update.Message
	if msg == nil {
		return nil
	}

	chatID := msg.Chat.ID
	text := msg.Text

	switch text {
	case "/start", "/menu", "Main menu", "Cancel", btnCancel:
		if err := c.sessions.Delete(ctx, chatID); err != nil {
			c.log.Error("failed to reset session", "chat_id", chatID, "error", err)
		}
		return c.gw.SendMessage(ctx, chatID, greetingText(senderFirstName(msg)), mainMenu())

	case btnHowTo:
		return c.gw.SendMessage(ctx, chatID, helpText, nil)

	case btnOrderHistory:
		return c.gw.SendMessage(ctx, chatID, historyEmptyText, nil)

	case btnLeaveRequest:
		c.putSession(ctx, &Session{ChatID: chatID, Step: StepAwaitingName})
		return c.gw.SendMessage(ctx, chatID, askNameText(), &telegram.Decoration{
			ForceReply:  true,
			Placeholder: "John Smith",
		})

	case "/id":
		return c.gw.SendMessage(ctx, chatID,
			fmt.Sprintf("🆔 <b>Chat ID:</b> <code>%d</code>\nType: %s", chatID, msg.Chat.Type), nil)

	case "/testgroup":
		return c.handleTestGroup(ctx, chatID)
	}

	// A stored session is authoritative; the reply-chain markers only fill
	// in when the store has nothing for this chat.
	sess := c.getSession(ctx, chatID)

	// Sharing a contact is a one-shot platform action without reply-to
	// linkage, so its presence always means "this is my contact".
	if msg.Contact != nil {
		name := contactName(sess, msg)
		return c.askIssue(ctx, chatID, name, msg.Contact.PhoneNumber)
	}

	var state extracted
	if sess != nil && sess.Step != StepNone {
		state = extracted{Step: sess.Step, Name: sess.Name, Contact: sess.Contact}
	} else {
		state = extractFromReply(msg)
	}

	switch state.Step {
	case StepAwaitingName:
		if text == "" {
			return nil
		}
		c.putSession(ctx, &Session{ChatID: chatID, Step: StepAwaitingContact, Name: text})
		return c.gw.SendMessage(ctx, chatID, askContactText(text), contactMenu())

	case StepAwaitingContact:
		if text == "" {
			return nil
		}
		return c.askIssue(ctx, chatID, orFallback(state.Name), text)

	case StepAwaitingIssue:
		if text == "" {
			return nil
		}
		return c.finish(ctx, msg, orFallback(state.Name), orFallback(state.Contact), text)
	}

	return nil
}

// askIssue records the captured name and contact and sends the step-3
// prompt, which embeds both so the final reply can stand on its own.
func (c *Controller) askIssue(ctx context.Context, chatID int64, name, contact string) error {
	c.putSession(ctx, &Session{ChatID: chatID, Step: StepAwaitingIssue, Name: name, Contact: contact})
	return c.gw.SendMessage(ctx, chatID, askIssueText(name, contact), &telegram.Decoration{
		ForceReply:  true,
		Placeholder: "The server is down...",
	})
}

// finish submits the completed lead: one report to the staff group, then one
// confirmation to the originator. A failed report is logged and downgraded
// to the degraded confirmation text, never surfaced as an error and never
// retried.
func (c *Controller) finish(ctx context.Context, msg *telego.Message, name, contact, issue string) error {
	chatID := msg.Chat.ID
	if err := c.sessions.Delete(ctx, chatID); err != nil {
		c.log.Error("failed to clear session", "chat_id", chatID, "error", err)
	}

	if c.groupChatID == 0 {
		return c.gw.SendMessage(ctx, chatID, groupUnconfiguredText, nil)
	}

	report := reportText(name, contact, issue, senderUsername(msg), senderID(msg))
	if err := c.gw.SendMessage(ctx, c.groupChatID, report, nil); err != nil {
		c.log.Error("failed to deliver lead report to staff group", "chat_id", chatID, "error", err)
		return c.gw.SendMessage(ctx, chatID, confirmDegradedText, degradedMenu())
	}

	c.log.Info("lead submitted", "chat_id", chatID)
	return c.gw.SendMessage(ctx, chatID, confirmDeliveredText, mainMenu())
}

func (c *Controller) handleTestGroup(ctx context.Context, chatID int64) error {
	if c.groupChatID == 0 {
		return c.gw.SendMessage(ctx, chatID, "❌ TELEGRAM_CHAT_ID is not set.", nil)
	}

	if err := c.gw.SendMessage(ctx, c.groupChatID, "🔔 Test message from the bot.", nil); err != nil {
		return c.gw.SendMessage(ctx, chatID,
			fmt.Sprintf("❌ <b>Failed!</b>\nError: %v\n\nMake sure the bot is an admin in the group!", err), nil)
	}
	return c.gw.SendMessage(ctx, chatID,
		fmt.Sprintf("✅ <b>Success!</b> Message sent to group <code>%d</code>.", c.groupChatID), nil)
}

// getSession reads the stored session; store failures degrade to the
// reply-chain fallback instead of stopping the dialogue.
func (c *Controller) getSession(ctx context.Context, chatID int64) *Session {
	sess, err := c.sessions.Get(ctx, chatID)
	if err != nil {
		c.log.Error("failed to read session", "chat_id", chatID, "error", err)
		return nil
	}
	return sess
}

func (c *Controller) putSession(ctx context.Context, sess *Session) {
	if err := c.sessions.Put(ctx, sess); err != nil {
		c.log.Error("failed to save session", "chat_id", sess.ChatID, "step", sess.Step.String(), "error", err)
	}
}

func mainMenu() *telegram.Decoration {
	return &telegram.Decoration{
		Keyboard: [][]telegram.Button{
			{{Text: btnLeaveRequest}, {Text: btnOrderHistory}},
			{{Text: btnHowTo}},
		},
		ResizeKeyboard: true,
		Persistent:     true,
	}
}

func contactMenu() *telegram.Decoration {
	return &telegram.Decoration{
		Keyboard: [][]telegram.Button{
			{{Text: btnShareContact, RequestContact: true}},
			{{Text: btnCancel}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}
}

func degradedMenu() *telegram.Decoration {
	return &telegram.Decoration{
		Keyboard: [][]telegram.Button{
			{{Text: btnLeaveRequest}, {Text: btnOrderHistory}},
		},
		ResizeKeyboard: true,
	}
}

// contactName picks the best name for a shared-contact shortcut: the one
// already captured this session, then the contact card's own first name,
// then the sender's profile name.
func contactName(sess *Session, msg *telego.Message) string {
	if sess != nil && sess.Name != "" {
		return sess.Name
	}
	if msg.Contact.FirstName != "" {
		return msg.Contact.FirstName
	}
	return senderFirstName(msg)
}

func senderFirstName(msg *telego.Message) string {
	if msg.From != nil && msg.From.FirstName != "" {
		return msg.From.FirstName
	}
	return "Client"
}

func senderUsername(msg *telego.Message) string {
	if msg.From != nil && msg.From.Username != "" {
		return "@" + msg.From.Username
	}
	return "hidden"
}

func senderID(msg *telego.Message) int64 {
	if msg.From != nil {
		return msg.From.ID
	}
	return 0
}

func orFallback(value string) string {
	if value == "" {
		return fallbackValue
	}
	return value
}
