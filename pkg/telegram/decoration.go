package telegram

import "github.com/mymmrac/telego"

// Decoration enumerates the message decorations this service uses. It is a
// closed set: force-reply prompts, reply keyboards (optionally with a
// share-contact button), and inline keyboards. The platform accepts one
// reply markup per message, so when several are set the most specific wins:
// inline keyboard, then reply keyboard, then force reply.
type Decoration struct {
	// ForceReply asks the recipient's client to pre-address the next
	// message as a reply to this one.
	ForceReply bool
	// Placeholder is shown in the input field for force-reply prompts.
	Placeholder string

	// Keyboard replaces the persistent on-screen menu.
	Keyboard        [][]Button
	ResizeKeyboard  bool
	OneTimeKeyboard bool
	Persistent      bool

	// InlineKeyboard attaches buttons carrying opaque callback payloads.
	InlineKeyboard [][]InlineButton
}

// Button is one reply-keyboard key.
type Button struct {
	Text string
	// RequestContact adds the one-tap "share my contact" affordance.
	RequestContact bool
}

// InlineButton is one inline-keyboard key with its callback payload.
type InlineButton struct {
	Text string
	Data string
}

func (d *Decoration) replyMarkup() telego.ReplyMarkup {
	if d == nil {
		return nil
	}

	if len(d.InlineKeyboard) > 0 {
		rows := make([][]telego.InlineKeyboardButton, 0, len(d.InlineKeyboard))
		for _, row := range d.InlineKeyboard {
			buttons := make([]telego.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, telego.InlineKeyboardButton{Text: b.Text, CallbackData: b.Data})
			}
			rows = append(rows, buttons)
		}
		return &telego.InlineKeyboardMarkup{InlineKeyboard: rows}
	}

	if len(d.Keyboard) > 0 {
		rows := make([][]telego.KeyboardButton, 0, len(d.Keyboard))
		for _, row := range d.Keyboard {
			buttons := make([]telego.KeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, telego.KeyboardButton{Text: b.Text, RequestContact: b.RequestContact})
			}
			rows = append(rows, buttons)
		}
		return &telego.ReplyKeyboardMarkup{
			Keyboard:        rows,
			ResizeKeyboard:  d.ResizeKeyboard,
			OneTimeKeyboard: d.OneTimeKeyboard,
			IsPersistent:    d.Persistent,
		}
	}

	if d.ForceReply {
		return &telego.ForceReply{
			ForceReply:            true,
			InputFieldPlaceholder: d.Placeholder,
		}
	}

	return nil
}
