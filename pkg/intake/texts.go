package intake

import "fmt"

// Menu button labels. The router matches these exactly, so they double as
// command keys.
const (
	btnLeaveRequest = "📝 Leave a request"
	btnOrderHistory = "📦 Order history"
	btnHowTo        = "📖 How to use the bot"
	btnShareContact = "📱 Share contact"
	btnCancel       = "🔙 Cancel"
)

// Step markers. Each prompt the bot sends starts with one of these; the
// extractor recognizes a reply's step by finding the marker in the text of
// the message being replied to. Telegram delivers prompt text with HTML tags
// stripped, so markers are the plain-text form.
const (
	markerAskName    = "1️⃣ What should we call you?"
	markerAskContact = "2️⃣ Great,"
	markerAskIssue   = "3️⃣ One last step."
)

// fallbackValue stands in for any field that cannot be re-extracted from a
// prior prompt. The flow never dead-ends on a parse miss.
const fallbackValue = "unspecified"

func greetingText(firstName string) string {
	return fmt.Sprintf("👋 <b>Hi, %s!</b>\n\nI'm the <b>NOVA Outsourcing</b> support bot.\nPick an action from the menu below 👇", firstName)
}

const helpText = "<b>📖 How it works:</b>\n\n" +
	"1. Tap <b>\"Leave a request\"</b>.\n" +
	"2. The bot asks you 3 quick questions (name, contact, issue).\n" +
	"3. Your request goes straight to our engineers.\n\n" +
	"We are on 24/7 and will answer as fast as we can!"

const historyEmptyText = "📭 <b>Your order history is empty.</b>\nYou have not left any requests through this bot yet."

func askNameText() string {
	return "1️⃣ <b>What should we call you?</b>\n(Type your name)"
}

func askContactText(name string) string {
	return fmt.Sprintf("2️⃣ <b>Great, %s.</b>\nNow leave a contact so we can reach you.\nTap the button below 👇 or type it manually.", name)
}

func askIssueText(name, contact string) string {
	return fmt.Sprintf("3️⃣ <b>One last step.</b>\nDescribe your problem or task.\n\n<i>(Name: %s, Contact: %s)</i>", name, contact)
}

func reportText(name, contact, issue, username string, userID int64) string {
	return fmt.Sprintf("🔔 <b>New request!</b>\n\n👤 <b>Name:</b> %s\n📞 <b>Contact:</b> %s\n💬 <b>Issue:</b> %s\n\n🔗 <b>Telegram:</b> %s (ID: %d)",
		name, contact, issue, username, userID)
}

const confirmDeliveredText = "✅ <b>Thanks! Your request is in.</b>\nWe will get back to you shortly."

// Sent when the staff-group report could not be delivered: the user still
// gets a success note, only the wording differs.
const confirmDegradedText = "✅ <b>Request received!</b>\n(The message was saved but not delivered to the staff group. An administrator will check the logs.)"

const groupUnconfiguredText = "⚠️ Error: the administrator has not configured a staff group for requests."
