package intake

import (
	"regexp"
	"strings"

	"github.com/mymmrac/telego"
)

// Reply-chain field extraction. The bot's own prompts embed every field
// captured so far, so a reply carries the whole partial lead in the text of
// the message it answers. Used as a fallback when no stored session exists
// (process restart, expired TTL); extraction misses resolve to
// fallbackValue, never to an error.
var (
	nameAfterGreatRe = regexp.MustCompile(`Great, (.*)\.`)
	nameFieldRe      = regexp.MustCompile(`Name: (.*), Contact`)
	contactFieldRe   = regexp.MustCompile(`Contact: (.*)\)`)
)

// extracted is the state implied by one reply-to back-reference.
type extracted struct {
	Step    Step
	Name    string
	Contact string
}

// extractFromReply classifies which intake step a message answers by
// inspecting the text of the message it replies to. Messages that do not
// reply to one of the bot's own prompts yield StepNone.
func extractFromReply(msg *telego.Message) extracted {
	out := extracted{Step: StepNone}

	reply := msg.ReplyToMessage
	if reply == nil || reply.From == nil || !reply.From.IsBot {
		return out
	}

	promptText := reply.Text
	switch {
	case strings.Contains(promptText, markerAskName):
		out.Step = StepAwaitingName
	case strings.Contains(promptText, markerAskContact):
		out.Step = StepAwaitingContact
		out.Name = extractField(nameAfterGreatRe, promptText)
	case strings.Contains(promptText, markerAskIssue):
		out.Step = StepAwaitingIssue
		out.Name = extractField(nameFieldRe, promptText)
		out.Contact = extractField(contactFieldRe, promptText)
	}

	return out
}

func extractField(re *regexp.Regexp, text string) string {
	match := re.FindStringSubmatch(text)
	if match == nil || strings.TrimSpace(match[1]) == "" {
		return fallbackValue
	}
	return match[1]
}
