// Package leads validates web-form submissions and relays them to the staff
// group as a best-effort notification.
package leads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Saterlix/Nova/pkg/telegram"
)

const (
	minNameLen    = 2
	minPhoneLen   = 9
	minCompanyLen = 2
)

// Submission is one contact-form payload.
type Submission struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Type    string `json:"type"`
}

// Validate returns per-field error messages, or nil when the submission is
// acceptable.
func (s Submission) Validate() map[string]string {
	errs := make(map[string]string)
	if len([]rune(s.Name)) < minNameLen {
		errs["name"] = fmt.Sprintf("must be at least %d characters", minNameLen)
	}
	if len([]rune(s.Phone)) < minPhoneLen {
		errs["phone"] = fmt.Sprintf("must be at least %d characters", minPhoneLen)
	}
	if len([]rune(s.Company)) < minCompanyLen {
		errs["company"] = fmt.Sprintf("must be at least %d characters", minCompanyLen)
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Relay forwards validated submissions to the staff group.
type Relay struct {
	gw          telegram.Client
	groupChatID int64
	log         *slog.Logger
}

// NewRelay wires the relay. gw may be nil and groupChatID zero when the
// intake bot is unconfigured; submissions then validate but skip delivery.
func NewRelay(gw telegram.Client, groupChatID int64, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}

	return &Relay{gw: gw, groupChatID: groupChatID, log: log.With("component", "leads.relay")}
}

// Submit validates and, on success, notifies the staff group. Notification
// is a side channel: its failure is logged and the submission still counts
// as accepted, so the return is only the validation verdict.
func (r *Relay) Submit(ctx context.Context, sub Submission) map[string]string {
	if errs := sub.Validate(); errs != nil {
		return errs
	}

	if r.gw == nil || r.groupChatID == 0 {
		r.log.Warn("lead accepted but intake bot is unconfigured, skipping notification")
		return nil
	}

	text := fmt.Sprintf("🚀 <b>New Lead (NOVA)</b>\n\n👤 <b>Name:</b> %s\n📱 <b>Phone:</b> %s\n🏢 <b>Company:</b> %s\n❓ <b>Type:</b> %s",
		escapeHTML(sub.Name), sub.Phone, escapeHTML(sub.Company), sub.Type)

	if err := r.gw.SendMessage(ctx, r.groupChatID, text, nil); err != nil {
		r.log.Error("failed to deliver lead notification", "error", err)
	}
	return nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escapeHTML keeps user input from breaking the HTML parse mode.
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
