// Package membership answers whether a user belongs to the required channel.
package membership

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/codegate/core/logger"

	tele "gopkg.in/telebot.v4"
)

// MemberAPI is the slice of the Bot API the oracle needs; *tele.Bot satisfies it.
type MemberAPI interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// Channel addresses the required chat by "@username" or numeric id.
type Channel string

// Recipient returns the chat identifier as sent to the Bot API.
func (c Channel) Recipient() string { return string(c) }

// Username returns the public name without "@", or "" for numeric ids.
func (c Channel) Username() string {
	s := strings.TrimSpace(string(c))
	if !strings.HasPrefix(s, "@") {
		return ""
	}
	return strings.TrimPrefix(s, "@")
}

type userRecipient int64

func (u userRecipient) Recipient() string { return strconv.FormatInt(int64(u), 10) }

// Oracle checks channel membership with a single getChatMember call.
// Every failure is treated as "not a member".
type Oracle struct {
	api       MemberAPI
	channel   Channel
	inviteURL string
}

// New builds an Oracle. inviteURL overrides the t.me link shown to users; it is
// required for private channels addressed by numeric id.
func New(api MemberAPI, channel, inviteURL string) *Oracle {
	return &Oracle{
		api:       api,
		channel:   Channel(strings.TrimSpace(channel)),
		inviteURL: strings.TrimSpace(inviteURL),
	}
}

// IsMember reports whether userID is a member, administrator or creator of the channel.
func (o *Oracle) IsMember(ctx context.Context, userID int64) bool {
	start := time.Now()
	member, err := o.api.ChatMemberOf(o.channel, userRecipient(userID))
	if err != nil {
		logger.Warn(ctx, "membership", "membership.unavailable",
			slog.String("status", "fail"),
			slog.String("channel", string(o.channel)),
			slog.String("err", err.Error()),
			slog.Duration("duration", time.Since(start)),
		)
		return false
	}
	if member == nil {
		return false
	}
	ok := isMemberRole(member.Role)
	logger.Debug(ctx, "membership", "membership.checked",
		slog.String("status", "ok"),
		slog.String("channel", string(o.channel)),
		slog.String("member_status", string(member.Role)),
		slog.Bool("member", ok),
		slog.Duration("duration", time.Since(start)),
	)
	return ok
}

func isMemberRole(role tele.MemberStatus) bool {
	switch role {
	case tele.Member, tele.Administrator, tele.Creator:
		return true
	}
	return false
}

// JoinURL returns the link offered in the subscribe prompt.
func (o *Oracle) JoinURL() string {
	if o.inviteURL != "" {
		return o.inviteURL
	}
	if name := o.channel.Username(); name != "" {
		return "https://t.me/" + name
	}
	return ""
}
