package middleware

import (
	"log/slog"

	"github.com/m3rciful/codegate/core/logger"
	"github.com/m3rciful/codegate/core/telegram/commands"
	tghelpers "github.com/m3rciful/codegate/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
// A nil IsAdmin rejects everyone; a nil OnReject keeps the bot silent.
type AdminOptions struct {
	IsAdmin  func(userID int64) bool
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allowed(c tele.Context) bool {
	user := c.Sender()
	return user != nil && o.IsAdmin != nil && o.IsAdmin(user.ID)
}

func (o AdminOptions) reject(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "access.denied", slog.String("status", "skip"))
	if o.OnReject != nil {
		return o.OnReject(c)
	}
	return nil
}

// WithAdminCheck wraps a command handler enforcing admin-only execution when the command requires it.
func WithAdminCheck(opts AdminOptions, cmd commands.Command) tele.HandlerFunc {
	if !cmd.AdminOnly {
		return cmd.Handler
	}
	return AdminOnlyMiddleware(opts)(cmd.Handler)
}

// AdminOnlyMiddleware ensures that only admins can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if !opts.allowed(c) {
				return opts.reject(c)
			}
			return next(c)
		}
	}
}
