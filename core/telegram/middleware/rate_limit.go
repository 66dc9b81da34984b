package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/m3rciful/codegate/core/logger"
	tghelpers "github.com/m3rciful/codegate/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const defaultTrackedUsers = 10000

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	Exclude  map[string]struct{}
	// TrackedUsers bounds how many users are remembered at once.
	TrackedUsers int
	OnLimited    tele.HandlerFunc
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil && (upd.Message.Video != nil || upd.Message.Document != nil):
		return "media"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// RateLimitMiddleware drops updates arriving from the same user within Interval of the last accepted one.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	if opts.Interval <= 0 {
		return func(next tele.HandlerFunc) tele.HandlerFunc { return next }
	}
	size := opts.TrackedUsers
	if size <= 0 {
		size = defaultTrackedUsers
	}
	var (
		mu   sync.Mutex
		seen = expirable.NewLRU[int64, struct{}](size, nil, opts.Interval)
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}
			kind := updateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			mu.Lock()
			// Contains ignores expiry; Get drops entries older than Interval.
			_, limited := seen.Get(user.ID)
			if !limited {
				seen.Add(user.ID, struct{}{})
			}
			mu.Unlock()

			if limited {
				logger.Warn(tghelpers.BuildContext(c), "tg", "tg.rate_limit",
					slog.String("status", "rate_limited"),
					slog.String("op", kind),
				)
				if opts.OnLimited != nil {
					_ = opts.OnLimited(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
