package router

import (
	"strings"
	"time"

	tg "github.com/m3rciful/codegate/core/telegram"
	"github.com/m3rciful/codegate/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MessageRoutes builds handlers for plain text and incoming media.
// Text beginning with a slash is an unknown command and is skipped without a reply;
// registered commands never reach these routes because telebot dispatches them first.
func MessageRoutes(reg *tg.Registry) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()
		text := strings.TrimSpace(c.Text())

		if strings.HasPrefix(text, "/") {
			logHandlerSummary(c, "unknown_command", start, "skip", nil)
			return nil
		}
		if fb := reg.TextFallback(); fb != nil {
			return handleWithSummary(c, "text", start, func() error {
				return fb(c)
			})
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if h := reg.MediaHandler(); h != nil {
			return handleWithSummary(c, "media", start, func() error {
				return h(c)
			})
		}
		logHandlerSummary(c, "unexpected_media", start, "skip", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}
	return []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(textHandler)},
		{Endpoint: tele.OnVideo, Handler: wrap(mediaHandler)},
		{Endpoint: tele.OnDocument, Handler: wrap(mediaHandler)},
	}
}
