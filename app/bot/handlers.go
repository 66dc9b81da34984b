package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/codegate/app/binder"
	"github.com/m3rciful/codegate/app/gate"
	"github.com/m3rciful/codegate/core/logger"
	coretelegram "github.com/m3rciful/codegate/core/telegram"
	"github.com/m3rciful/codegate/core/telegram/commands"
	"github.com/m3rciful/codegate/core/telegram/format"
	tghelpers "github.com/m3rciful/codegate/core/telegram/helpers"
	"github.com/m3rciful/codegate/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// CheckSubUnique is the callback unique of the re-check button.
const CheckSubUnique = "check_sub"

// Counter reports how many codes are bound.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Handlers renders gate and binder outcomes as Telegram messages.
type Handlers struct {
	gate    *gate.Gate
	binder  *binder.Binder
	counter Counter
	joinURL string
}

// NewHandlers builds the handler set. counter may be nil, which disables /stats.
func NewHandlers(g *gate.Gate, b *binder.Binder, counter Counter, joinURL string) *Handlers {
	return &Handlers{gate: g, binder: b, counter: counter, joinURL: joinURL}
}

// Register binds every handler to the registry.
func (h *Handlers) Register(reg *coretelegram.Registry) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "How to get a video",
	})
	reg.RegisterCommand("/bind", commands.Command{
		Handler:     h.Bind,
		Description: "Attach the last uploaded video to a code",
		AdminOnly:   true,
		Hidden:      true,
	})
	if h.counter != nil {
		reg.RegisterCommand("/stats", commands.Command{
			Handler:     h.Stats,
			Description: "Number of bound codes",
			AdminOnly:   true,
			Hidden:      true,
		})
	}
	if err := reg.RegisterCallback(CheckSubUnique, h.Recheck); err != nil {
		return err
	}
	reg.SetTextFallback(h.Text)
	reg.SetMediaHandler(h.Media)
	return nil
}

// Limited answers an update dropped by the rate limiter so the user knows to resend.
// Other update kinds are dropped silently.
func (h *Handlers) Limited(c tele.Context) error {
	upd := c.Update()
	switch {
	case upd.Callback != nil:
		return c.Respond(&tele.CallbackResponse{Text: msgSlowDown})
	case upd.Message != nil && upd.Message.Text != "":
		return tghelpers.SendText(c, msgSlowDown)
	}
	return nil
}

func (h *Handlers) Start(c tele.Context) error {
	return tghelpers.SendText(c, msgWelcome)
}

// Text runs the submit flow for a free-text code.
func (h *Handlers) Text(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	res := h.gate.Submit(ctx, senderID(c), c.Text())
	tghelpers.SetOutcome(c, res.Kind.String())

	switch res.Kind {
	case gate.InvalidCode:
		return tghelpers.SendText(c, msgInvalidCode)
	case gate.SubscribeRequired:
		return tghelpers.SendText(c, msgSubscribe, h.subscribeKeyboard())
	case gate.Delivered:
		return tghelpers.SendVideo(c, res.Handle, captionDelivered)
	default:
		return tghelpers.SendText(c, msgNotFound)
	}
}

// Recheck runs the re-check flow by editing the prompt the button belongs to.
func (h *Handlers) Recheck(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	res := h.gate.Recheck(ctx, senderID(c))
	tghelpers.SetOutcome(c, res.Kind.String())

	switch res.Kind {
	case gate.NoPending:
		return tghelpers.EditText(c, msgNoPending)
	case gate.SubscribeRequired:
		return tghelpers.EditText(c, msgStillNotMember, h.subscribeKeyboard())
	case gate.Delivered:
		if err := tghelpers.EditText(c, msgConfirmed); err != nil {
			logger.Warn(ctx, "tg", "recheck.confirm_failed", slog.String("err", err.Error()))
		}
		return tghelpers.SendVideo(c, res.Handle, captionDelivered)
	default:
		return tghelpers.EditText(c, msgNotFoundResend)
	}
}

// Media stages an admin upload. Everyone else gets no reply.
func (h *Handlers) Media(c tele.Context) error {
	handle := stageableHandle(c.Message())
	if handle == "" {
		tghelpers.SetOutcome(c, binder.Ignored.String())
		return nil
	}
	ctx := tghelpers.BuildContext(c)
	res := h.binder.Stage(ctx, senderID(c), handle)
	tghelpers.SetOutcome(c, res.Kind.String())

	switch res.Kind {
	case binder.Staged:
		return tghelpers.SendMarkdown(c, stagedMessage(res.Handle))
	case binder.StorageFailed:
		return tghelpers.SendText(c, msgStageFailed)
	}
	return nil
}

// Bind attaches the staged upload to the code given as the command argument.
func (h *Handlers) Bind(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	res := h.binder.Bind(ctx, senderID(c), c.Data())
	tghelpers.SetOutcome(c, res.Kind.String())

	switch res.Kind {
	case binder.Usage:
		return tghelpers.SendText(c, msgBindUsage)
	case binder.InvalidArgument:
		return tghelpers.SendText(c, msgBindDigitsOnly)
	case binder.NothingStaged:
		return tghelpers.SendText(c, msgBindNoMedia)
	case binder.Bound:
		return tghelpers.SendText(c, fmt.Sprintf(msgBoundFmt, res.Code))
	case binder.StorageFailed:
		return tghelpers.SendText(c, msgBindFailed)
	}
	return nil
}

func (h *Handlers) Stats(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	n, err := h.counter.Count(ctx)
	if err != nil {
		logger.Warn(ctx, "tg", "stats.failed", slog.String("err", err.Error()))
		return tghelpers.SendText(c, msgStatsError)
	}
	return tghelpers.SendText(c, fmt.Sprintf(msgStatsFmt, n))
}

// stagedMessage shows the handle as a code span so admins can copy it with one tap.
func stagedMessage(handle string) string {
	return format.EscapeMarkdownV2(msgStagedHead) + format.Code(handle) + format.EscapeMarkdownV2(msgStagedTail)
}

func (h *Handlers) subscribeKeyboard() *tele.ReplyMarkup {
	check := keyboard.InlineBtn{Text: btnCheck, Unique: CheckSubUnique}
	if h.joinURL == "" {
		return keyboard.InlineButtons(check)
	}
	return keyboard.InlineButtons(keyboard.InlineBtn{Text: btnJoin, URL: h.joinURL}, check)
}

// stageableHandle returns the file id of a video or of a document with a video MIME type.
func stageableHandle(m *tele.Message) string {
	switch {
	case m == nil:
		return ""
	case m.Video != nil:
		return m.Video.FileID
	case m.Document != nil && strings.HasPrefix(m.Document.MIME, "video/"):
		return m.Document.FileID
	}
	return ""
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
