package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/codegate/core/logger"
	"github.com/m3rciful/codegate/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
// Passing nil switches helpers back to synchronous sends.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sender.ErrQueueClosed):
		// Shutting down; the lanes are being drained.
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	default:
		// Sending inline would jump ahead of this chat's queued messages.
		logger.Error(ctx, "tg.sender", "queue.rejected",
			slog.String("status", "fail"),
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return err
	}
}

// SendText sends plain text to the current chat.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}

// SendVideo sends a previously uploaded video by its Telegram file id.
func SendVideo(c tele.Context, fileID, caption string) error {
	video := &tele.Video{File: tele.File{FileID: fileID}, Caption: caption}
	return sendAsync(c, "send.video", "sendVideo", func() error {
		return c.Send(video)
	})
}

// EditText replaces the text of the message the callback belongs to and drops its keyboard.
// The edit goes through the same per-chat lane as sends so later messages never overtake it.
func EditText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return sendAsync(c, "edit.text", "editMessageText", func() error {
		return c.Edit(text, opts)
	})
}

// SendMarkdown sends text already escaped for MarkdownV2.
func SendMarkdown(c tele.Context, text string) error {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdownV2}
	return sendAsync(c, "send.markdown", "sendMessage", func() error {
		return c.Send(text, opts)
	})
}
