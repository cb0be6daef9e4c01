package handler

import (
	"context"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
)

// Router binds feature handlers to incoming updates.
type Router struct {
	Rewrite MessageHandler
}

// Register attaches all handlers to the bot handler. client is the bot the
// handlers use for outgoing calls.
func (r *Router) Register(bh *th.BotHandler, client *telego.Bot) {
	bh.Handle(func(ctx *th.Context, update telego.Update) error {
		if r.Rewrite != nil {
			r.Rewrite.Handle(ctx, client, update)
		}
		return nil
	}, anyTextOrCaption)
}

// anyTextOrCaption matches message updates that carry text or a media caption.
func anyTextOrCaption(_ context.Context, update telego.Update) bool {
	msg := update.Message
	if msg == nil {
		return false
	}
	return msg.Text != "" || msg.Caption != ""
}
