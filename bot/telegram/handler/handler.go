package handler

import (
	"context"

	"github.com/mymmrac/telego"
)

// MessageHandler handles incoming message updates.
type MessageHandler interface {
	Handle(ctx context.Context, b *telego.Bot, update telego.Update)
}
