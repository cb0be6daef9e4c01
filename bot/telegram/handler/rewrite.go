package handler

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	botpkg "github.com/kmoroz/LinkFixBot-Go/bot"
	"github.com/kmoroz/LinkFixBot-Go/bot/rewrite"
	"github.com/kmoroz/LinkFixBot-Go/bot/telegram"
	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Telegram message and caption length limits.
const (
	maxMessageLen = 4096
	maxCaptionLen = 1024
)

// RewriteHandler reposts messages whose links were rewritten and removes the
// originals. Each update is handled independently; failures are terminal for
// that one update.
type RewriteHandler struct {
	Rules       *rewrite.Registry
	Fetcher     botpkg.AttachmentFetcher
	Pool        botpkg.WorkerPool
	Logger      botpkg.Logger
	RateLimiter *telegram.RateLimiter
	UploadBot   *telego.Bot
	BotID       int64

	seen     *recentSet
	chatMu   sync.Mutex
	chatLock map[int64]*sync.Mutex

	// postFn and deleteFn default to the real platform calls; tests swap
	// them to observe the post/delete ordering.
	postFn   func(ctx context.Context, b *telego.Bot, msg *telego.Message, newText string, markup *telego.InlineKeyboardMarkup, attachments []*botpkg.Attachment) (int, error)
	deleteFn func(ctx context.Context, b *telego.Bot, chatID int64, messageID int) error
}

// Init prepares internal state. Must be called once before handling updates.
func (h *RewriteHandler) Init(dedupSize int) {
	h.seen = newRecentSet(dedupSize)
	h.chatLock = make(map[int64]*sync.Mutex)
	if h.postFn == nil {
		h.postFn = h.post
	}
	if h.deleteFn == nil {
		h.deleteFn = h.deleteOriginal
	}
}

// Handle implements MessageHandler.
func (h *RewriteHandler) Handle(ctx context.Context, b *telego.Bot, update telego.Update) {
	msg := update.Message
	if shouldSkip(msg, h.BotID) {
		return
	}

	key := messageKey{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
	if h.seen.Contains(key) {
		return
	}

	text := messageText(msg)
	res, rw, ok := h.Rules.Apply(text)
	if !ok {
		return
	}

	log := h.Logger.With("rewriter", rw.Name(), "chat_id", msg.Chat.ID, "message_id", msg.MessageID)

	run := func() error { return h.execute(ctx, b, msg, res, log) }
	var err error
	if h.Pool != nil {
		err = h.Pool.SubmitWait(run)
	} else {
		err = run()
	}
	if err != nil {
		log.Error("rewrite action failed", "error", err)
	}
}

// execute performs the side effects: fetch attachments, post the rewritten
// message, then delete the original. The original is deleted only after the
// repost succeeded so the link is never lost.
func (h *RewriteHandler) execute(ctx context.Context, b *telego.Bot, msg *telego.Message, res *rewrite.Result, log botpkg.Logger) error {
	unlock := h.lockChat(msg.Chat.ID)
	defer unlock()

	// Re-check under the chat lock: a replay of the same update may have
	// passed the first check while another copy was still being processed.
	key := messageKey{ChatID: msg.Chat.ID, MessageID: msg.MessageID}
	if h.seen.Contains(key) {
		return nil
	}

	attachments := collectAttachments(msg)
	if len(attachments) > 0 {
		if h.Fetcher == nil {
			return fmt.Errorf("attachments present but no fetcher configured")
		}
		err := h.Fetcher.FetchAll(ctx, attachments, func(att *botpkg.Attachment) (string, error) {
			file, err := b.GetFile(ctx, &telego.GetFileParams{FileID: att.FileID})
			if err != nil {
				return "", err
			}
			return b.FileDownloadURL(file.FilePath), nil
		})
		if err != nil {
			// Leave the original untouched so no media is lost.
			return fmt.Errorf("fetch attachments: %w", err)
		}
	}

	markup := linkButton(res.OriginalURL, res.ButtonLabel)
	sentID, err := h.postFn(ctx, b, msg, res.NewText, markup, attachments)
	if err != nil {
		return fmt.Errorf("post rewritten message: %w", err)
	}

	h.seen.Add(key)
	h.seen.Add(messageKey{ChatID: msg.Chat.ID, MessageID: sentID})

	if res.DeleteOriginal {
		if err := h.deleteFn(ctx, b, msg.Chat.ID, msg.MessageID); err != nil {
			// Repost already happened; a leftover original is the lesser evil.
			log.Warn("delete original failed", "error", err)
		}
	}

	log.Info("link rewritten", "original_url", res.OriginalURL)
	return nil
}

// post sends the rewritten message. Without attachments it is a plain text
// message; with attachments the first one carries the caption and button and
// the rest follow bare.
func (h *RewriteHandler) post(ctx context.Context, b *telego.Bot, msg *telego.Message, newText string, markup *telego.InlineKeyboardMarkup, attachments []*botpkg.Attachment) (int, error) {
	content := composeText(displayName(msg.From), newText)
	chatID := msg.Chat.ID

	if len(attachments) == 0 {
		params := &telego.SendMessageParams{
			ChatID:      tu.ID(chatID),
			Text:        truncate(content, maxMessageLen),
			ReplyMarkup: markup,
		}
		sent, err := telegram.SendMessageWithRetry(ctx, h.RateLimiter, b, params)
		if err != nil {
			return 0, err
		}
		return sent.MessageID, nil
	}

	uploader := b
	if h.UploadBot != nil {
		uploader = h.UploadBot
	}

	firstID := 0
	for i, att := range attachments {
		caption := ""
		var replyMarkup *telego.InlineKeyboardMarkup
		if i == 0 {
			caption = truncate(content, maxCaptionLen)
			replyMarkup = markup
		}
		sent, err := h.sendAttachment(ctx, uploader, chatID, att, caption, replyMarkup)
		if err != nil {
			return 0, err
		}
		if i == 0 {
			firstID = sent.MessageID
		} else {
			h.seen.Add(messageKey{ChatID: chatID, MessageID: sent.MessageID})
		}
	}
	return firstID, nil
}

func (h *RewriteHandler) deleteOriginal(ctx context.Context, b *telego.Bot, chatID int64, messageID int) error {
	return telegram.DeleteMessageWithRetry(ctx, h.RateLimiter, b, &telego.DeleteMessageParams{
		ChatID:    tu.ID(chatID),
		MessageID: messageID,
	})
}

func (h *RewriteHandler) sendAttachment(ctx context.Context, b *telego.Bot, chatID int64, att *botpkg.Attachment, caption string, markup *telego.InlineKeyboardMarkup) (*telego.Message, error) {
	file := telego.InputFile{File: tu.NameReader(bytes.NewReader(att.Data), attachmentFileName(att))}

	var sent *telego.Message
	err := telegram.WithRetry(ctx, h.RateLimiter, chatID, func() error {
		var err error
		switch att.Kind {
		case botpkg.AttachmentPhoto:
			params := &telego.SendPhotoParams{ChatID: tu.ID(chatID), Photo: file, Caption: caption}
			if markup != nil {
				params.ReplyMarkup = markup
			}
			sent, err = b.SendPhoto(ctx, params)
		case botpkg.AttachmentVideo:
			params := &telego.SendVideoParams{ChatID: tu.ID(chatID), Video: file, Caption: caption}
			if markup != nil {
				params.ReplyMarkup = markup
			}
			sent, err = b.SendVideo(ctx, params)
		case botpkg.AttachmentAnimation:
			params := &telego.SendAnimationParams{ChatID: tu.ID(chatID), Animation: file, Caption: caption}
			if markup != nil {
				params.ReplyMarkup = markup
			}
			sent, err = b.SendAnimation(ctx, params)
		case botpkg.AttachmentAudio:
			params := &telego.SendAudioParams{ChatID: tu.ID(chatID), Audio: file, Caption: caption}
			if markup != nil {
				params.ReplyMarkup = markup
			}
			sent, err = b.SendAudio(ctx, params)
		case botpkg.AttachmentVoice:
			params := &telego.SendVoiceParams{ChatID: tu.ID(chatID), Voice: file, Caption: caption}
			if markup != nil {
				params.ReplyMarkup = markup
			}
			sent, err = b.SendVoice(ctx, params)
		default:
			params := &telego.SendDocumentParams{ChatID: tu.ID(chatID), Document: file, Caption: caption}
			if markup != nil {
				params.ReplyMarkup = markup
			}
			sent, err = b.SendDocument(ctx, params)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return sent, nil
}

func (h *RewriteHandler) lockChat(chatID int64) func() {
	h.chatMu.Lock()
	lock, ok := h.chatLock[chatID]
	if !ok {
		lock = &sync.Mutex{}
		h.chatLock[chatID] = lock
	}
	h.chatMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// shouldSkip reports whether the update must be ignored: empty messages,
// messages from bots (self included) and messages relayed via an inline bot.
func shouldSkip(msg *telego.Message, botID int64) bool {
	if msg == nil {
		return true
	}
	if msg.From == nil || msg.From.IsBot || msg.ViaBot != nil {
		return true
	}
	if botID != 0 && msg.From.ID == botID {
		return true
	}
	return messageText(msg) == ""
}

func messageText(msg *telego.Message) string {
	if msg == nil {
		return ""
	}
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}

// collectAttachments lists the media carried by the message. For photos only
// the largest size is kept.
func collectAttachments(msg *telego.Message) []*botpkg.Attachment {
	if msg == nil {
		return nil
	}

	var attachments []*botpkg.Attachment
	if len(msg.Photo) > 0 {
		largest := msg.Photo[len(msg.Photo)-1]
		attachments = append(attachments, &botpkg.Attachment{Kind: botpkg.AttachmentPhoto, FileID: largest.FileID})
	}
	if msg.Video != nil {
		attachments = append(attachments, &botpkg.Attachment{Kind: botpkg.AttachmentVideo, FileID: msg.Video.FileID, FileName: msg.Video.FileName})
	}
	if msg.Animation != nil {
		attachments = append(attachments, &botpkg.Attachment{Kind: botpkg.AttachmentAnimation, FileID: msg.Animation.FileID, FileName: msg.Animation.FileName})
	}
	if msg.Document != nil {
		attachments = append(attachments, &botpkg.Attachment{Kind: botpkg.AttachmentDocument, FileID: msg.Document.FileID, FileName: msg.Document.FileName})
	}
	if msg.Audio != nil {
		attachments = append(attachments, &botpkg.Attachment{Kind: botpkg.AttachmentAudio, FileID: msg.Audio.FileID, FileName: msg.Audio.FileName})
	}
	if msg.Voice != nil {
		attachments = append(attachments, &botpkg.Attachment{Kind: botpkg.AttachmentVoice, FileID: msg.Voice.FileID})
	}
	return attachments
}

func attachmentFileName(att *botpkg.Attachment) string {
	if att.FileName != "" {
		return att.FileName
	}
	switch att.Kind {
	case botpkg.AttachmentPhoto:
		return "photo.jpg"
	case botpkg.AttachmentVideo:
		return "video.mp4"
	case botpkg.AttachmentAnimation:
		return "animation.mp4"
	case botpkg.AttachmentAudio:
		return "audio.mp3"
	case botpkg.AttachmentVoice:
		return "voice.ogg"
	default:
		return "file.bin"
	}
}

// displayName formats the author attribution for the reposted message.
func displayName(user *telego.User) string {
	if user == nil {
		return "unknown"
	}
	name := strings.TrimSpace(strings.TrimSpace(user.FirstName) + " " + strings.TrimSpace(user.LastName))
	if name != "" {
		return name
	}
	if user.Username != "" {
		return "@" + user.Username
	}
	return "unknown"
}

func composeText(author, text string) string {
	return author + ": " + text
}

// truncate limits s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func linkButton(url, label string) *telego.InlineKeyboardMarkup {
	return tu.InlineKeyboard(
		tu.InlineKeyboardRow(
			tu.InlineKeyboardButton(label).WithURL(url),
		),
	)
}
