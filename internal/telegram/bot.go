package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/TGCreditBot/internal/models"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot delivers replies and chat actions to Telegram.
type Bot struct {
	api API
	log *slog.Logger
}

func NewBot(api API, log *slog.Logger) *Bot {
	return &Bot{api: api, log: log}
}

func (b *Bot) SendChatAction(ctx context.Context, chatID int64, activity models.Activity) error {
	action := tgbotapi.ChatTyping
	if activity == models.ActivityUploadPhoto {
		action = tgbotapi.ChatUploadPhoto
	}
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, action)); err != nil {
		return fmt.Errorf("send chat action %s: %w", action, err)
	}
	return nil
}

// Send delivers one reply with MarkdownV2 formatting and returns the message
// Telegram stored. When Telegram cannot parse the markup (an unbalanced * or
// backtick from model output) the reply is sent once more as plain text.
func (b *Bot) Send(ctx context.Context, reply models.Reply) (tgbotapi.Message, error) {
	cfg, err := buildChattable(reply, tgbotapi.ModeMarkdownV2)
	if err != nil {
		return tgbotapi.Message{}, err
	}

	sent, err := b.api.Send(cfg)
	if err != nil && isParseError(err) {
		b.log.Warn("markdown rejected, resending as plain text", "kind", reply.Kind, "chat_id", reply.ChatID, "err", err)
		plain := reply
		plain.Text = UnescapeMarkdown(reply.Text)
		plain.Caption = UnescapeMarkdown(reply.Caption)
		cfg, _ = buildChattable(plain, "")
		sent, err = b.api.Send(cfg)
	}
	if err != nil {
		b.log.Error("send reply", "kind", reply.Kind, "chat_id", reply.ChatID, "err", err)
		return tgbotapi.Message{}, fmt.Errorf("send %s reply: %w", reply.Kind, err)
	}
	return sent, nil
}

func isParseError(err error) bool {
	return strings.Contains(err.Error(), "can't parse entities")
}

func buildChattable(reply models.Reply, parseMode string) (tgbotapi.Chattable, error) {
	switch reply.Kind {
	case models.ReplyText, "":
		msg := tgbotapi.NewMessage(reply.ChatID, reply.Text)
		msg.ParseMode = parseMode
		msg.ReplyToMessageID = reply.ReplyToMessageID
		return msg, nil
	case models.ReplyPhoto:
		photo := tgbotapi.NewPhoto(reply.ChatID, tgbotapi.FileURL(reply.MediaURL))
		photo.Caption = reply.Caption
		photo.ParseMode = parseMode
		photo.ReplyToMessageID = reply.ReplyToMessageID
		return photo, nil
	case models.ReplyVideo:
		video := tgbotapi.NewVideo(reply.ChatID, tgbotapi.FileURL(reply.MediaURL))
		video.Caption = reply.Caption
		video.ParseMode = parseMode
		video.ReplyToMessageID = reply.ReplyToMessageID
		return video, nil
	case models.ReplyDocument:
		doc := tgbotapi.NewDocument(reply.ChatID, tgbotapi.FileURL(reply.MediaURL))
		doc.Caption = reply.Caption
		doc.ParseMode = parseMode
		doc.ReplyToMessageID = reply.ReplyToMessageID
		return doc, nil
	default:
		return nil, fmt.Errorf("unknown reply kind %q", reply.Kind)
	}
}
