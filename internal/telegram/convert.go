package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/TGCreditBot/internal/models"
)

// InboundFromMessage converts a Telegram message into the bot's inbound shape.
// Content kind is chosen in the order text, voice, photo, video, document.
func InboundFromMessage(msg *tgbotapi.Message) models.InboundMessage {
	in := models.InboundMessage{
		MessageID: msg.MessageID,
		Kind:      classify(msg),
		Text:      msg.Text,
		Caption:   msg.Caption,
	}
	if msg.Chat != nil {
		in.ChatID = msg.Chat.ID
	}
	if msg.From != nil {
		in.From = models.Sender{
			ID:        msg.From.ID,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
			Username:  msg.From.UserName,
			IsBot:     msg.From.IsBot,
		}
	}
	if quoted := msg.ReplyToMessage; quoted != nil {
		in.ReplyTo = &models.QuotedMessage{
			FromBot: quoted.From != nil && quoted.From.IsBot,
			Text:    quoted.Text,
		}
	}
	if in.ChatID == 0 {
		in.ChatID = in.From.ID
	}
	return in
}

func classify(msg *tgbotapi.Message) models.ContentKind {
	switch {
	case msg.Text != "":
		return models.KindText
	case msg.Voice != nil:
		return models.KindVoice
	case len(msg.Photo) > 0:
		return models.KindPhoto
	case msg.Video != nil:
		return models.KindVideo
	case msg.Document != nil:
		return models.KindDocument
	default:
		return models.KindUnsupported
	}
}
