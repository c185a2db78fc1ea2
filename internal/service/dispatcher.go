package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/digkill/TGCreditBot/internal/models"
	"github.com/digkill/TGCreditBot/internal/openai"
	"github.com/digkill/TGCreditBot/internal/telegram"
)

const (
	queryTemperature = 0.2
	queryMaxTokens   = 1024
	minImageTokens   = 4
)

// Completer is the AI provider. Calls never fail outright; problems come back
// as a failed Result.
type Completer interface {
	Complete(ctx context.Context, req openai.ChatRequest) openai.Result
	GenerateImage(ctx context.Context, prompt string) openai.Result
}

type ActivitySignaler interface {
	SendChatAction(ctx context.Context, chatID int64, activity models.Activity) error
}

// outcome is a handler result before escaping and addressing.
type outcome struct {
	kind     models.ReplyKind
	text     string
	mediaURL string
	caption  string
	quote    bool
}

func textOutcome(text string, quote bool) outcome {
	return outcome{kind: models.ReplyText, text: text, quote: quote}
}

// Dispatcher turns one inbound message into exactly one reply.
type Dispatcher struct {
	log          *slog.Logger
	users        *UserService
	metering     *MeteringService
	ai           Completer
	activity     ActivitySignaler
	systemPrompt string
}

func NewDispatcher(log *slog.Logger, users *UserService, metering *MeteringService, ai Completer, activity ActivitySignaler, systemPrompt string) *Dispatcher {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}
	return &Dispatcher{
		log:          log,
		users:        users,
		metering:     metering,
		ai:           ai,
		activity:     activity,
		systemPrompt: systemPrompt,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg models.InboundMessage) models.Reply {
	return d.assemble(msg, d.handle(ctx, msg))
}

func (d *Dispatcher) handle(ctx context.Context, msg models.InboundMessage) outcome {
	user, err := d.users.Resolve(ctx, msg.From.ID)
	if err != nil {
		d.log.Error("resolve user", "telegram_id", msg.From.ID, "err", err)
		return textOutcome(internalErrorText, false)
	}

	switch msg.Kind {
	case models.KindText:
		if parsed, ok := ParseCommand(msg.Text); ok {
			return d.handleCommand(ctx, user, msg, parsed)
		}
		return d.handleQuery(ctx, user, msg)
	case models.KindVoice, models.KindPhoto, models.KindVideo, models.KindDocument:
		return d.handleQuery(ctx, user, msg)
	default:
		return textOutcome(unsupportedKindText, false)
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, user *models.User, msg models.InboundMessage, parsed ParsedCommand) outcome {
	switch parsed.Command {
	case CommandStart:
		return textOutcome(startText, false)
	case CommandProfile:
		return textOutcome(fmt.Sprintf(profileTemplate, user.TelegramID, msg.From.DisplayName(), user.Credit), false)
	case CommandInfo:
		return textOutcome(infoText, false)
	case CommandCredit:
		d.signal(ctx, msg.ChatID, models.ActivityTyping)
		return textOutcome(creditDocument, false)
	case CommandImage:
		return d.handleImage(ctx, user, msg, parsed)
	default:
		return d.handleQuery(ctx, user, msg)
	}
}

func (d *Dispatcher) handleImage(ctx context.Context, user *models.User, msg models.InboundMessage, parsed ParsedCommand) outcome {
	if user.Credit < models.CostImage {
		return textOutcome(notEnoughCreditText, true)
	}
	if len(parsed.Tokens) < minImageTokens {
		return textOutcome(imagePromptTooShortText, true)
	}

	d.signal(ctx, msg.ChatID, models.ActivityUploadPhoto)
	result := d.ai.GenerateImage(ctx, parsed.Args)
	if !result.OK {
		return textOutcome(result.Diagnostic(), true)
	}

	if _, err := d.metering.Charge(ctx, user, models.UsageImage, parsed.Args, result.Content); err != nil {
		d.log.Error("charge image", "telegram_id", user.TelegramID, "err", err)
	}
	return outcome{
		kind:     models.ReplyPhoto,
		mediaURL: result.Content,
		caption:  imageCaption,
		quote:    true,
	}
}

func (d *Dispatcher) handleQuery(ctx context.Context, user *models.User, msg models.InboundMessage) outcome {
	if user.Credit <= 0 {
		return textOutcome(notEnoughCreditText, true)
	}

	d.signal(ctx, msg.ChatID, models.ActivityTyping)
	prompt := queryText(msg)
	result := d.ai.Complete(ctx, openai.ChatRequest{
		Messages:    d.conversation(msg, prompt),
		Temperature: queryTemperature,
		MaxTokens:   queryMaxTokens,
	})
	if !result.OK {
		return textOutcome(result.Diagnostic(), true)
	}

	if _, err := d.metering.Charge(ctx, user, models.UsageQuery, prompt, ""); err != nil {
		d.log.Error("charge query", "telegram_id", user.TelegramID, "err", err)
	}
	return textOutcome(result.Content, true)
}

// conversation builds the system message, the quoted message when the inbound
// one is a reply, and the user's text.
func (d *Dispatcher) conversation(msg models.InboundMessage, prompt string) []openai.Message {
	messages := []openai.Message{{Role: openai.RoleSystem, Content: d.systemPrompt}}
	if quoted := msg.ReplyTo; quoted != nil && quoted.Text != "" {
		role := openai.RoleUser
		if quoted.FromBot {
			role = openai.RoleAssistant
		}
		messages = append(messages, openai.Message{Role: role, Content: quoted.Text})
	}
	return append(messages, openai.Message{Role: openai.RoleUser, Content: prompt})
}

func queryText(msg models.InboundMessage) string {
	if msg.Kind == models.KindText {
		return msg.Text
	}
	tag := "<media:" + string(msg.Kind) + ">"
	if msg.Caption == "" {
		return tag
	}
	return tag + " " + msg.Caption
}

func (d *Dispatcher) signal(ctx context.Context, chatID int64, activity models.Activity) {
	if d.activity == nil {
		return
	}
	if err := d.activity.SendChatAction(ctx, chatID, activity); err != nil {
		d.log.Warn("chat action failed", "chat_id", chatID, "activity", activity, "err", err)
	}
}

func (d *Dispatcher) assemble(msg models.InboundMessage, out outcome) models.Reply {
	reply := models.Reply{
		Kind:     out.kind,
		ChatID:   msg.ChatID,
		Text:     telegram.EscapeMarkdownLimit(out.text, telegram.MaxMessageLength),
		MediaURL: out.mediaURL,
		Caption:  telegram.EscapeMarkdownLimit(out.caption, telegram.MaxCaptionLength),
	}
	if out.quote {
		reply.ReplyToMessageID = msg.MessageID
	}
	return reply
}
