package models

// ContentKind is the classified payload of an inbound message.
type ContentKind string

const (
	KindText        ContentKind = "text"
	KindVoice       ContentKind = "voice"
	KindPhoto       ContentKind = "photo"
	KindVideo       ContentKind = "video"
	KindDocument    ContentKind = "document"
	KindUnsupported ContentKind = "unsupported"
)

type Sender struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	IsBot     bool
}

// DisplayName is the first name, followed by the last name when present.
func (s Sender) DisplayName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

type QuotedMessage struct {
	FromBot bool
	Text    string
}

type InboundMessage struct {
	MessageID int
	ChatID    int64
	From      Sender
	Kind      ContentKind
	Text      string
	Caption   string
	ReplyTo   *QuotedMessage
}

type ReplyKind string

const (
	ReplyText     ReplyKind = "text"
	ReplyPhoto    ReplyKind = "photo"
	ReplyVideo    ReplyKind = "video"
	ReplyDocument ReplyKind = "document"
)

// Reply is the single outbound message produced for an inbound one.
// Text and Caption are already escaped for MarkdownV2.
type Reply struct {
	Kind             ReplyKind
	ChatID           int64
	ReplyToMessageID int
	Text             string
	MediaURL         string
	Caption          string
}

// Activity is a chat action shown while a reply is being prepared.
type Activity string

const (
	ActivityTyping      Activity = "typing"
	ActivityUploadPhoto Activity = "upload_photo"
)
