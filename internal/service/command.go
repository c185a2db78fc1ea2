package service

import "strings"

// Command is one of the bot's fixed slash commands.
type Command int

const (
	CommandNone Command = iota
	CommandStart
	CommandProfile
	CommandInfo
	CommandCredit
	CommandImage
)

var commandNames = map[string]Command{
	"/start":   CommandStart,
	"/profile": CommandProfile,
	"/info":    CommandInfo,
	"/credit":  CommandCredit,
	"/image":   CommandImage,
}

func (c Command) String() string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return "none"
}

// ParsedCommand is a recognized command with everything after its first token.
type ParsedCommand struct {
	Command Command
	Args    string
	Tokens  []string
}

// ParseCommand tokenizes text on single spaces and matches the first token
// against the command set. A "@botname" suffix on the first token is ignored.
// /image is only a command when something follows it.
func ParseCommand(text string) (ParsedCommand, bool) {
	tokens := strings.Split(text, " ")
	head := tokens[0]
	if at := strings.IndexByte(head, '@'); at > 0 {
		head = head[:at]
	}

	cmd, ok := commandNames[head]
	if !ok {
		return ParsedCommand{}, false
	}
	if cmd == CommandImage && len(tokens) < 2 {
		return ParsedCommand{}, false
	}

	return ParsedCommand{
		Command: cmd,
		Args:    strings.TrimSpace(strings.Join(tokens[1:], " ")),
		Tokens:  tokens,
	}, true
}
