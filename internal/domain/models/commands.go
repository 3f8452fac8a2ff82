package models

import "strings"

// CommandType enumerates supported operator command categories.
type CommandType string

const (
	CommandCreate     CommandType = "create"
	CommandAdd        CommandType = "add"
	CommandTake       CommandType = "take"
	CommandRemove     CommandType = "remove"
	CommandShow       CommandType = "show"
	CommandStatus     CommandType = "status"
	CommandConditions CommandType = "conditions"
	CommandRecommend  CommandType = "recommend"
	CommandSafety     CommandType = "safety"
	CommandBins       CommandType = "bins"
	CommandHelp       CommandType = "help"
	CommandUnknown    CommandType = "unknown"
)

var knownCommands = map[string]CommandType{
	string(CommandCreate):     CommandCreate,
	string(CommandAdd):        CommandAdd,
	string(CommandTake):       CommandTake,
	string(CommandRemove):     CommandRemove,
	string(CommandShow):       CommandShow,
	string(CommandStatus):     CommandStatus,
	string(CommandConditions): CommandConditions,
	string(CommandRecommend):  CommandRecommend,
	string(CommandSafety):     CommandSafety,
	string(CommandBins):       CommandBins,
	string(CommandHelp):       CommandHelp,
}

// Command represents a parsed operator instruction extracted from message text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. Only the command word is
// case-folded; bin identifiers and item names keep their case.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.TrimSpace(message))
	if len(tokens) == 0 {
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	if t, ok := knownCommands[head]; ok {
		cmd.Type = t
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
