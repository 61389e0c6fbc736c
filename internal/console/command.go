package console

import "strings"

// Command is a main-menu selection.
type Command int

const (
	CmdUnknown Command = iota
	CmdAdd
	CmdDelete
	CmdFind
	CmdList
	CmdExit
)

// menuOrder is the display order of the main menu.
var menuOrder = []Command{CmdAdd, CmdDelete, CmdFind, CmdList, CmdExit}

var commandLabels = map[Command]string{
	CmdAdd:    "Add Car Details",
	CmdDelete: "Delete Car Details",
	CmdFind:   "Find Car Details",
	CmdList:   "Show All Car Details",
	CmdExit:   "Exit",
}

var commandKeys = map[string]Command{
	"1": CmdAdd,
	"2": CmdDelete,
	"3": CmdFind,
	"4": CmdList,
	"5": CmdExit,
}

// ParseCommand maps menu input to a Command. Surrounding whitespace is
// ignored; anything else must match exactly.
func ParseCommand(input string) Command {
	if c, ok := commandKeys[strings.TrimSpace(input)]; ok {
		return c
	}
	return CmdUnknown
}

// Key returns the menu number for c.
func (c Command) Key() string {
	for k, cmd := range commandKeys {
		if cmd == c {
			return k
		}
	}
	return ""
}

func (c Command) String() string {
	if label, ok := commandLabels[c]; ok {
		return label
	}
	return "Unknown"
}
