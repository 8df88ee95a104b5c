package entities

// Command is the closed set of macro commands the interpreter knows how to run.
type Command int

const (
	CommandUnsupported Command = iota
	CommandDS
	CommandSet
	CommandSize
	CommandTag
	CommandURL
	CommandWait
)

var commandsByName = map[string]Command{
	"DS":   CommandDS,
	"SET":  CommandSet,
	"SIZE": CommandSize,
	"TAG":  CommandTag,
	"URL":  CommandURL,
	"WAIT": CommandWait,
}

// ParseCommand - maps a command name (case-sensitive) to its variant
func ParseCommand(name string) Command {
	if cmd, ok := commandsByName[name]; ok {
		return cmd
	}
	return CommandUnsupported
}

func (c Command) String() string {
	for name, cmd := range commandsByName {
		if cmd == c {
			return name
		}
	}
	return "UNSUPPORTED"
}
