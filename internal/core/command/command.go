// Package command turns a raw chat line into a tagged command with positional
// arguments. It knows nothing about storage or transports.
package command

import "strings"

// Prefix marks a line as addressed to the bot.
const Prefix = "!"

type Kind int

const (
	Unknown Kind = iota
	Help
	List
	Add
	Update
	Delete
	Reset
)

var kindNames = map[Kind]string{
	Unknown: "unknown",
	Help:    "help",
	List:    "list",
	Add:     "add",
	Update:  "update",
	Delete:  "delete",
	Reset:   "reset",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// keywords maps every accepted spelling to its command. The Hungarian names
// are the canonical ones shown in the help text.
var keywords = map[string]Kind{
	"!segitseg": Help,
	"!help":     Help,
	"!raktar":   List,
	"!list":     List,
	"!search":   List,
	"!hozzaad":  Add,
	"!add":      Add,
	"!modosit":  Update,
	"!update":   Update,
	"!torol":    Delete,
	"!delete":   Delete,
	"!reset":    Reset,
}

type Command struct {
	Kind    Kind
	Keyword string
	Args    []string
}

// Normalize trims and lowercases a line the way every command is matched.
func Normalize(line string) string {
	return strings.ToLower(strings.TrimSpace(line))
}

// IsCommand reports whether the line starts with the command prefix.
func IsCommand(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), Prefix)
}

// Parse normalizes line and splits it on whitespace. The first field selects
// the command; the rest are returned untouched as arguments.
func Parse(line string) Command {
	fields := strings.Fields(Normalize(line))
	if len(fields) == 0 {
		return Command{Kind: Unknown}
	}

	cmd := Command{
		Kind:    keywords[fields[0]],
		Keyword: fields[0],
	}
	if len(fields) > 1 {
		cmd.Args = fields[1:]
	}
	return cmd
}
