package shell

import (
	"fmt"
	"strings"

	"github.com/amosWeiskopf/indexsmith/pkg/reporter"
)

// Command is one parsed line of shell input
type Command interface {
	name() string
}

type CrawlCommand struct {
	URL      string // empty means the configured seed
	SavePath string // empty means the configured store
}

type LoadCommand struct {
	Path string // empty means the configured store
}

type SaveCommand struct {
	Path string
}

type PrintCommand struct {
	Word string
}

type SearchCommand struct {
	Terms []string
}

type HelpCommand struct{}

type ExitCommand struct{}

// UnknownCommand is input whose first word names no command
type UnknownCommand struct {
	Name string
}

func (CrawlCommand) name() string     { return "crawl" }
func (LoadCommand) name() string      { return "load" }
func (SaveCommand) name() string      { return "save" }
func (PrintCommand) name() string     { return "print" }
func (SearchCommand) name() string    { return "search" }
func (HelpCommand) name() string      { return "help" }
func (ExitCommand) name() string      { return "exit" }
func (c UnknownCommand) name() string { return c.Name }

// UsageError is returned for a known command given the wrong arguments
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "Usage: " + e.Usage
}

// commandDef describes a command's spelling and arguments. maxArgs < 0
// accepts any number of arguments.
type commandDef struct {
	names       []string
	usage       string
	description string
	minArgs     int
	maxArgs     int
	build       func(args []string) Command
}

// optional returns the i-th argument, or "" when it was not given
func optional(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i]
}

var commands = []commandDef{
	{
		names:       []string{"crawl", "build"},
		usage:       "crawl [url] [path]",
		description: "Crawl a website and build a new index, saved to path (default: the configured seed and store)",
		maxArgs:     2,
		build: func(args []string) Command {
			return CrawlCommand{URL: optional(args, 0), SavePath: optional(args, 1)}
		},
	},
	{
		names:       []string{"load"},
		usage:       "load [path]",
		description: "Load a saved index (default: the configured store)",
		maxArgs:     1,
		build:       func(args []string) Command { return LoadCommand{Path: optional(args, 0)} },
	},
	{
		names:       []string{"save"},
		usage:       "save [path]",
		description: "Save the current index (default: the configured store)",
		maxArgs:     1,
		build:       func(args []string) Command { return SaveCommand{Path: optional(args, 0)} },
	},
	{
		names:       []string{"print"},
		usage:       "print <word>",
		description: "Show every page containing a word and how often it occurs",
		minArgs:     1,
		maxArgs:     1,
		build:       func(args []string) Command { return PrintCommand{Word: args[0]} },
	},
	{
		names:       []string{"search", "find"},
		usage:       "search <word> [word...]",
		description: "Rank pages by the combined counts of the given words",
		minArgs:     1,
		maxArgs:     -1,
		build:       func(args []string) Command { return SearchCommand{Terms: args} },
	},
	{
		names:       []string{"help"},
		usage:       "help",
		description: "Show this list of commands",
		maxArgs:     -1,
		build:       func([]string) Command { return HelpCommand{} },
	},
	{
		names:       []string{"exit", "quit"},
		usage:       "exit",
		description: "Leave the shell",
		maxArgs:     -1,
		build:       func([]string) Command { return ExitCommand{} },
	},
}

var commandsByName = func() map[string]*commandDef {
	m := make(map[string]*commandDef)
	for i := range commands {
		for _, n := range commands[i].names {
			m[n] = &commands[i]
		}
	}
	return m
}()

// Parse turns a line of input into a Command. Blank lines yield a nil
// Command and no error. Command names are case-insensitive.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	name := strings.ToLower(fields[0])
	args := fields[1:]

	def, ok := commandsByName[name]
	if !ok {
		return UnknownCommand{Name: fields[0]}, nil
	}
	if len(args) < def.minArgs || (def.maxArgs >= 0 && len(args) > def.maxArgs) {
		return nil, &UsageError{Usage: def.usage}
	}
	return def.build(args), nil
}

// HelpEntries lists every command for the help table
func HelpEntries() []reporter.HelpEntry {
	entries := make([]reporter.HelpEntry, 0, len(commands))
	for _, c := range commands {
		usage := c.usage
		if len(c.names) > 1 {
			usage = fmt.Sprintf("%s (%s)", usage, strings.Join(c.names[1:], ", "))
		}
		entries = append(entries, reporter.HelpEntry{Usage: usage, Description: c.description})
	}
	return entries
}
