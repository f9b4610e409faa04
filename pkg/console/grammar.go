package console

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Command is one console line.
type Command struct {
	Handlers    bool       `  @"handlers"`
	Render      *RenderCmd `| "render" @@`
	Break       *BreakCmd  `| ("break" | "b") @@`
	Delete      *int       `| "delete" @Int`
	Enable      *int       `| "enable" @Int`
	Disable     *int       `| "disable" @Int`
	Breakpoints bool       `| @"breakpoints"`
	Pause       *PauseCmd  `| "pause" @@`
	Resume      bool       `| @("resume" | "continue")`
	Help        bool       `| @("help" | "?")`
	Quit        bool       `| @("quit" | "exit")`
}

// RenderCmd: render <handler> [bytecode] [dot]
type RenderCmd struct {
	Handler string   `@(Handler | Ident)`
	Options []string `@("bytecode" | "dot")*`
}

// BreakCmd: break <handler> <offset>
type BreakCmd struct {
	Handler string `@(Handler | Ident)`
	Offset  uint32 `@Int`
}

// PauseCmd: pause <handler> <pc>
type PauseCmd struct {
	Handler string `@(Handler | Ident)`
	PC      uint32 `@Int`
}

var commandLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[\s]+`},
	// container-qualified handler name, e.g. 7:foo
	{Name: "Handler", Pattern: `[0-9]+:[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `\?`},
})

var commandParser = participle.MustBuild[Command](
	participle.Lexer(commandLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// ParseCommand parses one console line.
func ParseCommand(line string) (*Command, error) {
	return commandParser.ParseString("", line)
}
