package render

import (
	"fmt"
	"strings"

	"lingoscope/pkg/interp"
)

type Mode int

const (
	ModeSource Mode = iota
	ModeBytecode
)

func (m Mode) String() string {
	if m == ModeBytecode {
		return "bytecode"
	}
	return "source"
}

// ParseMode accepts "source" and "bytecode".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "source", "lingo":
		return ModeSource, nil
	case "bytecode", "bc":
		return ModeBytecode, nil
	}
	return ModeSource, fmt.Errorf("unknown render mode %q", s)
}

type EventKind int

const (
	// EventGutter starts a new line
	EventGutter EventKind = iota
	EventText
)

// Role tells the presentation layer how to style a text segment.
type Role int

const (
	RolePlain Role = iota
	RoleKeyword
	RoleThe
	RoleBuiltin
	RoleVar
	RoleLiteral
	RoleComment
	RoleType
	RoleCall
)

var roleNames = [...]string{"plain", "keyword", "the", "builtin", "var", "literal", "comment", "type", "call"}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "plain"
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	for i, name := range roleNames {
		if name == string(text) {
			*r = Role(i)
			return nil
		}
	}
	return fmt.Errorf("unknown role %q", text)
}

type Marker int

const (
	// MarkerNone means no breakpoint; clicking previews and then adds one
	MarkerNone Marker = iota
	MarkerEnabled
	MarkerDisabled
)

func (m Marker) MarshalText() ([]byte, error) {
	switch m {
	case MarkerEnabled:
		return []byte("enabled"), nil
	case MarkerDisabled:
		return []byte("disabled"), nil
	}
	return []byte("none"), nil
}

func (m *Marker) UnmarshalText(text []byte) error {
	switch string(text) {
	case "none":
		*m = MarkerNone
	case "enabled":
		*m = MarkerEnabled
	case "disabled":
		*m = MarkerDisabled
	default:
		return fmt.Errorf("unknown marker %q", text)
	}
	return nil
}

// Toggle is the breakpoint action bound to a gutter.
type Toggle struct {
	ContainerID int    `json:"container"`
	Handler     string `json:"handler"`
	Offset      uint32 `json:"offset"`
}

type Gutter struct {
	Line         int    `json:"line"`
	Offset       uint32 `json:"offset"`
	Indent       int    `json:"indent"`
	Marker       Marker `json:"marker"`
	BreakpointID int    `json:"breakpoint,omitempty"`
	Current      bool   `json:"current,omitempty"`
	Toggle       Toggle `json:"toggle"`
}

type Event struct {
	Kind   EventKind          `json:"kind"`
	Role   Role               `json:"role,omitempty"`
	Text   string             `json:"text,omitempty"`
	Gutter *Gutter            `json:"gutter,omitempty"`
	Link   *interp.HandlerRef `json:"link,omitempty"`
}

// Text flattens events into a plain listing. Each line is
//
//	<breakpoint><current>[offset] <indent><text>
//
// where the breakpoint column is '*' (enabled), 'o' (disabled) or blank and
// the current column is '>' for the executing statement.
func Text(events []Event) string {
	var out strings.Builder

	for i, ev := range events {
		switch ev.Kind {
		case EventGutter:
			if i > 0 {
				out.WriteString("\n")
			}
			g := ev.Gutter
			bp := ' '
			switch g.Marker {
			case MarkerEnabled:
				bp = '*'
			case MarkerDisabled:
				bp = 'o'
			}
			cur := ' '
			if g.Current {
				cur = '>'
			}
			fmt.Fprintf(&out, "%c%c[%5d] %s", bp, cur, g.Offset, strings.Repeat("  ", g.Indent))
		case EventText:
			out.WriteString(ev.Text)
		}
	}
	if len(events) > 0 {
		out.WriteString("\n")
	}

	return out.String()
}

// Lines splits events into per-line text without gutters.
func Lines(events []Event) []string {
	var lines []string
	var cur strings.Builder
	started := false

	for _, ev := range events {
		switch ev.Kind {
		case EventGutter:
			if started {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			started = true
			cur.WriteString(strings.Repeat("  ", ev.Gutter.Indent))
		case EventText:
			cur.WriteString(ev.Text)
		}
	}
	if started {
		lines = append(lines, cur.String())
	}
	return lines
}

// Gutters returns the gutter of every line in order.
func Gutters(events []Event) []Gutter {
	var out []Gutter
	for _, ev := range events {
		if ev.Kind == EventGutter {
			out = append(out, *ev.Gutter)
		}
	}
	return out
}
