package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"

	"lingoscope/pkg/interp"
	"lingoscope/pkg/render"
	"lingoscope/pkg/session"
)

const (
	prompt      = "(lingo) "
	historyFile = ".lingoscope_history"
)

var errQuit = errors.New("quit")

const helpText = `commands:
  handlers                          list every handler
  render <handler> [bytecode] [dot] print a handler
  break <handler> <offset>          toggle a breakpoint
  delete <id>                       remove a breakpoint
  enable <id> | disable <id>        switch a breakpoint on or off
  breakpoints                       list function breakpoints
  pause <handler> <pc>              stop in a handler
  resume                            leave the paused handler
  help | quit
handlers may be written as id:name to pick a container
`

// Console is a line based debugger front end.
type Console struct {
	session   *session.Session
	out       io.Writer
	dotSyntax bool
	log       *slog.Logger
}

func New(sess *session.Session, out io.Writer, dotSyntax bool, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{session: sess, out: out, dotSyntax: dotSyntax, log: logger}
}

// Run reads commands until quit or end of input.
func (c *Console) Run(ctx context.Context) error {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(c.complete)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := ln.Prompt(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(c.out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		if err := c.Execute(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(c.out, "error: %s\n", err)
		}
	}
}

// Execute runs one command line.
func (c *Console) Execute(ctx context.Context, line string) error {
	cmd, err := ParseCommand(line)
	if err != nil {
		return fmt.Errorf("%w (type help)", err)
	}

	switch {
	case cmd.Quit:
		return errQuit

	case cmd.Help:
		fmt.Fprint(c.out, helpText)

	case cmd.Handlers:
		for _, ref := range c.session.Handlers() {
			fmt.Fprintf(c.out, "%d:%s\n", ref.ContainerID, ref.Name)
		}

	case cmd.Render != nil:
		return c.render(cmd.Render)

	case cmd.Break != nil:
		ref, err := c.session.Runtime().FindHandler(cmd.Break.Handler)
		if err != nil {
			return err
		}
		id, set, err := c.session.ToggleBreakpoint(ctx, ref.Name, ref.ContainerID, cmd.Break.Offset)
		if err != nil {
			return err
		}
		if set {
			fmt.Fprintf(c.out, "breakpoint %d at %d:%s [%d]\n", id, ref.ContainerID, ref.Name, cmd.Break.Offset)
		} else {
			fmt.Fprintf(c.out, "breakpoint %d cleared\n", id)
		}

	case cmd.Delete != nil:
		if err := c.session.Remove(ctx, *cmd.Delete); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "breakpoint %d deleted\n", *cmd.Delete)

	case cmd.Enable != nil:
		return c.setEnabled(ctx, *cmd.Enable, true)

	case cmd.Disable != nil:
		return c.setEnabled(ctx, *cmd.Disable, false)

	case cmd.Breakpoints:
		rows := c.session.ListFunctionBreakpoints()
		if len(rows) == 0 {
			fmt.Fprintln(c.out, "no breakpoints")
		}
		for _, row := range rows {
			state := "on "
			if !row.Enabled {
				state = "off"
			}
			fmt.Fprintf(c.out, "%3d %s [%5d] %s\n", row.ID, state, row.Offset, row.Description)
		}

	case cmd.Pause != nil:
		ref, err := c.session.Runtime().FindHandler(cmd.Pause.Handler)
		if err != nil {
			return err
		}
		if err := c.session.Pause(ref, cmd.Pause.PC); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "paused in %d:%s at %d\n", ref.ContainerID, ref.Name, cmd.Pause.PC)

	case cmd.Resume:
		if _, ok := c.session.PausedFrame(); !ok {
			return errors.New("not paused")
		}
		c.session.Resume()
		fmt.Fprintln(c.out, "resumed")
	}

	return nil
}

func (c *Console) render(cmd *RenderCmd) error {
	ref, err := c.session.Runtime().FindHandler(cmd.Handler)
	if err != nil {
		return err
	}

	mode := render.ModeSource
	dot := c.dotSyntax
	for _, opt := range cmd.Options {
		switch opt {
		case "bytecode":
			mode = render.ModeBytecode
		case "dot":
			dot = true
		}
	}

	events, err := c.session.Render(ref, mode, dot)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, render.Text(events))
	return nil
}

func (c *Console) setEnabled(ctx context.Context, id int, enabled bool) error {
	if err := c.session.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}
	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	fmt.Fprintf(c.out, "breakpoint %d %s\n", id, state)
	return nil
}

var commandNames = []string{"handlers", "render", "break", "delete", "enable", "disable", "breakpoints", "pause", "resume", "help", "quit"}

func (c *Console) complete(line string) []string {
	fields := strings.Fields(line)
	if len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(line, " ")) {
		return prefixed(commandNames, line, "")
	}

	switch fields[0] {
	case "render", "break", "b", "pause":
	default:
		return nil
	}
	if len(fields) > 2 || (len(fields) == 2 && strings.HasSuffix(line, " ")) {
		return nil
	}

	var names []string
	for _, ref := range c.session.Handlers() {
		names = append(names, ref.Name, handlerName(ref))
	}
	sort.Strings(names)

	partial := ""
	if len(fields) == 2 {
		partial = fields[1]
	}
	return prefixed(names, partial, fields[0]+" ")
}

func handlerName(ref interp.HandlerRef) string {
	return fmt.Sprintf("%d:%s", ref.ContainerID, ref.Name)
}

func prefixed(candidates []string, partial, head string) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range candidates {
		if strings.HasPrefix(s, partial) && !seen[s] {
			seen[s] = true
			out = append(out, head+s)
		}
	}
	return out
}
