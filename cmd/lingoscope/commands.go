package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"lingoscope/pkg/assembler"
	"lingoscope/pkg/breakpoint"
	"lingoscope/pkg/bytecode"
	"lingoscope/pkg/console"
	"lingoscope/pkg/decompiler"
	"lingoscope/pkg/interp"
	"lingoscope/pkg/lexer"
	"lingoscope/pkg/persist"
	"lingoscope/pkg/render"
	"lingoscope/pkg/server"
	"lingoscope/pkg/session"
	"lingoscope/pkg/token"
)

func newTokensCommand(g *globalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "print the tokens of a Lingo assembly file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			l := lexer.New(string(data))
			for {
				tok := l.NextToken()
				if tok.Type == token.NEWLINE {
					continue
				}
				fmt.Printf("%-8s %-10s %-20s\n", tok.Pos(), tok.Type, fmt.Sprintf("'%s'", tok.Literal))
				if tok.Type == token.EOF {
					return nil
				}
			}
		},
	}
}

func newDisasmCommand(g *globalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm FILE",
		Short: "assemble a file and list the bytecode of every handler",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scripts, err := loadScripts(args[0], g)
			if err != nil {
				return err
			}
			for _, s := range scripts {
				for _, h := range s.Handlers {
					fmt.Printf("script %d handler %s (%d bytes)\n", s.ID, h.Name, len(h.Code))
					fmt.Print(bytecode.String(h.Instructions))
					fmt.Println()
				}
			}
			return nil
		},
	}
}

func newASTCommand(g *globalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "ast FILE HANDLER",
		Short: "dump the decompiled tree of a handler",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(args[0], g)
			if err != nil {
				return err
			}
			ref, err := rt.FindHandler(args[1])
			if err != nil {
				return err
			}
			_, h, _ := rt.Handler(ref)

			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, MaxDepth: 12}
			cfg.Dump(h.AST)
			return nil
		},
	}
}

func newInspectCommand(g *globalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "summarize the handlers of a file and what they call",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scripts, err := loadScripts(args[0], g)
			if err != nil {
				return err
			}
			for _, s := range scripts {
				printHandlerInsights(os.Stdout, analyzeScript(s))
			}
			return nil
		},
	}
}

type renderOptions struct {
	mode      string
	dotSyntax bool
	pc        int64
	breaks    []uint
}

func newRenderCommand(g *globalConfig) *cobra.Command {
	opts := new(renderOptions)
	c := &cobra.Command{
		Use:   "render FILE HANDLER",
		Short: "render a handler as Lingo source or annotated bytecode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), g, opts, args[0], args[1], cmd.OutOrStdout())
		},
	}
	c.Flags().StringVarP(&opts.mode, "mode", "m", "source", "`source` or bytecode")
	c.Flags().BoolVar(&opts.dotSyntax, "dot", false, "use dot syntax (defaults to LINGOSCOPE_DOT_SYNTAX)")
	c.Flags().Int64Var(&opts.pc, "pc", -1, "pretend the handler is paused at this byte offset")
	c.Flags().UintSliceVarP(&opts.breaks, "break", "b", nil, "show breakpoints at these byte offsets for this render only")
	return c
}

func runRender(ctx context.Context, g *globalConfig, opts *renderOptions, path, handler string, out io.Writer) error {
	mode, err := render.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	sess, closeSession, err := openSession(ctx, path, g)
	if err != nil {
		return err
	}
	defer closeSession()
	ref, err := sess.Runtime().FindHandler(handler)
	if err != nil {
		return err
	}

	// render-only breakpoints, never saved
	for _, offset := range opts.breaks {
		_, err := sess.Store().Add(breakpoint.KindFunction, ref.ContainerID, ref.Name, uint32(offset))
		if err != nil && !errors.Is(err, breakpoint.ErrDuplicateBreakpoint) {
			return err
		}
	}
	if opts.pc >= 0 {
		if err := sess.Pause(ref, uint32(opts.pc)); err != nil {
			return err
		}
	}

	events, err := sess.Render(ref, mode, opts.dotSyntax || g.cfg.DotSyntax)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, render.Text(events))
	return err
}

func newBreakpointsCommand(g *globalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "breakpoints FILE",
		Short: "list the function breakpoints stored in LINGOSCOPE_DB_DSN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeSession, err := openSession(cmd.Context(), args[0], g)
			if err != nil {
				return err
			}
			defer closeSession()
			rows := sess.ListFunctionBreakpoints()
			if len(rows) == 0 {
				fmt.Println("no breakpoints")
			}
			for _, row := range rows {
				state := "on "
				if !row.Enabled {
					state = "off"
				}
				fmt.Printf("%3d %s [%5d] %s\n", row.ID, state, row.Offset, row.Description)
			}
			return nil
		},
	}
}

func newConsoleCommand(g *globalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "console FILE",
		Short: "start an interactive debugger console",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeSession, err := openSession(cmd.Context(), args[0], g)
			if err != nil {
				return err
			}
			defer closeSession()
			fmt.Printf("lingoscope %s, %d handlers loaded. Type help for commands.\n", Version, len(sess.Handlers()))
			return console.New(sess, os.Stdout, g.cfg.DotSyntax, g.log).Run(cmd.Context())
		},
	}
}

func newServeCommand(g *globalConfig) *cobra.Command {
	var addr string
	c := &cobra.Command{
		Use:   "serve FILE",
		Short: "serve a debugger session over websocket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeSession, err := openSession(cmd.Context(), args[0], g)
			if err != nil {
				return err
			}
			defer closeSession()
			if addr == "" {
				addr = g.cfg.Addr
			}
			srv := server.New(sess, server.Options{
				PasswordHash: g.cfg.PasswordHash,
				Secret:       g.cfg.JWTSecret,
				TokenTTL:     g.cfg.TokenTTL,
				DotSyntax:    g.cfg.DotSyntax,
			}, g.log)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	c.Flags().StringVar(&addr, "addr", "", "listen address (defaults to LINGOSCOPE_ADDR)")
	return c
}

func newHashpwCommand(g *globalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "hashpw",
		Short: "read a password from stdin and print its bcrypt hash for LINGOSCOPE_PASSWORD_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			hash, err := server.HashPassword(strings.TrimRight(password, "\r\n"))
			if err != nil {
				return err
			}
			fmt.Println(hash)
			return nil
		},
	}
}

func loadScripts(path string, g *globalConfig) ([]*decompiler.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scripts, err := assembler.AssembleString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for _, s := range scripts {
		if err := decompiler.DecompileScript(s, g.log); err != nil {
			return nil, fmt.Errorf("%s: script %d: %w", path, s.ID, err)
		}
	}
	return scripts, nil
}

func loadRuntime(path string, g *globalConfig) (*interp.Runtime, error) {
	scripts, err := loadScripts(path, g)
	if err != nil {
		return nil, err
	}
	rt := interp.NewRuntime(g.log)
	for _, s := range scripts {
		rt.AddScript(s)
	}
	return rt, nil
}

// openSession loads a runtime from path and attaches the configured
// breakpoint database. The returned func closes the database.
func openSession(ctx context.Context, path string, g *globalConfig) (*session.Session, func(), error) {
	rt, err := loadRuntime(path, g)
	if err != nil {
		return nil, nil, err
	}

	opts := []session.Option{
		session.WithLogger(g.log),
		session.WithStrictOffsets(g.cfg.StrictOffsets),
	}
	closeSession := func() {}
	if g.cfg.DBDSN != "" {
		repo, err := persist.Open(ctx, g.cfg.DBDriver, g.cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		closeSession = func() {
			if err := repo.Close(); err != nil {
				g.log.Warn("closing breakpoint database", "error", err)
			}
		}
		opts = append(opts, session.WithPersistence(repo))
	}

	sess, err := session.New(ctx, rt, opts...)
	if err != nil {
		closeSession()
		return nil, nil, err
	}
	return sess, closeSession, nil
}
