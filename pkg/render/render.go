package render

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"lingoscope/pkg/ast"
	"lingoscope/pkg/bytecode"
	"lingoscope/pkg/opcode"
)

// translationColumn is where the decompiled annotation of a bytecode line starts.
const translationColumn = 49

type renderer struct {
	ctx    Context
	view   *ScriptView
	state  RenderState
	events []Event
	width  int
	log    *slog.Logger
}

// Render produces the event stream for a handler. The result depends only on
// the view, the breakpoints visible through ctx and the paused frame, so
// rendering the same inputs twice yields identical streams.
func Render(ctx Context, view *ScriptView, mode Mode) []Event {
	logger := ctx.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if view.Offsets == nil {
		view.Offsets = bytecode.IndexInstructions(view.Instructions)
	}
	view.Offsets.Reset()

	r := &renderer{
		ctx:  ctx,
		view: view,
		state: RenderState{
			DotSyntax: view.DotSyntax,
			Tracker:   NewTracker(view.ProgramCounter),
		},
		log: logger.With("container", view.ContainerID, "handler", view.Handler),
	}

	switch mode {
	case ModeBytecode:
		r.bytecode()
	default:
		if view.Root == nil {
			r.log.Warn("handler has no syntax tree, rendering bytecode")
			r.bytecode()
			break
		}
		view.Root.Accept(r)
	}

	return r.events
}

// line runs the statement prologue: resolve the logical position, look up the
// breakpoint, ask the tracker and emit the gutter.
func (r *renderer) line(logical int, track bool) {
	r.gutter(r.view.Offsets.Resolve(logical), track)
}

func (r *renderer) gutter(offset uint32, track bool) {
	g := &Gutter{
		Line:   r.state.Lines,
		Offset: offset,
		Indent: r.state.Indent,
		Toggle: Toggle{
			ContainerID: r.view.ContainerID,
			Handler:     r.view.Handler,
			Offset:      offset,
		},
	}
	r.state.Lines++

	if r.ctx.Breakpoints != nil {
		if bp, ok := r.ctx.Breakpoints.Lookup(r.view.Handler, r.view.ContainerID, offset); ok {
			g.BreakpointID = bp.ID
			g.Marker = MarkerDisabled
			if bp.Enabled {
				g.Marker = MarkerEnabled
			}
		}
	}
	if track {
		g.Current = r.state.Tracker.Check(offset)
	}

	r.events = append(r.events, Event{Kind: EventGutter, Gutter: g})
	r.width = 2 * r.state.Indent
}

func (r *renderer) text(role Role, s string) {
	if s == "" {
		return
	}
	r.events = append(r.events, Event{Kind: EventText, Role: role, Text: s})
	r.width += len(s)
}

func (r *renderer) plain(s string)   { r.text(RolePlain, s) }
func (r *renderer) keyword(s string) { r.text(RoleKeyword, s) }

func (r *renderer) header() {
	if r.view.IsGenericEvent {
		return
	}
	root := r.view.Root
	start := 0
	if root != nil {
		start = root.Start()
	}

	r.line(start, false)
	if r.view.IsMethod {
		r.keyword("method ")
	} else {
		r.keyword("on ")
	}
	r.text(RoleCall, r.view.Handler)
	if len(r.view.ArgumentNames) > 0 {
		r.plain(" ")
		for i, arg := range r.view.ArgumentNames {
			if i > 0 {
				r.plain(", ")
			}
			r.text(RoleVar, arg)
		}
	}

	if r.view.IsMethod && r.view.FirstHandler && len(r.view.PropertyNames) > 0 {
		r.line(start, false)
		r.keyword("instance ")
		r.names(r.view.PropertyNames)
	}
	if len(r.view.GlobalNames) > 0 {
		r.line(start, false)
		r.keyword("global ")
		r.names(r.view.GlobalNames)
	}
}

func (r *renderer) names(names []string) {
	for i, name := range names {
		if i > 0 {
			r.plain(", ")
		}
		r.text(RoleVar, name)
	}
}

func (r *renderer) footer() {
	if r.view.IsGenericEvent || r.view.IsMethod {
		return
	}
	end := len(r.view.Instructions)
	if r.view.Root != nil {
		end = r.view.Root.End()
	}
	r.line(end, true)
	r.keyword("end")
}

func (r *renderer) bytecode() {
	r.header()
	if !r.view.IsGenericEvent {
		r.state.Indent++
	}

	for i, ins := range r.view.Instructions {
		r.line(i, true)
		r.text(RoleKeyword, ins.Opcode.String())
		if ins.ID > 0x40 {
			r.plain(" ")
			r.text(RoleLiteral, operandText(ins))
		}

		if ins.Translation == nil {
			continue
		}
		r.plain(" ...")
		if pad := translationColumn - r.width; pad > 0 {
			r.plain(strings.Repeat(".", pad))
		}
		r.plain(" ")
		summary := ast.Summary(ins.Translation, r.state.DotSyntax)
		if !ins.Translation.IsStatement() {
			summary = "<" + summary + ">"
		}
		r.text(RoleComment, summary)
	}

	if !r.view.IsGenericEvent {
		r.state.Indent--
	}
	r.footer()
}

func operandText(ins bytecode.Instruction) string {
	if target, ok := ins.Target(); ok {
		return fmt.Sprintf("[%3d]", target)
	}
	if ins.Opcode == opcode.OpPushFloat32 {
		return ast.FormatFloat(float64(opcode.Float32(ins.Operand)))
	}
	return strconv.Itoa(int(ins.Operand))
}

func (r *renderer) operand(n ast.Node, paren bool) {
	if paren {
		r.plain("(")
	}
	n.Accept(r)
	if paren {
		r.plain(")")
	}
}

func (r *renderer) spaced(n ast.Node) {
	r.operand(n, n.HasSpaces(r.state.DotSyntax))
}

func (r *renderer) args(n ast.Node) {
	r.list(ast.Args(n))
}

func (r *renderer) list(items []ast.Node) {
	for i, arg := range items {
		if i > 0 {
			r.plain(", ")
		}
		arg.Accept(r)
	}
}

func (r *renderer) block(b *ast.BlockNode) {
	if b == nil {
		return
	}
	r.state.Indent++
	b.Accept(r)
	r.state.Indent--
}

// fallback renders a node through the plain code writer.
func (r *renderer) fallback(n ast.Node) {
	r.log.Warn("no styled rendering for node", "kind", n.Kind().String(), "start", n.Start())
	r.plain(ast.Write(n, r.state.DotSyntax))
}

func (r *renderer) datum(d ast.Datum) {
	switch d.Type {
	case ast.DatumVoid:
		r.text(RoleLiteral, "VOID")
	case ast.DatumSymbol:
		r.text(RoleLiteral, "#"+d.Str)
	case ast.DatumVarRef:
		r.text(RoleVar, d.Str)
	case ast.DatumString:
		if d.Str == "" {
			r.text(RoleLiteral, "EMPTY")
			return
		}
		if name, ok := ast.QuoteChar(d.Str); ok {
			r.text(RoleLiteral, name)
			return
		}
		r.text(RoleLiteral, "\""+d.Str+"\"")
	case ast.DatumInt:
		r.text(RoleLiteral, strconv.Itoa(d.Int))
	case ast.DatumFloat:
		r.text(RoleLiteral, ast.FormatFloat(d.Float))
	case ast.DatumList:
		r.plain("[")
		r.list(d.List)
		r.plain("]")
	case ast.DatumArgList, ast.DatumArgListNoRet:
		r.list(d.List)
	case ast.DatumPropList:
		r.plain("[")
		if len(d.List) == 0 {
			r.plain(":")
		}
		for i := 0; i+1 < len(d.List); i += 2 {
			if i > 0 {
				r.plain(", ")
			}
			d.List[i].Accept(r)
			r.plain(": ")
			d.List[i+1].Accept(r)
		}
		r.plain("]")
	}
}
