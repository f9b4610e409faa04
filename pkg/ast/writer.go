package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// CodeWriter serializes a tree back to Lingo source text. With Sum set,
// block statements render only their header line.
type CodeWriter struct {
	Dot bool
	Sum bool

	out       strings.Builder
	indent    int
	lineStart bool
}

func NewCodeWriter(dot, sum bool) *CodeWriter {
	return &CodeWriter{Dot: dot, Sum: sum, lineStart: true}
}

// Write renders n in full.
func Write(n Node, dot bool) string {
	w := acquireWriter(dot, false)
	defer releaseWriter(w)
	n.Accept(w)
	return w.String()
}

// Summary renders the one-line summary of n.
func Summary(n Node, dot bool) string {
	w := acquireWriter(dot, true)
	defer releaseWriter(w)
	n.Accept(w)
	return w.String()
}

func (w *CodeWriter) String() string {
	return strings.TrimSuffix(w.out.String(), "\n")
}

func (w *CodeWriter) Reset() {
	w.out.Reset()
	w.indent = 0
	w.lineStart = true
}

func (w *CodeWriter) write(s string) {
	if w.lineStart {
		for i := 0; i < w.indent; i++ {
			w.out.WriteString("  ")
		}
		w.lineStart = false
	}
	w.out.WriteString(s)
}

func (w *CodeWriter) writeLine() {
	w.out.WriteString("\n")
	w.lineStart = true
}

func (w *CodeWriter) operand(n Node, paren bool) {
	if paren {
		w.write("(")
	}
	n.Accept(w)
	if paren {
		w.write(")")
	}
}

func (w *CodeWriter) args(n Node) {
	for i, arg := range Args(n) {
		if i > 0 {
			w.write(", ")
		}
		arg.Accept(w)
	}
}

func (w *CodeWriter) block(b *BlockNode) {
	if b == nil {
		return
	}
	w.indent++
	b.Accept(w)
	w.indent--
}

// FormatFloat formats a float the way Lingo prints it.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

// QuoteChar returns the Lingo constant for single-character strings.
func QuoteChar(s string) (string, bool) {
	if len(s) != 1 {
		return "", false
	}
	switch s[0] {
	case '\x03':
		return "ENTER", true
	case '\x08':
		return "BACKSPACE", true
	case '\t':
		return "TAB", true
	case '\r':
		return "RETURN", true
	case '"':
		return "QUOTE", true
	}
	return "", false
}

func (w *CodeWriter) datum(d Datum) {
	switch d.Type {
	case DatumVoid:
		w.write("VOID")
	case DatumSymbol:
		w.write("#" + d.Str)
	case DatumVarRef:
		w.write(d.Str)
	case DatumString:
		if d.Str == "" {
			w.write("EMPTY")
			return
		}
		if name, ok := QuoteChar(d.Str); ok {
			w.write(name)
			return
		}
		w.write("\"" + d.Str + "\"")
	case DatumInt:
		w.write(strconv.Itoa(d.Int))
	case DatumFloat:
		w.write(FormatFloat(d.Float))
	case DatumList, DatumArgList, DatumArgListNoRet:
		if d.Type == DatumList {
			w.write("[")
		}
		for i, item := range d.List {
			if i > 0 {
				w.write(", ")
			}
			item.Accept(w)
		}
		if d.Type == DatumList {
			w.write("]")
		}
	case DatumPropList:
		w.write("[")
		if len(d.List) == 0 {
			w.write(":")
		}
		for i := 0; i+1 < len(d.List); i += 2 {
			if i > 0 {
				w.write(", ")
			}
			d.List[i].Accept(w)
			w.write(": ")
			d.List[i+1].Accept(w)
		}
		w.write("]")
	}
}

func (w *CodeWriter) VisitError(n *ErrorNode) {
	w.write("ERROR")
}

func (w *CodeWriter) VisitComment(n *CommentNode) {
	w.write("-- " + n.Text)
}

func (w *CodeWriter) VisitLiteral(n *LiteralNode) {
	w.datum(n.Value)
}

func (w *CodeWriter) VisitVar(n *VarNode) {
	w.write(n.Name)
}

func (w *CodeWriter) VisitBlock(n *BlockNode) {
	for _, child := range n.Children {
		child.Accept(w)
		w.writeLine()
	}
}

func (w *CodeWriter) VisitHandler(n *HandlerNode) {
	w.write("on " + n.Name)
	if len(n.Args) > 0 {
		w.write(" " + strings.Join(n.Args, ", "))
	}
	if w.Sum {
		return
	}
	w.writeLine()
	w.block(n.Block)
	w.write("end")
}

func (w *CodeWriter) VisitExitStmt(n *ExitStmtNode) {
	w.write("exit")
}

func (w *CodeWriter) VisitInverseOp(n *InverseOpNode) {
	w.write("-")
	w.operand(n.Operand, n.Operand.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitNotOp(n *NotOpNode) {
	w.write("not ")
	w.operand(n.Operand, n.Operand.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitBinaryOp(n *BinaryOpNode) {
	parenLeft, parenRight := ParenOperands(n)
	w.operand(n.Left, parenLeft)
	w.write(" " + BinaryOpName(n.Opcode) + " ")
	w.operand(n.Right, parenRight)
}

func (w *CodeWriter) VisitChunkExpr(n *ChunkExprNode) {
	w.write(n.Type.String() + " ")
	n.First.Accept(w)
	if !IsIntLiteral(n.Last, 0) {
		w.write(" to ")
		n.Last.Accept(w)
	}
	w.write(" of ")
	n.String.Accept(w)
}

func (w *CodeWriter) VisitChunkHiliteStmt(n *ChunkHiliteStmtNode) {
	w.write("hilite ")
	n.Chunk.Accept(w)
}

func (w *CodeWriter) VisitChunkDeleteStmt(n *ChunkDeleteStmtNode) {
	w.write("delete ")
	n.Chunk.Accept(w)
}

func (w *CodeWriter) VisitSpriteIntersectsExpr(n *SpriteIntersectsExprNode) {
	w.write("sprite ")
	w.operand(n.First, n.First.HasSpaces(w.Dot))
	w.write(" intersects ")
	w.operand(n.Second, n.Second.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitSpriteWithinExpr(n *SpriteWithinExprNode) {
	w.write("sprite ")
	w.operand(n.First, n.First.HasSpaces(w.Dot))
	w.write(" within ")
	w.operand(n.Second, n.Second.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitMemberExpr(n *MemberExprNode) {
	w.write(n.Type)
	if w.Dot {
		w.write("(")
		n.MemberID.Accept(w)
		if n.HasCastID() {
			w.write(", ")
			n.CastID.Accept(w)
		}
		w.write(")")
		return
	}

	w.write(" ")
	_, paren := n.MemberID.(*BinaryOpNode)
	w.operand(n.MemberID, paren)
	if n.HasCastID() {
		w.write(" of castLib ")
		_, paren := n.CastID.(*BinaryOpNode)
		w.operand(n.CastID, paren)
	}
}

func (w *CodeWriter) VisitAssignmentStmt(n *AssignmentStmtNode) {
	if !w.Dot || n.ForceVerbose {
		w.write("set ")
		dot := w.Dot
		w.Dot = false
		n.Variable.Accept(w)
		w.Dot = dot
		w.write(" to ")
		n.Value.Accept(w)
		return
	}

	n.Variable.Accept(w)
	w.write(" = ")
	n.Value.Accept(w)
}

func (w *CodeWriter) VisitIfStmt(n *IfStmtNode) {
	w.write("if ")
	n.Condition.Accept(w)
	w.write(" then")
	if w.Sum {
		if n.HasElse {
			w.write(" / else")
		}
		return
	}

	w.writeLine()
	w.block(n.Block1)
	if n.HasElse {
		w.write("else")
		w.writeLine()
		w.block(n.Block2)
	}
	w.write("end if")
}

func (w *CodeWriter) VisitRepeatWhileStmt(n *RepeatWhileStmtNode) {
	w.write("repeat while ")
	n.Condition.Accept(w)
	w.loopBody(n.Block)
}

func (w *CodeWriter) VisitRepeatWithInStmt(n *RepeatWithInStmtNode) {
	w.write("repeat with " + n.VarName + " in ")
	n.List.Accept(w)
	w.loopBody(n.Block)
}

func (w *CodeWriter) VisitRepeatWithToStmt(n *RepeatWithToStmtNode) {
	w.write("repeat with " + n.VarName + " = ")
	n.From.Accept(w)
	if n.Up {
		w.write(" to ")
	} else {
		w.write(" down to ")
	}
	n.To.Accept(w)
	w.loopBody(n.Block)
}

func (w *CodeWriter) loopBody(b *BlockNode) {
	if w.Sum {
		return
	}
	w.writeLine()
	w.block(b)
	w.write("end repeat")
}

func (w *CodeWriter) VisitCaseLabel(n *CaseLabelNode) {
	if w.Sum {
		w.write("(case) ")
		w.operand(n.Value, n.Value.HasSpaces(w.Dot))
		return
	}

	w.operand(n.Value, n.Value.HasSpaces(w.Dot))
	if n.NextOr != nil {
		w.write(", ")
		n.NextOr.Accept(w)
	} else {
		w.write(":")
		w.writeLine()
		w.block(n.Block)
	}
	if n.NextLabel != nil {
		n.NextLabel.Accept(w)
	}
}

func (w *CodeWriter) VisitOtherwise(n *OtherwiseNode) {
	w.write("otherwise:")
	if w.Sum {
		return
	}
	w.writeLine()
	w.block(n.Block)
}

func (w *CodeWriter) VisitEndCase(n *EndCaseNode) {
	w.write("end case")
}

func (w *CodeWriter) VisitCaseStmt(n *CaseStmtNode) {
	w.write("case ")
	n.Value.Accept(w)
	w.write(" of")
	if w.Sum {
		return
	}

	w.writeLine()
	w.indent++
	if n.FirstLabel != nil {
		n.FirstLabel.Accept(w)
	}
	if n.Otherwise != nil {
		n.Otherwise.Accept(w)
	}
	w.indent--
	w.write("end case")
}

func (w *CodeWriter) VisitTellStmt(n *TellStmtNode) {
	w.write("tell ")
	n.Window.Accept(w)
	if w.Sum {
		return
	}
	w.writeLine()
	w.block(n.Block)
	w.write("end tell")
}

func (w *CodeWriter) VisitSoundCmdStmt(n *SoundCmdStmtNode) {
	w.write("sound " + n.Cmd)
	if len(Args(n.Args)) > 0 {
		w.write(" ")
		w.args(n.Args)
	}
}

func (w *CodeWriter) VisitPlayCmdStmt(n *PlayCmdStmtNode) {
	w.write("play ")
	if len(Args(n.Args)) == 0 {
		w.write("done")
		return
	}
	w.args(n.Args)
}

func (w *CodeWriter) VisitCall(n *CallNode) {
	args := Args(n.Args)
	if !n.Statement && len(args) == 0 {
		switch n.Name {
		case "pi":
			w.write("PI")
			return
		case "space":
			w.write("SPACE")
			return
		case "void":
			w.write("VOID")
			return
		}
	}

	if !w.Dot && n.IsMemberExpr() {
		w.write(n.Name + " ")
		_, paren := args[0].(*BinaryOpNode)
		w.operand(args[0], paren)
		if len(args) == 2 {
			w.write(" of castLib ")
			_, paren := args[1].(*BinaryOpNode)
			w.operand(args[1], paren)
		}
		return
	}

	w.write(n.Name)
	if n.NoParens() {
		if len(args) > 0 {
			w.write(" ")
			w.args(n.Args)
		}
		return
	}
	w.write("(")
	w.args(n.Args)
	w.write(")")
}

func (w *CodeWriter) VisitObjCall(n *ObjCallNode) {
	args := Args(n.Args)
	if len(args) == 0 {
		w.write(n.Name + "()")
		return
	}

	w.operand(args[0], args[0].HasSpaces(w.Dot))
	w.write("." + n.Name + "(")
	for i, arg := range args[1:] {
		if i > 0 {
			w.write(", ")
		}
		arg.Accept(w)
	}
	w.write(")")
}

func (w *CodeWriter) VisitObjCallV4(n *ObjCallV4Node) {
	n.Obj.Accept(w)
	w.write("(")
	w.args(n.Args)
	w.write(")")
}

func (w *CodeWriter) VisitTheExpr(n *TheExprNode) {
	w.write("the " + n.Prop)
}

func (w *CodeWriter) VisitLastStringChunkExpr(n *LastStringChunkExprNode) {
	w.write("the last " + n.Type.String() + " in ")
	w.operand(n.Obj, n.Obj.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitStringChunkCountExpr(n *StringChunkCountExprNode) {
	w.write("the number of " + n.Type.String() + "s in ")
	w.operand(n.Obj, n.Obj.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitMenuPropExpr(n *MenuPropExprNode) {
	w.write("the " + MenuPropertyName(n.Prop) + " of menu ")
	w.operand(n.Menu, n.Menu.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitMenuItemPropExpr(n *MenuItemPropExprNode) {
	w.write("the " + MenuItemPropertyName(n.Prop) + " of menuItem ")
	w.operand(n.Item, n.Item.HasSpaces(w.Dot))
	w.write(" of menu ")
	w.operand(n.Menu, n.Menu.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitSoundPropExpr(n *SoundPropExprNode) {
	w.write("the " + SoundPropertyName(n.Prop) + " of sound ")
	w.operand(n.Sound, n.Sound.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitSpritePropExpr(n *SpritePropExprNode) {
	w.write("the " + SpritePropertyName(n.Prop) + " of sprite ")
	w.operand(n.Sprite, n.Sprite.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitThePropExpr(n *ThePropExprNode) {
	w.write("the " + n.Prop + " of ")
	w.operand(n.Obj, n.Obj.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitObjPropExpr(n *ObjPropExprNode) {
	if w.Dot {
		w.operand(n.Obj, n.Obj.HasSpaces(w.Dot))
		w.write("." + n.Prop)
		return
	}
	w.write("the " + n.Prop + " of ")
	w.operand(n.Obj, n.Obj.HasSpaces(w.Dot))
}

func (w *CodeWriter) VisitObjBracketExpr(n *ObjBracketExprNode) {
	w.operand(n.Obj, n.Obj.HasSpaces(w.Dot))
	w.write("[")
	n.Prop.Accept(w)
	w.write("]")
}

func (w *CodeWriter) VisitObjPropIndexExpr(n *ObjPropIndexExprNode) {
	w.operand(n.Obj, n.Obj.HasSpaces(w.Dot))
	w.write("." + n.Prop + "[")
	n.Index.Accept(w)
	if n.Index2 != nil {
		w.write("..")
		n.Index2.Accept(w)
	}
	w.write("]")
}

func (w *CodeWriter) VisitExitRepeatStmt(n *ExitRepeatStmtNode) {
	w.write("exit repeat")
}

func (w *CodeWriter) VisitNextRepeatStmt(n *NextRepeatStmtNode) {
	w.write("next repeat")
}

func (w *CodeWriter) VisitPutStmt(n *PutStmtNode) {
	w.write("put ")
	n.Value.Accept(w)
	w.write(" " + n.Type.String() + " ")
	dot := w.Dot
	w.Dot = false
	n.Variable.Accept(w)
	w.Dot = dot
}

func (w *CodeWriter) VisitWhenStmt(n *WhenStmtNode) {
	w.write(fmt.Sprintf("when %s then %s", WhenEventName(n.Event), strings.TrimSpace(n.Script)))
}

func (w *CodeWriter) VisitNewObj(n *NewObjNode) {
	w.write("new " + n.ObjType + "(")
	w.args(n.Args)
	w.write(")")
}
