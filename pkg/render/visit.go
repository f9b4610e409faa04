package render

import (
	"strings"

	"lingoscope/pkg/ast"
)

func (r *renderer) VisitError(n *ast.ErrorNode) {
	r.fallback(n)
}

func (r *renderer) VisitComment(n *ast.CommentNode) {
	r.text(RoleComment, "-- "+n.Text)
}

func (r *renderer) VisitLiteral(n *ast.LiteralNode) {
	r.datum(n.Value)
}

func (r *renderer) VisitVar(n *ast.VarNode) {
	r.text(RoleVar, n.Name)
}

func (r *renderer) VisitBlock(n *ast.BlockNode) {
	for _, child := range n.Children {
		r.line(child.Start(), true)
		child.Accept(r)
	}
}

func (r *renderer) VisitHandler(n *ast.HandlerNode) {
	r.header()
	if r.view.IsGenericEvent {
		n.Block.Accept(r)
		return
	}
	r.block(n.Block)
	r.footer()
}

func (r *renderer) VisitExitStmt(n *ast.ExitStmtNode) {
	r.keyword("exit")
}

func (r *renderer) VisitInverseOp(n *ast.InverseOpNode) {
	r.plain("-")
	r.spaced(n.Operand)
}

func (r *renderer) VisitNotOp(n *ast.NotOpNode) {
	r.keyword("not ")
	r.spaced(n.Operand)
}

func (r *renderer) VisitBinaryOp(n *ast.BinaryOpNode) {
	parenLeft, parenRight := ast.ParenOperands(n)
	r.operand(n.Left, parenLeft)
	name := ast.BinaryOpName(n.Opcode)
	if isWord(name) {
		r.plain(" ")
		r.keyword(name)
		r.plain(" ")
	} else {
		r.plain(" " + name + " ")
	}
	r.operand(n.Right, parenRight)
}

// isWord reports whether an operator is spelled as a keyword, like and or contains.
func isWord(op string) bool {
	return op != "" && op[0] >= 'a' && op[0] <= 'z'
}

func (r *renderer) VisitChunkExpr(n *ast.ChunkExprNode) {
	r.keyword(n.Type.String() + " ")
	n.First.Accept(r)
	if !ast.IsIntLiteral(n.Last, 0) {
		r.keyword(" to ")
		n.Last.Accept(r)
	}
	r.keyword(" of ")
	n.String.Accept(r)
}

func (r *renderer) VisitChunkHiliteStmt(n *ast.ChunkHiliteStmtNode) {
	r.keyword("hilite ")
	n.Chunk.Accept(r)
}

func (r *renderer) VisitChunkDeleteStmt(n *ast.ChunkDeleteStmtNode) {
	r.keyword("delete ")
	n.Chunk.Accept(r)
}

func (r *renderer) VisitSpriteIntersectsExpr(n *ast.SpriteIntersectsExprNode) {
	r.keyword("sprite ")
	r.spaced(n.First)
	r.keyword(" intersects ")
	r.spaced(n.Second)
}

func (r *renderer) VisitSpriteWithinExpr(n *ast.SpriteWithinExprNode) {
	r.keyword("sprite ")
	r.spaced(n.First)
	r.keyword(" within ")
	r.spaced(n.Second)
}

func (r *renderer) VisitMemberExpr(n *ast.MemberExprNode) {
	r.text(RoleType, n.Type)
	if r.state.DotSyntax {
		r.plain("(")
		n.MemberID.Accept(r)
		if n.HasCastID() {
			r.plain(", ")
			n.CastID.Accept(r)
		}
		r.plain(")")
		return
	}

	r.plain(" ")
	_, paren := n.MemberID.(*ast.BinaryOpNode)
	r.operand(n.MemberID, paren)
	if n.HasCastID() {
		r.keyword(" of ")
		r.text(RoleType, "castLib ")
		_, paren := n.CastID.(*ast.BinaryOpNode)
		r.operand(n.CastID, paren)
	}
}

func (r *renderer) VisitAssignmentStmt(n *ast.AssignmentStmtNode) {
	if !r.state.DotSyntax || n.ForceVerbose {
		r.keyword("set ")
		dot := r.state.DotSyntax
		r.state.DotSyntax = false
		n.Variable.Accept(r)
		r.state.DotSyntax = dot
		r.keyword(" to ")
		n.Value.Accept(r)
		return
	}

	n.Variable.Accept(r)
	r.plain(" = ")
	n.Value.Accept(r)
}

func (r *renderer) VisitIfStmt(n *ast.IfStmtNode) {
	r.keyword("if ")
	n.Condition.Accept(r)
	r.keyword(" then")
	r.block(n.Block1)
	if n.HasElse {
		start := n.End()
		if n.Block2 != nil {
			start = n.Block2.Start()
		}
		r.line(start, false)
		r.keyword("else")
		r.block(n.Block2)
	}
	r.line(n.End(), false)
	r.keyword("end if")
}

func (r *renderer) VisitRepeatWhileStmt(n *ast.RepeatWhileStmtNode) {
	r.keyword("repeat while ")
	n.Condition.Accept(r)
	r.loopBody(n, n.Block)
}

func (r *renderer) VisitRepeatWithInStmt(n *ast.RepeatWithInStmtNode) {
	r.keyword("repeat with ")
	r.text(RoleVar, n.VarName)
	r.keyword(" in ")
	n.List.Accept(r)
	r.loopBody(n, n.Block)
}

func (r *renderer) VisitRepeatWithToStmt(n *ast.RepeatWithToStmtNode) {
	r.keyword("repeat with ")
	r.text(RoleVar, n.VarName)
	r.plain(" = ")
	n.From.Accept(r)
	if n.Up {
		r.keyword(" to ")
	} else {
		r.keyword(" down to ")
	}
	n.To.Accept(r)
	r.loopBody(n, n.Block)
}

func (r *renderer) loopBody(n ast.Node, b *ast.BlockNode) {
	r.block(b)
	r.line(n.End(), true)
	r.keyword("end repeat")
}

// VisitCaseLabel renders a label chain. Labels joined by NextOr share a line.
func (r *renderer) VisitCaseLabel(n *ast.CaseLabelNode) {
	r.line(n.Start(), false)
	r.caseLabel(n)
}

func (r *renderer) caseLabel(n *ast.CaseLabelNode) {
	r.spaced(n.Value)
	if n.NextOr != nil {
		r.plain(", ")
		r.caseLabel(n.NextOr)
	} else {
		r.plain(":")
		r.block(n.Block)
	}
	if n.NextLabel != nil {
		n.NextLabel.Accept(r)
	}
}

func (r *renderer) VisitOtherwise(n *ast.OtherwiseNode) {
	r.line(n.Start(), false)
	r.keyword("otherwise:")
	r.block(n.Block)
}

func (r *renderer) VisitEndCase(n *ast.EndCaseNode) {
	r.fallback(n)
}

func (r *renderer) VisitCaseStmt(n *ast.CaseStmtNode) {
	r.keyword("case ")
	n.Value.Accept(r)
	r.keyword(" of")

	r.state.Indent++
	if n.FirstLabel != nil {
		n.FirstLabel.Accept(r)
	}
	if n.Otherwise != nil {
		n.Otherwise.Accept(r)
	}
	r.state.Indent--

	r.line(n.End(), false)
	r.keyword("end case")
}

func (r *renderer) VisitTellStmt(n *ast.TellStmtNode) {
	r.keyword("tell ")
	n.Window.Accept(r)
	r.block(n.Block)
	r.line(n.End(), true)
	r.keyword("end tell")
}

func (r *renderer) VisitSoundCmdStmt(n *ast.SoundCmdStmtNode) {
	r.keyword("sound ")
	r.text(RoleBuiltin, n.Cmd)
	if len(ast.Args(n.Args)) > 0 {
		r.plain(" ")
		r.args(n.Args)
	}
}

func (r *renderer) VisitPlayCmdStmt(n *ast.PlayCmdStmtNode) {
	r.keyword("play ")
	if len(ast.Args(n.Args)) == 0 {
		r.keyword("done")
		return
	}
	r.args(n.Args)
}

func (r *renderer) VisitCall(n *ast.CallNode) {
	args := ast.Args(n.Args)
	if !n.Statement && len(args) == 0 {
		switch n.Name {
		case "pi":
			r.text(RoleLiteral, "PI")
			return
		case "space":
			r.text(RoleLiteral, "SPACE")
			return
		case "void":
			r.text(RoleLiteral, "VOID")
			return
		}
	}

	if !r.state.DotSyntax && n.IsMemberExpr() {
		r.text(RoleType, n.Name+" ")
		_, paren := args[0].(*ast.BinaryOpNode)
		r.operand(args[0], paren)
		if len(args) == 2 {
			r.keyword(" of ")
			r.text(RoleType, "castLib ")
			_, paren := args[1].(*ast.BinaryOpNode)
			r.operand(args[1], paren)
		}
		return
	}

	r.callName(n)
	if n.NoParens() {
		if len(args) > 0 {
			r.plain(" ")
			r.args(n.Args)
		}
		return
	}
	r.plain("(")
	r.args(n.Args)
	r.plain(")")
}

// callName emits the callee, linked to its handler when the call stack can
// resolve it.
func (r *renderer) callName(n *ast.CallNode) {
	if r.ctx.Calls != nil {
		if ref, ok := r.ctx.Calls.CallTarget(n, r.view.ContainerID); ok {
			r.events = append(r.events, Event{Kind: EventText, Role: RoleCall, Text: n.Name, Link: &ref})
			r.width += len(n.Name)
			return
		}
	}
	r.text(RoleBuiltin, n.Name)
}

func (r *renderer) VisitObjCall(n *ast.ObjCallNode) {
	args := ast.Args(n.Args)
	if len(args) == 0 {
		r.text(RoleBuiltin, n.Name)
		r.plain("()")
		return
	}

	r.spaced(args[0])
	r.plain(".")
	r.text(RoleBuiltin, n.Name)
	r.plain("(")
	r.list(args[1:])
	r.plain(")")
}

func (r *renderer) VisitObjCallV4(n *ast.ObjCallV4Node) {
	n.Obj.Accept(r)
	r.plain("(")
	r.args(n.Args)
	r.plain(")")
}

func (r *renderer) VisitTheExpr(n *ast.TheExprNode) {
	r.text(RoleThe, "the "+n.Prop)
}

func (r *renderer) VisitLastStringChunkExpr(n *ast.LastStringChunkExprNode) {
	r.keyword("the last " + n.Type.String() + " in ")
	r.spaced(n.Obj)
}

func (r *renderer) VisitStringChunkCountExpr(n *ast.StringChunkCountExprNode) {
	r.keyword("the number of " + n.Type.String() + "s in ")
	r.spaced(n.Obj)
}

func (r *renderer) VisitMenuPropExpr(n *ast.MenuPropExprNode) {
	r.text(RoleThe, "the "+ast.MenuPropertyName(n.Prop))
	r.keyword(" of ")
	r.text(RoleType, "menu ")
	r.spaced(n.Menu)
}

func (r *renderer) VisitMenuItemPropExpr(n *ast.MenuItemPropExprNode) {
	r.text(RoleThe, "the "+ast.MenuItemPropertyName(n.Prop))
	r.keyword(" of ")
	r.text(RoleType, "menuItem ")
	r.spaced(n.Item)
	r.keyword(" of ")
	r.text(RoleType, "menu ")
	r.spaced(n.Menu)
}

func (r *renderer) VisitSoundPropExpr(n *ast.SoundPropExprNode) {
	r.text(RoleThe, "the "+ast.SoundPropertyName(n.Prop))
	r.keyword(" of ")
	r.text(RoleType, "sound ")
	r.spaced(n.Sound)
}

func (r *renderer) VisitSpritePropExpr(n *ast.SpritePropExprNode) {
	r.text(RoleThe, "the "+ast.SpritePropertyName(n.Prop))
	r.keyword(" of ")
	r.text(RoleType, "sprite ")
	r.spaced(n.Sprite)
}

func (r *renderer) VisitThePropExpr(n *ast.ThePropExprNode) {
	r.text(RoleThe, "the "+n.Prop)
	r.keyword(" of ")
	r.spaced(n.Obj)
}

func (r *renderer) VisitObjPropExpr(n *ast.ObjPropExprNode) {
	if r.state.DotSyntax {
		r.spaced(n.Obj)
		r.plain(".")
		r.text(RoleThe, n.Prop)
		return
	}
	r.text(RoleThe, "the "+n.Prop)
	r.keyword(" of ")
	r.spaced(n.Obj)
}

func (r *renderer) VisitObjBracketExpr(n *ast.ObjBracketExprNode) {
	r.spaced(n.Obj)
	r.plain("[")
	n.Prop.Accept(r)
	r.plain("]")
}

func (r *renderer) VisitObjPropIndexExpr(n *ast.ObjPropIndexExprNode) {
	r.spaced(n.Obj)
	r.plain(".")
	r.text(RoleThe, n.Prop)
	r.plain("[")
	n.Index.Accept(r)
	if n.Index2 != nil {
		r.plain("..")
		n.Index2.Accept(r)
	}
	r.plain("]")
}

func (r *renderer) VisitExitRepeatStmt(n *ast.ExitRepeatStmtNode) {
	r.keyword("exit repeat")
}

func (r *renderer) VisitNextRepeatStmt(n *ast.NextRepeatStmtNode) {
	r.keyword("next repeat")
}

func (r *renderer) VisitPutStmt(n *ast.PutStmtNode) {
	r.keyword("put ")
	n.Value.Accept(r)
	r.keyword(" " + n.Type.String() + " ")
	dot := r.state.DotSyntax
	r.state.DotSyntax = false
	n.Variable.Accept(r)
	r.state.DotSyntax = dot
}

func (r *renderer) VisitWhenStmt(n *ast.WhenStmtNode) {
	r.keyword("when ")
	r.text(RoleBuiltin, ast.WhenEventName(n.Event))
	r.keyword(" then ")
	r.plain(strings.TrimSpace(n.Script))
}

func (r *renderer) VisitNewObj(n *ast.NewObjNode) {
	r.keyword("new ")
	r.text(RoleType, n.ObjType)
	r.plain("(")
	r.args(n.Args)
	r.plain(")")
}
