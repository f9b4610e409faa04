package ast

import (
	"lingoscope/pkg/opcode"
)

// ErrorNode stands in for bytecode the decompiler could not translate.
type ErrorNode struct {
	Base
}

func (n *ErrorNode) Kind() Kind       { return KindError }
func (n *ErrorNode) Accept(v Visitor) { v.VisitError(n) }

type CommentNode struct {
	Base
	Text string
}

func (n *CommentNode) Kind() Kind       { return KindComment }
func (n *CommentNode) Accept(v Visitor) { v.VisitComment(n) }

type LiteralNode struct {
	Base
	Value Datum
}

func (n *LiteralNode) Kind() Kind              { return KindLiteral }
func (n *LiteralNode) Accept(v Visitor)        { v.VisitLiteral(n) }
func (n *LiteralNode) HasSpaces(dot bool) bool { return false }

type VarNode struct {
	Base
	Name string
}

func (n *VarNode) Kind() Kind              { return KindVar }
func (n *VarNode) Accept(v Visitor)        { v.VisitVar(n) }
func (n *VarNode) HasSpaces(dot bool) bool { return false }

type BlockNode struct {
	Base
	Children []Node
}

func (n *BlockNode) Kind() Kind       { return KindBlock }
func (n *BlockNode) Accept(v Visitor) { v.VisitBlock(n) }

func (n *BlockNode) Add(child Node) {
	n.Children = append(n.Children, child)
}

// HandlerNode is the root of a decompiled handler.
type HandlerNode struct {
	Base
	Name  string
	Args  []string
	Block *BlockNode
}

func (n *HandlerNode) Kind() Kind       { return KindHandler }
func (n *HandlerNode) Accept(v Visitor) { v.VisitHandler(n) }

type ExitStmtNode struct {
	Base
}

func (n *ExitStmtNode) Kind() Kind       { return KindExitStmt }
func (n *ExitStmtNode) Accept(v Visitor) { v.VisitExitStmt(n) }

// InverseOpNode is unary minus.
type InverseOpNode struct {
	Base
	Operand Node
}

func (n *InverseOpNode) Kind() Kind       { return KindInverseOp }
func (n *InverseOpNode) Accept(v Visitor) { v.VisitInverseOp(n) }

type NotOpNode struct {
	Base
	Operand Node
}

func (n *NotOpNode) Kind() Kind       { return KindNotOp }
func (n *NotOpNode) Accept(v Visitor) { v.VisitNotOp(n) }

type BinaryOpNode struct {
	Base
	Opcode opcode.Opcode
	Left   Node
	Right  Node
}

func (n *BinaryOpNode) Kind() Kind       { return KindBinaryOp }
func (n *BinaryOpNode) Accept(v Visitor) { v.VisitBinaryOp(n) }

func (n *BinaryOpNode) Precedence() int {
	return Precedence(n.Opcode)
}

type ChunkExprNode struct {
	Base
	Type   ChunkType
	First  Node
	Last   Node
	String Node
}

func (n *ChunkExprNode) Kind() Kind       { return KindChunkExpr }
func (n *ChunkExprNode) Accept(v Visitor) { v.VisitChunkExpr(n) }

type ChunkHiliteStmtNode struct {
	Base
	Chunk Node
}

func (n *ChunkHiliteStmtNode) Kind() Kind       { return KindChunkHiliteStmt }
func (n *ChunkHiliteStmtNode) Accept(v Visitor) { v.VisitChunkHiliteStmt(n) }

type ChunkDeleteStmtNode struct {
	Base
	Chunk Node
}

func (n *ChunkDeleteStmtNode) Kind() Kind       { return KindChunkDeleteStmt }
func (n *ChunkDeleteStmtNode) Accept(v Visitor) { v.VisitChunkDeleteStmt(n) }

type SpriteIntersectsExprNode struct {
	Base
	First  Node
	Second Node
}

func (n *SpriteIntersectsExprNode) Kind() Kind       { return KindSpriteIntersectsExpr }
func (n *SpriteIntersectsExprNode) Accept(v Visitor) { v.VisitSpriteIntersectsExpr(n) }

type SpriteWithinExprNode struct {
	Base
	First  Node
	Second Node
}

func (n *SpriteWithinExprNode) Kind() Kind       { return KindSpriteWithinExpr }
func (n *SpriteWithinExprNode) Accept(v Visitor) { v.VisitSpriteWithinExpr(n) }

// MemberExprNode is a cast member reference such as field 1 of castLib 2.
type MemberExprNode struct {
	Base
	Type     string
	MemberID Node
	CastID   Node
}

func (n *MemberExprNode) Kind() Kind              { return KindMemberExpr }
func (n *MemberExprNode) Accept(v Visitor)        { v.VisitMemberExpr(n) }
func (n *MemberExprNode) HasSpaces(dot bool) bool { return !dot }

// HasCastID reports whether the cast library id is present and non-zero.
func (n *MemberExprNode) HasCastID() bool {
	return n.CastID != nil && !IsIntLiteral(n.CastID, 0)
}

type AssignmentStmtNode struct {
	Base
	Variable Node
	Value    Node
	// ForceVerbose renders set ... to ... even in dot syntax.
	ForceVerbose bool
}

func (n *AssignmentStmtNode) Kind() Kind       { return KindAssignmentStmt }
func (n *AssignmentStmtNode) Accept(v Visitor) { v.VisitAssignmentStmt(n) }

type IfStmtNode struct {
	Base
	Condition Node
	Block1    *BlockNode
	Block2    *BlockNode
	HasElse   bool
}

func (n *IfStmtNode) Kind() Kind       { return KindIfStmt }
func (n *IfStmtNode) Accept(v Visitor) { v.VisitIfStmt(n) }

type RepeatWhileStmtNode struct {
	Base
	Condition Node
	Block     *BlockNode
}

func (n *RepeatWhileStmtNode) Kind() Kind       { return KindRepeatWhileStmt }
func (n *RepeatWhileStmtNode) Accept(v Visitor) { v.VisitRepeatWhileStmt(n) }

type RepeatWithInStmtNode struct {
	Base
	VarName string
	List    Node
	Block   *BlockNode
}

func (n *RepeatWithInStmtNode) Kind() Kind       { return KindRepeatWithInStmt }
func (n *RepeatWithInStmtNode) Accept(v Visitor) { v.VisitRepeatWithInStmt(n) }

type RepeatWithToStmtNode struct {
	Base
	VarName string
	From    Node
	Up      bool
	To      Node
	Block   *BlockNode
}

func (n *RepeatWithToStmtNode) Kind() Kind       { return KindRepeatWithToStmt }
func (n *RepeatWithToStmtNode) Accept(v Visitor) { v.VisitRepeatWithToStmt(n) }

// CaseLabelNode is one label of a case statement. Labels sharing a block are
// chained through NextOr; the following label is NextLabel.
type CaseLabelNode struct {
	Base
	Value     Node
	NextOr    *CaseLabelNode
	NextLabel *CaseLabelNode
	Block     *BlockNode
}

func (n *CaseLabelNode) Kind() Kind       { return KindCaseLabel }
func (n *CaseLabelNode) Accept(v Visitor) { v.VisitCaseLabel(n) }

type OtherwiseNode struct {
	Base
	Block *BlockNode
}

func (n *OtherwiseNode) Kind() Kind       { return KindOtherwise }
func (n *OtherwiseNode) Accept(v Visitor) { v.VisitOtherwise(n) }

type EndCaseNode struct {
	Base
}

func (n *EndCaseNode) Kind() Kind       { return KindEndCase }
func (n *EndCaseNode) Accept(v Visitor) { v.VisitEndCase(n) }

type CaseStmtNode struct {
	Base
	Value      Node
	FirstLabel *CaseLabelNode
	Otherwise  *OtherwiseNode
}

func (n *CaseStmtNode) Kind() Kind       { return KindCaseStmt }
func (n *CaseStmtNode) Accept(v Visitor) { v.VisitCaseStmt(n) }

type TellStmtNode struct {
	Base
	Window Node
	Block  *BlockNode
}

func (n *TellStmtNode) Kind() Kind       { return KindTellStmt }
func (n *TellStmtNode) Accept(v Visitor) { v.VisitTellStmt(n) }

type SoundCmdStmtNode struct {
	Base
	Cmd  string
	Args Node
}

func (n *SoundCmdStmtNode) Kind() Kind       { return KindSoundCmdStmt }
func (n *SoundCmdStmtNode) Accept(v Visitor) { v.VisitSoundCmdStmt(n) }

type PlayCmdStmtNode struct {
	Base
	Args Node
}

func (n *PlayCmdStmtNode) Kind() Kind       { return KindPlayCmdStmt }
func (n *PlayCmdStmtNode) Accept(v Visitor) { v.VisitPlayCmdStmt(n) }

// CallNode calls a handler by name. Target is the call-target index encoded
// in the instruction operand and Local tells which namespace it indexes.
type CallNode struct {
	Base
	Name   string
	Args   Node
	Target int
	Local  bool
}

func (n *CallNode) Kind() Kind       { return KindCall }
func (n *CallNode) Accept(v Visitor) { v.VisitCall(n) }

func (n *CallNode) HasSpaces(dot bool) bool {
	if !dot {
		return true
	}
	if n.IsMemberExpr() {
		return false
	}
	return n.NoParens()
}

// NoParens reports whether a statement call renders without parentheses.
func (n *CallNode) NoParens() bool {
	if !n.Statement {
		return false
	}
	switch n.Name {
	case "put", "return":
		return true
	}
	return len(Args(n.Args)) == 0
}

// IsMemberExpr reports whether the call is a member reference such as cast 1.
func (n *CallNode) IsMemberExpr() bool {
	if n.Statement {
		return false
	}
	nargs := len(Args(n.Args))
	switch n.Name {
	case "cast", "member", "script":
		return nargs == 1 || nargs == 2
	case "castLib", "window":
		return nargs == 1
	}
	return false
}

// ObjCallNode calls a method; the first argument is the receiver.
type ObjCallNode struct {
	Base
	Name string
	Args Node
}

func (n *ObjCallNode) Kind() Kind              { return KindObjCall }
func (n *ObjCallNode) Accept(v Visitor)        { v.VisitObjCall(n) }
func (n *ObjCallNode) HasSpaces(dot bool) bool { return false }

type ObjCallV4Node struct {
	Base
	Obj  Node
	Args Node
}

func (n *ObjCallV4Node) Kind() Kind              { return KindObjCallV4 }
func (n *ObjCallV4Node) Accept(v Visitor)        { v.VisitObjCallV4(n) }
func (n *ObjCallV4Node) HasSpaces(dot bool) bool { return false }

type TheExprNode struct {
	Base
	Prop string
}

func (n *TheExprNode) Kind() Kind       { return KindTheExpr }
func (n *TheExprNode) Accept(v Visitor) { v.VisitTheExpr(n) }

type LastStringChunkExprNode struct {
	Base
	Type ChunkType
	Obj  Node
}

func (n *LastStringChunkExprNode) Kind() Kind       { return KindLastStringChunkExpr }
func (n *LastStringChunkExprNode) Accept(v Visitor) { v.VisitLastStringChunkExpr(n) }

type StringChunkCountExprNode struct {
	Base
	Type ChunkType
	Obj  Node
}

func (n *StringChunkCountExprNode) Kind() Kind       { return KindStringChunkCountExpr }
func (n *StringChunkCountExprNode) Accept(v Visitor) { v.VisitStringChunkCountExpr(n) }

type MenuPropExprNode struct {
	Base
	Menu Node
	Prop int
}

func (n *MenuPropExprNode) Kind() Kind       { return KindMenuPropExpr }
func (n *MenuPropExprNode) Accept(v Visitor) { v.VisitMenuPropExpr(n) }

type MenuItemPropExprNode struct {
	Base
	Menu Node
	Item Node
	Prop int
}

func (n *MenuItemPropExprNode) Kind() Kind       { return KindMenuItemPropExpr }
func (n *MenuItemPropExprNode) Accept(v Visitor) { v.VisitMenuItemPropExpr(n) }

type SoundPropExprNode struct {
	Base
	Sound Node
	Prop  int
}

func (n *SoundPropExprNode) Kind() Kind       { return KindSoundPropExpr }
func (n *SoundPropExprNode) Accept(v Visitor) { v.VisitSoundPropExpr(n) }

type SpritePropExprNode struct {
	Base
	Sprite Node
	Prop   int
}

func (n *SpritePropExprNode) Kind() Kind       { return KindSpritePropExpr }
func (n *SpritePropExprNode) Accept(v Visitor) { v.VisitSpritePropExpr(n) }

type ThePropExprNode struct {
	Base
	Obj  Node
	Prop string
}

func (n *ThePropExprNode) Kind() Kind       { return KindThePropExpr }
func (n *ThePropExprNode) Accept(v Visitor) { v.VisitThePropExpr(n) }

type ObjPropExprNode struct {
	Base
	Obj  Node
	Prop string
}

func (n *ObjPropExprNode) Kind() Kind              { return KindObjPropExpr }
func (n *ObjPropExprNode) Accept(v Visitor)        { v.VisitObjPropExpr(n) }
func (n *ObjPropExprNode) HasSpaces(dot bool) bool { return !dot }

type ObjBracketExprNode struct {
	Base
	Obj  Node
	Prop Node
}

func (n *ObjBracketExprNode) Kind() Kind              { return KindObjBracketExpr }
func (n *ObjBracketExprNode) Accept(v Visitor)        { v.VisitObjBracketExpr(n) }
func (n *ObjBracketExprNode) HasSpaces(dot bool) bool { return false }

type ObjPropIndexExprNode struct {
	Base
	Obj    Node
	Prop   string
	Index  Node
	Index2 Node
}

func (n *ObjPropIndexExprNode) Kind() Kind              { return KindObjPropIndexExpr }
func (n *ObjPropIndexExprNode) Accept(v Visitor)        { v.VisitObjPropIndexExpr(n) }
func (n *ObjPropIndexExprNode) HasSpaces(dot bool) bool { return false }

type ExitRepeatStmtNode struct {
	Base
}

func (n *ExitRepeatStmtNode) Kind() Kind       { return KindExitRepeatStmt }
func (n *ExitRepeatStmtNode) Accept(v Visitor) { v.VisitExitRepeatStmt(n) }

type NextRepeatStmtNode struct {
	Base
}

func (n *NextRepeatStmtNode) Kind() Kind       { return KindNextRepeatStmt }
func (n *NextRepeatStmtNode) Accept(v Visitor) { v.VisitNextRepeatStmt(n) }

type PutStmtNode struct {
	Base
	Type     PutType
	Variable Node
	Value    Node
}

func (n *PutStmtNode) Kind() Kind       { return KindPutStmt }
func (n *PutStmtNode) Accept(v Visitor) { v.VisitPutStmt(n) }

type WhenStmtNode struct {
	Base
	Event  int
	Script string
}

func (n *WhenStmtNode) Kind() Kind       { return KindWhenStmt }
func (n *WhenStmtNode) Accept(v Visitor) { v.VisitWhenStmt(n) }

type NewObjNode struct {
	Base
	ObjType string
	Args    Node
}

func (n *NewObjNode) Kind() Kind       { return KindNewObj }
func (n *NewObjNode) Accept(v Visitor) { v.VisitNewObj(n) }

// Args returns the elements of an argument list literal, or nil.
func Args(n Node) []Node {
	lit, ok := n.(*LiteralNode)
	if !ok {
		return nil
	}
	switch lit.Value.Type {
	case DatumList, DatumArgList, DatumArgListNoRet, DatumPropList:
		return lit.Value.List
	}
	return nil
}

// IsIntLiteral reports whether n is the integer literal i.
func IsIntLiteral(n Node, i int) bool {
	lit, ok := n.(*LiteralNode)
	return ok && lit.Value.Type == DatumInt && lit.Value.Int == i
}
