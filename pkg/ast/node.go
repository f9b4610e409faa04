package ast

// Node is a decompiled Lingo syntax tree node. The set of implementations is
// closed: every node type has a matching Visitor method.
type Node interface {
	Kind() Kind
	Start() int
	End() int
	IsStatement() bool
	// HasSpaces reports whether the node renders as more than one token.
	HasSpaces(dot bool) bool
	Accept(v Visitor)
	node()
}

// Base carries the logical positions shared by every node. Positions index
// the owning handler's instruction list, not the raw byte stream.
type Base struct {
	StartOffset int
	EndOffset   int
	Statement   bool
}

func (b *Base) Start() int              { return b.StartOffset }
func (b *Base) End() int                { return b.EndOffset }
func (b *Base) IsStatement() bool       { return b.Statement }
func (b *Base) HasSpaces(dot bool) bool { return true }
func (b *Base) node()                   {}

// At returns a Base positioned at a single logical position.
func At(pos int) Base {
	return Base{StartOffset: pos, EndOffset: pos}
}

// Span returns a Base covering [start, end].
func Span(start, end int) Base {
	return Base{StartOffset: start, EndOffset: end}
}

// Stmt returns a statement Base positioned at pos.
func Stmt(pos int) Base {
	return Base{StartOffset: pos, EndOffset: pos, Statement: true}
}

// Kind discriminates node types.
type Kind int

const (
	KindError Kind = iota
	KindComment
	KindLiteral
	KindVar
	KindBlock
	KindHandler
	KindExitStmt
	KindInverseOp
	KindNotOp
	KindBinaryOp
	KindChunkExpr
	KindChunkHiliteStmt
	KindChunkDeleteStmt
	KindSpriteIntersectsExpr
	KindSpriteWithinExpr
	KindMemberExpr
	KindAssignmentStmt
	KindIfStmt
	KindRepeatWhileStmt
	KindRepeatWithInStmt
	KindRepeatWithToStmt
	KindCaseLabel
	KindOtherwise
	KindEndCase
	KindCaseStmt
	KindTellStmt
	KindSoundCmdStmt
	KindPlayCmdStmt
	KindCall
	KindObjCall
	KindObjCallV4
	KindTheExpr
	KindLastStringChunkExpr
	KindStringChunkCountExpr
	KindMenuPropExpr
	KindMenuItemPropExpr
	KindSoundPropExpr
	KindSpritePropExpr
	KindThePropExpr
	KindObjPropExpr
	KindObjBracketExpr
	KindObjPropIndexExpr
	KindExitRepeatStmt
	KindNextRepeatStmt
	KindPutStmt
	KindWhenStmt
	KindNewObj
)

var kindNames = [...]string{
	KindError:                "Error",
	KindComment:              "Comment",
	KindLiteral:              "Literal",
	KindVar:                  "Var",
	KindBlock:                "Block",
	KindHandler:              "Handler",
	KindExitStmt:             "ExitStmt",
	KindInverseOp:            "InverseOp",
	KindNotOp:                "NotOp",
	KindBinaryOp:             "BinaryOp",
	KindChunkExpr:            "ChunkExpr",
	KindChunkHiliteStmt:      "ChunkHiliteStmt",
	KindChunkDeleteStmt:      "ChunkDeleteStmt",
	KindSpriteIntersectsExpr: "SpriteIntersectsExpr",
	KindSpriteWithinExpr:     "SpriteWithinExpr",
	KindMemberExpr:           "MemberExpr",
	KindAssignmentStmt:       "AssignmentStmt",
	KindIfStmt:               "IfStmt",
	KindRepeatWhileStmt:      "RepeatWhileStmt",
	KindRepeatWithInStmt:     "RepeatWithInStmt",
	KindRepeatWithToStmt:     "RepeatWithToStmt",
	KindCaseLabel:            "CaseLabel",
	KindOtherwise:            "Otherwise",
	KindEndCase:              "EndCase",
	KindCaseStmt:             "CaseStmt",
	KindTellStmt:             "TellStmt",
	KindSoundCmdStmt:         "SoundCmdStmt",
	KindPlayCmdStmt:          "PlayCmdStmt",
	KindCall:                 "Call",
	KindObjCall:              "ObjCall",
	KindObjCallV4:            "ObjCallV4",
	KindTheExpr:              "TheExpr",
	KindLastStringChunkExpr:  "LastStringChunkExpr",
	KindStringChunkCountExpr: "StringChunkCountExpr",
	KindMenuPropExpr:         "MenuPropExpr",
	KindMenuItemPropExpr:     "MenuItemPropExpr",
	KindSoundPropExpr:        "SoundPropExpr",
	KindSpritePropExpr:       "SpritePropExpr",
	KindThePropExpr:          "ThePropExpr",
	KindObjPropExpr:          "ObjPropExpr",
	KindObjBracketExpr:       "ObjBracketExpr",
	KindObjPropIndexExpr:     "ObjPropIndexExpr",
	KindExitRepeatStmt:       "ExitRepeatStmt",
	KindNextRepeatStmt:       "NextRepeatStmt",
	KindPutStmt:              "PutStmt",
	KindWhenStmt:             "WhenStmt",
	KindNewObj:               "NewObj",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Visitor has one method per node type. Adding a node type without
// extending every visitor fails to compile.
type Visitor interface {
	VisitError(n *ErrorNode)
	VisitComment(n *CommentNode)
	VisitLiteral(n *LiteralNode)
	VisitVar(n *VarNode)
	VisitBlock(n *BlockNode)
	VisitHandler(n *HandlerNode)
	VisitExitStmt(n *ExitStmtNode)
	VisitInverseOp(n *InverseOpNode)
	VisitNotOp(n *NotOpNode)
	VisitBinaryOp(n *BinaryOpNode)
	VisitChunkExpr(n *ChunkExprNode)
	VisitChunkHiliteStmt(n *ChunkHiliteStmtNode)
	VisitChunkDeleteStmt(n *ChunkDeleteStmtNode)
	VisitSpriteIntersectsExpr(n *SpriteIntersectsExprNode)
	VisitSpriteWithinExpr(n *SpriteWithinExprNode)
	VisitMemberExpr(n *MemberExprNode)
	VisitAssignmentStmt(n *AssignmentStmtNode)
	VisitIfStmt(n *IfStmtNode)
	VisitRepeatWhileStmt(n *RepeatWhileStmtNode)
	VisitRepeatWithInStmt(n *RepeatWithInStmtNode)
	VisitRepeatWithToStmt(n *RepeatWithToStmtNode)
	VisitCaseLabel(n *CaseLabelNode)
	VisitOtherwise(n *OtherwiseNode)
	VisitEndCase(n *EndCaseNode)
	VisitCaseStmt(n *CaseStmtNode)
	VisitTellStmt(n *TellStmtNode)
	VisitSoundCmdStmt(n *SoundCmdStmtNode)
	VisitPlayCmdStmt(n *PlayCmdStmtNode)
	VisitCall(n *CallNode)
	VisitObjCall(n *ObjCallNode)
	VisitObjCallV4(n *ObjCallV4Node)
	VisitTheExpr(n *TheExprNode)
	VisitLastStringChunkExpr(n *LastStringChunkExprNode)
	VisitStringChunkCountExpr(n *StringChunkCountExprNode)
	VisitMenuPropExpr(n *MenuPropExprNode)
	VisitMenuItemPropExpr(n *MenuItemPropExprNode)
	VisitSoundPropExpr(n *SoundPropExprNode)
	VisitSpritePropExpr(n *SpritePropExprNode)
	VisitThePropExpr(n *ThePropExprNode)
	VisitObjPropExpr(n *ObjPropExprNode)
	VisitObjBracketExpr(n *ObjBracketExprNode)
	VisitObjPropIndexExpr(n *ObjPropIndexExprNode)
	VisitExitRepeatStmt(n *ExitRepeatStmtNode)
	VisitNextRepeatStmt(n *NextRepeatStmtNode)
	VisitPutStmt(n *PutStmtNode)
	VisitWhenStmt(n *WhenStmtNode)
	VisitNewObj(n *NewObjNode)
}
