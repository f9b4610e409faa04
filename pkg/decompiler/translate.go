package decompiler

import (
	"lingoscope/pkg/ast"
	"lingoscope/pkg/bytecode"
	"lingoscope/pkg/opcode"
)

// translateInstruction applies one instruction to the expression stack and
// returns the node it produced, if any.
func (b *builder) translateInstruction(i int) ast.Node {
	ins := b.code[i]

	if ast.IsBinaryOp(ins.Opcode) {
		right := b.pop()
		left := b.pop()
		return b.expr(&ast.BinaryOpNode{Base: ast.At(i), Opcode: ins.Opcode, Left: left, Right: right})
	}

	switch ins.Opcode {
	case opcode.OpRet, opcode.OpRetFactory:
		if i == len(b.code)-1 {
			return nil
		}
		return b.stmt(&ast.ExitStmtNode{Base: ast.Stmt(i)})

	case opcode.OpPushZero:
		return b.expr(ast.Lit(i, ast.Int(0)))

	case opcode.OpPushInt8, opcode.OpPushInt16, opcode.OpPushInt32:
		return b.expr(ast.Lit(i, ast.Int(int(ins.Operand))))

	case opcode.OpPushFloat32:
		return b.expr(ast.Lit(i, ast.Float(float64(opcode.Float32(ins.Operand)))))

	case opcode.OpInv:
		return b.expr(&ast.InverseOpNode{Base: ast.At(i), Operand: b.pop()})

	case opcode.OpNot:
		return b.expr(&ast.NotOpNode{Base: ast.At(i), Operand: b.pop()})

	case opcode.OpGetChunk:
		str := b.pop()
		return b.expr(b.readChunkRef(i, str))

	case opcode.OpHiliteChunk:
		field := &ast.MemberExprNode{Base: ast.At(i), Type: "field", MemberID: b.pop()}
		return b.stmt(&ast.ChunkHiliteStmtNode{Base: ast.Stmt(i), Chunk: b.readChunkRef(i, field)})

	case opcode.OpOntoSpr:
		second := b.pop()
		first := b.pop()
		return b.expr(&ast.SpriteIntersectsExprNode{Base: ast.At(i), First: first, Second: second})

	case opcode.OpIntoSpr:
		second := b.pop()
		first := b.pop()
		return b.expr(&ast.SpriteWithinExprNode{Base: ast.At(i), First: first, Second: second})

	case opcode.OpGetField:
		return b.expr(&ast.MemberExprNode{Base: ast.At(i), Type: "field", MemberID: b.pop()})

	case opcode.OpStartTell:
		tell := &ast.TellStmtNode{Base: ast.Stmt(i), Window: b.pop(), Block: &ast.BlockNode{Base: ast.At(i + 1)}}
		b.addStatement(tell)
		b.pushBlock(&blockContext{block: tell.Block, tell: true})
		return tell

	case opcode.OpEndTell:
		top := b.blocks[len(b.blocks)-1]
		if !top.tell {
			b.log.Debug("endtell without starttell", "pos", ins.Pos)
			return nil
		}
		b.popBlock()
		tell := b.lastStatement(ast.KindTellStmt)
		if tell != nil {
			tell.(*ast.TellStmtNode).EndOffset = i
		}
		return nil

	case opcode.OpPushList, opcode.OpPushPropList:
		items := ast.Args(b.pop())
		t := ast.DatumList
		if ins.Opcode == opcode.OpPushPropList {
			t = ast.DatumPropList
		}
		return b.expr(ast.Lit(i, ast.List(t, items)))

	case opcode.OpSwap:
		if n := len(b.stack); n >= 2 {
			b.stack[n-1], b.stack[n-2] = b.stack[n-2], b.stack[n-1]
		}
		return nil

	case opcode.OpPushArgList, opcode.OpPushArgListNoRet:
		count := b.stackCount(ins)
		items := make([]ast.Node, count)
		for j := count - 1; j >= 0; j-- {
			items[j] = b.pop()
		}
		t := ast.DatumArgList
		if ins.Opcode == opcode.OpPushArgListNoRet {
			t = ast.DatumArgListNoRet
		}
		return b.expr(ast.Lit(i, ast.List(t, items)))

	case opcode.OpPushCons:
		idx := int(ins.Operand)
		if idx < 0 || idx >= len(b.script.Literals) {
			b.log.Debug("literal out of range", "index", idx)
			return b.expr(&ast.ErrorNode{Base: ast.At(i)})
		}
		return b.expr(ast.Lit(i, b.script.Literals[idx]))

	case opcode.OpPushSymb:
		return b.expr(ast.Lit(i, ast.Symbol(b.name(ins.Operand))))

	case opcode.OpPushVarRef:
		return b.expr(ast.Lit(i, ast.VarRef(b.name(ins.Operand))))

	case opcode.OpGetGlobal, opcode.OpGetGlobal2, opcode.OpGetProp, opcode.OpGetParam,
		opcode.OpGetLocal, opcode.OpGetTopLevelProp:
		return b.expr(&ast.VarNode{Base: ast.At(i), Name: b.variableName(ins)})

	case opcode.OpSetGlobal, opcode.OpSetGlobal2, opcode.OpSetProp, opcode.OpSetParam, opcode.OpSetLocal:
		value := b.pop()
		if b.tags[i] == tagRepeatWithInit {
			b.inits[b.withInit[i]] = value
			return nil
		}
		variable := &ast.VarNode{Base: ast.At(i), Name: b.variableName(ins)}
		return b.stmt(&ast.AssignmentStmtNode{Base: ast.Stmt(i), Variable: variable, Value: value})

	case opcode.OpJmp:
		return b.translateJump(i)

	case opcode.OpEndRepeat:
		b.log.Debug("endrepeat outside a loop", "pos", ins.Pos)
		return nil

	case opcode.OpJmpIfZ:
		return b.translateCondJump(i)

	case opcode.OpLocalCall:
		args := b.pop()
		name := "UNKNOWN_HANDLER"
		if idx := int(ins.Operand); idx >= 0 && idx < len(b.script.Handlers) {
			name = b.script.Handlers[idx].Name
		}
		return b.call(&ast.CallNode{Base: ast.At(i), Name: name, Args: args, Target: int(ins.Operand), Local: true})

	case opcode.OpExtCall:
		return b.translateExtCall(i)

	case opcode.OpTellCall:
		args := b.pop()
		return b.call(&ast.CallNode{Base: ast.At(i), Name: b.name(ins.Operand), Args: args, Target: int(ins.Operand)})

	case opcode.OpObjCallV4:
		obj := &ast.VarNode{Base: ast.At(i), Name: b.name(ins.Operand)}
		args := b.pop()
		node := &ast.ObjCallV4Node{Base: ast.At(i), Obj: obj, Args: args}
		if isNoRet(args) {
			node.Statement = true
			return b.stmt(node)
		}
		return b.expr(node)

	case opcode.OpObjCall:
		return b.translateObjCall(i)

	case opcode.OpPut:
		putType := ast.PutType((ins.Operand >> 4) & 0xf)
		variable := b.readVar(i, int(ins.Operand&0xf))
		value := b.pop()
		return b.stmt(&ast.PutStmtNode{Base: ast.Stmt(i), Type: putType, Variable: variable, Value: value})

	case opcode.OpPutChunk:
		putType := ast.PutType((ins.Operand >> 4) & 0xf)
		variable := b.readVar(i, int(ins.Operand&0xf))
		chunk := b.readChunkRef(i, variable)
		value := b.pop()
		return b.stmt(&ast.PutStmtNode{Base: ast.Stmt(i), Type: putType, Variable: chunk, Value: value})

	case opcode.OpDeleteChunk:
		variable := b.readVar(i, int(ins.Operand))
		return b.stmt(&ast.ChunkDeleteStmtNode{Base: ast.Stmt(i), Chunk: b.readChunkRef(i, variable)})

	case opcode.OpPushChunkVarRef:
		return b.expr(b.readVar(i, int(ins.Operand)))

	case opcode.OpGet:
		return b.translateGet(i)

	case opcode.OpSet:
		return b.translateSet(i)

	case opcode.OpGetMovieProp:
		return b.expr(&ast.TheExprNode{Base: ast.At(i), Prop: b.name(ins.Operand)})

	case opcode.OpSetMovieProp:
		value := b.pop()
		prop := &ast.TheExprNode{Base: ast.At(i), Prop: b.name(ins.Operand)}
		return b.stmt(&ast.AssignmentStmtNode{Base: ast.Stmt(i), Variable: prop, Value: value})

	case opcode.OpGetObjProp, opcode.OpGetChainedProp:
		obj := b.pop()
		return b.expr(&ast.ObjPropExprNode{Base: ast.At(i), Obj: obj, Prop: b.name(ins.Operand)})

	case opcode.OpSetObjProp:
		value := b.pop()
		obj := b.pop()
		prop := &ast.ObjPropExprNode{Base: ast.At(i), Obj: obj, Prop: b.name(ins.Operand)}
		return b.stmt(&ast.AssignmentStmtNode{Base: ast.Stmt(i), Variable: prop, Value: value})

	case opcode.OpPop:
		b.stack = b.stack[:len(b.stack)-b.stackCount(ins)]
		return nil

	case opcode.OpTheBuiltin:
		b.pop()
		return b.expr(&ast.TheExprNode{Base: ast.At(i), Prop: b.name(ins.Operand)})

	case opcode.OpNewObj:
		args := b.pop()
		return b.expr(&ast.NewObjNode{Base: ast.At(i), ObjType: b.name(ins.Operand), Args: args})
	}

	b.log.Debug("unsupported instruction", "op", ins.Opcode.String(), "pos", ins.Pos)
	return b.expr(&ast.ErrorNode{Base: ast.At(i)})
}

func (b *builder) expr(n ast.Node) ast.Node {
	b.push(n)
	return n
}

func (b *builder) stmt(n ast.Node) ast.Node {
	b.addStatement(n)
	return n
}

func (b *builder) lastStatement(kind ast.Kind) ast.Node {
	children := b.currentBlock().Children
	for j := len(children) - 1; j >= 0; j-- {
		if children[j].Kind() == kind {
			return children[j]
		}
	}
	return nil
}

func isNoRet(args ast.Node) bool {
	lit, ok := args.(*ast.LiteralNode)
	return ok && lit.Value.Type == ast.DatumArgListNoRet
}

// call finishes a call node: calls whose arguments were pushed with
// pusharglistnoret are statements, the rest are expressions.
func (b *builder) call(n *ast.CallNode) ast.Node {
	if isNoRet(n.Args) {
		n.Statement = true
		return b.stmt(n)
	}
	return b.expr(n)
}

func (b *builder) translateExtCall(i int) ast.Node {
	ins := b.code[i]
	name := b.name(ins.Operand)
	args := b.pop()
	items := ast.Args(args)

	if isNoRet(args) {
		switch name {
		case "sound":
			if len(items) > 0 {
				if cmd, ok := items[0].(*ast.LiteralNode); ok && cmd.Value.Type == ast.DatumSymbol {
					rest := ast.Lit(i, ast.List(ast.DatumArgListNoRet, items[1:]))
					return b.stmt(&ast.SoundCmdStmtNode{Base: ast.Stmt(i), Cmd: cmd.Value.Str, Args: rest})
				}
			}
		case "play":
			if len(items) <= 2 {
				return b.stmt(&ast.PlayCmdStmtNode{Base: ast.Stmt(i), Args: args})
			}
		}
	}

	return b.call(&ast.CallNode{Base: ast.At(i), Name: name, Args: args, Target: int(ins.Operand)})
}

func (b *builder) translateObjCall(i int) ast.Node {
	ins := b.code[i]
	name := b.name(ins.Operand)
	args := b.pop()
	items := ast.Args(args)
	noRet := isNoRet(args)

	switch {
	case name == "getAt" && len(items) == 2 && !noRet:
		return b.expr(&ast.ObjBracketExprNode{Base: ast.At(i), Obj: items[0], Prop: items[1]})

	case name == "setAt" && len(items) == 3 && noRet:
		target := &ast.ObjBracketExprNode{Base: ast.At(i), Obj: items[0], Prop: items[1]}
		return b.stmt(&ast.AssignmentStmtNode{Base: ast.Stmt(i), Variable: target, Value: items[2], ForceVerbose: true})

	case (name == "getProp" || name == "getPropRef") && (len(items) == 3 || len(items) == 4) && !noRet:
		prop, ok := items[1].(*ast.LiteralNode)
		if !ok || prop.Value.Type != ast.DatumSymbol {
			break
		}
		node := &ast.ObjPropIndexExprNode{Base: ast.At(i), Obj: items[0], Prop: prop.Value.Str, Index: items[2]}
		if len(items) == 4 {
			node.Index2 = items[3]
		}
		return b.expr(node)
	}

	node := &ast.ObjCallNode{Base: ast.At(i), Name: name, Args: args}
	if noRet {
		node.Statement = true
		return b.stmt(node)
	}
	return b.expr(node)
}

func (b *builder) translateJump(i int) ast.Node {
	ins := b.code[i]
	target, _ := ins.Target()

	if len(b.loops) > 0 {
		loop := b.loops[len(b.loops)-1]
		switch target {
		case loop.endPos:
			return b.stmt(&ast.ExitRepeatStmtNode{Base: ast.Stmt(i)})
		case loop.nextPos:
			return b.stmt(&ast.NextRepeatStmtNode{Base: ast.Stmt(i)})
		}
	}

	b.log.Debug("unstructured jump", "pos", ins.Pos, "target", target)
	return b.stmt(&ast.CommentNode{Base: ast.Stmt(i), Text: "ERROR: unstructured jump"})
}

func (b *builder) translateCondJump(i int) ast.Node {
	ins := b.code[i]
	cond := b.pop()
	target, _ := ins.Target()
	targetIdx, ok := b.index(target)
	if !ok {
		b.log.Debug("jump into an instruction", "pos", ins.Pos, "target", target)
		return b.stmt(&ast.CommentNode{Base: ast.Stmt(i), Text: "ERROR: bad jump target"})
	}

	switch b.tags[i] {
	case tagRepeatWhile:
		loop := &ast.RepeatWhileStmtNode{Base: ast.Stmt(i), Condition: cond}
		return b.openLoop(i, loop, &loop.Block)

	case tagRepeatWithTo:
		loop := &ast.RepeatWithToStmtNode{Base: ast.Stmt(i), From: b.inits[i]}
		if loop.From == nil {
			loop.From = &ast.ErrorNode{Base: ast.At(i)}
		}
		loop.Up = b.code[i-1].Opcode == opcode.OpLtEq
		if cmp, ok := cond.(*ast.BinaryOpNode); ok {
			loop.To = cmp.Right
			if v, ok := cmp.Left.(*ast.VarNode); ok {
				loop.VarName = v.Name
			}
		} else {
			loop.To = cond
		}
		return b.openLoop(i, loop, &loop.Block)
	}

	ifStmt := &ast.IfStmtNode{
		Base:      ast.Stmt(i),
		Condition: cond,
		Block1:    &ast.BlockNode{Base: ast.Span(i+1, targetIdx)},
		Block2:    &ast.BlockNode{Base: ast.At(targetIdx)},
	}
	ifStmt.EndOffset = targetIdx
	ctx := &blockContext{block: ifStmt.Block1, endPos: target}

	if elseIdx := targetIdx - 1; elseIdx > i && b.code[elseIdx].Opcode == opcode.OpJmp && !b.isLoopJump(b.code[elseIdx]) {
		elseEnd, _ := b.code[elseIdx].Target()
		if endIdx, ok := b.index(elseEnd); ok && elseEnd > target {
			b.tags[elseIdx] = tagElse
			ifStmt.HasElse = true
			ifStmt.EndOffset = endIdx
			ifStmt.Block2.EndOffset = endIdx
			ctx.next = &blockContext{block: ifStmt.Block2, endPos: elseEnd}
		}
	}

	b.addStatement(ifStmt)
	b.pushBlock(ctx)
	return ifStmt
}

func (b *builder) isLoopJump(ins bytecode.Instruction) bool {
	if len(b.loops) == 0 {
		return false
	}
	target, _ := ins.Target()
	loop := b.loops[len(b.loops)-1]
	return target == loop.endPos || target == loop.nextPos
}

func (b *builder) openLoop(i int, loop ast.Node, block **ast.BlockNode) ast.Node {
	nextPos, endPos := b.loopBounds(i)
	endIdx, _ := b.index(endPos)
	*block = &ast.BlockNode{Base: ast.Span(i+1, endIdx-1)}

	switch n := loop.(type) {
	case *ast.RepeatWhileStmtNode:
		n.EndOffset = endIdx - 1
	case *ast.RepeatWithToStmtNode:
		n.EndOffset = endIdx - 1
	}

	b.addStatement(loop)
	b.loops = append(b.loops, loopContext{nextPos: nextPos, endPos: endPos})
	b.pushBlock(&blockContext{block: *block, endPos: nextPos, loop: true})
	return loop
}

// readVar pops a variable reference encoded with the given variable type.
func (b *builder) readVar(i int, varType int) ast.Node {
	id := b.pop()
	switch varType {
	case 0x1, 0x2, 0x3:
		if lit, ok := id.(*ast.LiteralNode); ok && lit.Value.AsString() != "" {
			return &ast.VarNode{Base: ast.At(i), Name: lit.Value.AsString()}
		}
		return id
	case 0x4:
		return &ast.VarNode{Base: ast.At(i), Name: b.argumentName(literalInt(id))}
	case 0x5:
		return &ast.VarNode{Base: ast.At(i), Name: b.localName(literalInt(id))}
	case 0x6:
		return &ast.MemberExprNode{Base: ast.At(i), Type: "field", MemberID: id}
	}

	b.log.Debug("unknown variable type", "type", varType)
	return &ast.ErrorNode{Base: ast.At(i)}
}

func literalInt(n ast.Node) int {
	if lit, ok := n.(*ast.LiteralNode); ok {
		return lit.Value.AsInt()
	}
	return -1
}

// readChunkRef pops the eight chunk bounds pushed before a chunk access and
// wraps str from the outermost (line) to the innermost (char) chunk.
func (b *builder) readChunkRef(i int, str ast.Node) ast.Node {
	lastLine, firstLine := b.pop(), b.pop()
	lastItem, firstItem := b.pop(), b.pop()
	lastWord, firstWord := b.pop(), b.pop()
	lastChar, firstChar := b.pop(), b.pop()

	bounds := []struct {
		t           ast.ChunkType
		first, last ast.Node
	}{
		{ast.ChunkLine, firstLine, lastLine},
		{ast.ChunkItem, firstItem, lastItem},
		{ast.ChunkWord, firstWord, lastWord},
		{ast.ChunkChar, firstChar, lastChar},
	}
	for _, c := range bounds {
		if ast.IsIntLiteral(c.first, 0) {
			continue
		}
		str = &ast.ChunkExprNode{Base: ast.At(i), Type: c.t, First: c.first, Last: c.last, String: str}
	}
	return str
}

func (b *builder) translateGet(i int) ast.Node {
	propertyType := int(b.code[i].Operand)
	id := b.popInt()

	switch propertyType {
	case 0x00:
		if id <= 0x0b {
			return b.expr(&ast.TheExprNode{Base: ast.At(i), Prop: ast.MoviePropertyName(id)})
		}
		str := b.pop()
		return b.expr(&ast.LastStringChunkExprNode{Base: ast.At(i), Type: ast.ChunkType(id - 0x0b), Obj: str})
	case 0x01:
		str := b.pop()
		return b.expr(&ast.StringChunkCountExprNode{Base: ast.At(i), Type: ast.ChunkType(id), Obj: str})
	case 0x02:
		return b.expr(&ast.MenuPropExprNode{Base: ast.At(i), Menu: b.pop(), Prop: id})
	case 0x03:
		menu := b.pop()
		item := b.pop()
		return b.expr(&ast.MenuItemPropExprNode{Base: ast.At(i), Menu: menu, Item: item, Prop: id})
	case 0x04:
		return b.expr(&ast.SoundPropExprNode{Base: ast.At(i), Sound: b.pop(), Prop: id})
	case 0x06:
		return b.expr(&ast.SpritePropExprNode{Base: ast.At(i), Sprite: b.pop(), Prop: id})
	case 0x07:
		return b.expr(&ast.TheExprNode{Base: ast.At(i), Prop: ast.AnimationPropertyName(id)})
	}

	b.log.Debug("unsupported get property type", "type", propertyType)
	return b.expr(&ast.ErrorNode{Base: ast.At(i)})
}

func (b *builder) translateSet(i int) ast.Node {
	propertyType := int(b.code[i].Operand)
	id := b.popInt()
	value := b.pop()

	var target ast.Node
	switch propertyType {
	case 0x00:
		if lit, ok := value.(*ast.LiteralNode); ok && id >= 0x01 && id <= 0x05 && lit.Value.Type == ast.DatumString {
			return b.stmt(&ast.WhenStmtNode{Base: ast.Stmt(i), Event: id, Script: lit.Value.Str})
		}
		target = &ast.TheExprNode{Base: ast.At(i), Prop: ast.MoviePropertyName(id)}
	case 0x03:
		menu := b.pop()
		item := b.pop()
		target = &ast.MenuItemPropExprNode{Base: ast.At(i), Menu: menu, Item: item, Prop: id}
	case 0x04:
		target = &ast.SoundPropExprNode{Base: ast.At(i), Sound: b.pop(), Prop: id}
	case 0x06:
		target = &ast.SpritePropExprNode{Base: ast.At(i), Sprite: b.pop(), Prop: id}
	case 0x07:
		target = &ast.TheExprNode{Base: ast.At(i), Prop: ast.AnimationPropertyName(id)}
	default:
		b.log.Debug("unsupported set property type", "type", propertyType)
		target = &ast.ErrorNode{Base: ast.At(i)}
	}

	return b.stmt(&ast.AssignmentStmtNode{Base: ast.Stmt(i), Variable: target, Value: value, ForceVerbose: true})
}
