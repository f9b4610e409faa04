package ast

type DatumType int

const (
	DatumVoid DatumType = iota
	DatumSymbol
	DatumVarRef
	DatumString
	DatumInt
	DatumFloat
	DatumList
	DatumArgList
	DatumArgListNoRet
	DatumPropList
)

// Datum is a literal value. List-shaped datums hold their elements as nodes;
// property lists alternate key and value.
type Datum struct {
	Type  DatumType
	Int   int
	Float float64
	Str   string
	List  []Node
}

func Void() Datum                { return Datum{Type: DatumVoid} }
func Int(i int) Datum            { return Datum{Type: DatumInt, Int: i} }
func Float(f float64) Datum      { return Datum{Type: DatumFloat, Float: f} }
func String(s string) Datum      { return Datum{Type: DatumString, Str: s} }
func Symbol(s string) Datum      { return Datum{Type: DatumSymbol, Str: s} }
func VarRef(s string) Datum      { return Datum{Type: DatumVarRef, Str: s} }

func List(t DatumType, l []Node) Datum {
	return Datum{Type: t, List: l}
}

// IsList reports whether the datum holds elements.
func (d Datum) IsList() bool {
	switch d.Type {
	case DatumList, DatumArgList, DatumArgListNoRet, DatumPropList:
		return true
	}
	return false
}

// AsInt returns the integer value of numeric datums.
func (d Datum) AsInt() int {
	switch d.Type {
	case DatumInt:
		return d.Int
	case DatumFloat:
		return int(d.Float)
	}
	return 0
}

// AsString returns the textual payload of string-like datums.
func (d Datum) AsString() string {
	switch d.Type {
	case DatumString, DatumSymbol, DatumVarRef:
		return d.Str
	}
	return ""
}

// Lit wraps a datum in a literal node at pos.
func Lit(pos int, d Datum) *LiteralNode {
	return &LiteralNode{Base: At(pos), Value: d}
}
