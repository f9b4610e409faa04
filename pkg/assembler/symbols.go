package assembler

type SymbolScope string

const (
	// NameScope is the name table shared by every script of a file
	NameScope   SymbolScope = "NAME"
	ParamScope  SymbolScope = "PARAM"
	LocalScope  SymbolScope = "LOCAL"
	GlobalScope SymbolScope = "GLOBAL"
)

type Symbol struct {
	Name  string
	Scope SymbolScope
	Index int
}

// SymbolTable numbers names per scope. A handler's table encloses the
// file-wide name table.
type SymbolTable struct {
	Outer *SymbolTable

	store          map[string]Symbol
	numDefinitions map[SymbolScope]int
	names          []string
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		store:          make(map[string]Symbol),
		numDefinitions: make(map[SymbolScope]int),
	}
}

func NewEnclosedSymbolTable(outer *SymbolTable) *SymbolTable {
	s := NewSymbolTable()
	s.Outer = outer
	return s
}

// Define adds name to scope. Redefining a name keeps the first definition.
func (s *SymbolTable) Define(name string, scope SymbolScope) Symbol {
	if symbol, ok := s.store[name]; ok {
		return symbol
	}
	symbol := Symbol{Name: name, Scope: scope, Index: s.numDefinitions[scope]}
	s.store[name] = symbol
	s.numDefinitions[scope]++
	if scope == NameScope {
		s.names = append(s.names, name)
	}
	return symbol
}

func (s *SymbolTable) Resolve(name string) (Symbol, bool) {
	obj, ok := s.store[name]
	if !ok && s.Outer != nil {
		return s.Outer.Resolve(name)
	}
	return obj, ok
}

// Intern returns the name-table index of name, adding it when missing.
func (s *SymbolTable) Intern(name string) int {
	table := s
	for table.Outer != nil {
		table = table.Outer
	}
	return table.Define(name, NameScope).Index
}

// Names returns the name table in index order.
func (s *SymbolTable) Names() []string {
	table := s
	for table.Outer != nil {
		table = table.Outer
	}
	return table.names
}
