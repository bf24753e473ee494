package syntax

// Kind tags a node of the concrete syntax tree.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Structure
	Program
	Extensions
	Globals
	Breed
	BreedsOwn
	Procedure
	Arguments
	Misplaced
	Error

	// Statements and expressions
	CommandStatement
	ReporterCall
	Let
	Set
	CommandBlock
	ReporterBlock
	AnonymousProcedure
	List
	Parenthesized

	// Leaves
	Keyword
	To
	End
	ProcedureName
	Command
	Reporter
	Identifier
	Number
	String
	Constant
	Arrow
	OpenBracket
	CloseBracket
	OpenParen
	CloseParen
	LineComment
	Garbage
)

var kindNames = [...]string{
	KindInvalid:        "Invalid",
	Program:            "Program",
	Extensions:         "Extensions",
	Globals:            "Globals",
	Breed:              "BreedDeclaration",
	BreedsOwn:          "BreedsOwn",
	Procedure:          "Procedure",
	Arguments:          "Arguments",
	Misplaced:          "Misplaced",
	Error:              "⚠",
	CommandStatement:   "CommandStatement",
	ReporterCall:       "ReporterStatement",
	Let:                "NewVariableDeclaration",
	Set:                "VariableDeclaration",
	CommandBlock:       "CommandBlock",
	ReporterBlock:      "ReporterBlock",
	AnonymousProcedure: "AnonymousProcedure",
	List:               "List",
	Parenthesized:      "Parenthesized",
	Keyword:            "Keyword",
	To:                 "To",
	End:                "End",
	ProcedureName:      "ProcedureName",
	Command:            "Command",
	Reporter:           "Reporter",
	Identifier:         "Identifier",
	Number:             "Numeric",
	String:             "String",
	Constant:           "Constant",
	Arrow:              "Arrow",
	OpenBracket:        "OpenBracket",
	CloseBracket:       "CloseBracket",
	OpenParen:          "OpenParen",
	CloseParen:         "CloseParen",
	LineComment:        "LineComment",
	Garbage:            "Garbage",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Invalid"
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	// Grammar aliases.
	m["Breed"] = Breed
	m["ReporterCall"] = ReporterCall
	m["Error"] = Error
	return m
}()

// KindByName maps a grammar node name to its Kind.
func KindByName(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// IsLeaf reports whether nodes of kind k are single tokens.
func (k Kind) IsLeaf() bool { return k >= Keyword }

// IsDeclaration reports whether k is a top-level declaration.
func (k Kind) IsDeclaration() bool {
	switch k {
	case Extensions, Globals, Breed, BreedsOwn:
		return true
	}
	return false
}

// IsStatement reports whether k may appear as a statement in a procedure body.
func (k Kind) IsStatement() bool {
	switch k {
	case CommandStatement, Let, Set:
		return true
	}
	return false
}

// IsBlock reports whether k is a bracketed block.
func (k Kind) IsBlock() bool {
	switch k {
	case CommandBlock, ReporterBlock, AnonymousProcedure, List:
		return true
	}
	return false
}
