package syntax

import (
	"sort"
	"strings"
)

// WordClass is what the resolver knows about a word.
type WordClass uint8

const (
	WordUnknown WordClass = iota
	WordCommand
	WordReporter
	WordVariable
	WordConstant
)

// Shape is the bracket form an argument slot expects.
type Shape uint8

const (
	ShapeAny Shape = iota
	ShapeCommandBlock
	ShapeReporterBlock
	ShapeAnonCommand
	ShapeAnonReporter
	ShapeList
)

// Signature describes how a word parses: its class, argument shapes and
// operator behaviour.
type Signature struct {
	Class       WordClass
	Infix       bool
	Args        []Shape
	Repeat      bool // Args[RepeatIndex] repeats
	RepeatIndex int  // shapes after it fill the trailing slots
	Default     int  // right arguments taken without parentheses
	Variadic    bool // parentheses allow more arguments
	Precedence  int
	RightAssoc  bool
}

func (s Signature) shapeAt(i int) Shape {
	if i < len(s.Args) {
		return s.Args[i]
	}
	if s.Repeat && s.RepeatIndex < len(s.Args) {
		return s.Args[s.RepeatIndex]
	}
	return ShapeAny
}

// parenShapeAt is shapeAt for a parenthesized call, where any number of
// repeated arguments may come before the trailing slots. Bracketed groups
// running up to the closing parenthesis fill the trailing slots.
func (p *parser) parenShapeAt(sig Signature, i int) Shape {
	trailing := len(sig.Args) - 1 - sig.RepeatIndex
	if !sig.Repeat || trailing <= 0 || i < sig.RepeatIndex {
		return sig.shapeAt(i)
	}
	if k := p.groupsBeforeParen(trailing); k > 0 {
		return sig.Args[len(sig.Args)-k]
	}
	return sig.Args[sig.RepeatIndex]
}

// groupsBeforeParen counts the bracketed groups between the cursor and a
// closing parenthesis. It returns 0 when anything else comes between them or
// when more than max groups follow.
func (p *parser) groupsBeforeParen(max int) int {
	k, depth := 0, 0
	for j := p.pos; j < len(p.tokens); j++ {
		switch p.tokens[j].Type {
		case TokLBracket:
			if depth == 0 {
				if k++; k > max {
					return 0
				}
			}
			depth++
		case TokRBracket:
			if depth--; depth < 0 {
				return 0
			}
		case TokRParen:
			if depth == 0 {
				return k
			}
		default:
			if depth == 0 {
				return 0
			}
		}
	}
	return 0
}

// Resolver classifies words for the parser. Fingerprint changes whenever a
// classification may have changed, which invalidates incremental re-parsing.
type Resolver interface {
	Resolve(word string) Signature
	Fingerprint() uint64
}

type nopResolver struct{}

func (nopResolver) Resolve(string) Signature { return Signature{} }
func (nopResolver) Fingerprint() uint64      { return 0 }

const precNormal = 10

type parser struct {
	src      string
	tokens   []Token
	comments []Token
	pos      int
	res      Resolver
	mode     Mode
	scopes   []map[string]bool
}

func newParser(src string, toks []Token, res Resolver, mode Mode) *parser {
	if res == nil {
		res = nopResolver{}
	}
	p := &parser{src: src, res: res, mode: mode}
	for _, t := range toks {
		if t.Type == TokComment {
			p.comments = append(p.comments, t)
		} else {
			p.tokens = append(p.tokens, t)
		}
	}
	return p
}

// Parse builds the concrete syntax tree for src. Parsing never fails; invalid
// input yields Error, Misplaced and unterminated nodes.
func Parse(src string, mode Mode, res Resolver) *Tree {
	p := newParser(src, Lex(src), res, mode)
	root := newNode(Program)
	for !p.eof() {
		root.add(p.parseTopItem()...)
	}
	root.From, root.To = 0, len(src)
	attachComments(root, p.comments)
	return &Tree{Source: src, Root: root, Mode: mode, Fingerprint: p.res.Fingerprint()}
}

func (p *parser) eof() bool { return p.pos >= len(p.tokens) }

func (p *parser) peek() Token { return p.peekAt(p.pos) }

func (p *parser) peekAt(i int) Token {
	if i >= len(p.tokens) {
		return Token{Type: TokEOF, Pos: len(p.src), End: len(p.src)}
	}
	return p.tokens[i]
}

func (p *parser) advance() Token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) leaf(k Kind) *Node {
	t := p.advance()
	text := t.Lower()
	if k == String {
		text = t.Value
	}
	return &Node{Kind: k, From: t.Pos, To: t.End, Text: text}
}

func (p *parser) pushScope() { p.scopes = append(p.scopes, map[string]bool{}) }
func (p *parser) popScope()  { p.scopes = p.scopes[:len(p.scopes)-1] }

func (p *parser) declare(name string) {
	if len(p.scopes) > 0 {
		p.scopes[len(p.scopes)-1][name] = true
	}
}

func (p *parser) isLocal(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if p.scopes[i][name] {
			return true
		}
	}
	return false
}

func isProcKeyword(w string) bool { return w == "to" || w == "to-report" }

func isBreedKeyword(w string) bool {
	return w == "breed" || w == "directed-link-breed" || w == "undirected-link-breed"
}

// declarationAt reports whether the token at i starts a declaration.
func (p *parser) declarationAt(i int) bool {
	t := p.peekAt(i)
	if t.Type != TokWord {
		return false
	}
	w := t.Lower()
	switch {
	case w == "extensions" || w == "globals" || isBreedKeyword(w):
		return true
	case len(w) > 4 && strings.HasSuffix(w, "-own"):
		return p.peekAt(i+1).Type == TokLBracket
	}
	return false
}

// keywordAt reports whether the token at i is structural rather than an operand.
func (p *parser) keywordAt(i int) bool {
	t := p.peekAt(i)
	if t.Type != TokWord {
		return false
	}
	switch t.Lower() {
	case "let", "set", "to", "to-report", "end", "->":
		return true
	}
	return p.declarationAt(i)
}

// topBoundary reports whether the current token ends a run of top-level statements.
func (p *parser) topBoundary() bool {
	t := p.peek()
	if t.Type != TokWord {
		return false
	}
	w := t.Lower()
	return w == "end" || isProcKeyword(w) || p.declarationAt(p.pos)
}

func (p *parser) resolve(i int) (Signature, bool) {
	t := p.peekAt(i)
	if t.Type != TokWord {
		return Signature{}, false
	}
	w := t.Lower()
	if p.isLocal(w) {
		return Signature{Class: WordVariable}, true
	}
	return p.res.Resolve(w), true
}

func (p *parser) parseTopItem() []*Node {
	t := p.peek()
	if t.Type == TokWord {
		w := t.Lower()
		switch {
		case p.declarationAt(p.pos):
			return []*Node{p.parseDeclaration()}
		case isProcKeyword(w):
			return []*Node{p.parseProcedure()}
		case w == "end":
			return []*Node{newNode(Error, p.leaf(End))}
		}
	}
	if p.mode == OneLine {
		if e := p.parseExpr(0, ShapeAny); e != nil {
			return []*Node{e}
		}
		return []*Node{p.parseStatement()}
	}
	return p.parseTopStatements()
}

func (p *parser) parseTopStatements() []*Node {
	p.pushScope()
	defer p.popScope()
	var stmts []*Node
	for !p.eof() && !p.topBoundary() {
		stmts = append(stmts, p.parseStatement())
	}
	if t := p.peek(); t.Type == TokWord && t.Lower() == "end" {
		// Statements closed by a stray end: a procedure without its header.
		proc := newNode(Procedure, stmts...)
		return []*Node{proc.add(p.leaf(End))}
	}
	if p.mode == Embedded {
		return stmts
	}
	out := make([]*Node, 0, len(stmts))
	for _, s := range stmts {
		if s.Kind == Error {
			out = append(out, s)
			continue
		}
		out = append(out, newNode(Misplaced, s))
	}
	return out
}

func (p *parser) parseDeclaration() *Node {
	w := p.peek().Lower()
	kind := BreedsOwn
	switch {
	case w == "extensions":
		kind = Extensions
	case w == "globals":
		kind = Globals
	case isBreedKeyword(w):
		kind = Breed
	}
	decl := newNode(kind, p.leaf(Keyword))
	if p.peek().Type != TokLBracket {
		return decl
	}
	decl.add(p.leaf(OpenBracket))
	for !p.eof() {
		t := p.peek()
		switch t.Type {
		case TokRBracket:
			return decl.add(p.leaf(CloseBracket))
		case TokWord:
			if p.topBoundary() {
				return decl
			}
			decl.add(p.leaf(Identifier))
		default:
			decl.add(newNode(Error, p.leaf(Garbage)))
		}
	}
	return decl
}

func (p *parser) parseProcedure() *Node {
	proc := newNode(Procedure, p.leaf(To))
	if t := p.peek(); t.Type == TokWord && !p.keywordAt(p.pos) {
		proc.add(p.leaf(ProcedureName))
	}
	p.pushScope()
	defer p.popScope()
	if p.peek().Type == TokLBracket {
		args := newNode(Arguments, p.leaf(OpenBracket))
		for !p.eof() {
			t := p.peek()
			if t.Type == TokRBracket {
				args.add(p.leaf(CloseBracket))
				break
			}
			if t.Type == TokWord {
				if p.topBoundary() {
					break
				}
				id := p.leaf(Identifier)
				p.declare(id.Text)
				args.add(id)
				continue
			}
			args.add(newNode(Error, p.leaf(Garbage)))
		}
		proc.add(args)
	}
	for !p.eof() {
		t := p.peek()
		if t.Type == TokWord {
			w := t.Lower()
			if w == "end" {
				proc.add(p.leaf(End))
				break
			}
			if isProcKeyword(w) || p.declarationAt(p.pos) {
				break
			}
		}
		proc.add(p.parseStatement())
	}
	return proc
}

// parseStatement always consumes at least one token.
func (p *parser) parseStatement() *Node {
	t := p.peek()
	switch t.Type {
	case TokWord:
		w := t.Lower()
		switch {
		case w == "let":
			return p.parseLet()
		case w == "set":
			return p.parseSet()
		case p.declarationAt(p.pos):
			return p.parseDeclaration()
		case w == "->":
			return newNode(Error, p.leaf(Arrow))
		case isProcKeyword(w) || w == "end":
			return newNode(Error, p.leaf(Keyword))
		}
		if !p.isLocal(w) {
			sig := p.res.Resolve(w)
			switch sig.Class {
			case WordCommand:
				return p.parseCommand(sig)
			case WordUnknown:
				return p.parseCommand(Signature{Class: WordCommand})
			}
		}
	case TokLParen:
		if p.parenCommandAt(p.pos) {
			return p.parseParenCommand()
		}
	case TokRBracket:
		return newNode(Error, p.leaf(CloseBracket))
	case TokRParen:
		return newNode(Error, p.leaf(CloseParen))
	}
	if e := p.parseExpr(0, ShapeAny); e != nil {
		return newNode(Error, e)
	}
	return newNode(Error, p.leaf(Garbage))
}

func (p *parser) parseLet() *Node {
	n := newNode(Let, p.leaf(Keyword))
	name := ""
	if t := p.peek(); t.Type == TokWord && !p.keywordAt(p.pos) {
		id := p.leaf(Identifier)
		name = id.Text
		n.add(id)
	}
	p.parseValues(n)
	if name != "" {
		p.declare(name)
	}
	return n
}

func (p *parser) parseSet() *Node {
	n := newNode(Set, p.leaf(Keyword))
	if t := p.peek(); t.Type == TokWord && !p.keywordAt(p.pos) {
		n.add(p.leaf(Identifier))
	}
	p.parseValues(n)
	return n
}

// parseValues reads the value of let/set plus any surplus expressions, which
// the arity linter reports.
func (p *parser) parseValues(n *Node) {
	needMore := true
	for p.canStartExpr(p.pos, needMore) {
		v := p.parseExpr(0, ShapeAny)
		if v == nil {
			return
		}
		n.add(v)
		needMore = false
	}
}

func (p *parser) parseCommand(sig Signature) *Node {
	stmt := newNode(CommandStatement, p.leaf(Command))
	for i := 0; ; i++ {
		if !p.canStartExpr(p.pos, i < sig.Default) {
			break
		}
		arg := p.parseExpr(0, sig.shapeAt(i))
		if arg == nil {
			break
		}
		stmt.add(arg)
	}
	return stmt
}

// parenCommandAt reports whether "(" at i opens a parenthesized command call.
func (p *parser) parenCommandAt(i int) bool {
	if p.peekAt(i).Type != TokLParen {
		return false
	}
	sig, ok := p.resolve(i + 1)
	return ok && sig.Class == WordCommand
}

func (p *parser) parseParenCommand() *Node {
	open := p.leaf(OpenParen)
	sig, _ := p.resolve(p.pos)
	stmt := newNode(CommandStatement, open, p.leaf(Command))
	for i := 0; ; i++ {
		if p.peek().Type == TokRParen {
			stmt.add(p.leaf(CloseParen))
			break
		}
		if !p.canStartExpr(p.pos, true) {
			break
		}
		arg := p.parseExpr(0, p.parenShapeAt(sig, i))
		if arg == nil {
			break
		}
		stmt.add(arg)
	}
	return stmt
}

// canStartExpr reports whether the token at i can begin an argument. Unknown
// words and infix operators only count when the caller still needs arguments;
// otherwise they start the next statement.
func (p *parser) canStartExpr(i int, needMore bool) bool {
	t := p.peekAt(i)
	switch t.Type {
	case TokNumber, TokString, TokLBracket:
		return true
	case TokLParen:
		return !p.parenCommandAt(i)
	case TokWord:
		if p.keywordAt(i) {
			return false
		}
		sig, _ := p.resolve(i)
		switch sig.Class {
		case WordConstant, WordVariable:
			return true
		case WordReporter:
			return !sig.Infix || needMore
		case WordUnknown:
			return needMore
		}
	}
	return false
}

func (p *parser) parseExpr(minPrec int, shape Shape) *Node {
	left := p.parseOperand(shape)
	if left == nil {
		return nil
	}
	return p.parseInfix(left, minPrec)
}

func (p *parser) parseInfix(left *Node, minPrec int) *Node {
	for {
		sig, ok := p.resolve(p.pos)
		if !ok || sig.Class != WordReporter || !sig.Infix || sig.Precedence < minPrec {
			return left
		}
		call := newNode(ReporterCall, left, p.leaf(Reporter))
		next := sig.Precedence + 1
		if sig.RightAssoc {
			next = sig.Precedence
		}
		p.parseRightArgs(call, sig, next)
		left = call
	}
}

func (p *parser) parseRightArgs(call *Node, sig Signature, prec int) {
	for i := 0; i < sig.Default; i++ {
		if !p.canStartExpr(p.pos, true) {
			return
		}
		arg := p.parseExpr(prec, sig.shapeAt(i))
		if arg == nil {
			return
		}
		call.add(arg)
	}
}

func (p *parser) parseOperand(shape Shape) *Node {
	t := p.peek()
	switch t.Type {
	case TokNumber:
		return p.leaf(Number)
	case TokString:
		return p.leaf(String)
	case TokLBracket:
		return p.parseBracket(shape)
	case TokLParen:
		if p.parenCommandAt(p.pos) {
			return nil
		}
		return p.parseParen()
	case TokOther:
		return newNode(Error, p.leaf(Garbage))
	case TokWord:
		if p.keywordAt(p.pos) {
			return nil
		}
		sig, _ := p.resolve(p.pos)
		switch sig.Class {
		case WordConstant:
			return p.leaf(Constant)
		case WordVariable, WordUnknown:
			return p.leaf(Identifier)
		case WordReporter:
			// An infix operator here is missing its left argument.
			call := newNode(ReporterCall, p.leaf(Reporter))
			prec := precNormal
			if sig.Infix {
				prec = sig.Precedence + 1
			}
			p.parseRightArgs(call, sig, prec)
			return call
		}
	}
	return nil
}

func (p *parser) parseParen() *Node {
	open := p.leaf(OpenParen)
	if sig, ok := p.resolve(p.pos); ok && sig.Class == WordReporter && !sig.Infix && sig.Variadic {
		head := p.leaf(Reporter)
		var args []*Node
		for i := 0; p.peek().Type != TokRParen && p.canStartExpr(p.pos, true); i++ {
			arg := p.parseExpr(precNormal, p.parenShapeAt(sig, i))
			if arg == nil {
				break
			}
			args = append(args, arg)
		}
		if p.peek().Type == TokRParen {
			call := newNode(ReporterCall, open, head)
			call.add(args...)
			return call.add(p.leaf(CloseParen))
		}
		call := newNode(ReporterCall, head)
		call.add(args...)
		par := newNode(Parenthesized, open, p.parseInfix(call, 0))
		if p.peek().Type == TokRParen {
			par.add(p.leaf(CloseParen))
		}
		return par
	}
	par := newNode(Parenthesized, open)
	par.add(p.parseExpr(0, ShapeAny))
	if p.peek().Type == TokRParen {
		par.add(p.leaf(CloseParen))
	}
	return par
}

func (p *parser) parseBracket(shape Shape) *Node {
	switch shape {
	case ShapeCommandBlock:
		if p.arrowAhead() {
			return p.parseAnon(ShapeAnonCommand)
		}
		return p.parseCommandBlock()
	case ShapeReporterBlock:
		return p.parseReporterBlock()
	case ShapeAnonCommand, ShapeAnonReporter:
		return p.parseAnon(shape)
	}
	switch {
	case p.arrowAhead():
		return p.parseAnon(ShapeAny)
	case p.literalListAhead():
		return p.parseList()
	case p.statementAt(p.pos + 1):
		return p.parseCommandBlock()
	}
	return p.parseReporterBlock()
}

// statementAt reports whether the token at i starts a command statement.
func (p *parser) statementAt(i int) bool {
	t := p.peekAt(i)
	switch t.Type {
	case TokWord:
		switch t.Lower() {
		case "let", "set":
			return true
		}
		if p.declarationAt(i) {
			return true
		}
		sig, _ := p.resolve(i)
		return sig.Class == WordCommand
	case TokLParen:
		return p.parenCommandAt(i)
	}
	return false
}

// arrowAhead reports whether the bracket at the cursor opens an anonymous
// procedure: "[ ->", "[ x ->" or "[ [x y] ->".
func (p *parser) arrowAhead() bool {
	i := p.pos + 1
	t := p.peekAt(i)
	switch t.Type {
	case TokWord:
		if t.Value == "->" {
			return true
		}
		n := p.peekAt(i + 1)
		return n.Type == TokWord && n.Value == "->"
	case TokLBracket:
		for j := i + 1; j < len(p.tokens); j++ {
			switch p.tokens[j].Type {
			case TokWord:
				continue
			case TokRBracket:
				n := p.peekAt(j + 1)
				return n.Type == TokWord && n.Value == "->"
			}
			return false
		}
	}
	return false
}

// literalListAhead reports whether the bracket at the cursor holds only
// literal values and nested literal lists.
func (p *parser) literalListAhead() bool {
	depth := 0
	for j := p.pos; j < len(p.tokens); j++ {
		t := p.tokens[j]
		switch t.Type {
		case TokLBracket:
			depth++
		case TokRBracket:
			depth--
			if depth == 0 {
				return true
			}
		case TokNumber, TokString:
		case TokWord:
			switch t.Lower() {
			case "true", "false", "nobody":
			default:
				return false
			}
		default:
			return false
		}
	}
	return false
}

func (p *parser) parseList() *Node {
	list := newNode(List, p.leaf(OpenBracket))
	for !p.eof() {
		t := p.peek()
		switch t.Type {
		case TokRBracket:
			return list.add(p.leaf(CloseBracket))
		case TokNumber:
			list.add(p.leaf(Number))
		case TokString:
			list.add(p.leaf(String))
		case TokLBracket:
			list.add(p.parseList())
		case TokWord:
			if p.keywordAt(p.pos) {
				return list
			}
			list.add(p.leaf(Constant))
		default:
			list.add(newNode(Error, p.leaf(Garbage)))
		}
	}
	return list
}

func (p *parser) blockEnd() bool {
	t := p.peek()
	if t.Type == TokEOF || t.Type == TokRBracket {
		return true
	}
	if t.Type == TokWord {
		w := t.Lower()
		return w == "end" || isProcKeyword(w)
	}
	return false
}

func (p *parser) parseCommandBlock() *Node {
	block := newNode(CommandBlock, p.leaf(OpenBracket))
	p.pushScope()
	p.parseStatements(block)
	p.popScope()
	if p.peek().Type == TokRBracket {
		block.add(p.leaf(CloseBracket))
	}
	return block
}

func (p *parser) parseStatements(n *Node) {
	for !p.blockEnd() {
		n.add(p.parseStatement())
	}
}

func (p *parser) parseReporterBlock() *Node {
	block := newNode(ReporterBlock, p.leaf(OpenBracket))
	p.parseReporterBody(block)
	if p.peek().Type == TokRBracket {
		block.add(p.leaf(CloseBracket))
	}
	return block
}

// parseReporterBody reads one expression; anything after it is an error.
func (p *parser) parseReporterBody(n *Node) {
	seen := false
	for !p.blockEnd() {
		e := p.parseExpr(0, ShapeAny)
		if e == nil {
			s := p.parseStatement()
			if s.Kind != Error {
				s = newNode(Error, s)
			}
			n.add(s)
			continue
		}
		if seen {
			e = newNode(Error, e)
		}
		n.add(e)
		seen = true
	}
}

func (p *parser) parseAnon(shape Shape) *Node {
	hasArrow := p.arrowAhead()
	anon := newNode(AnonymousProcedure, p.leaf(OpenBracket))
	p.pushScope()
	defer p.popScope()
	if hasArrow {
		switch t := p.peek(); {
		case t.Type == TokLBracket:
			args := newNode(Arguments, p.leaf(OpenBracket))
			for p.peek().Type == TokWord {
				id := p.leaf(Identifier)
				p.declare(id.Text)
				args.add(id)
			}
			if p.peek().Type == TokRBracket {
				args.add(p.leaf(CloseBracket))
			}
			anon.add(args)
		case t.Type == TokWord && t.Value != "->":
			id := p.leaf(Identifier)
			p.declare(id.Text)
			anon.add(newNode(Arguments, id))
		}
		anon.add(p.leaf(Arrow))
	}
	command := shape == ShapeAnonCommand || (shape == ShapeAny && p.statementAt(p.pos))
	if command {
		p.parseStatements(anon)
	} else {
		p.parseReporterBody(anon)
	}
	if p.peek().Type == TokRBracket {
		anon.add(p.leaf(CloseBracket))
	}
	return anon
}

// attachComments inserts comment leaves into the innermost node spanning them.
func attachComments(root *Node, comments []Token) {
	for _, c := range comments {
		leaf := &Node{Kind: LineComment, From: c.Pos, To: c.End, Text: c.Value}
		n := root
		for {
			var next *Node
			for _, ch := range n.Children {
				if !ch.Kind.IsLeaf() && ch.From < c.Pos && c.Pos < ch.To {
					next = ch
					break
				}
			}
			if next == nil {
				break
			}
			n = next
		}
		idx := sort.Search(len(n.Children), func(i int) bool { return n.Children[i].From >= leaf.From })
		n.Children = append(n.Children, nil)
		copy(n.Children[idx+1:], n.Children[idx:])
		n.Children[idx] = leaf
		leaf.Parent = n
	}
}
