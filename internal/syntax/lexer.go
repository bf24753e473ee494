// Package syntax is the NetLogo concrete syntax tree: a lexer that keeps every
// token, a resolver-driven recursive-descent parser, tree queries and
// range-limited incremental re-parsing.
package syntax

import (
	"fmt"
	"regexp"
	"strings"
)

// TokenType classifies a lexer token.
type TokenType int

const (
	TokWord     TokenType = iota // identifier, primitive or operator
	TokNumber                    // 1, -2.5, 1e3
	TokString                    // "..."
	TokLBracket                  // [
	TokRBracket                  // ]
	TokLParen                    // (
	TokRParen                    // )
	TokComment                   // ; ...
	TokOther                     // { } , and unterminated strings

	TokEOF // end of input
)

// Token is a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset in the input
	End   int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%d, %q, pos=%d)", t.Type, t.Value, t.Pos)
}

// Lower returns the case-folded token text. NetLogo is case-insensitive.
func (t Token) Lower() string { return strings.ToLower(t.Value) }

var numberRe = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '[', ']', '(', ')', '{', '}', '"', ';', ',':
		return true
	}
	return false
}

// Lex splits input into tokens. Lexing never fails: malformed input becomes
// TokOther tokens that the parser turns into error nodes.
func Lex(input string) []Token {
	return lexFrom(input, 0)
}

func lexFrom(input string, start int) []Token {
	var tokens []Token
	i := start
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++
		case c == ';':
			j := i
			for j < len(input) && input[j] != '\n' {
				j++
			}
			end := j
			if end > i && input[end-1] == '\r' {
				end--
			}
			tokens = append(tokens, Token{Type: TokComment, Value: input[i:end], Pos: i, End: end})
			i = j
		case c == '"':
			j := i + 1
			closed := false
			for j < len(input) && input[j] != '\n' {
				if input[j] == '\\' && j+1 < len(input) && input[j+1] != '\n' {
					j += 2
					continue
				}
				if input[j] == '"' {
					j++
					closed = true
					break
				}
				j++
			}
			typ := TokString
			if !closed {
				typ = TokOther
			}
			tokens = append(tokens, Token{Type: typ, Value: input[i:j], Pos: i, End: j})
			i = j
		case c == '[':
			tokens = append(tokens, Token{Type: TokLBracket, Value: "[", Pos: i, End: i + 1})
			i++
		case c == ']':
			tokens = append(tokens, Token{Type: TokRBracket, Value: "]", Pos: i, End: i + 1})
			i++
		case c == '(':
			tokens = append(tokens, Token{Type: TokLParen, Value: "(", Pos: i, End: i + 1})
			i++
		case c == ')':
			tokens = append(tokens, Token{Type: TokRParen, Value: ")", Pos: i, End: i + 1})
			i++
		case c == '{' || c == '}' || c == ',':
			tokens = append(tokens, Token{Type: TokOther, Value: string(c), Pos: i, End: i + 1})
			i++
		default:
			j := i
			for j < len(input) && !isDelimiter(input[j]) {
				j++
			}
			word := input[i:j]
			typ := TokWord
			if numberRe.MatchString(word) {
				typ = TokNumber
			}
			tokens = append(tokens, Token{Type: typ, Value: word, Pos: i, End: j})
			i = j
		}
	}
	return tokens
}
