// Package dsl implements component C5 (spec.md §4.5): the lexer, the
// indentation-sensitive parser, and the AST for the sys2 source
// language. The teacher (gokando) is a Go API, not a text-format
// front end, so this package's token taxonomy instead follows the
// naming convention other retrieval-pack DSLs use for their lexers
// (other_examples/.../pgraph/internal/dsl/grammar.go.go: Keyword,
// Float, Int, String, Ident, Punct) while the indentation-tracking
// architecture itself is the classic Python/YAML column-stack design,
// since nothing in the pack ships a text-format grammar identical to
// spec.md's `@/$/?` + indentation syntax.
package dsl

import "fmt"

// Kind enumerates token categories.
type Kind int

const (
	EOF Kind = iota
	NEWLINE
	INDENT
	DEDENT
	AT       // '@'
	DOLLAR   // '$'
	QUESTION // '?'
	COLON    // ':'
	LPAREN
	RPAREN
	IDENT
	STRING
	NUMBER
	KEYWORD // macro, graph, theory, return, end
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case INDENT:
		return "INDENT"
	case DEDENT:
		return "DEDENT"
	case AT:
		return "@"
	case DOLLAR:
		return "$"
	case QUESTION:
		return "?"
	case COLON:
		return ":"
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case IDENT:
		return "IDENT"
	case STRING:
		return "STRING"
	case NUMBER:
		return "NUMBER"
	case KEYWORD:
		return "KEYWORD"
	default:
		return "UNKNOWN"
	}
}

// Keywords is the reserved word set recognized by the lexer (spec.md
// §4.5 grammar: macro, graph, theory, return, end).
var Keywords = map[string]bool{
	"macro":  true,
	"graph":  true,
	"theory": true,
	"return": true,
	"end":    true,
}

// Token is one lexical unit, carrying its source position for error
// reporting per spec.md §4.5 ("(line, col, expected, found)").
type Token struct {
	Kind Kind
	Text string
	Line int
	Col  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Col)
}
