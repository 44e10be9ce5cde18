package dsl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLexerBasicTokens(t *testing.T) {
	lx := NewLexer(`@fact isA Rex Dog`)
	toks := lx.Tokenize()
	require.Empty(t, lx.Errors())
	kinds := make([]Kind, 0, len(toks))
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	require.Equal(t, []Kind{AT, IDENT, IDENT, IDENT, IDENT, EOF}, kinds)
}

func TestLexerIndentation(t *testing.T) {
	src := "@m macro x\n  @a isA $x Dog\nend\n"
	lx := NewLexer(src)
	toks := lx.Tokenize()
	require.Empty(t, lx.Errors())
	var kinds []Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	require.Contains(t, kinds, INDENT)
	require.Contains(t, kinds, DEDENT)
}

func TestParseSimpleFact(t *testing.T) {
	prog, errs := Parse("@fact isA Rex Dog\n")
	require.Empty(t, errs)
	require.Len(t, prog.Statements, 1)
	stmt := prog.Statements[0]
	require.Equal(t, "fact", stmt.Dest)
	require.Equal(t, "isA", stmt.Operator)
	require.Len(t, stmt.Args, 2)
	require.Equal(t, "Rex", stmt.Args[0].(*Identifier).Name)
	require.Equal(t, "Dog", stmt.Args[1].(*Identifier).Name)
}

func TestParseReferenceAndHole(t *testing.T) {
	prog, errs := Parse("@q isA $subject ?type\n")
	require.Empty(t, errs)
	stmt := prog.Statements[0]
	require.IsType(t, &Reference{}, stmt.Args[0])
	require.IsType(t, &Hole{}, stmt.Args[1])
}

func TestParseCompoundExpr(t *testing.T) {
	prog, errs := Parse("@r Implies (isA Rex Dog) (isA Rex Animal)\n")
	require.Empty(t, errs)
	stmt := prog.Statements[0]
	require.Len(t, stmt.Args, 2)
	require.IsType(t, &Compound{}, stmt.Args[0])
}

func TestParseMacro(t *testing.T) {
	src := "@greet macro x\n  @g isA $x Greeted\nend\n"
	prog, errs := Parse(src)
	require.Empty(t, errs)
	require.Len(t, prog.Statements, 1)
	macro, ok := prog.Statements[0].Block.(*MacroDef)
	require.True(t, ok)
	require.Equal(t, []string{"x"}, macro.Params)
	require.Len(t, macro.Body, 1)
}

func TestParseGraph(t *testing.T) {
	src := "@g graph x y\n  @r isA $x $y\n  return $r\nend\n"
	prog, errs := Parse(src)
	require.Empty(t, errs)
	graph, ok := prog.Statements[0].Block.(*GraphDef)
	require.True(t, ok)
	require.Equal(t, []string{"x", "y"}, graph.Params)
	require.IsType(t, &Reference{}, graph.Return)
}

func TestParseTheory(t *testing.T) {
	src := "@t theory 1 animals\n  @a isA Rex Dog\nend\n"
	prog, errs := Parse(src)
	require.Empty(t, errs)
	theory, ok := prog.Statements[0].Block.(*TheoryDecl)
	require.True(t, ok)
	require.Equal(t, "1", theory.Version)
	require.Equal(t, "animals", theory.Name)
}

func TestParseRecoversFromMalformedStatement(t *testing.T) {
	src := "@bad\n@good isA Rex Dog\n"
	prog, errs := Parse(src)
	require.NotEmpty(t, errs)
	require.Len(t, prog.Statements, 1)
	require.Equal(t, "good", prog.Statements[0].Dest)
}

func TestParseAnonymousFact(t *testing.T) {
	prog, errs := Parse("isA Rex Dog\n")
	require.Empty(t, errs)
	require.Len(t, prog.Statements, 1)
	stmt := prog.Statements[0]
	require.Equal(t, "", stmt.Dest)
	require.Equal(t, "isA", stmt.Operator)
	require.Len(t, stmt.Args, 2)
}

func TestParseMixedAnonymousAndNamedStatements(t *testing.T) {
	src := "isA Rex Dog\nisA Dog Mammal\n@c1 isA Mammal Animal\n"
	prog, errs := Parse(src)
	require.Empty(t, errs)
	require.Len(t, prog.Statements, 3)
	require.Equal(t, "", prog.Statements[0].Dest)
	require.Equal(t, "", prog.Statements[1].Dest)
	require.Equal(t, "c1", prog.Statements[2].Dest)
}

func TestLiteralsAndComments(t *testing.T) {
	src := "@n isA \"Rex\" 42 # a trailing comment\n"
	prog, errs := Parse(src)
	require.Empty(t, errs)
	stmt := prog.Statements[0]
	lit1 := stmt.Args[0].(*Literal)
	require.Equal(t, LiteralString, lit1.Kind)
	require.Equal(t, "Rex", lit1.Text)
	lit2 := stmt.Args[1].(*Literal)
	require.Equal(t, LiteralNumber, lit2.Kind)
	require.Equal(t, "42", lit2.Text)
}
