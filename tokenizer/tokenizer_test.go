package tokenizer_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epics-go/dbtools/tokenizer"
)

func texts(t *testing.T, input string) []string {
	t.Helper()
	toks, err := tokenizer.TokenizeString(input, "test_input.txt")
	require.NoError(t, err)
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Text)
	}
	return out
}

func TestTokenizeMixedLine(t *testing.T) {
	got := texts(t, `bareword "$(NAME=VALUE)" name=value "" {name} # comments`)
	assert.Equal(t, []string{"bareword", "$(NAME=VALUE)", "name", "=", "value", "", "{", "name", "}"}, got)
}

func TestTokenizeNoTokens(t *testing.T) {
	for _, input := range []string{"# this is a comment line", "\n", "   \t  \n", ""} {
		assert.Empty(t, texts(t, input), "input %q", input)
	}
}

func TestTokenizeRecordSignature(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "without brace",
			input: `record(ai, "$(PREFIX)$(NAME)")`,
			want:  []string{"record", "(", "ai", ",", "$(PREFIX)$(NAME)", ")"},
		},
		{
			name:  "with brace",
			input: `record(ai, "$(PREFIX)$(NAME)") {`,
			want:  []string{"record", "(", "ai", ",", "$(PREFIX)$(NAME)", ")", "{"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(t, tt.input))
		})
	}
}

func TestTokenizeFieldDefinitions(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`field(DTYP, "asynInt32")`, []string{"field", "(", "DTYP", ",", "asynInt32", ")"}},
		{`field(INP, "@asyn($(PORT),0,1)TST_BI_ASYNINT32")`, []string{"field", "(", "INP", ",", "@asyn($(PORT),0,1)TST_BI_ASYNINT32", ")"}},
		{`field(FLNK, "XF:31ID1-ES{S:TEST}TEST")`, []string{"field", "(", "FLNK", ",", "XF:31ID1-ES{S:TEST}TEST", ")"}},
		{`field(DESC, 'single \'quoted\'')`, []string{"field", "(", "DESC", ",", `single \'quoted\'`, ")"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, texts(t, tt.input), "input %q", tt.input)
	}
}

func TestTokenPositionsAndQuoting(t *testing.T) {
	toks, err := tokenizer.TokenizeString("a\n  \"{\" }", "f.db")
	require.NoError(t, err)
	require.Len(t, toks, 3)

	assert.Equal(t, tokenizer.Token{Text: "a", Line: 1, Col: 1}, toks[0])
	assert.Equal(t, tokenizer.Token{Text: "{", Line: 2, Col: 3, Quoted: true}, toks[1])
	assert.False(t, toks[1].Is("{"))
	assert.True(t, toks[2].Is("}"))
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		input string
		line  int
		col   int
	}{
		{"ok\nbad $", 2, 5},
		{`field(DESC, "unterminated)`, 1, 13},
		{"a ; b", 1, 3},
	}
	for _, tt := range tests {
		_, err := tokenizer.TokenizeString(tt.input, "broken.db")
		require.Error(t, err, tt.input)

		var tokErr *tokenizer.Error
		require.True(t, errors.As(err, &tokErr))
		assert.Equal(t, "broken.db", tokErr.File)
		assert.Equal(t, tt.line, tokErr.Line)
		assert.Equal(t, tt.col, tokErr.Col)
	}
}

func TestStream(t *testing.T) {
	toks, err := tokenizer.TokenizeString("( a )", "s.db")
	require.NoError(t, err)
	s := tokenizer.NewStream(toks, "s.db")

	_, err = s.Expect("(")
	require.NoError(t, err)

	p, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, "a", p.Text)

	_, err = s.Expect(")")
	assert.EqualError(t, err, `s.db:1:3: expected ")", got a`)

	_, err = s.Expect(")")
	require.NoError(t, err)

	_, err = s.Must()
	assert.ErrorIs(t, err, tokenizer.ErrUnexpectedEOF)
}
