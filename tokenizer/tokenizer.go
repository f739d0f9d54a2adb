// Package tokenizer splits EPICS database and substitution file text into
// tokens.
//
// Comments run from '#' to the end of the line. The characters
// ",={}()" are returned as single-character tokens. Quoted strings (single
// or double quotes) are returned without their quotes; backslash escapes
// inside them are kept verbatim.
package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const specials = ",={}()"

// Token is a single lexical token with its 1-based source position.
type Token struct {
	Text   string
	Line   int
	Col    int
	Quoted bool
}

// Is reports whether t is the unquoted special or keyword s.
// A quoted "{" is a value, never a brace.
func (t Token) Is(s string) bool {
	return !t.Quoted && t.Text == s
}

func (t Token) String() string {
	if t.Quoted {
		return fmt.Sprintf("%q", t.Text)
	}
	return t.Text
}

// Error reports an illegal character or an unterminated string.
type Error struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// Tokenize reads r to the end and returns all tokens. filename is used in
// error positions only; pass "" for "<input>".
func Tokenize(r io.Reader, filename string) ([]Token, error) {
	if filename == "" {
		filename = "<input>"
	}
	var toks []Token
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineno := 0
	for sc.Scan() {
		lineno++
		lineToks, err := tokenizeLine(sc.Text(), filename, lineno)
		if err != nil {
			return nil, err
		}
		toks = append(toks, lineToks...)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	return toks, nil
}

// TokenizeString is Tokenize over an in-memory string.
func TokenizeString(s, filename string) ([]Token, error) {
	return Tokenize(strings.NewReader(s), filename)
}

func tokenizeLine(line, filename string, lineno int) ([]Token, error) {
	var toks []Token
	pos := 0
	for pos < len(line) {
		c := line[pos]
		switch {
		case c == ' ' || c == '\t' || c == '\f' || c == '\r' || c == '\v':
			pos++
		case c == '#':
			return toks, nil
		case strings.IndexByte(specials, c) >= 0:
			toks = append(toks, Token{Text: string(c), Line: lineno, Col: pos + 1})
			pos++
		case c == '"' || c == '\'':
			end, ok := scanQuoted(line, pos)
			if !ok {
				return nil, &Error{File: filename, Line: lineno, Col: pos + 1, Msg: "unterminated string"}
			}
			toks = append(toks, Token{Text: line[pos+1 : end], Line: lineno, Col: pos + 1, Quoted: true})
			pos = end + 1
		case isBareword(c):
			start := pos
			for pos < len(line) && isBareword(line[pos]) {
				pos++
			}
			toks = append(toks, Token{Text: line[start:pos], Line: lineno, Col: start + 1})
		default:
			return nil, &Error{File: filename, Line: lineno, Col: pos + 1, Msg: fmt.Sprintf("illegal char %q", c)}
		}
	}
	return toks, nil
}

// scanQuoted returns the index of the quote closing the string opened at
// line[start].
func scanQuoted(line string, start int) (int, bool) {
	q := line[start]
	for i := start + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case q:
			return i, true
		}
	}
	return 0, false
}

func isBareword(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte(`_-+:./\[]<>`, c) >= 0
}
