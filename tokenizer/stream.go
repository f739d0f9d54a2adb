package tokenizer

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEOF is returned by Stream.Expect and parsers built on Stream
// when input ends in the middle of a construct.
var ErrUnexpectedEOF = errors.New("unexpected end of input")

// Stream is a cursor over a token slice with one token of lookahead.
type Stream struct {
	toks []Token
	pos  int
	file string
}

func NewStream(toks []Token, file string) *Stream {
	return &Stream{toks: toks, file: file}
}

// File returns the file name the tokens were read from.
func (s *Stream) File() string { return s.file }

// Next consumes and returns the next token.
func (s *Stream) Next() (Token, bool) {
	if s.pos >= len(s.toks) {
		return Token{}, false
	}
	t := s.toks[s.pos]
	s.pos++
	return t, true
}

// Peek returns the next token without consuming it.
func (s *Stream) Peek() (Token, bool) {
	if s.pos >= len(s.toks) {
		return Token{}, false
	}
	return s.toks[s.pos], true
}

// Must consumes the next token or fails with ErrUnexpectedEOF.
func (s *Stream) Must() (Token, error) {
	t, ok := s.Next()
	if !ok {
		return Token{}, s.eof()
	}
	return t, nil
}

// Expect consumes the next token and fails unless it is the unquoted s.
func (s *Stream) Expect(want string) (Token, error) {
	t, err := s.Must()
	if err != nil {
		return t, err
	}
	if !t.Is(want) {
		return t, s.Errorf(t, "expected %q, got %s", want, t)
	}
	return t, nil
}

// Errorf builds an Error positioned at t.
func (s *Stream) Errorf(t Token, format string, args ...any) error {
	return &Error{File: s.file, Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func (s *Stream) eof() error {
	line := 0
	if n := len(s.toks); n > 0 {
		line = s.toks[n-1].Line
	}
	return fmt.Errorf("%s:%d: %w", s.file, line, ErrUnexpectedEOF)
}
