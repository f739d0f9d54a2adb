package database

import (
	"context"
	"fmt"
	"log/slog"

	applog "github.com/epics-go/dbtools/internal/log"
	"github.com/epics-go/dbtools/tokenizer"
)

// pair is a parsed "(key, value)" or "(key)" group.
type pair struct {
	key      string
	value    string
	hasValue bool
}

// parsePair parses '(field, "value")' or '(field)'. ok is false for any
// other shape; tokens consumed so far are not restored.
func parsePair(s *tokenizer.Stream) (pair, bool, error) {
	t, err := s.Must()
	if err != nil {
		return pair{}, false, err
	}
	if !t.Is("(") {
		return pair{}, false, nil
	}
	key, err := s.Must()
	if err != nil {
		return pair{}, false, err
	}
	if key.Is(",") || key.Is(")") {
		return pair{}, false, nil
	}
	t, err = s.Must()
	if err != nil {
		return pair{}, false, err
	}
	if t.Is(")") {
		return pair{key: key.Text}, true, nil
	}
	if !t.Is(",") {
		return pair{}, false, nil
	}
	value, err := s.Must()
	if err != nil {
		return pair{}, false, err
	}
	t, err = s.Must()
	if err != nil {
		return pair{}, false, err
	}
	if !t.Is(")") {
		return pair{}, false, nil
	}
	return pair{key: key.Text, value: value.Text, hasValue: true}, true, nil
}

// parseRecord parses '(type, "name") { ... }' following a record keyword.
// The body is optional.
func parseRecord(s *tokenizer.Stream, logger *slog.Logger) (*Record, error) {
	start, _ := s.Peek()
	sig, ok, err := parsePair(s)
	if err != nil {
		return nil, err
	}
	if !ok || !sig.hasValue {
		return nil, fmt.Errorf("%w: %s", ErrSyntax,
			s.Errorf(start, "failed to parse record signature"))
	}
	rtype, err := ParseRecordType(sig.key)
	if err != nil {
		return nil, fmt.Errorf("%s:%d:%d: %w for record '%s'", s.File(), start.Line, start.Col, err, sig.value)
	}
	r := NewRecord(sig.value, rtype)

	if t, ok := s.Peek(); !ok || !t.Is("{") {
		return r, nil
	}
	s.Next()

	for {
		t, err := s.Must()
		if err != nil {
			return nil, err
		}
		if t.Is("}") {
			break
		}
		switch {
		case t.Is("field"), t.Is("info"):
			p, ok, err := parsePair(s)
			if err != nil {
				return nil, err
			}
			if !ok || !p.hasValue || p.key == "" {
				logger.Warn("Invalid definition in record", "kind", t.Text, "record", r.Name, "pos", fmt.Sprintf("%s:%d", s.File(), t.Line))
				continue
			}
			logger.Log(context.Background(), applog.LevelTrace, "Setting record attribute", "kind", t.Text, "key", p.key, "record", r.Name)
			if t.Text == "field" {
				r.SetField(p.key, p.value)
			} else {
				r.SetInfo(p.key, p.value)
			}
		case t.Is("alias"):
			p, ok, err := parsePair(s)
			if err != nil {
				return nil, err
			}
			if !ok || p.hasValue {
				logger.Warn("Invalid alias in record", "record", r.Name, "pos", fmt.Sprintf("%s:%d", s.File(), t.Line))
				continue
			}
			r.Aliases = append(r.Aliases, p.key)
		default:
			return nil, fmt.Errorf("%w: %s", ErrSyntax,
				s.Errorf(t, "unexpected token %s in record '%s'", t, r.Name))
		}
	}
	logger.Log(context.Background(), applog.LevelTrace, "Parsed record", "record", r.Name)
	return r, nil
}
