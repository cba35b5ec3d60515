// Package gojson provides an engine token source backed by goccy/go-json.
package gojson

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/shapejson/internal/engine"
)

type source struct {
	dec  *j.Decoder
	keys eng.KeyTracker
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	t := eng.Token{Offset: -1}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.keys.Open(true)
			t.Kind = eng.KindBeginObject
		case '[':
			s.keys.Open(false)
			t.Kind = eng.KindBeginArray
		case '}':
			s.keys.Close()
			t.Kind = eng.KindEndObject
		case ']':
			s.keys.Close()
			t.Kind = eng.KindEndArray
		}
	case string:
		t.Kind = s.keys.String()
		t.String = v
	case bool:
		s.keys.Value()
		t.Kind, t.Bool = eng.KindBool, v
	case j.Number:
		s.keys.Value()
		t.Kind, t.Number = eng.KindNumber, string(v)
	case float64:
		s.keys.Value()
		t.Kind, t.Number = eng.KindNumber, strconv.FormatFloat(v, 'g', -1, 64)
	case nil:
		s.keys.Value()
		t.Kind = eng.KindNull
	default:
		return eng.Token{}, fmt.Errorf("gojson: unexpected token %T", tok)
	}
	return t, nil
}

// Location is unknown for go-json; the decoder does not expose an input offset.
func (s *source) Location() int64 { return -1 }
