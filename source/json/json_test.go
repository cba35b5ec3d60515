package json_test

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	eng "github.com/reoring/shapejson/internal/engine"
	jsonsrc "github.com/reoring/shapejson/source/json"
)

func kinds(t *testing.T, src eng.TokenSource) []eng.Kind {
	t.Helper()
	var out []eng.Kind
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		out = append(out, tok.Kind)
	}
}

func TestNewBytes_KeysAndStrings(t *testing.T) {
	got := kinds(t, jsonsrc.NewBytes([]byte(`{"a":["b",{"c":"d"}],"e":1.5}`)))
	want := []eng.Kind{
		eng.KindBeginObject,
		eng.KindKey, eng.KindBeginArray, eng.KindString,
		eng.KindBeginObject, eng.KindKey, eng.KindString, eng.KindEndObject,
		eng.KindEndArray,
		eng.KindKey, eng.KindNumber,
		eng.KindEndObject,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("kinds (-want +got):\n%s", diff)
	}
}

func TestNewBytes_NumberTextAndOffsets(t *testing.T) {
	src := jsonsrc.NewBytes([]byte(`[1.50, 7]`))
	if _, err := src.NextToken(); err != nil {
		t.Fatal(err)
	}
	tok, err := src.NextToken()
	if err != nil {
		t.Fatal(err)
	}
	if tok.Kind != eng.KindNumber || tok.Number != "1.50" {
		t.Fatalf("number text must be preserved, got %+v", tok)
	}
	if tok.Offset < 0 || src.Location() < 0 {
		t.Fatalf("encoding/json reports offsets, got %d", tok.Offset)
	}
}
