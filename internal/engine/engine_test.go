package engine_test

import (
	"errors"
	"math"
	"testing"

	eng "github.com/reoring/shapejson/internal/engine"
	jsonsrc "github.com/reoring/shapejson/source/json"
)

func decode(t *testing.T, d eng.Descriptor, in string) error {
	t.Helper()
	return eng.Decode(d, jsonsrc.NewBytes([]byte(in)))
}

func issueOf(t *testing.T, err error) eng.SimpleIssue {
	t.Helper()
	var ie eng.IssueError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IssueError, got %v", err)
	}
	return ie.SimpleIssue
}

func TestDecode_Scalars(t *testing.T) {
	i := &eng.IntDescriptor{}
	if err := decode(t, i, `42`); err != nil || i.Value != 42 {
		t.Fatalf("int: %v %v", i.Value, err)
	}
	if si := issueOf(t, decode(t, &eng.IntDescriptor{}, `4.2`)); si.Code != eng.CodeInvalidType {
		t.Fatalf("fraction into int: %+v", si)
	}
	if si := issueOf(t, decode(t, &eng.IntDescriptor{}, `99999999999999999999`)); si.Code != eng.CodeInvalidType {
		t.Fatalf("overflow into int: %+v", si)
	}
	f := &eng.FloatDescriptor{}
	if err := decode(t, f, `7`); err != nil || f.Value != 7 {
		t.Fatalf("int text into float: %v %v", f.Value, err)
	}
	s := &eng.StringDescriptor{}
	if err := decode(t, s, `"hé"`); err != nil || s.Value != "hé" {
		t.Fatalf("string: %q %v", s.Value, err)
	}
	si := issueOf(t, decode(t, &eng.BoolDescriptor{}, `"true"`))
	if si.Params["expected"] != "bool" || si.Params["got"] != "string" || si.Path != "/" {
		t.Fatalf("unexpected mismatch issue %+v", si)
	}
}

func TestDecode_Variant(t *testing.T) {
	cases := map[string]eng.DescriptorType{
		`null`:  eng.TypeNull,
		`true`:  eng.TypeBool,
		`1`:     eng.TypeInt,
		`1.0`:   eng.TypeFloat,
		`1e3`:   eng.TypeFloat,
		`"s"`:   eng.TypeString,
		`{}`:    eng.TypeObject,
		`[1,2]`: eng.TypeList,
	}
	for in, want := range cases {
		v := &eng.VariantDescriptor{}
		if err := decode(t, v, in); err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if v.Type() != want {
			t.Fatalf("%s: want %v, got %v", in, want, v.Type())
		}
	}
}

func TestDecode_ObjectTemplate(t *testing.T) {
	o := eng.NewObjectDescriptor()
	o.AddMember("id", &eng.IntDescriptor{}, true)
	o.AddMember("note", &eng.StringDescriptor{Value: "n/a"}, false)
	o.AddMember("any", &eng.NullDescriptor{}, false)

	if err := decode(t, o, `{"any":[1],"id":3,"extra":"x"}`); err != nil {
		t.Fatal(err)
	}
	if got := eng.String(o); got != `{"id":3,"note":"n/a","any":[1],"extra":"x"}` {
		t.Fatalf("unexpected object %s", got)
	}

	strict := eng.NewObjectDescriptor()
	strict.AddMember("id", &eng.IntDescriptor{}, true)
	strict.AllowUndefinedMembers = false
	cases := []struct {
		in, code, path string
	}{
		{`{}`, eng.CodeRequired, "/id"},
		{`{"id":null}`, eng.CodeRequired, "/id"},
		{`{"id":1,"x~y":2}`, eng.CodeUnknownKey, "/x~0y"},
		{`{"id":"1"}`, eng.CodeInvalidType, "/id"},
	}
	for _, tc := range cases {
		si := issueOf(t, decode(t, strict.Clone(), tc.in))
		if si.Code != tc.code || si.Path != tc.path {
			t.Fatalf("%s: want %s at %s, got %+v", tc.in, tc.code, tc.path, si)
		}
	}
}

func TestDecode_ObjectReplace(t *testing.T) {
	o := eng.NewObjectDescriptor()
	o.AddMember("a", &eng.IntDescriptor{Value: 1}, false)
	o.AddMember("b", &eng.IntDescriptor{Value: 2}, false)
	o.Replace = true
	if err := decode(t, o, `{"b":5}`); err != nil {
		t.Fatal(err)
	}
	if got := eng.String(o); got != `{"b":5}` {
		t.Fatalf("unseen members must be dropped, got %s", got)
	}
}

func TestDecode_RepeatedUndefinedMember(t *testing.T) {
	o := eng.NewObjectDescriptor()
	if err := decode(t, o, `{"k":1,"k":"two"}`); err != nil {
		t.Fatal(err)
	}
	if got := eng.String(o); got != `{"k":"two"}` {
		t.Fatalf("last occurrence must win with its own kind, got %s", got)
	}
}

func TestDecode_ListTemplate(t *testing.T) {
	l := eng.NewListDescriptor()
	l.SetItemDescriptor(&eng.IntDescriptor{})
	l.Append(&eng.IntDescriptor{Value: 9})
	if err := decode(t, l, `[1,null,3]`); err != nil {
		t.Fatal(err)
	}
	if got := eng.String(l); got != `[1,null,3]` {
		t.Fatalf("decode must replace the items, got %s", got)
	}
	l.AllowNullValues = false
	si := issueOf(t, decode(t, l, `[1,null]`))
	if si.Code != eng.CodeNullNotAllowed || si.Path != "/1" {
		t.Fatalf("unexpected issue %+v", si)
	}
	si = issueOf(t, decode(t, l, `[1,2.5]`))
	if si.Code != eng.CodeInvalidType || si.Path != "/1" {
		t.Fatalf("unexpected issue %+v", si)
	}
}

func TestDecode_Syntax(t *testing.T) {
	if err := decode(t, &eng.VariantDescriptor{}, `[1,`); err == nil {
		t.Fatalf("expected a failure for truncated input")
	}
	if err := decode(t, &eng.VariantDescriptor{}, ``); !errors.Is(err, eng.ErrUnexpectedEnd) {
		t.Fatalf("expected unexpected end, got %v", err)
	}
	si := issueOf(t, decode(t, &eng.VariantDescriptor{}, `1 2`))
	if si.Code != eng.CodeParseError {
		t.Fatalf("trailing data: %+v", si)
	}
}

func TestEncode(t *testing.T) {
	o := eng.NewObjectDescriptor()
	o.AddMember("f", &eng.FloatDescriptor{Value: 0.1}, false)
	o.AddMember("s", &eng.StringDescriptor{Value: "<&\"\n>"}, false)
	l := eng.NewListDescriptor()
	l.Append(&eng.BoolDescriptor{Value: true})
	l.Append(&eng.NullDescriptor{})
	o.AddMember("l", l, false)
	out, err := eng.Encode(o)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"f":0.1,"s":"<&\"\n>","l":[true,null]}` {
		t.Fatalf("unexpected encoding %s", out)
	}
	if _, err := eng.Encode(&eng.FloatDescriptor{Value: math.Inf(1)}); err == nil {
		t.Fatalf("infinity must not encode")
	}
}

func TestClone_IsDeep(t *testing.T) {
	o := eng.NewObjectDescriptor()
	inner := eng.NewListDescriptor()
	inner.Append(&eng.IntDescriptor{Value: 1})
	o.AddMember("l", inner, true)
	c := o.Clone().(*eng.ObjectDescriptor)
	cl, _ := c.Lookup("l")
	cl.(*eng.ListDescriptor).Append(&eng.IntDescriptor{Value: 2})
	if inner.Len() != 1 {
		t.Fatalf("clone must not share containers")
	}
	if !c.Members()[0].Mandatory {
		t.Fatalf("clone must keep mandatory flags")
	}
}
