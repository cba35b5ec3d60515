package shapejson_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	shapejson "github.com/reoring/shapejson"
)

func coordinates(t *testing.T) *shapejson.ObjectShape {
	t.Helper()
	s, err := shapejson.DefineObject("Coordinates").
		Field("x", 0.0).Required().
		Field("y", 0.0).Required().
		Field("label", "").
		DisallowUndefined().
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return s
}

func TestObjectShape_ParseValidates(t *testing.T) {
	s := coordinates(t)
	cases := []struct {
		name string
		in   string
		code string
		path string
	}{
		{"missing mandatory", `{"x":1.5}`, shapejson.CodeRequired, "/y"},
		{"null mandatory", `{"x":1.5,"y":null}`, shapejson.CodeRequired, "/y"},
		{"undefined member", `{"x":1,"y":2,"z":3}`, shapejson.CodeUnknownKey, "/z"},
		{"wrong kind", `{"x":"1","y":2}`, shapejson.CodeInvalidType, "/x"},
		{"not an object", `[1,2]`, shapejson.CodeInvalidType, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Parse([]byte(tc.in))
			iss, ok := shapejson.AsIssues(err)
			if !ok {
				t.Fatalf("expected issues, got %v", err)
			}
			if iss[0].Code != tc.code || iss[0].Path != tc.path {
				t.Fatalf("want %s at %s, got %s at %s", tc.code, tc.path, iss[0].Code, iss[0].Path)
			}
		})
	}
}

func TestObjectShape_ParseSuccess(t *testing.T) {
	s := coordinates(t)
	c, err := s.Parse([]byte(`{"y":2,"x":0}`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Shape() != s || c.Type() != s.Type() {
		t.Fatalf("parsed object must be an instance of its shape")
	}
	if x := c.Get("x"); x.Kind() != shapejson.KindFloat {
		t.Fatalf("integral JSON into a float member must stay float, got %v", x.Kind())
	}
	if got := c.String(); got != `{"x":0,"y":2,"label":""}` {
		t.Fatalf("declaration order and defaults expected, got %s", got)
	}
	if err := c.Set("z", 1); err != nil || !c.Has("z") {
		t.Fatalf("set may add members to a closed instance, got %v", err)
	}
	if s.New().Has("z") {
		t.Fatalf("adding a member must not change the shape")
	}
	if err := c.Set("label", 3); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("label is a string member, got %v", err)
	}
}

func TestObjectShape_Introspection(t *testing.T) {
	s := coordinates(t)
	if diff := cmp.Diff([]string{"x", "y", "label"}, s.Members()); diff != "" {
		t.Fatalf("members (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y"}, s.Mandatory()); diff != "" {
		t.Fatalf("mandatory (-want +got):\n%s", diff)
	}
	if s.AllowsUndefinedMembers() {
		t.Fatalf("shape disallows undefined members")
	}
	if mt, ok := s.MemberType("label"); !ok || mt != shapejson.StringType {
		t.Fatalf("unexpected member type %v", mt)
	}
	if _, ok := s.MemberType("nope"); ok {
		t.Fatalf("undeclared member must not have a type")
	}
	if s.Type().Name() != "Coordinates" || s.Type().ObjectShape() != s {
		t.Fatalf("unexpected type %v", s.Type())
	}
}

func TestObjectShape_BuildErrors(t *testing.T) {
	_, err := shapejson.DefineObject("Dup").Field("a", 1).Field("a", 2).Build()
	if iss, _ := shapejson.AsIssues(err); len(iss) == 0 || iss[0].Code != shapejson.CodeDuplicateKey {
		t.Fatalf("expected duplicate_key, got %v", err)
	}
	_, err = shapejson.DefineObject("Missing").Field("a", 1).Mandatory("b").Build()
	if !errors.Is(err, shapejson.ErrMemberNotFound) {
		t.Fatalf("expected member not found, got %v", err)
	}
	_, err = shapejson.DefineObject("Bad").Field("c", make(chan int)).Build()
	if !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch for unsupported default, got %v", err)
	}
}

func TestObjectShape_RandomName(t *testing.T) {
	a := shapejson.DefineObject("").MustBuild()
	b := shapejson.DefineObject("").MustBuild()
	if len(a.Name()) != 10 {
		t.Fatalf("expected a 10 letter name, got %q", a.Name())
	}
	for _, r := range a.Name() {
		if r < 'a' || r > 'z' {
			t.Fatalf("name must be lowercase letters, got %q", a.Name())
		}
	}
	if a.Type() == b.Type() {
		t.Fatalf("distinct shapes must be distinct types")
	}
}

func TestObjectShape_InstancesAreIndependent(t *testing.T) {
	s := shapejson.DefineObject("Bag").Field("tags", []string{"a"}).MustBuild()
	one, two := s.New(), s.New()
	tags, _ := one.Get("tags").AsList()
	if err := tags.Append("b"); err != nil {
		t.Fatal(err)
	}
	if two.Get("tags").String() != `["a"]` {
		t.Fatalf("instances must not share defaults, got %s", two.Get("tags"))
	}
	if d, _ := s.Default("tags"); d.String() != `["a"]` {
		t.Fatalf("shape default must be unaffected, got %s", d)
	}
}

func TestObjectShape_NestedShapes(t *testing.T) {
	point := coordinates(t)
	segment := shapejson.DefineObject("Segment").
		Field("start", point.Type()).Required().
		Field("end", point.Type()).Required().
		MustBuild()

	_, err := segment.Parse([]byte(`{"start":{"x":1},"end":{"x":2,"y":3}}`))
	iss, ok := shapejson.AsIssues(err)
	if !ok || iss[0].Code != shapejson.CodeRequired || iss[0].Path != "/start/y" {
		t.Fatalf("expected required at /start/y, got %v", err)
	}

	seg, err := segment.Parse([]byte(`{"start":{"x":1,"y":2},"end":{"x":3,"y":4}}`))
	if err != nil {
		t.Fatal(err)
	}
	start, _ := seg.Get("start").AsObject()
	if start.Shape() != point {
		t.Fatalf("nested member must be an instance of the nested shape")
	}
	if err := seg.Set("end", shapejson.MustObject("x", 1.0, "y", 1.0)); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("a generic object is not a Coordinates, got %v", err)
	}
	if err := seg.Set("end", point.New()); err != nil {
		t.Fatalf("a fresh Coordinates must be accepted: %v", err)
	}
}

func TestListShape_ElementsAndNulls(t *testing.T) {
	point := coordinates(t)
	path := shapejson.DefineList("Path").Of(point.Type()).DisallowNull().MustBuild()

	_, err := path.Parse([]byte(`[{"x":1,"y":2},null]`))
	if iss, _ := shapejson.AsIssues(err); len(iss) == 0 || iss[0].Code != shapejson.CodeNullNotAllowed || iss[0].Path != "/1" {
		t.Fatalf("expected null_not_allowed at /1, got %v", err)
	}
	_, err = path.Parse([]byte(`[{"x":1}]`))
	if iss, _ := shapejson.AsIssues(err); len(iss) == 0 || iss[0].Code != shapejson.CodeRequired || iss[0].Path != "/0/y" {
		t.Fatalf("expected required at /0/y, got %v", err)
	}

	l, err := path.Parse([]byte(`[{"x":1,"y":2},{"x":3,"y":4}]`))
	if err != nil {
		t.Fatal(err)
	}
	if l.Shape() != path || l.Len() != 2 {
		t.Fatalf("unexpected list %v", l)
	}
	if o, _ := l.Elements()[1].AsObject(); o.Shape() != point {
		t.Fatalf("elements must be Coordinates instances")
	}
	if path.AllowsNull() || path.ElementType() != point.Type() {
		t.Fatalf("unexpected list shape policy")
	}
}

func TestListShape_Seed(t *testing.T) {
	ints := shapejson.DefineList("Ints").Of(shapejson.IntType).Seed(1, 2).MustBuild()
	a, b := ints.New(), ints.New()
	if err := a.Append(3); err != nil {
		t.Fatal(err)
	}
	if b.String() != "[1,2]" || len(ints.Seed()) != 2 {
		t.Fatalf("instances must start from the seed, got %s", b)
	}
	if _, err := shapejson.DefineList("Bad").Of(shapejson.IntType).Seed("x").Build(); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("seed must be validated, got %v", err)
	}
	if _, err := shapejson.DefineList("NoNull").DisallowNull().Seed(nil).Build(); !errors.Is(err, shapejson.ErrStructural) {
		t.Fatalf("seed must honor the null policy, got %v", err)
	}
}
