package shapejson_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	shapejson "github.com/reoring/shapejson"
)

func TestObject_SetChecksCurrentType(t *testing.T) {
	o := shapejson.MustObject("x", 1.5, "n", nil, "tags", []any{})

	if err := o.Set("x", "str"); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if err := o.Set("x", 2); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("int must not be accepted for a float member, got %v", err)
	}
	if f, _ := o.Get("x").AsFloat(); f != 1.5 {
		t.Fatalf("rejected Set must leave the member untouched, got %v", f)
	}
	if err := o.Set("x", 2.5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.Set("n", "anything"); err != nil {
		t.Fatalf("null member must accept any value: %v", err)
	}
	if err := o.Set("tags", []string{"a"}); err != nil {
		t.Fatalf("generic list member must accept any list: %v", err)
	}
	if err := o.Set("added", true); err != nil {
		t.Fatalf("undefined members are admitted by default: %v", err)
	}
	if diff := cmp.Diff([]string{"x", "n", "tags", "added"}, o.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}
}

func TestObject_Set_PathInIssue(t *testing.T) {
	o := shapejson.MustObject("a/b", 1)
	err := o.Set("a/b", "x")
	iss, ok := shapejson.AsIssues(err)
	if !ok || iss[0].Path != "/a~1b" {
		t.Fatalf("expected escaped pointer path, got %v", err)
	}
	if iss[0].Params["expected"] != "int" || iss[0].Params["got"] != "string" {
		t.Fatalf("unexpected params %v", iss[0].Params)
	}
}

func TestObject_DisallowUndefined(t *testing.T) {
	o, err := shapejson.NewObjectWithOptions(shapejson.ObjectOptions{DisallowUndefined: true}, "a", 1)
	if err != nil {
		t.Fatal(err)
	}
	err = o.Load([]byte(`{"a":2,"b":1}`))
	if !errors.Is(err, shapejson.ErrStructural) {
		t.Fatalf("expected structural error, got %v", err)
	}
	if iss, _ := shapejson.AsIssues(err); iss[0].Code != shapejson.CodeUnknownKey || iss[0].Path != "/b" {
		t.Fatalf("unexpected issue %v", iss)
	}
	if o.Has("b") || o.AllowsUndefinedMembers() {
		t.Fatalf("object must stay closed")
	}

	if err := o.Set("b", 2); err != nil {
		t.Fatalf("set adds members regardless of the load policy, got %v", err)
	}
	if err := o.Load([]byte(`{"a":3,"b":4}`)); err != nil {
		t.Fatalf("a member added by set is declared for later loads, got %v", err)
	}
	if got := o.String(); got != `{"a":3,"b":4}` {
		t.Fatalf("unexpected object %s", got)
	}
	if err := o.Set("b", "x"); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("added member keeps its type, got %v", err)
	}
}

func TestObject_ConstructionErrors(t *testing.T) {
	if _, err := shapejson.NewObject("a", 1, "b"); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("odd argument count must fail, got %v", err)
	}
	if _, err := shapejson.NewObject(1, 1); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("non-string name must fail, got %v", err)
	}
	if _, err := shapejson.NewObject("a", struct{}{}); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("unsupported value must fail, got %v", err)
	}
	_, err := shapejson.NewObjectWithOptions(shapejson.ObjectOptions{Mandatory: []string{"missing"}}, "a", 1)
	if !errors.Is(err, shapejson.ErrMemberNotFound) {
		t.Fatalf("undeclared mandatory member must fail, got %v", err)
	}
}

func TestObject_TypeDefaults(t *testing.T) {
	o := shapejson.MustObject("i", shapejson.IntType, "s", shapejson.StringType, "o", shapejson.ObjectType, "l", shapejson.ListType)
	if got := o.String(); got != `{"i":0,"s":"","o":{},"l":[]}` {
		t.Fatalf("unexpected rendering %s", got)
	}
}

func TestObject_GetLookupAll(t *testing.T) {
	o := shapejson.MustObject("a", 1, "b", "x")
	if !o.Get("zzz").IsNull() {
		t.Fatalf("missing member must read as null")
	}
	if _, ok := o.Lookup("zzz"); ok {
		t.Fatalf("Lookup must report absence")
	}
	var names []string
	for name := range o.All() {
		names = append(names, name)
	}
	if diff := cmp.Diff([]string{"a", "b"}, names); diff != "" {
		t.Fatalf("iteration order (-want +got):\n%s", diff)
	}
	if o.Len() != 2 {
		t.Fatalf("unexpected length %d", o.Len())
	}
}

func TestObject_Select(t *testing.T) {
	o, err := shapejson.NewObjectWithOptions(shapejson.ObjectOptions{Mandatory: []string{"id"}}, "id", 1, "name", "n", "age", 3)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := o.Select("name", "id")
	if err != nil {
		t.Fatal(err)
	}
	if got := sub.String(); got != `{"name":"n","id":1}` {
		t.Fatalf("unexpected subset %s", got)
	}
	if diff := cmp.Diff([]string{"id"}, sub.Mandatory()); diff != "" {
		t.Fatalf("mandatory (-want +got):\n%s", diff)
	}
	if _, err := o.Select("nope"); !errors.Is(err, shapejson.ErrMemberNotFound) {
		t.Fatalf("expected member_not_found, got %v", err)
	}
}

func TestObject_LoadMergesAndKeepsOnError(t *testing.T) {
	o := shapejson.MustObject("a", 1, "nested", shapejson.MustObject("k", "v", "keep", true))
	if err := o.Load([]byte(`{"nested":{"k":"w"},"extra":[1,2]}`)); err != nil {
		t.Fatal(err)
	}
	if got := o.String(); got != `{"a":1,"nested":{"k":"w","keep":true},"extra":[1,2]}` {
		t.Fatalf("unexpected merge result %s", got)
	}
	before := o.String()
	if err := o.Load([]byte(`{"a":"not an int"}`)); !errors.Is(err, shapejson.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if o.String() != before {
		t.Fatalf("failed load must leave the object untouched")
	}
}

func TestObject_UnmarshalJSON(t *testing.T) {
	var o shapejson.Object
	if err := o.UnmarshalJSON([]byte(`{"b":2,"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b", "a"}, o.Keys()); diff != "" {
		t.Fatalf("member order must follow the document (-want +got):\n%s", diff)
	}
}
