package gen_test

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	shapejson "github.com/reoring/shapejson"
	"github.com/reoring/shapejson/internal/gen"
	"github.com/reoring/shapejson/internal/ir"
)

func TestRenderFile_Shapes(t *testing.T) {
	coords := shapejson.DefineObject("coordinates").
		Field("x", 0.0).Required().
		Field("y", 0.0).Required().
		Field("label", "home").
		Field("zoom-level", 3).
		DisallowUndefined().
		MustBuild()
	trip := shapejson.DefineObject("trip").
		Field("origin", coords.Type()).Required().
		Field("via", coords.Type()).
		Field("meta", shapejson.ObjectType).
		MustBuild()
	path := shapejson.DefineList("path").Of(coords.Type()).MustBuild()

	out, err := gen.RenderFile("geo", []ir.Schema{
		ir.FromObjectShape(coords),
		ir.FromObjectShape(trip),
		ir.FromListShape(path),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	src := string(out)
	if _, err := parser.ParseFile(token.NewFileSet(), "geo.go", out, 0); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, src)
	}
	for _, want := range []string{
		"// Code generated by shapejson gen. DO NOT EDIT.",
		"package geo",
		"type Coordinates struct",
		"`json:\"x\"`",
		"`json:\"label,omitempty\"`",
		"ZoomLevel",
		"func NewCoordinates() Coordinates",
		"\"home\"",
		"type Trip struct",
		"Origin Coordinates",
		"*Coordinates",
		"map[string]interface{}",
		"type Path []*Coordinates",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("missing %q in generated code:\n%s", want, src)
		}
	}
	if strings.Contains(src, "func NewTrip") {
		t.Fatalf("objects without scalar defaults get no constructor:\n%s", src)
	}
}

func TestRenderFile_RejectsUnnamed(t *testing.T) {
	if _, err := gen.RenderFile("x", []ir.Schema{&ir.Array{}}); err == nil {
		t.Fatalf("unnamed lists cannot be declared")
	}
	if _, err := gen.RenderFile("x", []ir.Schema{&ir.Primitive{Name: "int"}}); err == nil {
		t.Fatalf("primitives cannot be declared")
	}
}

func TestTypeName(t *testing.T) {
	cases := map[string]string{
		"coordinates": "Coordinates",
		"zoom-level":  "ZoomLevel",
		"2d":          "X2d",
		"__":          "Shape",
	}
	for in, want := range cases {
		if got := gen.TypeName(in); got != want {
			t.Fatalf("%q: want %s, got %s", in, want, got)
		}
	}
}
