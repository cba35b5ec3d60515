// Package gen renders Go declarations for shapes: a struct per object shape,
// a slice type per list shape and a constructor carrying scalar defaults.
package gen

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"github.com/reoring/shapejson/internal/ir"
)

// RenderFile renders the named nodes (objects and arrays with a Name) into
// one Go source file of package pkg.
func RenderFile(pkg string, nodes []ir.Schema) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by shapejson gen. DO NOT EDIT.")
	for _, n := range nodes {
		switch node := n.(type) {
		case *ir.Object:
			renderObject(f, node)
		case *ir.Array:
			if node.Name == "" {
				return nil, fmt.Errorf("gen: unnamed list")
			}
			f.Commentf("%s mirrors the %s list shape.", TypeName(node.Name), node.Name)
			f.Type().Id(TypeName(node.Name)).Add(arrayType(node))
		default:
			return nil, fmt.Errorf("gen: cannot render %T at top level", n)
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("gen: %w", err)
	}
	return buf.Bytes(), nil
}

func renderObject(f *jen.File, o *ir.Object) {
	name := TypeName(o.Name)
	ids := fieldNames(o.Fields)
	fields := make([]jen.Code, 0, len(o.Fields))
	defaults := jen.Dict{}
	for i, fl := range o.Fields {
		_, required := o.Required[fl.Name]
		tag := fl.Name
		if !required {
			tag += ",omitempty"
		}
		fields = append(fields, jen.Id(ids[i]).Add(goType(fl.Schema, required)).Tag(map[string]string{"json": tag}))
		if lit, ok := scalarDefault(fl); ok {
			defaults[jen.Id(ids[i])] = lit
		}
	}
	if o.DisallowUndefined {
		f.Commentf("%s mirrors the %s shape. Undefined members are rejected.", name, o.Name)
	} else {
		f.Commentf("%s mirrors the %s shape.", name, o.Name)
	}
	f.Type().Id(name).Struct(fields...)
	if len(defaults) > 0 {
		f.Commentf("New%s returns a %s holding the declared defaults.", name, name)
		f.Func().Id("New" + name).Params().Id(name).Block(
			jen.Return(jen.Id(name).Values(defaults)),
		)
	}
}

func goType(s ir.Schema, required bool) *jen.Statement {
	switch n := s.(type) {
	case *ir.Primitive:
		switch n.Name {
		case "bool":
			return jen.Bool()
		case "int":
			return jen.Int64()
		case "float":
			return jen.Float64()
		case "string":
			return jen.String()
		case "object":
			return jen.Map(jen.String()).Interface()
		case "list":
			return jen.Index().Interface()
		}
		return jen.Interface()
	case *ir.Ref:
		if n.List || required {
			return jen.Id(TypeName(n.Name))
		}
		return jen.Op("*").Id(TypeName(n.Name))
	case *ir.Array:
		return arrayType(n)
	}
	return jen.Interface()
}

func arrayType(a *ir.Array) *jen.Statement {
	if a.Item == nil {
		return jen.Index().Interface()
	}
	if r, ok := a.Item.(*ir.Ref); ok && a.AllowNull && !r.List {
		return jen.Index().Op("*").Id(TypeName(r.Name))
	}
	return jen.Index().Add(goType(a.Item, true))
}

// scalarDefault returns a literal for non-zero scalar defaults.
func scalarDefault(f ir.Field) (jen.Code, bool) {
	p, ok := f.Schema.(*ir.Primitive)
	if !ok {
		return nil, false
	}
	switch v := f.Default.(type) {
	case bool:
		return jen.Lit(v), v && p.Name == "bool"
	case int64:
		return jen.Lit(v), v != 0 && p.Name == "int"
	case float64:
		return jen.Lit(v), v != 0 && p.Name == "float"
	case string:
		return jen.Lit(v), v != "" && p.Name == "string"
	}
	return nil, false
}

// TypeName turns a shape name into an exported Go identifier.
func TypeName(name string) string {
	id := identifier(name)
	if id == "" {
		return "Shape"
	}
	return id
}

// fieldNames derives unique exported identifiers for JSON member names.
func fieldNames(fields []ir.Field) []string {
	out := make([]string, len(fields))
	used := map[string]int{}
	for i, f := range fields {
		id := identifier(f.Name)
		if id == "" {
			id = "Field"
		}
		if n := used[id]; n > 0 {
			used[id] = n + 1
			id = fmt.Sprintf("%s%d", id, n+1)
		}
		used[id]++
		out[i] = id
	}
	return out
}

// identifier upper-camel-cases the letter and digit runs of s.
func identifier(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteByte('X')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
