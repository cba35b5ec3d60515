// Package ir is the intermediate form the code generator consumes: shapes
// reduced to named objects, arrays and references.
package ir

import shapejson "github.com/reoring/shapejson"

// NodeKind identifies an IR node type.
type NodeKind int

const (
	NodePrimitive NodeKind = iota
	NodeArray
	NodeObject
	NodeRef
)

// Schema is the root IR node interface.
type Schema interface {
	Kind() NodeKind
}

// Primitive is a built-in type: "null", "bool", "int", "float", "string",
// and the generic "object" and "list".
type Primitive struct {
	Name string
}

func (p *Primitive) Kind() NodeKind { return NodePrimitive }

// Array is a list; Name is set for list shapes.
type Array struct {
	Name      string
	Item      Schema // nil when elements are unconstrained
	AllowNull bool
}

func (a *Array) Kind() NodeKind { return NodeArray }

// Object is an object shape with its members in declaration order.
type Object struct {
	Name              string
	Fields            []Field
	Required          map[string]struct{}
	DisallowUndefined bool
}

func (o *Object) Kind() NodeKind { return NodeObject }

// Field maps a JSON member name to its schema and default.
type Field struct {
	Name    string
	Schema  Schema
	Default any // native form of the declared default
}

// Ref points at another named shape.
type Ref struct {
	Name string
	List bool
}

func (r *Ref) Kind() NodeKind { return NodeRef }

// FromType converts a member or element type. Shapes become references.
func FromType(t shapejson.Type) Schema {
	if s := t.ObjectShape(); s != nil {
		return &Ref{Name: s.Name()}
	}
	if s := t.ListShape(); s != nil {
		return &Ref{Name: s.Name(), List: true}
	}
	return &Primitive{Name: t.Name()}
}

// FromObjectShape converts an object shape.
func FromObjectShape(s *shapejson.ObjectShape) *Object {
	o := &Object{
		Name:              s.Name(),
		Required:          map[string]struct{}{},
		DisallowUndefined: !s.AllowsUndefinedMembers(),
	}
	for _, name := range s.Members() {
		t, _ := s.MemberType(name)
		def, _ := s.Default(name)
		o.Fields = append(o.Fields, Field{Name: name, Schema: FromType(t), Default: def.Native()})
	}
	for _, name := range s.Mandatory() {
		o.Required[name] = struct{}{}
	}
	return o
}

// FromListShape converts a list shape.
func FromListShape(s *shapejson.ListShape) *Array {
	a := &Array{Name: s.Name(), AllowNull: s.AllowsNull()}
	if t := s.ElementType(); t != shapejson.NullType {
		a.Item = FromType(t)
	}
	return a
}
