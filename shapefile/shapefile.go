// Package shapefile declares shapejson shapes in YAML.
//
// A file lists shapes in dependency order; later shapes may use earlier ones
// as member or element types:
//
//	shapes:
//	  - name: Coordinates
//	    allowUndefined: false
//	    members:
//	      - {name: x, type: float, required: true}
//	      - {name: y, type: float, required: true}
//	      - {name: label, type: string, default: home}
//	  - name: Path
//	    kind: list
//	    elementType: Coordinates
//	    allowNull: false
//
// Member types are null, bool, int, float, string, object, list or the name
// of a shape declared above. A member without a type takes the type of its
// default; a member without a default gets the zero value of its type.
package shapefile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	shapejson "github.com/reoring/shapejson"
)

// Error locates a definition failure in the YAML source.
type Error struct {
	Line   int
	Column int
	Shape  string
	Err    error
}

func (e *Error) Error() string {
	if e.Shape == "" {
		return fmt.Sprintf("shapefile:%d:%d: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("shapefile:%d:%d: shape %q: %v", e.Line, e.Column, e.Shape, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ErrUnknownType reports a type name that is neither built in nor declared
// earlier in the file.
var ErrUnknownType = errors.New("unknown type")

type file struct {
	Shapes []yaml.Node `yaml:"shapes"`
}

type shapeDef struct {
	Name           string      `yaml:"name"`
	Kind           string      `yaml:"kind"`
	AllowUndefined *bool       `yaml:"allowUndefined"`
	Members        []memberDef `yaml:"members"`
	ElementType    string      `yaml:"elementType"`
	AllowNull      *bool       `yaml:"allowNull"`
	Seed           []yaml.Node `yaml:"seed"`
}

type memberDef struct {
	Name     string    `yaml:"name"`
	Type     string    `yaml:"type"`
	Required bool      `yaml:"required"`
	Default  yaml.Node `yaml:"default"`
}

// Load reads shape definitions from r.
func Load(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return newRegistry(), nil
		}
		return nil, fmt.Errorf("shapefile: %w", err)
	}
	reg := newRegistry()
	for i := range f.Shapes {
		if err := reg.define(&f.Shapes[i]); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Parse reads shape definitions from data.
func Parse(data []byte) (*Registry, error) { return Load(bytes.NewReader(data)) }

// LoadFile reads shape definitions from the YAML file at path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

func (r *Registry) define(n *yaml.Node) error {
	var def shapeDef
	if err := n.Decode(&def); err != nil {
		return &Error{Line: n.Line, Column: n.Column, Err: err}
	}
	fail := func(at *yaml.Node, err error) error {
		if at == nil || at.Line == 0 {
			at = n
		}
		return &Error{Line: at.Line, Column: at.Column, Shape: def.Name, Err: err}
	}
	if def.Name == "" {
		return fail(nil, errors.New("missing name"))
	}
	if _, taken := r.Type(def.Name); taken {
		return fail(nil, fmt.Errorf("name %q already defined", def.Name))
	}

	switch def.Kind {
	case "", "object":
		s, at, err := r.buildObject(&def)
		if err != nil {
			return fail(at, err)
		}
		r.objects[def.Name] = s
	case "list":
		s, at, err := r.buildList(&def)
		if err != nil {
			return fail(at, err)
		}
		r.lists[def.Name] = s
	default:
		return fail(nil, fmt.Errorf("kind must be object or list, got %q", def.Kind))
	}
	r.order = append(r.order, def.Name)
	return nil
}

func (r *Registry) buildObject(def *shapeDef) (*shapejson.ObjectShape, *yaml.Node, error) {
	b := shapejson.DefineObject(def.Name)
	for i := range def.Members {
		m := &def.Members[i]
		if m.Name == "" {
			return nil, &m.Default, fmt.Errorf("member %d: missing name", i)
		}
		field, err := r.memberDefault(m)
		if err != nil {
			return nil, &m.Default, fmt.Errorf("member %q: %w", m.Name, err)
		}
		b.Field(m.Name, field)
		if m.Required {
			b.Required()
		}
	}
	if def.AllowUndefined != nil && !*def.AllowUndefined {
		b.DisallowUndefined()
	}
	s, err := b.Build()
	return s, nil, err
}

// memberDefault resolves what a member is declared with: a Type when only a
// type is given, otherwise the default value checked against the type.
func (r *Registry) memberDefault(m *memberDef) (any, error) {
	hasDefault := m.Default.Kind != 0
	if m.Type == "" {
		if !hasDefault {
			return nil, nil
		}
		var raw any
		if err := m.Default.Decode(&raw); err != nil {
			return nil, err
		}
		return shapejson.ValueOf(raw)
	}
	t, ok := r.Type(m.Type)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, m.Type)
	}
	if !hasDefault {
		return t, nil
	}
	return r.valueFor(t, &m.Default)
}

func (r *Registry) buildList(def *shapeDef) (*shapejson.ListShape, *yaml.Node, error) {
	if len(def.Members) > 0 {
		return nil, nil, errors.New("list shapes have no members")
	}
	b := shapejson.DefineList(def.Name)
	var elem shapejson.Type
	if def.ElementType != "" {
		t, ok := r.Type(def.ElementType)
		if !ok {
			return nil, nil, fmt.Errorf("element type: %w %q", ErrUnknownType, def.ElementType)
		}
		elem = t
		b.Of(t)
	}
	if def.AllowNull != nil && !*def.AllowNull {
		b.DisallowNull()
	}
	for i := range def.Seed {
		n := &def.Seed[i]
		v, err := r.valueFor(elem, n)
		if err != nil {
			return nil, n, fmt.Errorf("seed %d: %w", i, err)
		}
		b.Seed(v)
	}
	s, err := b.Build()
	return s, nil, err
}

// valueFor decodes n as a value of type t. Shape types load the node through
// the shape so their rules apply; integral numbers widen to float when t is
// float. A zero t accepts anything.
func (r *Registry) valueFor(t shapejson.Type, n *yaml.Node) (shapejson.Value, error) {
	var raw any
	if err := n.Decode(&raw); err != nil {
		return shapejson.Value{}, err
	}
	if raw == nil {
		return shapejson.Null(), nil
	}
	if s := t.ObjectShape(); s != nil {
		o, err := loadInto(raw, s.Parse)
		if err != nil {
			return shapejson.Value{}, err
		}
		return shapejson.ObjectValue(o), nil
	}
	if s := t.ListShape(); s != nil {
		l, err := loadInto(raw, s.Parse)
		if err != nil {
			return shapejson.Value{}, err
		}
		return shapejson.ListValue(l), nil
	}
	v, err := shapejson.ValueOf(raw)
	if err != nil {
		return shapejson.Value{}, err
	}
	if i, ok := v.AsInt(); ok && t.Kind() == shapejson.KindFloat {
		v = shapejson.Float(float64(i))
	}
	if t.Kind() != shapejson.KindNull && !t.Admits(v) {
		return shapejson.Value{}, fmt.Errorf("expected %s, got %s", t.Name(), v.Type().Name())
	}
	return v, nil
}

func loadInto[T any](raw any, parse func([]byte, ...shapejson.ParseOpt) (T, error)) (T, error) {
	var zero T
	text, err := shapejson.ToJSON(raw)
	if err != nil {
		return zero, err
	}
	return parse([]byte(text))
}
