package shapejson

import (
	"math/rand/v2"
	"slices"
)

// ObjectShape is an object type synthesized at runtime: a named set of
// members with defaults, mandatory members and an undefined-member policy.
// Shapes are immutable once built; New stamps out independent instances.
type ObjectShape struct {
	name     string
	template *Object
}

func (s *ObjectShape) Name() string { return s.name }
func (s *ObjectShape) Type() Type   { return Type{kind: KindObject, object: s} }

// New returns a fresh instance holding deep copies of the defaults.
func (s *ObjectShape) New() *Object { return s.template.DeepCopy() }

// Members returns member names in declaration order.
func (s *ObjectShape) Members() []string { return s.template.Keys() }

// MemberType returns the type of a declared member's default.
func (s *ObjectShape) MemberType(name string) (Type, bool) {
	v, ok := s.template.Lookup(name)
	if !ok {
		return Type{}, false
	}
	return TypeOf(v), true
}

// Default returns a deep copy of a declared member's default.
func (s *ObjectShape) Default(name string) (Value, bool) {
	v, ok := s.template.Lookup(name)
	if !ok {
		return Value{}, false
	}
	return v.DeepCopy(), true
}

func (s *ObjectShape) Mandatory() []string          { return s.template.Mandatory() }
func (s *ObjectShape) AllowsUndefinedMembers() bool { return s.template.AllowsUndefinedMembers() }

// ObjectBuilder declares an ObjectShape. The first error is kept and
// reported by Build.
type ObjectBuilder struct {
	name      string
	fields    []string
	defaults  []any
	mandatory []string
	disallow  bool
	err       error
}

// DefineObject starts an object shape. An empty name is replaced by a random
// lowercase token.
func DefineObject(name string) *ObjectBuilder { return &ObjectBuilder{name: name} }

// Field declares a member. def may be a value, a Go value ValueOf accepts, a
// Type or a shape; types and shapes instantiate a fresh default.
func (b *ObjectBuilder) Field(name string, def any) *ObjectBuilder {
	if b.err == nil && slices.Contains(b.fields, name) {
		b.err = newIssue(CodeDuplicateKey, joinPath("", name), map[string]string{"member": name}, nil)
	}
	b.fields = append(b.fields, name)
	b.defaults = append(b.defaults, def)
	return b
}

// Required marks the most recently declared field mandatory.
func (b *ObjectBuilder) Required() *ObjectBuilder {
	if n := len(b.fields); n > 0 {
		b.mandatory = append(b.mandatory, b.fields[n-1])
	}
	return b
}

// Mandatory marks declared fields mandatory.
func (b *ObjectBuilder) Mandatory(names ...string) *ObjectBuilder {
	b.mandatory = append(b.mandatory, names...)
	return b
}

// DisallowUndefined makes loads into instances refuse members outside the
// declaration.
func (b *ObjectBuilder) DisallowUndefined() *ObjectBuilder {
	b.disallow = true
	return b
}

func (b *ObjectBuilder) Build() (*ObjectShape, error) {
	if b.err != nil {
		return nil, b.err
	}
	name := b.name
	if name == "" {
		name = randomName()
	}
	s := &ObjectShape{name: name}
	tmpl := &Object{shape: s, disallowUndefined: b.disallow}
	for i, f := range b.fields {
		v, err := defaultValue(b.defaults[i], joinPath("", f))
		if err != nil {
			return nil, err
		}
		tmpl.put(f, v)
	}
	for _, m := range b.mandatory {
		if !tmpl.Has(m) {
			return nil, memberNotFound(joinPath("", m), m)
		}
		if !tmpl.IsMandatory(m) {
			tmpl.mandatory = append(tmpl.mandatory, m)
		}
	}
	s.template = tmpl
	logger().Debug("object shape defined", "name", name, "members", len(b.fields), "mandatory", len(tmpl.mandatory))
	return s, nil
}

func (b *ObjectBuilder) MustBuild() *ObjectShape {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// ListShape is a list type synthesized at runtime: element type, null policy
// and seed elements copied into every new instance.
type ListShape struct {
	name     string
	template *List
}

func (s *ListShape) Name() string      { return s.name }
func (s *ListShape) Type() Type        { return Type{kind: KindList, list: s} }
func (s *ListShape) New() *List        { return s.template.DeepCopy() }
func (s *ListShape) ElementType() Type { return s.template.elem }
func (s *ListShape) AllowsNull() bool  { return !s.template.disallowNull }

// Seed returns deep copies of the seed elements.
func (s *ListShape) Seed() []Value { return s.New().items }

// ListBuilder declares a ListShape.
type ListBuilder struct {
	name         string
	elem         Type
	seed         []any
	disallowNull bool
}

// DefineList starts a list shape. An empty name is replaced by a random
// lowercase token.
func DefineList(name string) *ListBuilder { return &ListBuilder{name: name} }

func (b *ListBuilder) Of(t Type) *ListBuilder {
	b.elem = t
	return b
}

func (b *ListBuilder) Seed(items ...any) *ListBuilder {
	b.seed = append(b.seed, items...)
	return b
}

func (b *ListBuilder) DisallowNull() *ListBuilder {
	b.disallowNull = true
	return b
}

// Build validates the seed against the element type and null policy.
func (b *ListBuilder) Build() (*ListShape, error) {
	name := b.name
	if name == "" {
		name = randomName()
	}
	s := &ListShape{name: name}
	tmpl := &List{shape: s, elem: b.elem, disallowNull: b.disallowNull}
	if err := tmpl.Append(b.seed...); err != nil {
		return nil, err
	}
	s.template = tmpl
	logger().Debug("list shape defined", "name", name, "element", b.elem.Name(), "seed", len(b.seed))
	return s, nil
}

func (b *ListBuilder) MustBuild() *ListShape {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

const nameLetters = "abcdefghijklmnopqrstuvwxyz"

func randomName() string {
	b := make([]byte, 10)
	for i := range b {
		b[i] = nameLetters[rand.IntN(len(nameLetters))]
	}
	return string(b)
}
