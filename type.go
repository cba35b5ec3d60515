package shapejson

// Type is a value type usable as a member default, a list element type or a
// projection result type. The scalar types and the generic ObjectType and
// ListType are predeclared; shapes provide their own via Type().
//
// NullType used as an element or result type leaves the list unconstrained.
type Type struct {
	kind   Kind
	object *ObjectShape
	list   *ListShape
}

var (
	NullType   = Type{kind: KindNull}
	BoolType   = Type{kind: KindBool}
	IntType    = Type{kind: KindInt}
	FloatType  = Type{kind: KindFloat}
	StringType = Type{kind: KindString}
	ObjectType = Type{kind: KindObject}
	ListType   = Type{kind: KindList}
)

func (t Type) Kind() Kind                { return t.kind }
func (t Type) ObjectShape() *ObjectShape { return t.object }
func (t Type) ListShape() *ListShape     { return t.list }

// IsShape reports whether t was synthesized by a shape builder.
func (t Type) IsShape() bool { return t.object != nil || t.list != nil }

// Name returns the shape name for shape types and the kind name otherwise.
func (t Type) Name() string {
	switch {
	case t.object != nil:
		return t.object.name
	case t.list != nil:
		return t.list.name
	}
	return t.kind.String()
}

func (t Type) String() string { return t.Name() }

// Zero instantiates the default for a member declared with a bare type:
// the zero scalar, an empty generic container, or a fresh shape instance.
func (t Type) Zero() Value {
	switch t.kind {
	case KindBool:
		return Bool(false)
	case KindInt:
		return Int(0)
	case KindFloat:
		return Float(0)
	case KindString:
		return String("")
	case KindObject:
		if t.object != nil {
			return ObjectValue(t.object.New())
		}
		return ObjectValue(&Object{})
	case KindList:
		if t.list != nil {
			return ListValue(t.list.New())
		}
		return ListValue(&List{})
	}
	return Null()
}

// Admits reports whether v is an instance of t. Kinds must match exactly (an
// int is not a float). The generic ObjectType and ListType admit every object
// or list; a shape type admits only its own instances.
func (t Type) Admits(v Value) bool {
	if v.kind != t.kind {
		return false
	}
	switch t.kind {
	case KindObject:
		return t.object == nil || v.obj.shape == t.object
	case KindList:
		return t.list == nil || v.list.shape == t.list
	}
	return true
}

// constrains reports whether t restricts list elements at all.
func (t Type) constrains() bool { return t.kind != KindNull }

// TypeOf returns the runtime type of v.
func TypeOf(v Value) Type {
	switch v.kind {
	case KindObject:
		if v.obj.shape != nil {
			return v.obj.shape.Type()
		}
	case KindList:
		if v.list.shape != nil {
			return v.list.shape.Type()
		}
	}
	return Type{kind: v.kind}
}
