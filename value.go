package shapejson

import "math"

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindObject
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a JSON-compatible value: null, bool, int, float, string, object
// or list. The zero Value is null. Objects and lists are held by reference,
// so copying a Value shares them; use Copy or DeepCopy to detach.
type Value struct {
	kind Kind
	b    bool
	n    int64
	f    float64
	s    string
	obj  *Object
	list *List
}

func Null() Value           { return Value{} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }
func Int(n int64) Value     { return Value{kind: KindInt, n: n} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }

// ObjectValue wraps o; a nil object yields null.
func ObjectValue(o *Object) Value {
	if o == nil {
		return Null()
	}
	return Value{kind: KindObject, obj: o}
}

// ListValue wraps l; a nil list yields null.
func ListValue(l *List) Value {
	if l == nil {
		return Null()
	}
	return Value{kind: KindList, list: l}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool) { return v.n, v.kind == KindInt }

// AsFloat returns the numeric value; ints widen to float64.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.n), true
	}
	return 0, false
}

func (v Value) AsString() (string, bool)  { return v.s, v.kind == KindString }
func (v Value) AsObject() (*Object, bool) { return v.obj, v.kind == KindObject }
func (v Value) AsList() (*List, bool)     { return v.list, v.kind == KindList }

// Type returns the runtime type of v; shaped instances report their shape.
func (v Value) Type() Type { return TypeOf(v) }

// Native converts v to plain Go values: nil, bool, int64, float64, string,
// map[string]any and []any.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.n
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindObject:
		m := make(map[string]any, len(v.obj.names))
		for _, name := range v.obj.names {
			m[name] = v.obj.values[name].Native()
		}
		return m
	case KindList:
		out := make([]any, len(v.list.items))
		for i, it := range v.list.items {
			out[i] = it.Native()
		}
		return out
	}
	return nil
}

// Equal compares values structurally. Ints and floats compare numerically;
// objects compare by member set and values regardless of order.
func (v Value) Equal(o Value) bool { return equalValues(v, o, map[ptrPair]bool{}) }

type ptrPair struct{ a, b any }

func equalValues(a, b Value, seen map[ptrPair]bool) bool {
	switch {
	case a.kind == KindInt && b.kind == KindFloat:
		return float64(a.n) == b.f
	case a.kind == KindFloat && b.kind == KindInt:
		return a.f == float64(b.n)
	case a.kind != b.kind:
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.n == b.n
	case KindFloat:
		return a.f == b.f || (math.IsNaN(a.f) && math.IsNaN(b.f))
	case KindString:
		return a.s == b.s
	case KindObject:
		return equalObjects(a.obj, b.obj, seen)
	case KindList:
		return equalLists(a.list, b.list, seen)
	}
	return false
}

func equalObjects(a, b *Object, seen map[ptrPair]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || len(a.names) != len(b.names) {
		return false
	}
	key := ptrPair{a, b}
	if seen[key] {
		return true
	}
	seen[key] = true
	for _, name := range a.names {
		bv, ok := b.values[name]
		if !ok || !equalValues(a.values[name], bv, seen) {
			return false
		}
	}
	return true
}

func equalLists(a, b *List, seen map[ptrPair]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || len(a.items) != len(b.items) {
		return false
	}
	key := ptrPair{a, b}
	if seen[key] {
		return true
	}
	seen[key] = true
	for i := range a.items {
		if !equalValues(a.items[i], b.items[i], seen) {
			return false
		}
	}
	return true
}

// Copy returns a shallow copy: containers are duplicated one level deep.
func (v Value) Copy() Value {
	switch v.kind {
	case KindObject:
		return ObjectValue(v.obj.Copy())
	case KindList:
		return ListValue(v.list.Copy())
	}
	return v
}

// DeepCopy duplicates every container reachable from v. Shared containers
// stay shared in the copy and cycles are reproduced.
func (v Value) DeepCopy() Value { return newCopier().value(v) }

// String renders v as JSON text, or "" when v cannot be rendered.
func (v Value) String() string {
	s, err := ToJSON(v)
	if err != nil {
		return ""
	}
	return s
}

func (v Value) MarshalJSON() ([]byte, error) {
	s, err := ToJSON(v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	nv, err := Parse(data)
	if err != nil {
		return err
	}
	*v = nv
	return nil
}

// copier implements DeepCopy with a memo keyed by source container.
type copier struct {
	objects map[*Object]*Object
	lists   map[*List]*List
}

func newCopier() *copier {
	return &copier{objects: map[*Object]*Object{}, lists: map[*List]*List{}}
}

func (c *copier) value(v Value) Value {
	switch v.kind {
	case KindObject:
		return ObjectValue(c.object(v.obj))
	case KindList:
		return ListValue(c.list(v.list))
	}
	return v
}

func (c *copier) object(o *Object) *Object {
	if d, ok := c.objects[o]; ok {
		return d
	}
	d := o.blank()
	c.objects[o] = d
	d.names = append([]string(nil), o.names...)
	d.values = make(map[string]Value, len(o.values))
	for name, v := range o.values {
		d.values[name] = c.value(v)
	}
	return d
}

func (c *copier) list(l *List) *List {
	if d, ok := c.lists[l]; ok {
		return d
	}
	d := l.blank()
	c.lists[l] = d
	d.items = make([]Value, len(l.items))
	for i, it := range l.items {
		d.items[i] = c.value(it)
	}
	return d
}
