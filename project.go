package shapejson

import (
	"slices"
	"strconv"
)

// objectElements checks that l holds objects and returns its element shape,
// nil for the generic ObjectType.
func (l *List) objectElements() (*ObjectShape, error) {
	if l.elem.kind != KindObject {
		return nil, typeMismatch("/", "list of objects", "list of "+l.elem.Name())
	}
	return l.elem.object, nil
}

// element returns item i as an object.
func (l *List) element(i int) (*Object, error) {
	o, ok := l.items[i].AsObject()
	if !ok {
		return nil, typeMismatch(joinPath("", strconv.Itoa(i)), "object", TypeOf(l.items[i]).Name())
	}
	return o, nil
}

// Get projects member name out of every element. With a shape element type
// name must be declared and the result is typed by the member's type; with
// the generic ObjectType every element must carry name and the result type
// comes from the first non-null element. Null elements project to null.
func (l *List) Get(name string) (*List, error) {
	shape, err := l.objectElements()
	if err != nil {
		return nil, err
	}
	out := &List{}
	if shape != nil {
		t, ok := shape.MemberType(name)
		if !ok {
			return nil, memberNotFound("/", name)
		}
		out.elem = t
	}
	vals := make([]any, len(l.items))
	for i, it := range l.items {
		if it.IsNull() {
			vals[i] = it
			continue
		}
		o, err := l.element(i)
		if err != nil {
			return nil, err
		}
		v, ok := o.Lookup(name)
		if !ok {
			return nil, memberNotFound(joinPath(joinPath("", strconv.Itoa(i)), name), name)
		}
		if shape == nil && out.elem == NullType {
			out.elem = TypeOf(v)
		}
		vals[i] = v
	}
	if err := out.Append(vals...); err != nil {
		return nil, err
	}
	return out, nil
}

// Map applies fn to every element and collects the results in a new list
// typed by the first result. An empty list has nothing to infer a type from
// and fails with empty_inference.
func (l *List) Map(fn func(Value) (any, error)) (*List, error) {
	if len(l.items) == 0 {
		return nil, newIssue(CodeEmptyInference, "/", nil, nil)
	}
	vals := make([]any, len(l.items))
	for i, it := range l.items {
		r, err := fn(it)
		if err != nil {
			return nil, err
		}
		v, err := admit(r, joinPath("", strconv.Itoa(i)), map[uintptr]bool{})
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	out := &List{elem: TypeOf(vals[0].(Value))}
	if err := out.Append(vals...); err != nil {
		return nil, err
	}
	return out, nil
}

// Select builds a new object shape holding exactly names and returns a list
// of its instances, one per element. Member types and defaults come from the
// element shape, or from the first non-null element of a generic list. Mandatory
// members among names stay mandatory.
func (l *List) Select(names ...string) (*List, error) {
	shape, err := l.objectElements()
	if err != nil {
		return nil, err
	}
	b := DefineObject("")
	var proto *Object
	switch {
	case shape != nil:
		proto = shape.template
	default:
		i := slices.IndexFunc(l.items, func(v Value) bool { return !v.IsNull() })
		if i < 0 {
			return nil, newIssue(CodeEmptyInference, "/", nil, nil)
		}
		if proto, err = l.element(i); err != nil {
			return nil, err
		}
	}
	for _, name := range names {
		v, ok := proto.Lookup(name)
		if !ok {
			return nil, memberNotFound("/", name)
		}
		if shape != nil {
			b.Field(name, v.DeepCopy())
		} else {
			b.Field(name, TypeOf(v))
		}
		if proto.IsMandatory(name) {
			b.Mandatory(name)
		}
	}
	if proto.disallowUndefined {
		b.DisallowUndefined()
	}
	sub, err := b.Build()
	if err != nil {
		return nil, err
	}

	out := &List{elem: sub.Type(), disallowNull: l.disallowNull}
	for i, it := range l.items {
		if it.IsNull() {
			out.items = append(out.items, it)
			continue
		}
		o, err := l.element(i)
		if err != nil {
			return nil, err
		}
		inst := sub.New()
		for _, name := range names {
			path := joinPath(joinPath("", strconv.Itoa(i)), name)
			v, ok := o.Lookup(name)
			if !ok {
				return nil, memberNotFound(path, name)
			}
			if t, _ := sub.MemberType(name); !v.IsNull() && t.constrains() && !t.Admits(v) {
				return nil, typeMismatch(path, t.Name(), TypeOf(v).Name())
			}
			inst.values[name] = v
		}
		out.items = append(out.items, ObjectValue(inst))
	}
	return out, nil
}

// Where returns the elements satisfying pred in a list with l's shape,
// element type and null policy.
func (l *List) Where(pred func(Value) bool) *List {
	out := l.blank()
	for _, it := range l.items {
		if pred(it) {
			out.items = append(out.items, it)
		}
	}
	return out
}
