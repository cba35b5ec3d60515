package shapejson

import (
	"iter"
	"slices"
	"strconv"
)

// List is an ordered sequence of values, optionally constrained to one
// element type and optionally refusing nulls. Every mutation validates all
// incoming elements before changing the list.
//
// The zero List is an empty untyped list that admits nulls.
type List struct {
	shape        *ListShape
	elem         Type
	items        []Value
	disallowNull bool
}

// ListOption configures NewList.
type ListOption func(*listConfig)

type listConfig struct {
	elem         Type
	items        []any
	disallowNull bool
}

// ElementType constrains the list to instances of t. NullType (the default)
// leaves it unconstrained.
func ElementType(t Type) ListOption { return func(c *listConfig) { c.elem = t } }

// Items seeds the list.
func Items(items ...any) ListOption {
	return func(c *listConfig) { c.items = append(c.items, items...) }
}

// DisallowNull makes the list refuse null elements.
func DisallowNull() ListOption { return func(c *listConfig) { c.disallowNull = true } }

// NewList builds a generic list.
func NewList(opts ...ListOption) (*List, error) {
	var cfg listConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	l := &List{elem: cfg.elem, disallowNull: cfg.disallowNull}
	if err := l.Append(cfg.items...); err != nil {
		return nil, err
	}
	return l, nil
}

// MustList is NewList that panics on error.
func MustList(opts ...ListOption) *List {
	l, err := NewList(opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// blank returns an empty list sharing l's shape, element type and null policy.
func (l *List) blank() *List {
	return &List{shape: l.shape, elem: l.elem, disallowNull: l.disallowNull}
}

func (l *List) Shape() *ListShape { return l.shape }

// Type returns the shape type, or ListType for generic lists.
func (l *List) Type() Type { return TypeOf(ListValue(l)) }

func (l *List) ElementType() Type { return l.elem }
func (l *List) AllowsNull() bool  { return !l.disallowNull }
func (l *List) Len() int          { return len(l.items) }

// At returns the element at index i.
func (l *List) At(i int) (Value, error) {
	if i < 0 || i >= len(l.items) {
		return Value{}, outOfRange(i)
	}
	return l.items[i], nil
}

// Elements returns a copy of the element slice.
func (l *List) Elements() []Value { return slices.Clone(l.items) }

// All iterates elements with their index.
func (l *List) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, it := range l.items {
			if !yield(i, it) {
				return
			}
		}
	}
}

// check validates one element against the null policy and element type.
func (l *List) check(v Value, path string) error {
	if v.IsNull() {
		if l.disallowNull {
			return newIssue(CodeNullNotAllowed, path, nil, nil)
		}
		return nil
	}
	if l.elem.constrains() && !l.elem.Admits(v) {
		return typeMismatch(path, l.elem.Name(), TypeOf(v).Name())
	}
	return nil
}

// coerce admits xs as elements placed from index start on.
func (l *List) coerce(xs []any, start int) ([]Value, error) {
	out := make([]Value, len(xs))
	for i, x := range xs {
		path := joinPath("", strconv.Itoa(start+i))
		v, err := admit(x, path, map[uintptr]bool{})
		if err != nil {
			return nil, err
		}
		if err := l.check(v, path); err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Append adds elements at the end. Either all are added or none.
func (l *List) Append(xs ...any) error {
	vs, err := l.coerce(xs, len(l.items))
	if err != nil {
		return err
	}
	l.items = append(l.items, vs...)
	return nil
}

// Set replaces the element at index i.
func (l *List) Set(i int, x any) error {
	if i < 0 || i >= len(l.items) {
		return outOfRange(i)
	}
	vs, err := l.coerce([]any{x}, i)
	if err != nil {
		return err
	}
	l.items[i] = vs[0]
	return nil
}

// Extend appends every element of seq, which may be a *List, a []Value or
// any Go slice ValueOf accepts. Either all are added or none.
func (l *List) Extend(seq any) error {
	xs, err := sequence(seq)
	if err != nil {
		return err
	}
	return l.Append(xs...)
}

// Concat returns a new list with l's elements followed by seq's. The result
// keeps l's shape, element type and null policy.
func (l *List) Concat(seq any) (*List, error) {
	xs, err := sequence(seq)
	if err != nil {
		return nil, err
	}
	out := l.blank()
	out.items = slices.Clone(l.items)
	if err := out.Append(xs...); err != nil {
		return nil, err
	}
	return out, nil
}

// ConcatFront returns a new list with seq's elements followed by l's. The
// result keeps l's shape, element type and null policy.
func (l *List) ConcatFront(seq any) (*List, error) {
	xs, err := sequence(seq)
	if err != nil {
		return nil, err
	}
	out := l.blank()
	if err := out.Append(xs...); err != nil {
		return nil, err
	}
	out.items = append(out.items, l.items...)
	return out, nil
}

// sequence flattens seq into its elements.
func sequence(seq any) ([]any, error) {
	var items []Value
	switch s := seq.(type) {
	case *List:
		if s == nil {
			return nil, typeMismatch("/", "list", NullType.Name())
		}
		items = s.items
	case []Value:
		items = s
	case []any:
		return s, nil
	default:
		v, err := ValueOf(seq)
		if err != nil {
			return nil, err
		}
		lv, ok := v.AsList()
		if !ok {
			return nil, typeMismatch("/", "list", TypeOf(v).Name())
		}
		items = lv.items
	}
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out, nil
}

// Equal compares element-wise.
func (l *List) Equal(other *List) bool { return equalLists(l, other, map[ptrPair]bool{}) }

// Copy returns a shallow copy keeping shape, element type and null policy.
func (l *List) Copy() *List {
	c := l.blank()
	c.items = slices.Clone(l.items)
	return c
}

// DeepCopy returns a copy sharing no containers with l.
func (l *List) DeepCopy() *List { return newCopier().list(l) }

func (l *List) String() string                  { return ListValue(l).String() }
func (l *List) MarshalJSON() ([]byte, error)    { return ListValue(l).MarshalJSON() }
func (l *List) UnmarshalJSON(data []byte) error { return l.Load(data) }

func outOfRange(i int) error {
	idx := strconv.Itoa(i)
	return newIssue(CodeOutOfRange, joinPath("", idx), map[string]string{"index": idx}, nil)
}
