package shapejson

import (
	"fmt"
	"iter"
	"slices"
)

// Object is a set of named members in insertion order. Member types are
// fixed by the value a member first holds: Set only accepts values of the
// current value's type, except that a null member accepts anything.
//
// An object may name mandatory members (present and non-null whenever it is
// loaded from JSON) and may refuse members it does not already declare.
// Objects produced by an ObjectShape report it from Shape.
//
// The zero Object is an empty generic object that admits undefined members.
type Object struct {
	shape             *ObjectShape
	names             []string
	values            map[string]Value
	mandatory         []string
	disallowUndefined bool
}

// ObjectOptions configures NewObjectWithOptions.
type ObjectOptions struct {
	// Mandatory lists members that must be present and non-null in loaded JSON.
	// Every name must be one of the constructed members.
	Mandatory []string
	// DisallowUndefined rejects loaded members other than the current ones.
	// Set may still add members.
	DisallowUndefined bool
}

// NewObject builds a generic object from alternating name/value arguments,
// in the manner of slog attributes:
//
//	o, err := shapejson.NewObject("x", 1.5, "label", "origin")
//
// Values may be anything ValueOf accepts, or a Type or shape whose fresh
// instance becomes the value.
func NewObject(kv ...any) (*Object, error) { return NewObjectWithOptions(ObjectOptions{}, kv...) }

// NewObjectWithOptions is NewObject with mandatory members and the undefined
// member policy.
func NewObjectWithOptions(opts ObjectOptions, kv ...any) (*Object, error) {
	if len(kv)%2 != 0 {
		return nil, typeMismatch("/", "name/value pairs", fmt.Sprintf("%d arguments", len(kv)))
	}
	o := &Object{disallowUndefined: opts.DisallowUndefined}
	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			return nil, typeMismatch("/", "member name", fmt.Sprintf("%T", kv[i]))
		}
		v, err := defaultValue(kv[i+1], joinPath("", name))
		if err != nil {
			return nil, err
		}
		o.put(name, v)
	}
	for _, m := range opts.Mandatory {
		if !o.Has(m) {
			return nil, memberNotFound(joinPath("", m), m)
		}
		if !slices.Contains(o.mandatory, m) {
			o.mandatory = append(o.mandatory, m)
		}
	}
	return o, nil
}

// MustObject is NewObject that panics on error.
func MustObject(kv ...any) *Object {
	o, err := NewObject(kv...)
	if err != nil {
		panic(err)
	}
	return o
}

// put stores v under name, appending name when it is new.
func (o *Object) put(name string, v Value) {
	if o.values == nil {
		o.values = map[string]Value{}
	}
	if _, ok := o.values[name]; !ok {
		o.names = append(o.names, name)
	}
	o.values[name] = v
}

// blank returns an empty object sharing o's shape and flags.
func (o *Object) blank() *Object {
	return &Object{
		shape:             o.shape,
		mandatory:         slices.Clone(o.mandatory),
		disallowUndefined: o.disallowUndefined,
	}
}

// Shape returns the shape o was instantiated from, nil for generic objects.
func (o *Object) Shape() *ObjectShape { return o.shape }

// Type returns the shape type, or ObjectType for generic objects.
func (o *Object) Type() Type { return TypeOf(ObjectValue(o)) }

func (o *Object) Mandatory() []string          { return slices.Clone(o.mandatory) }
func (o *Object) IsMandatory(name string) bool { return slices.Contains(o.mandatory, name) }
func (o *Object) AllowsUndefinedMembers() bool { return !o.disallowUndefined }
func (o *Object) Len() int                     { return len(o.names) }
func (o *Object) Keys() []string               { return slices.Clone(o.names) }

func (o *Object) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// Get returns the member value, null when the member does not exist.
func (o *Object) Get(name string) Value { return o.values[name] }

// Lookup returns the member value and whether the member exists.
func (o *Object) Lookup(name string) (Value, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Set assigns a member. An existing non-null member only accepts values of
// its current type. A new member is appended and counts as declared for later
// loads, even when undefined members are disallowed. A rejected Set leaves o
// unchanged.
func (o *Object) Set(name string, x any) error {
	path := joinPath("", name)
	v, err := admit(x, path, map[uintptr]bool{})
	if err != nil {
		return err
	}
	cur, ok := o.values[name]
	if !ok {
		o.put(name, v)
		return nil
	}
	if !cur.IsNull() {
		if t := TypeOf(cur); !t.Admits(v) {
			return typeMismatch(path, t.Name(), TypeOf(v).Name())
		}
	}
	o.values[name] = v
	return nil
}

// All iterates members in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, name := range o.names {
			if !yield(name, o.values[name]) {
				return
			}
		}
	}
}

// Select returns a generic object holding only the named members, in the
// order given. Values are shared with o. Mandatory names among them stay
// mandatory.
func (o *Object) Select(names ...string) (*Object, error) {
	out := &Object{disallowUndefined: o.disallowUndefined}
	for _, name := range names {
		v, ok := o.values[name]
		if !ok {
			return nil, memberNotFound(joinPath("", name), name)
		}
		out.put(name, v)
		if o.IsMandatory(name) && !out.IsMandatory(name) {
			out.mandatory = append(out.mandatory, name)
		}
	}
	return out, nil
}

// Equal reports whether both objects hold the same member names with equal
// values. Order, shape and flags are ignored.
func (o *Object) Equal(other *Object) bool {
	return equalObjects(o, other, map[ptrPair]bool{})
}

// Copy returns a shallow copy keeping shape and flags; member containers are shared.
func (o *Object) Copy() *Object {
	c := o.blank()
	c.names = slices.Clone(o.names)
	c.values = make(map[string]Value, len(o.values))
	for k, v := range o.values {
		c.values[k] = v
	}
	return c
}

// DeepCopy returns a copy sharing no containers with o.
func (o *Object) DeepCopy() *Object { return newCopier().object(o) }

// String renders o as JSON text, or "" when o cannot be rendered.
func (o *Object) String() string { return ObjectValue(o).String() }

func (o *Object) MarshalJSON() ([]byte, error) { return ObjectValue(o).MarshalJSON() }

// UnmarshalJSON loads data into o with the same rules as Load.
func (o *Object) UnmarshalJSON(data []byte) error { return o.Load(data) }
