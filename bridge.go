package shapejson

import (
	"fmt"
	"strconv"

	eng "github.com/reoring/shapejson/internal/engine"
)

// toDescriptor mirrors v as an engine descriptor tree. Objects carry their
// mandatory members and undefined-member policy; lists carry an item
// template for their element type and their null policy.
func toDescriptor(v Value) (eng.Descriptor, error) {
	e := &descEncoder{active: map[any]bool{}}
	return e.value(v, "")
}

// toReplacingDescriptor is toDescriptor for whole-document replacement:
// members the input omits are dropped rather than kept.
func toReplacingDescriptor(v Value) (eng.Descriptor, error) {
	e := &descEncoder{active: map[any]bool{}, replace: true}
	return e.value(v, "")
}

type descEncoder struct {
	active  map[any]bool
	replace bool
}

func (e *descEncoder) value(v Value, path string) (eng.Descriptor, error) {
	switch v.kind {
	case KindNull:
		return &eng.NullDescriptor{}, nil
	case KindBool:
		return &eng.BoolDescriptor{Value: v.b}, nil
	case KindInt:
		return &eng.IntDescriptor{Value: v.n}, nil
	case KindFloat:
		return &eng.FloatDescriptor{Value: v.f}, nil
	case KindString:
		return &eng.StringDescriptor{Value: v.s}, nil
	case KindObject:
		o := v.obj
		if e.active[o] {
			return nil, typeMismatch(path, "acyclic value", "cycle")
		}
		e.active[o] = true
		defer delete(e.active, o)
		d := eng.NewObjectDescriptor()
		d.AllowUndefinedMembers = !o.disallowUndefined
		d.Replace = e.replace
		for _, name := range o.names {
			md, err := e.value(o.values[name], joinPath(path, name))
			if err != nil {
				return nil, err
			}
			d.AddMember(name, md, o.IsMandatory(name))
		}
		return d, nil
	case KindList:
		l := v.list
		if e.active[l] {
			return nil, typeMismatch(path, "acyclic value", "cycle")
		}
		e.active[l] = true
		defer delete(e.active, l)
		d := eng.NewListDescriptor()
		d.AllowNullValues = !l.disallowNull
		if l.elem.constrains() {
			tmpl, err := e.value(l.elem.Zero(), joinPath(path, "-"))
			if err != nil {
				return nil, err
			}
			d.SetItemDescriptor(tmpl)
		}
		for i, it := range l.items {
			id, err := e.value(it, joinPath(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			d.Append(id)
		}
		return d, nil
	}
	return nil, fmt.Errorf("shapejson: unknown value kind %d", v.kind)
}

// materialize builds a Value from a decoded descriptor. guide is the value
// the descriptor was produced from (or null): objects and lists take over its
// shape and flags, and their members and elements are guided in turn.
func materialize(d eng.Descriptor, guide Value) Value {
	switch dd := d.(type) {
	case *eng.VariantDescriptor:
		return materialize(dd.Value(), guide)
	case *eng.BoolDescriptor:
		return Bool(dd.Value)
	case *eng.IntDescriptor:
		return Int(dd.Value)
	case *eng.FloatDescriptor:
		return Float(dd.Value)
	case *eng.StringDescriptor:
		return String(dd.Value)
	case *eng.ObjectDescriptor:
		var o *Object
		if g, ok := guide.AsObject(); ok {
			o = g.blank()
		} else {
			o = &Object{}
		}
		for _, m := range dd.Members() {
			var mg Value
			if g, ok := guide.AsObject(); ok {
				mg = g.Get(m.Name)
			}
			o.put(m.Name, materialize(m.Descriptor, mg))
		}
		return ObjectValue(o)
	case *eng.ListDescriptor:
		var l *List
		if g, ok := guide.AsList(); ok {
			l = g.blank()
		} else {
			l = &List{}
		}
		var ig Value
		if l.elem.constrains() {
			ig = l.elem.Zero()
		}
		l.items = make([]Value, dd.Len())
		for i := range l.items {
			l.items[i] = materialize(dd.At(i), ig)
		}
		return ListValue(l)
	}
	return Null()
}

// decodeText parses text into d with the given options.
func decodeText(d eng.Descriptor, text []byte, opts []ParseOpt) error {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 && int64(len(text)) > opt.MaxBytes {
		iss := newIssue(CodeTruncated, "/", nil, nil)
		iss[0].Message = "max bytes exceeded"
		return iss
	}
	src := newSource(text, opt)
	if err := eng.Decode(d, src); err != nil {
		return fromEngineError(err, src.Location())
	}
	return nil
}

// Load parses text into o. Known members are parsed against their current
// value (nested objects merge, lists are replaced), other members are added
// unless undefined members are disallowed, and mandatory members must be
// present and non-null. On error o is left unchanged.
func (o *Object) Load(text []byte, opts ...ParseOpt) error {
	d, err := toDescriptor(ObjectValue(o))
	if err != nil {
		return err
	}
	if err := decodeText(d, text, opts); err != nil {
		return err
	}
	n := materialize(d, ObjectValue(o)).obj
	o.names, o.values = n.names, n.values
	logger().Debug("object loaded", "shape", o.Type().Name(), "members", len(o.names))
	return nil
}

// Load replaces the elements of l with the JSON list in text, validated
// against the element type and null policy. On error l is left unchanged.
func (l *List) Load(text []byte, opts ...ParseOpt) error {
	d, err := toDescriptor(ListValue(l))
	if err != nil {
		return err
	}
	if err := decodeText(d, text, opts); err != nil {
		return err
	}
	l.items = materialize(d, ListValue(l)).list.items
	logger().Debug("list loaded", "shape", l.Type().Name(), "elements", len(l.items))
	return nil
}
