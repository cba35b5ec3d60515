package shapejson

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// IsSupported reports whether x is a value or type the model can hold.
func IsSupported(x any) bool { return CheckSupported(x) == nil }

// CheckSupported is IsSupported returning the TypeMismatch issue that names
// the offending Go type.
func CheckSupported(x any) error {
	switch t := x.(type) {
	case Type:
		return nil
	case *ObjectShape:
		if t != nil {
			return nil
		}
	case *ListShape:
		if t != nil {
			return nil
		}
	}
	_, err := ValueOf(x)
	return err
}

// ValueOf coerces a Go value into a Value. Accepted: nil, Value, *Object,
// *List, bool, every integer kind that fits int64, finite floats, strings,
// maps keyed by strings, slices and arrays of those, and pointers to them.
// Maps become generic objects with members in sorted key order; slices become
// untyped lists.
func ValueOf(x any) (Value, error) {
	return admit(x, "", map[uintptr]bool{})
}

// defaultValue resolves a member default: types and shapes instantiate a
// fresh value, everything else goes through ValueOf.
func defaultValue(x any, path string) (Value, error) {
	switch t := x.(type) {
	case Type:
		return t.Zero(), nil
	case *ObjectShape:
		if t != nil {
			return ObjectValue(t.New()), nil
		}
	case *ListShape:
		if t != nil {
			return ListValue(t.New()), nil
		}
	}
	return admit(x, path, map[uintptr]bool{})
}

func admit(x any, path string, seen map[uintptr]bool) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Object:
		return ObjectValue(t), nil
	case *List:
		return ListValue(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case float64:
		return admitFloat(t, path)
	case string:
		return String(t), nil
	case Type, *ObjectShape, *ListShape:
		return Value{}, typeMismatch(path, "value", fmt.Sprintf("%T", x))
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, typeMismatch(path, "int", strconv.FormatUint(u, 10))
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return admitFloat(rv.Float(), path)
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
		return admit(rv.Elem().Interface(), path, seen)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		if rv.IsNil() {
			return Null(), nil
		}
		if seen[rv.Pointer()] {
			return Value{}, typeMismatch(path, "acyclic value", fmt.Sprintf("%T", x))
		}
		seen[rv.Pointer()] = true
		defer delete(seen, rv.Pointer())
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		slices.Sort(keys)
		o := &Object{}
		for _, k := range keys {
			mv, err := admit(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface(), joinPath(path, k), seen)
			if err != nil {
				return Value{}, err
			}
			o.put(k, mv)
		}
		return ObjectValue(o), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice {
			if rv.IsNil() {
				return Null(), nil
			}
			if rv.Len() > 0 {
				p := rv.Pointer()
				if seen[p] {
					return Value{}, typeMismatch(path, "acyclic value", fmt.Sprintf("%T", x))
				}
				seen[p] = true
				defer delete(seen, p)
			}
		}
		l := &List{items: make([]Value, 0, rv.Len())}
		for i := 0; i < rv.Len(); i++ {
			iv, err := admit(rv.Index(i).Interface(), joinPath(path, strconv.Itoa(i)), seen)
			if err != nil {
				return Value{}, err
			}
			l.items = append(l.items, iv)
		}
		return ListValue(l), nil
	}
	return Value{}, typeMismatch(path, "supported value", fmt.Sprintf("%T", x))
}

func admitFloat(f float64, path string) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, typeMismatch(path, "finite float", strconv.FormatFloat(f, 'g', -1, 64))
	}
	return Float(f), nil
}
