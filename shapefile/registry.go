package shapefile

import (
	"slices"

	shapejson "github.com/reoring/shapejson"
)

// Registry holds the shapes of one definition file.
type Registry struct {
	objects map[string]*shapejson.ObjectShape
	lists   map[string]*shapejson.ListShape
	order   []string
}

func newRegistry() *Registry {
	return &Registry{
		objects: map[string]*shapejson.ObjectShape{},
		lists:   map[string]*shapejson.ListShape{},
	}
}

var builtin = map[string]shapejson.Type{
	"null":   shapejson.NullType,
	"bool":   shapejson.BoolType,
	"int":    shapejson.IntType,
	"float":  shapejson.FloatType,
	"string": shapejson.StringType,
	"object": shapejson.ObjectType,
	"list":   shapejson.ListType,
}

// Object returns the object shape declared as name.
func (r *Registry) Object(name string) (*shapejson.ObjectShape, bool) {
	s, ok := r.objects[name]
	return s, ok
}

// List returns the list shape declared as name.
func (r *Registry) List(name string) (*shapejson.ListShape, bool) {
	s, ok := r.lists[name]
	return s, ok
}

// Type resolves a built-in type name or a declared shape.
func (r *Registry) Type(name string) (shapejson.Type, bool) {
	if t, ok := builtin[name]; ok {
		return t, true
	}
	if s, ok := r.objects[name]; ok {
		return s.Type(), true
	}
	if s, ok := r.lists[name]; ok {
		return s.Type(), true
	}
	return shapejson.Type{}, false
}

// Names returns the declared shape names in file order.
func (r *Registry) Names() []string { return slices.Clone(r.order) }
