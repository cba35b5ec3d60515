// Package shapejson binds runtime-defined data shapes to JSON.
//
// It provides:
//
//   - A closed value model (Value, Object, List) with continuous type checks on every mutation
//   - Shapes synthesized at runtime (DefineObject, DefineList) with defaults, mandatory members,
//     undefined-member and null policies
//   - Lossless conversion to and from canonical JSON text, files and URLs
//   - Projection over lists of objects (Get, Map, Select, Where) plus expr-lang queries
//   - A stable error model via Issues (JSON Pointer, code, message) matched with errors.Is
//
// Design policy:
//
//   - Keep only public APIs in the root package; the descriptor engine lives under internal/.
//   - Token sources are pluggable through JSONDriver; go-json is the default.
//   - Loads build a new tree and commit it only on success, so failed loads leave values untouched.
//
// Typical usage:
//
//	coords := shapejson.DefineObject("Coordinates").
//		Field("x", shapejson.FloatType).Required().
//		Field("y", shapejson.FloatType).Required().
//		MustBuild()
//	c, err := coords.Parse([]byte(`{"x":1.5,"y":0}`))
//	s, err := c.ToJSON()
package shapejson
