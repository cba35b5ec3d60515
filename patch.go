package shapejson

import jsonpatch "github.com/evanphx/json-patch"

// ApplyPatch applies an RFC 6902 JSON Patch to o's JSON form and loads the
// result into a new object: a fresh instance for shaped objects, otherwise a
// generic object with o's member types and flags. Every load rule applies
// again; o itself is not modified.
func (o *Object) ApplyPatch(patch []byte, opts ...ParseOpt) (*Object, error) {
	p, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, patchIssue(err)
	}
	return o.patched(p.Apply, opts)
}

// MergePatch is ApplyPatch for an RFC 7396 JSON Merge Patch.
func (o *Object) MergePatch(patch []byte, opts ...ParseOpt) (*Object, error) {
	return o.patched(func(doc []byte) ([]byte, error) { return jsonpatch.MergePatch(doc, patch) }, opts)
}

func (o *Object) patched(apply func([]byte) ([]byte, error), opts []ParseOpt) (*Object, error) {
	doc, err := o.ToJSON()
	if err != nil {
		return nil, err
	}
	out, err := apply([]byte(doc))
	if err != nil {
		return nil, patchIssue(err)
	}
	if o.shape != nil {
		return o.shape.Parse(out, opts...)
	}
	d, err := toReplacingDescriptor(ObjectValue(o))
	if err != nil {
		return nil, err
	}
	if err := decodeText(d, out, opts); err != nil {
		return nil, err
	}
	return materialize(d, ObjectValue(o)).obj, nil
}

// ApplyPatch applies an RFC 6902 JSON Patch to l's JSON form and loads the
// result into a new list with l's shape, element type and null policy.
func (l *List) ApplyPatch(patch []byte, opts ...ParseOpt) (*List, error) {
	p, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, patchIssue(err)
	}
	doc, err := l.ToJSON()
	if err != nil {
		return nil, err
	}
	out, err := p.Apply([]byte(doc))
	if err != nil {
		return nil, patchIssue(err)
	}
	n := l.blank()
	if err := n.Load(out, opts...); err != nil {
		return nil, err
	}
	return n, nil
}

func patchIssue(err error) error {
	iss := newIssue(CodeParseError, "/", nil, err)
	iss[0].Message = "patch: " + err.Error()
	return iss
}
