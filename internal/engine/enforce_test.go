package engine_test

import (
	"testing"

	eng "github.com/reoring/shapejson/internal/engine"
	jsonsrc "github.com/reoring/shapejson/source/json"
)

func enforced(in string, opt eng.EnforceOptions) eng.TokenSource {
	return eng.WrapWithEnforcement(jsonsrc.NewBytes([]byte(in)), opt)
}

func TestEnforce_Duplicates(t *testing.T) {
	const doc = `{"a":{"b":1,"b":2},"c":[{"d":1,"d":1}]}`

	var seen []string
	src := enforced(doc, eng.EnforceOptions{
		OnDuplicate: eng.DupWarn,
		IssueSink:   func(si eng.SimpleIssue) { seen = append(seen, si.Path) },
	})
	if err := eng.Decode(eng.NewObjectDescriptor(), src); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != "/a/b" || seen[1] != "/c/0/d" {
		t.Fatalf("unexpected reported paths %v", seen)
	}

	err := eng.Decode(eng.NewObjectDescriptor(), enforced(doc, eng.EnforceOptions{OnDuplicate: eng.DupError}))
	if si := issueOf(t, err); si.Code != eng.CodeDuplicateKey || si.Path != "/a/b" || si.Params["member"] != "b" {
		t.Fatalf("unexpected issue %+v", si)
	}

	if err := eng.Decode(eng.NewObjectDescriptor(), enforced(doc, eng.EnforceOptions{})); err != nil {
		t.Fatalf("ignore mode must accept duplicates: %v", err)
	}
}

func TestEnforce_SameNameInSiblingObjects(t *testing.T) {
	src := enforced(`[{"a":1},{"a":2}]`, eng.EnforceOptions{OnDuplicate: eng.DupError})
	if err := eng.Decode(&eng.VariantDescriptor{}, src); err != nil {
		t.Fatalf("member names are scoped per object: %v", err)
	}
}

func TestEnforce_Limits(t *testing.T) {
	err := eng.Decode(&eng.VariantDescriptor{}, enforced(`{"a":{"b":{}}}`, eng.EnforceOptions{MaxDepth: 2}))
	if si := issueOf(t, err); si.Code != eng.CodeParseError || si.Path != "/a/b" {
		t.Fatalf("unexpected depth issue %+v", si)
	}
	err = eng.Decode(&eng.VariantDescriptor{}, enforced(`["aaaa","bbbb","cccc"]`, eng.EnforceOptions{MaxBytes: 8}))
	if si := issueOf(t, err); si.Code != eng.CodeTruncated {
		t.Fatalf("unexpected size issue %+v", si)
	}
}
