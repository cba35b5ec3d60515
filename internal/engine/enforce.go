package engine

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// DuplicateStrictness controls how repeated member names are treated.
type DuplicateStrictness int

const (
	// DupIgnore lets the last occurrence win silently.
	DupIgnore DuplicateStrictness = iota
	// DupWarn lets the last occurrence win and reports an issue to the sink.
	DupWarn
	// DupError fails the parse at the repeated name.
	DupError
)

// EnforceOptions controls the checks applied by WrapWithEnforcement.
type EnforceOptions struct {
	OnDuplicate DuplicateStrictness
	MaxDepth    int
	MaxBytes    int64
	// IssueSink receives every issue detected, fatal or not.
	IssueSink func(SimpleIssue)
}

// WrapWithEnforcement returns a TokenSource that applies the duplicate member
// policy and the depth and byte limits while tokens stream through.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	return &enforcingSource{inner: inner, opt: opt}
}

type frame struct {
	object  bool
	path    string
	keys    map[string]struct{}
	pending string // member name awaiting its value
	index   int
}

type enforcingSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingSource) Location() int64 { return e.inner.Location() }

func (e *enforcingSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	path := e.valuePath(tok)

	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		e.stack = append(e.stack, frame{
			object: tok.Kind == KindBeginObject,
			path:   path,
			keys:   map[string]struct{}{},
		})
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, e.fail(SimpleIssue{Code: CodeParseError, Path: normalizeIssuePath(path), Message: "max depth exceeded"})
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	case KindKey:
		if n := len(e.stack); n > 0 {
			top := &e.stack[n-1]
			if _, dup := top.keys[tok.String]; dup && e.opt.OnDuplicate != DupIgnore {
				si := SimpleIssue{
					Code:    CodeDuplicateKey,
					Path:    joinJSONPointer(top.path, tok.String),
					Message: "member " + strconv.Quote(tok.String) + " duplicated",
					Params:  map[string]string{"member": tok.String},
				}
				if e.opt.OnDuplicate == DupError {
					return Token{}, e.fail(si)
				}
				e.report(si)
			}
			top.keys[tok.String] = struct{}{}
			top.pending = tok.String
		}
	}

	if e.opt.MaxBytes > 0 && e.Location() > e.opt.MaxBytes {
		return Token{}, e.fail(SimpleIssue{Code: CodeTruncated, Path: normalizeIssuePath(path), Message: "max bytes exceeded"})
	}
	return tok, nil
}

// valuePath returns the JSON pointer of the value tok starts or belongs to.
func (e *enforcingSource) valuePath(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch tok.Kind {
	case KindKey, KindEndObject, KindEndArray:
		return top.path
	}
	if top.object {
		return joinJSONPointer(top.path, top.pending)
	}
	p := joinJSONPointer(top.path, strconv.Itoa(top.index))
	top.index++
	return p
}

func (e *enforcingSource) report(si SimpleIssue) {
	if e.opt.IssueSink != nil {
		e.opt.IssueSink(si)
	}
}

func (e *enforcingSource) fail(si SimpleIssue) error {
	e.report(si)
	return IssueError{si}
}

// ---- JSON pointer helpers ----

func normalizeIssuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func joinJSONPointer(base, token string) string {
	if base == "/" {
		base = ""
	}
	return base + "/" + pointerEscaper.Replace(token)
}

func lastPointerToken(p string) string {
	i := strings.LastIndexByte(p, '/')
	if i < 0 {
		return p
	}
	return pointerUnescaper.Replace(p[i+1:])
}

func isEOF(err error) bool { return errors.Is(err, io.EOF) }
