package shapejson

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/shapejson/i18n"
	eng "github.com/reoring/shapejson/internal/engine"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType    = "invalid_type"
	CodeEmptyInference = "empty_inference"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeNullNotAllowed = "null_not_allowed"
	CodeDuplicateKey   = "duplicate_key"
	CodeMemberNotFound = "member_not_found"
	CodeOutOfRange     = "out_of_range"
	CodeNotFound       = "not_found"
	CodeTransport      = "transport"
	CodeParseError     = "parse_error"
	CodeTruncated      = "truncated"
)

// Error categories. Every Issues error matches the sentinel of each of its
// issue codes under errors.Is.
var (
	// ErrTypeMismatch: a value or type is not admissible, or does not match the declared type.
	ErrTypeMismatch = errors.New("shapejson: type mismatch")
	// ErrStructural: mandatory, undefined-member or null rules were violated.
	ErrStructural = errors.New("shapejson: structural validation failed")
	// ErrMemberNotFound: a projection or mandatory declaration named an undeclared member.
	ErrMemberNotFound = errors.New("shapejson: member not found")
	// ErrNotFound: a file does not exist.
	ErrNotFound = errors.New("shapejson: not found")
	// ErrTransport: a URL fetch failed or returned a non-success status.
	ErrTransport = errors.New("shapejson: transport failure")
	// ErrParse: the input is not well-formed JSON or exceeds the configured limits.
	ErrParse = errors.New("shapejson: parse error")
	// ErrOutOfRange: a list index is outside the list.
	ErrOutOfRange = errors.New("shapejson: index out of range")
)

var codeCategory = map[string]error{
	CodeInvalidType:    ErrTypeMismatch,
	CodeEmptyInference: ErrTypeMismatch,
	CodeRequired:       ErrStructural,
	CodeUnknownKey:     ErrStructural,
	CodeNullNotAllowed: ErrStructural,
	CodeDuplicateKey:   ErrParse,
	CodeMemberNotFound: ErrMemberNotFound,
	CodeOutOfRange:     ErrOutOfRange,
	CodeNotFound:       ErrNotFound,
	CodeTransport:      ErrTransport,
	CodeParseError:     ErrParse,
	CodeTruncated:      ErrParse,
}

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input source (-1 when unknown).
	// Params carries structured parameters (e.g., {"expected":"int", "got":"string"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path: invalid type: expected int, got string
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" {
			b.WriteString(": ")
			b.WriteString(it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Is reports whether any issue belongs to the category target.
func (iss Issues) Is(target error) bool {
	for _, it := range iss {
		if codeCategory[it.Code] == target {
			return true
		}
	}
	return false
}

// Unwrap exposes the underlying causes so errors.Is/As reach them.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// newIssue builds a single-issue error with a translated message.
func newIssue(code, path string, params map[string]string, cause error) Issues {
	if path == "" {
		path = "/"
	}
	it := Issue{Path: path, Code: code, Message: i18n.T(code, params), Cause: cause, Offset: -1}
	if len(params) > 0 {
		it.Params = make(map[string]any, len(params))
		for k, v := range params {
			it.Params[k] = v
		}
	}
	return Issues{it}
}

func typeMismatch(path, expected, got string) error {
	return newIssue(CodeInvalidType, path, map[string]string{"expected": expected, "got": got}, nil)
}

func memberNotFound(path, member string) error {
	return newIssue(CodeMemberNotFound, path, map[string]string{"member": member}, nil)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// joinPath appends a reference token to a JSON Pointer.
func joinPath(base, token string) string {
	if base == "/" {
		base = ""
	}
	return base + "/" + pointerEscaper.Replace(token)
}

// fromEngineError converts engine failures into Issues. offset is the source
// location at the time of failure, -1 when unknown.
func fromEngineError(err error, offset int64) error {
	if err == nil {
		return nil
	}
	var ie eng.IssueError
	var iss Issues
	switch {
	case errors.As(err, &ie):
		iss = newIssue(ie.Code, ie.Path, ie.Params, nil)
		if len(ie.Params) == 0 {
			iss[0].Message = ie.Message
		}
	default:
		iss = newIssue(CodeParseError, "/", nil, err)
		iss[0].Message = err.Error()
	}
	iss[0].Offset = offset
	return iss
}
