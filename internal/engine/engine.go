package engine

import (
	"bytes"
	"errors"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
	Params  map[string]string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// Issue codes produced by the engine. They match the public codes of the root package.
const (
	CodeInvalidType    = "invalid_type"
	CodeRequired       = "required"
	CodeUnknownKey     = "unknown_key"
	CodeNullNotAllowed = "null_not_allowed"
	CodeDuplicateKey   = "duplicate_key"
	CodeParseError     = "parse_error"
	CodeTruncated      = "truncated"
)

// ErrUnexpectedEnd reports input that stops in the middle of a value.
var ErrUnexpectedEnd = errors.New("unexpected end of JSON input")

// Decode reads exactly one JSON value from src into d. The descriptor acts as a
// template: typed descriptors reject mismatching input and object/list descriptors
// enforce their structural flags while parsing.
func Decode(d Descriptor, src TokenSource) error {
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ErrUnexpectedEnd
		}
		return err
	}
	if err := d.decode(src, tok, ""); err != nil {
		return err
	}
	extra, err := src.NextToken()
	if err == nil {
		return IssueError{SimpleIssue{
			Code:    CodeParseError,
			Path:    "/",
			Message: "unexpected " + tokenName(extra) + " after top-level value",
		}}
	}
	if !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Encode renders d as canonical JSON text.
func Encode(d Descriptor) ([]byte, error) {
	var b bytes.Buffer
	if err := d.encode(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// String renders d, returning an empty string when d cannot be encoded.
func String(d Descriptor) string {
	out, err := Encode(d)
	if err != nil {
		return ""
	}
	return string(out)
}

// KeyTracker tells member names apart from string values for decoders that
// emit both as plain strings.
type KeyTracker struct {
	// stack holds one entry per open container: true for objects expecting a name.
	stack   []bool
	objects []bool
}

// Open records the start of an object or array.
func (k *KeyTracker) Open(object bool) {
	k.stack = append(k.stack, object)
	k.objects = append(k.objects, object)
}

// Close records the end of the innermost container, which is itself a value.
func (k *KeyTracker) Close() {
	if n := len(k.stack); n > 0 {
		k.stack = k.stack[:n-1]
		k.objects = k.objects[:n-1]
	}
	k.Value()
}

// String classifies a string token, returning KindKey when a member name is expected.
func (k *KeyTracker) String() Kind {
	if n := len(k.stack); n > 0 && k.objects[n-1] && k.stack[n-1] {
		k.stack[n-1] = false
		return KindKey
	}
	k.Value()
	return KindString
}

// Value records a completed value in the innermost container.
func (k *KeyTracker) Value() {
	if n := len(k.stack); n > 0 && k.objects[n-1] {
		k.stack[n-1] = true
	}
}
