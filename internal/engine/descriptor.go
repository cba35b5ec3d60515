package engine

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	gojson "github.com/goccy/go-json"
)

// DescriptorType enumerates the JSON value kinds a descriptor can describe.
type DescriptorType int

const (
	TypeNull DescriptorType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeObject
	TypeList
)

func (t DescriptorType) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// Descriptor is a transient node mirroring the structure of one value. It is
// both the template used while decoding JSON text and the tree rendered when
// encoding.
type Descriptor interface {
	Type() DescriptorType
	// Clone returns an independent copy, used to stamp out list items from
	// an item template.
	Clone() Descriptor

	decode(src TokenSource, tok Token, path string) error
	encode(b *bytes.Buffer) error
}

// ---- scalars ----

// NullDescriptor represents JSON null.
type NullDescriptor struct{}

func (*NullDescriptor) Type() DescriptorType { return TypeNull }
func (*NullDescriptor) Clone() Descriptor    { return &NullDescriptor{} }

func (*NullDescriptor) decode(_ TokenSource, tok Token, path string) error {
	if tok.Kind != KindNull {
		return mismatch(path, "null", tok)
	}
	return nil
}

func (*NullDescriptor) encode(b *bytes.Buffer) error {
	b.WriteString("null")
	return nil
}

// BoolDescriptor holds a JSON boolean.
type BoolDescriptor struct{ Value bool }

func (*BoolDescriptor) Type() DescriptorType { return TypeBool }
func (d *BoolDescriptor) Clone() Descriptor  { return &BoolDescriptor{Value: d.Value} }

func (d *BoolDescriptor) decode(_ TokenSource, tok Token, path string) error {
	if tok.Kind != KindBool {
		return mismatch(path, "bool", tok)
	}
	d.Value = tok.Bool
	return nil
}

func (d *BoolDescriptor) encode(b *bytes.Buffer) error {
	b.WriteString(strconv.FormatBool(d.Value))
	return nil
}

// IntDescriptor holds a JSON number without fraction or exponent.
type IntDescriptor struct{ Value int64 }

func (*IntDescriptor) Type() DescriptorType { return TypeInt }
func (d *IntDescriptor) Clone() Descriptor  { return &IntDescriptor{Value: d.Value} }

func (d *IntDescriptor) decode(_ TokenSource, tok Token, path string) error {
	if tok.Kind != KindNumber || isFloatText(tok.Number) {
		return mismatch(path, "int", tok)
	}
	n, err := strconv.ParseInt(tok.Number, 10, 64)
	if err != nil {
		return IssueError{SimpleIssue{
			Code:    CodeInvalidType,
			Path:    normalizeIssuePath(path),
			Message: "integer " + tok.Number + " out of range",
			Params:  map[string]string{"expected": "int", "got": tok.Number},
		}}
	}
	d.Value = n
	return nil
}

func (d *IntDescriptor) encode(b *bytes.Buffer) error {
	b.WriteString(strconv.FormatInt(d.Value, 10))
	return nil
}

// FloatDescriptor holds any JSON number.
type FloatDescriptor struct{ Value float64 }

func (*FloatDescriptor) Type() DescriptorType { return TypeFloat }
func (d *FloatDescriptor) Clone() Descriptor  { return &FloatDescriptor{Value: d.Value} }

func (d *FloatDescriptor) decode(_ TokenSource, tok Token, path string) error {
	if tok.Kind != KindNumber {
		return mismatch(path, "float", tok)
	}
	f, err := strconv.ParseFloat(tok.Number, 64)
	if err != nil {
		return IssueError{SimpleIssue{
			Code:    CodeInvalidType,
			Path:    normalizeIssuePath(path),
			Message: "number " + tok.Number + " out of range",
			Params:  map[string]string{"expected": "float", "got": tok.Number},
		}}
	}
	d.Value = f
	return nil
}

func (d *FloatDescriptor) encode(b *bytes.Buffer) error {
	if math.IsNaN(d.Value) || math.IsInf(d.Value, 0) {
		return IssueError{SimpleIssue{
			Code:    CodeInvalidType,
			Path:    "/",
			Message: "non-finite float cannot be written as JSON",
			Params:  map[string]string{"expected": "float", "got": strconv.FormatFloat(d.Value, 'g', -1, 64)},
		}}
	}
	b.WriteString(strconv.FormatFloat(d.Value, 'g', -1, 64))
	return nil
}

// StringDescriptor holds a JSON string.
type StringDescriptor struct{ Value string }

func (*StringDescriptor) Type() DescriptorType { return TypeString }
func (d *StringDescriptor) Clone() Descriptor  { return &StringDescriptor{Value: d.Value} }

func (d *StringDescriptor) decode(_ TokenSource, tok Token, path string) error {
	if tok.Kind != KindString {
		return mismatch(path, "string", tok)
	}
	d.Value = tok.String
	return nil
}

func (d *StringDescriptor) encode(b *bytes.Buffer) error { return writeString(b, d.Value) }

// ---- object ----

// Member is one named entry of an ObjectDescriptor.
type Member struct {
	Name       string
	Descriptor Descriptor
	Mandatory  bool
}

// ObjectDescriptor describes a JSON object whose members keep insertion order.
type ObjectDescriptor struct {
	names     []string
	members   []Descriptor
	mandatory []bool

	// AllowUndefinedMembers admits members absent from the template while
	// decoding. When false such members fail with unknown_key.
	AllowUndefinedMembers bool
	// Replace drops template members the input does not mention instead of
	// keeping their template values.
	Replace bool
}

// NewObjectDescriptor returns an empty object descriptor admitting undefined members.
func NewObjectDescriptor() *ObjectDescriptor {
	return &ObjectDescriptor{AllowUndefinedMembers: true}
}

func (*ObjectDescriptor) Type() DescriptorType { return TypeObject }

// AddMember appends a member, or replaces the descriptor of an existing one.
func (o *ObjectDescriptor) AddMember(name string, d Descriptor, mandatory bool) {
	if i := o.find(name); i >= 0 {
		o.members[i] = d
		o.mandatory[i] = mandatory
		return
	}
	o.names = append(o.names, name)
	o.members = append(o.members, d)
	o.mandatory = append(o.mandatory, mandatory)
}

// Members returns the members in insertion order.
func (o *ObjectDescriptor) Members() []Member {
	out := make([]Member, len(o.names))
	for i := range o.names {
		out[i] = Member{Name: o.names[i], Descriptor: o.members[i], Mandatory: o.mandatory[i]}
	}
	return out
}

// Lookup returns the descriptor of a member.
func (o *ObjectDescriptor) Lookup(name string) (Descriptor, bool) {
	i := o.find(name)
	if i < 0 {
		return nil, false
	}
	return o.members[i], true
}

func (o *ObjectDescriptor) Len() int { return len(o.names) }

func (o *ObjectDescriptor) find(name string) int {
	for i, n := range o.names {
		if n == name {
			return i
		}
	}
	return -1
}

func (o *ObjectDescriptor) Clone() Descriptor {
	c := &ObjectDescriptor{
		names:                 append([]string(nil), o.names...),
		members:               make([]Descriptor, len(o.members)),
		mandatory:             append([]bool(nil), o.mandatory...),
		AllowUndefinedMembers: o.AllowUndefinedMembers,
		Replace:               o.Replace,
	}
	for i, m := range o.members {
		c.members[i] = m.Clone()
	}
	return c
}

func (o *ObjectDescriptor) decode(src TokenSource, tok Token, path string) error {
	if tok.Kind != KindBeginObject {
		return mismatch(path, "object", tok)
	}
	declared := len(o.names)
	seen := make([]bool, declared)
	for {
		kt, err := next(src)
		if err != nil {
			return err
		}
		if kt.Kind == KindEndObject {
			break
		}
		if kt.Kind != KindKey {
			return syntaxIssue(path, "expected member name, found "+tokenName(kt))
		}
		name := kt.String
		mpath := joinJSONPointer(path, name)
		vt, err := next(src)
		if err != nil {
			return err
		}
		i := o.find(name)
		if i < 0 {
			if !o.AllowUndefinedMembers {
				return IssueError{SimpleIssue{
					Code:    CodeUnknownKey,
					Path:    mpath,
					Message: "undefined member " + strconv.Quote(name),
					Params:  map[string]string{"member": name},
				}}
			}
			v := &VariantDescriptor{}
			if err := v.decode(src, vt, mpath); err != nil {
				return err
			}
			o.names = append(o.names, name)
			o.members = append(o.members, v.Value())
			o.mandatory = append(o.mandatory, false)
			seen = append(seen, true)
			continue
		}
		tmpl := o.members[i]
		if i >= declared {
			// repeated undefined member: last occurrence wins with its own kind
			tmpl = &VariantDescriptor{}
		}
		d, err := decodeMember(src, vt, mpath, tmpl, o.mandatory[i])
		if err != nil {
			return err
		}
		o.members[i] = d
		seen[i] = true
	}
	for i, m := range o.mandatory {
		if m && !seen[i] {
			return IssueError{SimpleIssue{
				Code:    CodeRequired,
				Path:    joinJSONPointer(path, o.names[i]),
				Message: "mandatory member " + strconv.Quote(o.names[i]) + " missing",
				Params:  map[string]string{"member": o.names[i]},
			}}
		}
	}
	if o.Replace {
		o.dropUnseen(seen)
	}
	return nil
}

func (o *ObjectDescriptor) dropUnseen(seen []bool) {
	n := 0
	for i := range o.names {
		if seen[i] {
			o.names[n], o.members[n], o.mandatory[n] = o.names[i], o.members[i], o.mandatory[i]
			n++
		}
	}
	o.names, o.members, o.mandatory = o.names[:n], o.members[:n], o.mandatory[:n]
}

// decodeMember parses the value of a declared member against its template.
// Templates without a concrete type (null, variant) accept any value.
func decodeMember(src TokenSource, tok Token, path string, tmpl Descriptor, mandatory bool) (Descriptor, error) {
	if tok.Kind == KindNull {
		if mandatory {
			return nil, IssueError{SimpleIssue{
				Code:    CodeRequired,
				Path:    path,
				Message: "mandatory member must not be null",
				Params:  map[string]string{"member": lastPointerToken(path)},
			}}
		}
		return &NullDescriptor{}, nil
	}
	switch tmpl.(type) {
	case *NullDescriptor, *VariantDescriptor:
		v := &VariantDescriptor{}
		if err := v.decode(src, tok, path); err != nil {
			return nil, err
		}
		return v.Value(), nil
	}
	if err := tmpl.decode(src, tok, path); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (o *ObjectDescriptor) encode(b *bytes.Buffer) error {
	b.WriteByte('{')
	for i, name := range o.names {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := writeString(b, name); err != nil {
			return err
		}
		b.WriteByte(':')
		if err := o.members[i].encode(b); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

// ---- list ----

// ListDescriptor describes a JSON array, optionally homogeneous.
type ListDescriptor struct {
	items []Descriptor
	item  Descriptor

	// AllowNullValues admits null items while decoding.
	AllowNullValues bool
}

// NewListDescriptor returns an empty list descriptor admitting nulls.
func NewListDescriptor() *ListDescriptor { return &ListDescriptor{AllowNullValues: true} }

func (*ListDescriptor) Type() DescriptorType { return TypeList }

func (l *ListDescriptor) Append(d Descriptor)        { l.items = append(l.items, d) }
func (l *ListDescriptor) At(i int) Descriptor        { return l.items[i] }
func (l *ListDescriptor) Len() int                   { return len(l.items) }
func (l *ListDescriptor) ItemDescriptor() Descriptor { return l.item }

// SetItemDescriptor declares the template every decoded item must match.
func (l *ListDescriptor) SetItemDescriptor(d Descriptor) { l.item = d }

func (l *ListDescriptor) Clone() Descriptor {
	c := &ListDescriptor{items: make([]Descriptor, len(l.items)), AllowNullValues: l.AllowNullValues}
	for i, it := range l.items {
		c.items[i] = it.Clone()
	}
	if l.item != nil {
		c.item = l.item.Clone()
	}
	return c
}

func (l *ListDescriptor) decode(src TokenSource, tok Token, path string) error {
	if tok.Kind != KindBeginArray {
		return mismatch(path, "list", tok)
	}
	l.items = nil
	for idx := 0; ; idx++ {
		t, err := next(src)
		if err != nil {
			return err
		}
		if t.Kind == KindEndArray {
			return nil
		}
		ipath := joinJSONPointer(path, strconv.Itoa(idx))
		if t.Kind == KindNull {
			if !l.AllowNullValues {
				return IssueError{SimpleIssue{
					Code:    CodeNullNotAllowed,
					Path:    ipath,
					Message: "list does not allow null values",
				}}
			}
			l.items = append(l.items, &NullDescriptor{})
			continue
		}
		var d Descriptor
		switch l.item.(type) {
		case nil, *NullDescriptor, *VariantDescriptor:
			v := &VariantDescriptor{}
			if err := v.decode(src, t, ipath); err != nil {
				return err
			}
			d = v.Value()
		default:
			d = l.item.Clone()
			if err := d.decode(src, t, ipath); err != nil {
				return err
			}
		}
		l.items = append(l.items, d)
	}
}

func (l *ListDescriptor) encode(b *bytes.Buffer) error {
	b.WriteByte('[')
	for i, it := range l.items {
		if i > 0 {
			b.WriteByte(',')
		}
		if err := it.encode(b); err != nil {
			return err
		}
	}
	b.WriteByte(']')
	return nil
}

// ---- variant ----

// VariantDescriptor resolves its concrete kind from the input while decoding.
type VariantDescriptor struct{ value Descriptor }

// Value returns the concrete descriptor, a NullDescriptor before decoding.
func (v *VariantDescriptor) Value() Descriptor {
	if v.value == nil {
		return &NullDescriptor{}
	}
	return v.value
}

func (v *VariantDescriptor) Type() DescriptorType { return v.Value().Type() }

func (v *VariantDescriptor) Clone() Descriptor {
	if v.value == nil {
		return &VariantDescriptor{}
	}
	return &VariantDescriptor{value: v.value.Clone()}
}

func (v *VariantDescriptor) decode(src TokenSource, tok Token, path string) error {
	var d Descriptor
	switch tok.Kind {
	case KindBeginObject:
		d = NewObjectDescriptor()
	case KindBeginArray:
		d = NewListDescriptor()
	case KindString:
		d = &StringDescriptor{}
	case KindBool:
		d = &BoolDescriptor{}
	case KindNull:
		d = &NullDescriptor{}
	case KindNumber:
		d = &FloatDescriptor{}
		if !isFloatText(tok.Number) {
			if _, err := strconv.ParseInt(tok.Number, 10, 64); err == nil {
				d = &IntDescriptor{}
			}
		}
	default:
		return syntaxIssue(path, "unexpected "+tokenName(tok))
	}
	if err := d.decode(src, tok, path); err != nil {
		return err
	}
	v.value = d
	return nil
}

func (v *VariantDescriptor) encode(b *bytes.Buffer) error { return v.Value().encode(b) }

// ---- helpers ----

func next(src TokenSource) (Token, error) {
	t, err := src.NextToken()
	if err != nil {
		if isEOF(err) {
			return Token{}, ErrUnexpectedEnd
		}
		return Token{}, err
	}
	return t, nil
}

func isFloatText(num string) bool { return strings.ContainsAny(num, ".eE") }

func tokenName(t Token) string {
	switch t.Kind {
	case KindBeginObject:
		return "object"
	case KindBeginArray:
		return "list"
	case KindString:
		return "string"
	case KindNumber:
		if isFloatText(t.Number) {
			return "float"
		}
		return "int"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindKey:
		return "member name"
	case KindEndObject:
		return "end of object"
	case KindEndArray:
		return "end of list"
	default:
		return "token"
	}
}

func mismatch(path, expected string, tok Token) error {
	got := tokenName(tok)
	return IssueError{SimpleIssue{
		Code:    CodeInvalidType,
		Path:    normalizeIssuePath(path),
		Message: "expected " + expected + ", received " + got,
		Params:  map[string]string{"expected": expected, "got": got},
	}}
}

func syntaxIssue(path, msg string) error {
	return IssueError{SimpleIssue{Code: CodeParseError, Path: normalizeIssuePath(path), Message: msg}}
}

func writeString(b *bytes.Buffer, s string) error {
	q, err := gojson.MarshalWithOption(s, gojson.DisableHTMLEscape())
	if err != nil {
		return err
	}
	b.Write(q)
	return nil
}
