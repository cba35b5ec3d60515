package shapejson

import (
	"io"
	"sync"

	eng "github.com/reoring/shapejson/internal/engine"
	gojsonsrc "github.com/reoring/shapejson/source/gojson"
	jsonsrc "github.com/reoring/shapejson/source/json"
)

// TokenSource yields the JSON tokens consumed by the decoder. Custom drivers
// return implementations of it.
type TokenSource = eng.TokenSource

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token = eng.Token

// TokenKind enumerates JSON token kinds.
type TokenKind = eng.Kind

const (
	TokenBeginObject = eng.KindBeginObject
	TokenEndObject   = eng.KindEndObject
	TokenBeginArray  = eng.KindBeginArray
	TokenEndArray    = eng.KindEndArray
	TokenKey         = eng.KindKey
	TokenString      = eng.KindString
	TokenNumber      = eng.KindNumber
	TokenBool        = eng.KindBool
	TokenNull        = eng.KindNull
)

// JSONDriver converts JSON input into a TokenSource via a pluggable SPI. The
// default implementation is based on goccy/go-json and may be swapped with
// SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) TokenSource
	NewBytes(b []byte) TokenSource
	Name() string
}

type builtinDriver struct {
	name   string
	reader func(io.Reader) eng.TokenSource
	bytes  func([]byte) eng.TokenSource
}

func (d builtinDriver) NewReader(r io.Reader) TokenSource { return d.reader(r) }
func (d builtinDriver) NewBytes(b []byte) TokenSource     { return d.bytes(b) }
func (d builtinDriver) Name() string                      { return d.name }

var (
	goJSONDriver = builtinDriver{name: "go-json", reader: gojsonsrc.NewReader, bytes: gojsonsrc.NewBytes}
	stdlibDriver = builtinDriver{name: "encoding/json", reader: jsonsrc.NewReader, bytes: jsonsrc.NewBytes}
)

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = goJSONDriver
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the default go-json backed driver.
func UseDefaultJSONDriver() { SetJSONDriver(goJSONDriver) }

// UseStdlibJSONDriver selects the encoding/json backed driver, which reports
// byte offsets in issues.
func UseStdlibJSONDriver() { SetJSONDriver(stdlibDriver) }

// JSONDriverName returns the name of the active driver.
func JSONDriverName() string { return getJSONDriver().Name() }

func getJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// newSource opens text with the active driver, wrapped with enforcement when
// opt asks for any.
func newSource(text []byte, opt ParseOpt) TokenSource {
	src := getJSONDriver().NewBytes(text)
	if !opt.enforced() {
		return src
	}
	warn := opt.Strictness.OnDuplicateKey == Warn
	return eng.WrapWithEnforcement(src, eng.EnforceOptions{
		OnDuplicate: toEngineDup(opt.Strictness.OnDuplicateKey),
		MaxDepth:    opt.MaxDepth,
		MaxBytes:    opt.MaxBytes,
		IssueSink: func(si eng.SimpleIssue) {
			if warn && si.Code == CodeDuplicateKey {
				logger().Warn("duplicate member, last occurrence wins", "path", si.Path)
			}
		},
	})
}
