package shapejson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"

	eng "github.com/reoring/shapejson/internal/engine"
)

// ToJSON renders x as canonical JSON text: members in insertion order, no
// insignificant whitespace, integers without a decimal point and floats in
// shortest round-trip form. x may be anything ValueOf accepts.
func ToJSON(x any) (string, error) {
	v, err := ValueOf(x)
	if err != nil {
		return "", err
	}
	d, err := toDescriptor(v)
	if err != nil {
		return "", err
	}
	out, err := eng.Encode(d)
	if err != nil {
		return "", fromEngineError(err, -1)
	}
	return string(out), nil
}

// Parse reads one JSON value into generic values: objects become generic
// Objects admitting undefined members, arrays become untyped Lists.
func Parse(text []byte, opts ...ParseOpt) (Value, error) {
	d := &eng.VariantDescriptor{}
	if err := decodeText(d, text, opts); err != nil {
		return Value{}, err
	}
	return materialize(d, Null()), nil
}

// ToFile writes ToJSON(x) to path without a trailing newline.
func ToFile(x any, path string) error {
	s, err := ToJSON(x)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return fmt.Errorf("shapejson: write %s: %w", path, err)
	}
	logger().Debug("json written", "path", path, "bytes", len(s))
	return nil
}

// FromFile parses the JSON file at path. A missing file is a not_found issue
// that also matches fs.ErrNotExist.
func FromFile(path string, opts ...ParseOpt) (Value, error) {
	data, err := readFile(path)
	if err != nil {
		return Value{}, err
	}
	return Parse(data, opts...)
}

// FromURL fetches url with GET and parses the body. Any status other than 200
// is a transport issue carrying the status code.
func FromURL(ctx context.Context, url string, opts ...ParseOpt) (Value, error) {
	data, err := fetch(ctx, url)
	if err != nil {
		return Value{}, err
	}
	return Parse(data, opts...)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newIssue(CodeNotFound, "/", map[string]string{"target": path}, err)
		}
		return nil, fmt.Errorf("shapejson: read %s: %w", path, err)
	}
	logger().Debug("json read", "path", path, "bytes", len(data))
	return data, nil
}

var httpClient atomic.Pointer[http.Client]

// SetHTTPClient sets the client used by the FromURL family; nil restores
// http.DefaultClient.
func SetHTTPClient(c *http.Client) { httpClient.Store(c) }

func client() *http.Client {
	if c := httpClient.Load(); c != nil {
		return c
	}
	return http.DefaultClient
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, transportIssue(url, err.Error(), 0, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client().Do(req)
	if err != nil {
		return nil, transportIssue(url, err.Error(), 0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, transportIssue(url, resp.Status, resp.StatusCode, nil)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportIssue(url, err.Error(), resp.StatusCode, err)
	}
	logger().Debug("json fetched", "url", url, "status", resp.StatusCode, "bytes", len(data))
	return data, nil
}

func transportIssue(url, status string, code int, cause error) error {
	iss := newIssue(CodeTransport, "/", map[string]string{"status": status}, cause)
	iss[0].Params["url"] = url
	if code != 0 {
		iss[0].Params["code"] = code
		iss[0].Hint = "HTTP " + strconv.Itoa(code)
	}
	return iss
}

// ToJSON renders o; see the package-level ToJSON.
func (o *Object) ToJSON() (string, error) { return ToJSON(o) }

// ToFile writes o to path as JSON.
func (o *Object) ToFile(path string) error { return ToFile(o, path) }

// ToJSON renders l; see the package-level ToJSON.
func (l *List) ToJSON() (string, error) { return ToJSON(l) }

// ToFile writes l to path as JSON.
func (l *List) ToFile(path string) error { return ToFile(l, path) }

// Parse returns a new instance loaded from text.
func (s *ObjectShape) Parse(text []byte, opts ...ParseOpt) (*Object, error) {
	o := s.New()
	if err := o.Load(text, opts...); err != nil {
		return nil, err
	}
	return o, nil
}

// FromFile returns a new instance loaded from the JSON file at path.
func (s *ObjectShape) FromFile(path string, opts ...ParseOpt) (*Object, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return s.Parse(data, opts...)
}

// FromURL returns a new instance loaded from the JSON document at url.
func (s *ObjectShape) FromURL(ctx context.Context, url string, opts ...ParseOpt) (*Object, error) {
	data, err := fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.Parse(data, opts...)
}

// Parse returns a new instance loaded from text.
func (s *ListShape) Parse(text []byte, opts ...ParseOpt) (*List, error) {
	l := s.New()
	if err := l.Load(text, opts...); err != nil {
		return nil, err
	}
	return l, nil
}

// FromFile returns a new instance loaded from the JSON file at path.
func (s *ListShape) FromFile(path string, opts ...ParseOpt) (*List, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return s.Parse(data, opts...)
}

// FromURL returns a new instance loaded from the JSON document at url.
func (s *ListShape) FromURL(ctx context.Context, url string, opts ...ParseOpt) (*List, error) {
	data, err := fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.Parse(data, opts...)
}
