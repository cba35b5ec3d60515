// Package middleware validates JSON request bodies against shapes at HTTP
// boundaries.
package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"

	shapejson "github.com/reoring/shapejson"
)

// ctxKeyDecoded is a typed context key for storing decoded bodies.
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a decoded body to the context.
func ContextWithDecoded[T any](ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, v)
}

// DecodedFromContext retrieves a decoded body from context.
func DecodedFromContext[T any](ctx context.Context) (T, bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(T)
	return v, ok
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries.
// - Duplicate keys are errors
// - Bodies are capped at 1 MiB
func DefaultParseOpt() shapejson.ParseOpt {
	return shapejson.ParseOpt{
		Strictness: shapejson.Strictness{OnDuplicateKey: shapejson.Error},
		MaxBytes:   1 << 20,
	}
}

// IssuePayload is the wire form of one issue.
type IssuePayload struct {
	Path    string         `json:"path"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Hint    string         `json:"hint,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []shapejson.Issue) map[string]any {
	out := make([]IssuePayload, len(issues))
	for i, it := range issues {
		out[i] = IssuePayload{Path: it.Path, Code: it.Code, Message: it.Message, Hint: it.Hint, Params: it.Params}
	}
	return map[string]any{"issues": out}
}

// Object validates request bodies against s and stores the *shapejson.Object
// in the request context. Invalid bodies get 400 with an ErrorPayload; bodies
// over opt.MaxBytes get 413.
func Object(s *shapejson.ObjectShape, opt shapejson.ParseOpt) func(http.Handler) http.Handler {
	return decoder(opt, s.Parse)
}

// List is Object for list shapes.
func List(s *shapejson.ListShape, opt shapejson.ParseOpt) func(http.Handler) http.Handler {
	return decoder(opt, s.Parse)
}

func decoder[T any](opt shapejson.ParseOpt, parse func([]byte, ...shapejson.ParseOpt) (T, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body := io.Reader(r.Body)
			if opt.MaxBytes > 0 {
				body = io.LimitReader(r.Body, opt.MaxBytes+1)
			}
			data, err := io.ReadAll(body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			v, err := parse(data, opt)
			if err != nil {
				writeIssues(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(r.Context(), v)))
		})
	}
}

func writeIssues(w http.ResponseWriter, err error) {
	iss, ok := shapejson.AsIssues(err)
	if !ok {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status := http.StatusBadRequest
	if errors.Is(err, shapejson.ErrParse) && iss[0].Code == shapejson.CodeTruncated {
		status = http.StatusRequestEntityTooLarge
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(ErrorPayload(iss))
}
