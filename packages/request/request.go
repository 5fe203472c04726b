// Package request builds concrete headers and bodies from declarative
// call specs, including multipart form encoding for binary payloads.
package request

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/abdul-hamid-achik/restkit/packages/contenttype"
	"github.com/abdul-hamid-achik/restkit/packages/normalize"
)

// Spec declares a single API call. BaseURL is required; everything
// else has a zero-value default (GET, empty payload, no auth, JSON
// body, auto-classified response).
type Spec struct {
	BaseURL      string
	Endpoint     string
	Method       string
	Payload      map[string]any
	RequiresAuth bool
	Token        string
	IsFormData   bool
	ResponseType contenttype.Category
}

// URL joins base URL and endpoint by plain concatenation. No path
// normalization or encoding is applied.
func (s Spec) URL() string {
	return s.BaseURL + s.Endpoint
}

// Prepared is the deterministic result of building a Spec: final
// headers and the serialized body. Body is nil for GET requests.
type Prepared struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

// Option configures request preparation.
type Option func(*builder)

// WithBinaryFunc injects the platform predicate that recognizes
// binary payload values during multipart encoding.
func WithBinaryFunc(fn BinaryFunc) Option {
	return func(b *builder) {
		if fn != nil {
			b.binary = fn
		}
	}
}

type builder struct {
	binary BinaryFunc
}

// Prepare turns a Spec into headers and a body. It fails with a
// validation error when RequiresAuth is set without a token.
func Prepare(spec Spec, opts ...Option) (*Prepared, error) {
	b := &builder{binary: DefaultBinary}
	for _, opt := range opts {
		opt(b)
	}

	if spec.RequiresAuth && strings.TrimSpace(spec.Token) == "" {
		return nil, normalize.NewError("authentication required but no token provided", 0, nil)
	}

	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodGet
	}

	p := &Prepared{
		Method:  method,
		Headers: make(map[string]string),
	}

	if !spec.IsFormData {
		p.Headers["Content-Type"] = "application/json"
	}
	if spec.RequiresAuth {
		p.Headers["Authorization"] = "Bearer " + spec.Token
	}

	// GET requests never carry a body, form-data or not.
	if method == http.MethodGet {
		return p, nil
	}

	if spec.IsFormData {
		body, ct, err := b.encodeMultipart(spec.Payload)
		if err != nil {
			return nil, err
		}
		p.Body = body
		p.Headers["Content-Type"] = ct
		return p, nil
	}

	payload := spec.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	p.Body = body
	return p, nil
}
