// Package api is the public entry point: it sequences request
// building, the transport call, status checking, content-type
// classification, and response normalization into one operation.
package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/restkit/packages/contenttype"
	"github.com/abdul-hamid-achik/restkit/packages/normalize"
	"github.com/abdul-hamid-achik/restkit/packages/request"
	"github.com/abdul-hamid-achik/restkit/packages/transport"
)

// Response is what the orchestrator needs from a transport response:
// the normalizer's body-reading surface plus status and timing.
type Response interface {
	normalize.Response
	Code() int
	IsSuccess() bool
	Elapsed() time.Duration
}

// Doer sends one prepared request. The default implementation wraps
// transport.Client; tests and other platforms can swap in their own.
type Doer interface {
	Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error)
}

// CallInfo is handed to the observer hook after each attempted call.
// Status is 0 when the transport itself failed.
type CallInfo struct {
	Method   string
	URL      string
	Status   int
	Duration time.Duration
	Err      error
}

type Client struct {
	doer       Doer
	classifier *contenttype.Classifier
	marker     normalize.FailureMarker
	fields     []string
	binary     request.BinaryFunc
	observer   func(CallInfo)
}

type Option func(*Client)

// WithDoer replaces the transport collaborator.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithTransport uses a configured transport.Client.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		c.doer = httpDoer{client: t}
	}
}

// WithRules overrides the content-type classification table.
func WithRules(rules ...contenttype.Rule) Option {
	return func(c *Client) {
		c.classifier = contenttype.NewClassifier(rules...)
	}
}

// WithFailureMarker overrides the sentinel that flags logical failures
// inside successful JSON bodies.
func WithFailureMarker(marker normalize.FailureMarker) Option {
	return func(c *Client) {
		c.marker = marker
	}
}

// WithMessageFields overrides the ordered probe list for error-message
// extraction.
func WithMessageFields(fields ...string) Option {
	return func(c *Client) {
		if len(fields) > 0 {
			c.fields = fields
		}
	}
}

// WithBinaryFunc injects the platform predicate used during multipart
// encoding.
func WithBinaryFunc(fn request.BinaryFunc) Option {
	return func(c *Client) {
		c.binary = fn
	}
}

// WithObserver registers a hook invoked once per call with method,
// URL, status, and timing. Used by the CLI for history recording.
func WithObserver(fn func(CallInfo)) Option {
	return func(c *Client) {
		c.observer = fn
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		doer:       httpDoer{client: transport.NewClient()},
		classifier: contenttype.NewClassifier(),
		marker:     normalize.DefaultFailureMarker,
		fields:     normalize.DefaultMessageFields,
		binary:     request.DefaultBinary,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call executes one request/response cycle: validate, build, send,
// check status, classify, normalize. Every failure path surfaces as a
// *normalize.Error; there are no retries and no state shared between
// calls.
func (c *Client) Call(ctx context.Context, spec request.Spec) (any, error) {
	if strings.TrimSpace(spec.BaseURL) == "" {
		return nil, normalize.NewError("base URL is required", 0, nil)
	}

	prepared, err := request.Prepare(spec, request.WithBinaryFunc(c.binary))
	if err != nil {
		return nil, err
	}

	url := spec.URL()
	resp, err := c.doer.Do(ctx, prepared.Method, url, prepared.Headers, prepared.Body)
	if err != nil {
		c.observe(CallInfo{Method: prepared.Method, URL: url, Err: err})
		return nil, err
	}

	c.observe(CallInfo{
		Method:   prepared.Method,
		URL:      url,
		Status:   resp.Code(),
		Duration: resp.Elapsed(),
	})

	if !resp.IsSuccess() {
		return nil, c.errorFromResponse(resp)
	}

	category := spec.ResponseType
	if category == contenttype.Auto {
		category = c.classifier.Classify(resp.Header("Content-Type"))
	}
	return normalize.ParseSuccessWith(resp, category, c.marker, c.fields)
}

// errorFromResponse builds the uniform error for a non-success status.
// Body-read failures are swallowed to a nil payload so they never mask
// the primary HTTP error.
func (c *Client) errorFromResponse(resp Response) error {
	status := resp.Code()

	var data any
	if strings.Contains(strings.ToLower(resp.Header("Content-Type")), "json") {
		if v, err := resp.BodyJSON(); err == nil {
			data = v
		}
	} else if body := resp.BodyString(); body != "" {
		data = body
	}

	fallback := fmt.Sprintf("API error (%d)", status)
	message := normalize.ExtractErrorMessageFrom(data, fallback, c.fields)
	return normalize.NewError(message, status, data)
}

func (c *Client) observe(info CallInfo) {
	if c.observer != nil {
		c.observer(info)
	}
}

// httpDoer adapts transport.Client to the Doer interface.
type httpDoer struct {
	client *transport.Client
}

func (d httpDoer) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (Response, error) {
	resp, err := d.client.Do(ctx, method, url, headers, body)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
