package transport

import (
	"encoding/json"
	"strings"
	"time"
)

// Response is a fully buffered HTTP response. Its readers satisfy the
// surface the normalizer consumes.
type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

// Code returns the HTTP status code.
func (r *Response) Code() int {
	return r.StatusCode
}

// Elapsed returns how long the request/response cycle took.
func (r *Response) Elapsed() time.Duration {
	return r.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

func (r *Response) BodyJSON() (any, error) {
	var result any
	if err := json.Unmarshal(r.Body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// BodyRaw returns the raw response bytes. It never fails on a buffered
// response; the error return exists for streaming transports.
func (r *Response) BodyRaw() ([]byte, error) {
	return r.Body, nil
}

// Header looks up a header case-insensitively.
func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(strings.ToLower(r.ContentType()), "json")
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response) IsServerError() bool {
	return r.StatusCode >= 500
}

func (r *Response) DurationMs() int64 {
	return r.Duration.Milliseconds()
}
