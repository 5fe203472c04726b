// Package normalize turns transport responses into typed values and
// arbitrary error payloads into human-readable messages.
package normalize

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/abdul-hamid-achik/restkit/packages/contenttype"
	"github.com/tidwall/gjson"
)

// Response is the surface normalize needs from a transport response.
// All readers operate on the already-received body; BodyString is the
// terminal fallback and cannot fail.
type Response interface {
	Header(key string) string
	BodyJSON() (any, error)
	BodyString() string
	BodyRaw() ([]byte, error)
}

// BlobReader is optionally implemented by transports that have a
// dedicated binary read. When absent, blobs are assembled from raw
// bytes.
type BlobReader interface {
	BodyBlob() (*Blob, error)
}

// Blob is a binary response body with its filename, when the server
// declared one via Content-Disposition.
type Blob struct {
	Data        []byte
	Filename    string
	ContentType string
}

// FailureMarker describes the sentinel field that flags a logical
// failure inside an otherwise successful JSON body. Field is a gjson
// path, so nested markers like "meta.status" work too.
type FailureMarker struct {
	Field string
	Value string
}

// DefaultFailureMarker matches bodies like {"type":"FALSE",...}.
var DefaultFailureMarker = FailureMarker{Field: "type", Value: "FALSE"}

// DefaultMessageFields is the ordered probe list for error-message
// extraction.
var DefaultMessageFields = []string{"message", "error", "detail", "msg", "title"}

// FallbackFailureMessage is used when a logically failed body carries
// no recognizable message.
const FallbackFailureMessage = "Operation failed"

var filenameRe = regexp.MustCompile(`(?i)filename="([^"]+)"`)

// FilenameFromDisposition extracts the filename from a
// Content-Disposition header value, or returns "" when absent.
func FilenameFromDisposition(disposition string) string {
	m := filenameRe.FindStringSubmatch(disposition)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// ParseSuccess executes the parse strategy for category against a
// success response. For JSON bodies carrying the failure marker it
// returns a logical-failure *Error with status 400 and the full parsed
// body as data.
func ParseSuccess(resp Response, category contenttype.Category) (any, error) {
	return ParseSuccessWith(resp, category, DefaultFailureMarker, DefaultMessageFields)
}

// ParseSuccessWith is ParseSuccess with a custom failure marker and
// message probe list.
func ParseSuccessWith(resp Response, category contenttype.Category, marker FailureMarker, fields []string) (any, error) {
	switch category {
	case contenttype.JSON:
		value, err := resp.BodyJSON()
		if err != nil {
			return nil, err
		}
		if markerMatches(value, marker) {
			msg := ExtractErrorMessageFrom(value, FallbackFailureMessage, fields)
			return nil, NewError(msg, http.StatusBadRequest, value)
		}
		return value, nil

	case contenttype.Blob:
		if br, ok := resp.(BlobReader); ok {
			if blob, err := br.BodyBlob(); err == nil {
				if blob.Filename == "" {
					blob.Filename = FilenameFromDisposition(resp.Header("Content-Disposition"))
				}
				return blob, nil
			}
		}
		data, err := resp.BodyRaw()
		if err != nil {
			return resp.BodyString(), nil
		}
		return &Blob{
			Data:        data,
			Filename:    FilenameFromDisposition(resp.Header("Content-Disposition")),
			ContentType: resp.Header("Content-Type"),
		}, nil

	case contenttype.Bytes:
		data, err := resp.BodyRaw()
		if err != nil {
			return resp.BodyString(), nil
		}
		return data, nil

	default:
		return resp.BodyString(), nil
	}
}

// markerMatches checks the parsed body for the failure sentinel. The
// parsed value is re-encoded so the marker's gjson path applies to it
// directly; this keeps the decision independent of how the raw body
// was read.
func markerMatches(value any, marker FailureMarker) bool {
	if marker.Field == "" {
		return false
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return false
	}
	encoded, err := json.Marshal(obj)
	if err != nil {
		return false
	}
	f := gjson.GetBytes(encoded, marker.Field)
	return f.Type == gjson.String && f.Str == marker.Value
}

// ExtractErrorMessage pulls a human-readable message out of an
// arbitrary error payload: strings pass through, objects are probed
// for the default message fields in order, anything else yields the
// fallback.
func ExtractErrorMessage(payload any, fallback string) string {
	return ExtractErrorMessageFrom(payload, fallback, DefaultMessageFields)
}

// ExtractErrorMessageFrom is ExtractErrorMessage with a custom probe
// list.
func ExtractErrorMessageFrom(payload any, fallback string, fields []string) string {
	switch v := payload.(type) {
	case nil:
		return fallback
	case string:
		if v != "" {
			return v
		}
		return fallback
	case map[string]any:
		for _, field := range fields {
			raw, ok := v[field]
			if !ok || raw == nil {
				continue
			}
			switch fv := raw.(type) {
			case string:
				if fv != "" {
					return fv
				}
			default:
				if s := fmt.Sprint(fv); s != "" {
					return s
				}
			}
		}
		return fallback
	default:
		return fallback
	}
}
