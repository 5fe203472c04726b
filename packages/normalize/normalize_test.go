package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/abdul-hamid-achik/restkit/packages/contenttype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResponse is a minimal Response for exercising parse strategies.
type fakeResponse struct {
	headers map[string]string
	body    []byte
	rawErr  error
}

func (r *fakeResponse) Header(key string) string { return r.headers[key] }

func (r *fakeResponse) BodyJSON() (any, error) {
	var v any
	if err := json.Unmarshal(r.body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *fakeResponse) BodyString() string { return string(r.body) }

func (r *fakeResponse) BodyRaw() ([]byte, error) {
	if r.rawErr != nil {
		return nil, r.rawErr
	}
	return r.body, nil
}

func TestParseSuccess_JSON(t *testing.T) {
	resp := &fakeResponse{body: []byte(`{"id": 7, "name": "ada"}`)}

	value, err := ParseSuccess(resp, contenttype.JSON)

	require.NoError(t, err)
	obj, ok := value.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ada", obj["name"])
}

func TestParseSuccess_JSONLogicalFailure(t *testing.T) {
	resp := &fakeResponse{body: []byte(`{"type":"FALSE","error":"bad input"}`)}

	value, err := ParseSuccess(resp, contenttype.JSON)

	assert.Nil(t, value)
	require.Error(t, err)
	ne, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "bad input", ne.Message)
	assert.Equal(t, 400, ne.Status)
	body, ok := ne.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "FALSE", body["type"])
}

func TestParseSuccess_JSONLogicalFailureWithoutMessage(t *testing.T) {
	resp := &fakeResponse{body: []byte(`{"type":"FALSE"}`)}

	_, err := ParseSuccess(resp, contenttype.JSON)

	ne, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Operation failed", ne.Message)
}

func TestParseSuccess_JSONLogicalFailureWithoutRawBody(t *testing.T) {
	resp := &fakeResponse{
		body:   []byte(`{"type":"FALSE","message":"denied"}`),
		rawErr: errors.New("raw read unavailable"),
	}

	_, err := ParseSuccess(resp, contenttype.JSON)

	ne, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "denied", ne.Message)
	assert.Equal(t, 400, ne.Status)
}

func TestParseSuccess_JSONCustomMarker(t *testing.T) {
	resp := &fakeResponse{body: []byte(`{"meta":{"status":"failed"},"msg":"nope"}`)}
	marker := FailureMarker{Field: "meta.status", Value: "failed"}

	_, err := ParseSuccessWith(resp, contenttype.JSON, marker, DefaultMessageFields)

	ne, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "nope", ne.Message)
}

func TestParseSuccess_JSONParseError(t *testing.T) {
	resp := &fakeResponse{body: []byte(`not json`)}

	_, err := ParseSuccess(resp, contenttype.JSON)

	assert.Error(t, err)
}

func TestParseSuccess_Blob(t *testing.T) {
	resp := &fakeResponse{
		headers: map[string]string{
			"Content-Disposition": `attachment; FILENAME="report.pdf"`,
			"Content-Type":        "application/pdf",
		},
		body: []byte("%PDF-1.4"),
	}

	value, err := ParseSuccess(resp, contenttype.Blob)

	require.NoError(t, err)
	blob, ok := value.(*Blob)
	require.True(t, ok)
	assert.Equal(t, "report.pdf", blob.Filename)
	assert.Equal(t, "application/pdf", blob.ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), blob.Data)
}

func TestParseSuccess_BlobWithoutDisposition(t *testing.T) {
	resp := &fakeResponse{body: []byte{0x89, 0x50}}

	value, err := ParseSuccess(resp, contenttype.Blob)

	require.NoError(t, err)
	blob, ok := value.(*Blob)
	require.True(t, ok)
	assert.Empty(t, blob.Filename)
}

func TestParseSuccess_BlobFallsBackToText(t *testing.T) {
	resp := &fakeResponse{body: []byte("plain"), rawErr: errors.New("raw read unavailable")}

	value, err := ParseSuccess(resp, contenttype.Blob)

	require.NoError(t, err)
	assert.Equal(t, "plain", value)
}

func TestParseSuccess_Bytes(t *testing.T) {
	resp := &fakeResponse{body: []byte{1, 2, 3}}

	value, err := ParseSuccess(resp, contenttype.Bytes)

	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, value)
}

func TestParseSuccess_BytesFallsBackToText(t *testing.T) {
	resp := &fakeResponse{body: []byte("raw"), rawErr: errors.New("unavailable")}

	value, err := ParseSuccess(resp, contenttype.Bytes)

	require.NoError(t, err)
	assert.Equal(t, "raw", value)
}

func TestParseSuccess_Text(t *testing.T) {
	resp := &fakeResponse{body: []byte("hello")}

	value, err := ParseSuccess(resp, contenttype.Text)

	require.NoError(t, err)
	assert.Equal(t, "hello", value)
}

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		payload  any
		expected string
	}{
		{"nil payload", nil, "fallback"},
		{"string payload", "boom", "boom"},
		{"empty string payload", "", "fallback"},
		{"message field", map[string]any{"message": "m"}, "m"},
		{"error field", map[string]any{"error": "e"}, "e"},
		{"detail field", map[string]any{"detail": "d"}, "d"},
		{"msg field", map[string]any{"msg": "short"}, "short"},
		{"title field", map[string]any{"title": "t"}, "t"},
		{"priority order", map[string]any{"error": "e", "message": "m"}, "m"},
		{"skips empty values", map[string]any{"message": "", "error": "e"}, "e"},
		{"skips nil values", map[string]any{"message": nil, "detail": "d"}, "d"},
		{"no known field", map[string]any{"code": "X1"}, "fallback"},
		{"non-object payload", 42, "fallback"},
		{"slice payload", []any{"a"}, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractErrorMessage(tt.payload, "fallback"))
		})
	}
}

func TestExtractErrorMessageFrom_CustomFields(t *testing.T) {
	payload := map[string]any{"reason": "because", "message": "ignored"}
	got := ExtractErrorMessageFrom(payload, "fallback", []string{"reason"})
	assert.Equal(t, "because", got)
}

func TestFilenameFromDisposition(t *testing.T) {
	assert.Equal(t, "a.zip", FilenameFromDisposition(`attachment; filename="a.zip"`))
	assert.Equal(t, "", FilenameFromDisposition("inline"))
	assert.Equal(t, "", FilenameFromDisposition(""))
}

func TestError(t *testing.T) {
	err := NewError("not found", 404, map[string]any{"detail": "not found"})
	assert.Equal(t, "not found (status 404)", err.Error())

	wrapped := fmt.Errorf("call failed: %w", err)
	ne, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, 404, ne.Status)

	assert.True(t, IsValidation(NewError("base URL is required", 0, nil)))
	assert.False(t, IsValidation(err))
}
