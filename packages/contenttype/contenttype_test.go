package contenttype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		contentType string
		expected    Category
	}{
		{"application/json", JSON},
		{"application/json; charset=utf-8", JSON},
		{"application/ld+json", JSON},
		{"APPLICATION/JSON", JSON},
		{"application/pdf", Blob},
		{"application/octet-stream", Blob},
		{"application/zip", Blob},
		{"application/vnd.ms-excel", Blob},
		{"image/png", Blob},
		{"image/svg+xml", Blob},
		{"text/plain; charset=utf-8", Text},
		{"text/html", Text},
		{"application/xml", Text},
		{"application/unknown-x", Text},
		{"", Text},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.contentType), "Content-Type: %s", tt.contentType)
		})
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// "+json" wins over the image/ blob prefix because json rules are
	// checked first.
	assert.Equal(t, JSON, Classify("image/weird+json"))
}

func TestClassify_CustomRules(t *testing.T) {
	c := NewClassifier(
		Rule{Category: Bytes, Patterns: []string{"application/wasm"}},
		Rule{Category: JSON, Patterns: []string{"application/json"}},
	)

	assert.Equal(t, Bytes, c.Classify("application/wasm"))
	assert.Equal(t, JSON, c.Classify("application/json"))
	assert.Equal(t, Text, c.Classify("image/png"), "custom table has no blob rules")
}

func TestClassify_Idempotent(t *testing.T) {
	c := NewClassifier()
	first := c.Classify("application/ld+json")
	second := c.Classify("application/ld+json")
	assert.Equal(t, first, second)
	assert.Equal(t, JSON, first)
}
