// Package contenttype classifies response media types into the parse
// strategies restkit knows how to execute.
package contenttype

import "strings"

// Category is a terminal parse strategy for a response body.
type Category string

const (
	// Auto means "classify from the Content-Type header". It is only
	// valid as a requested response type, never as a classification
	// result.
	Auto Category = ""

	JSON Category = "json"
	Blob Category = "blob"
	Text Category = "text"
	// Bytes is the raw byte-buffer strategy.
	Bytes Category = "bytes"
)

// Rule maps a category to its match patterns. A pattern ending in "/"
// matches content types starting with that prefix ("image/" matches
// "image/png"); any other pattern matches as a substring ("+json"
// matches "application/ld+json").
type Rule struct {
	Category Category
	Patterns []string
}

// DefaultRules returns the built-in rule table. Order matters: json is
// checked before blob, blob before text.
func DefaultRules() []Rule {
	return []Rule{
		{Category: JSON, Patterns: []string{"application/json", "+json"}},
		{Category: Blob, Patterns: []string{
			"application/pdf",
			"application/octet-stream",
			"application/zip",
			"application/vnd",
			"image/",
		}},
		{Category: Text, Patterns: []string{"text/", "application/xml", "text/xml"}},
	}
}

// Classifier holds an ordered rule table.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the given rules, or the
// default table when none are given.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify maps a Content-Type header value to a category. It is a
// total function: comparison is case-insensitive, a missing header is
// treated as the empty string, and anything unmatched falls back to
// Text.
func (c *Classifier) Classify(contentType string) Category {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, rule := range c.rules {
		for _, pattern := range rule.Patterns {
			if matches(ct, strings.ToLower(pattern)) {
				return rule.Category
			}
		}
	}
	return Text
}

// Classify runs the default rule table.
func Classify(contentType string) Category {
	return NewClassifier().Classify(contentType)
}

func matches(ct, pattern string) bool {
	if pattern == "" {
		return false
	}
	if strings.HasSuffix(pattern, "/") {
		return strings.HasPrefix(ct, pattern)
	}
	return strings.Contains(ct, pattern)
}
