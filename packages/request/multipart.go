package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
)

// File is an in-memory or streamed binary value for a multipart field.
type File struct {
	Name   string
	Reader io.Reader
}

// FileRef points at a file by URI or local path, the mobile-style file
// representation. The referenced file is opened during encoding.
type FileRef struct {
	URI  string
	Name string
}

// BinaryFunc is the capability predicate that decides whether a
// payload value is binary, and if so produces its file form. Platform
// layers can swap it out via WithBinaryFunc.
type BinaryFunc func(v any) (*File, bool, error)

// DefaultBinary recognizes *File/File values, io.Readers, and any
// value exposing a string URI field (struct field or "uri" map key).
// URI values are resolved by opening the referenced local file.
func DefaultBinary(v any) (*File, bool, error) {
	switch fv := v.(type) {
	case *File:
		if fv == nil {
			return nil, false, nil
		}
		return fv, true, nil
	case File:
		return &fv, true, nil
	case *FileRef:
		if fv == nil {
			return nil, false, nil
		}
		return openRef(fv.URI, fv.Name)
	case FileRef:
		return openRef(fv.URI, fv.Name)
	}

	if uri, ok := uriField(v); ok {
		return openRef(uri, "")
	}

	if r, ok := v.(io.Reader); ok {
		return &File{Name: "file", Reader: r}, true, nil
	}

	return nil, false, nil
}

func openRef(uri, name string) (*File, bool, error) {
	path := strings.TrimPrefix(uri, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, true, fmt.Errorf("open file reference %q: %w", uri, err)
	}
	if name == "" {
		name = filepath.Base(path)
	}
	return &File{Name: name, Reader: f}, true, nil
}

// uriField duck-types a value for a string URI field, covering both
// structs and decoded-JSON maps.
func uriField(v any) (string, bool) {
	if m, ok := v.(map[string]any); ok {
		if uri, ok := m["uri"].(string); ok && uri != "" {
			return uri, true
		}
		return "", false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return "", false
	}
	for _, name := range []string{"URI", "Uri"} {
		f := rv.FieldByName(name)
		if f.IsValid() && f.Kind() == reflect.String && f.String() != "" {
			return f.String(), true
		}
	}
	return "", false
}

// encodeMultipart serializes the payload as a multipart form. Nil
// values are skipped, slices expand element-wise under the same key,
// binary values become file parts, plain objects are JSON-serialized,
// and everything else is appended in string form. Keys are written in
// sorted order so the body is deterministic.
func (b *builder) encodeMultipart(payload map[string]any) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := payload[key]
		if isNil(value) {
			continue
		}
		if elems, ok := asSlice(value); ok {
			for _, elem := range elems {
				if isNil(elem) {
					continue
				}
				if err := b.appendValue(writer, key, elem); err != nil {
					return nil, "", err
				}
			}
			continue
		}
		if err := b.appendValue(writer, key, value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}

func (b *builder) appendValue(writer *multipart.Writer, key string, value any) error {
	file, isBinary, err := b.binary(value)
	if err != nil {
		return err
	}
	if isBinary {
		if closer, ok := file.Reader.(io.Closer); ok {
			defer closer.Close()
		}
		part, err := writer.CreateFormFile(key, file.Name)
		if err != nil {
			return err
		}
		_, err = io.Copy(part, file.Reader)
		return err
	}

	if isObject(value) {
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return writer.WriteField(key, string(encoded))
	}

	return writer.WriteField(key, stringify(value))
}

// isNil catches typed nils (a nil *File boxed in an any is not equal
// to nil) so null values are skipped no matter how they arrive.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// asSlice reports slice/array values, excluding []byte which is a
// scalar binary-ish blob, not a sequence of fields.
func asSlice(v any) ([]any, bool) {
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func isObject(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Map || rv.Kind() == reflect.Struct
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", v)
	}
}
