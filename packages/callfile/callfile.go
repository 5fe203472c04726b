// Package callfile loads declarative call definitions from YAML files
// for the CLI. Values support ${VAR} environment expansion.
package callfile

import (
	"fmt"
	"os"

	"github.com/abdul-hamid-achik/restkit/packages/contenttype"
	"github.com/abdul-hamid-achik/restkit/packages/request"
	"gopkg.in/yaml.v3"
)

// File is one YAML document: a base URL shared by a list of named
// calls.
type File struct {
	BaseURL string `yaml:"base_url"`
	Calls   []Call `yaml:"calls"`
}

// Call is a single declarative request.
type Call struct {
	Name         string         `yaml:"name"`
	Endpoint     string         `yaml:"endpoint"`
	Method       string         `yaml:"method"`
	Payload      map[string]any `yaml:"payload"`
	Auth         bool           `yaml:"auth"`
	Token        string         `yaml:"token"`
	Form         bool           `yaml:"form"`
	ResponseType string         `yaml:"response_type"`
}

// Load reads and parses a call file. Environment variables referenced
// as ${VAR} or $VAR are expanded before parsing.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read call file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var f File
	if err := yaml.Unmarshal([]byte(expanded), &f); err != nil {
		return nil, fmt.Errorf("parse call file %s: %w", path, err)
	}

	if f.BaseURL == "" {
		return nil, fmt.Errorf("call file %s: base_url is required", path)
	}
	if len(f.Calls) == 0 {
		return nil, fmt.Errorf("call file %s: no calls defined", path)
	}
	for i, call := range f.Calls {
		if call.Name == "" {
			return nil, fmt.Errorf("call file %s: call %d has no name", path, i+1)
		}
		switch call.ResponseType {
		case "", "auto", "json", "blob", "text", "bytes":
		default:
			return nil, fmt.Errorf("call file %s: call %q has unknown response_type %q", path, call.Name, call.ResponseType)
		}
	}

	return &f, nil
}

// Find returns the named call.
func (f *File) Find(name string) (Call, bool) {
	for _, call := range f.Calls {
		if call.Name == name {
			return call, true
		}
	}
	return Call{}, false
}

// Spec converts a call into the request spec executed by the api
// client. An explicit "auto" response type means the same as leaving
// it out.
func (f *File) Spec(call Call) request.Spec {
	responseType := call.ResponseType
	if responseType == "auto" {
		responseType = ""
	}
	return request.Spec{
		BaseURL:      f.BaseURL,
		Endpoint:     call.Endpoint,
		Method:       call.Method,
		Payload:      call.Payload,
		RequiresAuth: call.Auth,
		Token:        call.Token,
		IsFormData:   call.Form,
		ResponseType: contenttype.Category(responseType),
	}
}
