package codec

import (
	"mime"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// ObjectMapper writes Go values to bytes and reads them back.
type ObjectMapper interface {
	Write(v any) ([]byte, error)
	Read(data []byte, v any) error
	// ContentType is sent with bodies produced by Write.
	ContentType() string
}

// Content types produced by the built-in mappers.
const (
	ContentTypeJSON = "application/json"
	ContentTypeYAML = "application/yaml"
	ContentTypeTOML = "application/toml"
)

// JSONMapper encodes JSON with sonic.
type JSONMapper struct {
	api sonic.API
}

// NewJSONMapper returns a JSON mapper compatible with encoding/json.
func NewJSONMapper() *JSONMapper {
	return &JSONMapper{api: sonic.ConfigStd}
}

func (m *JSONMapper) Write(v any) ([]byte, error) { return m.api.Marshal(v) }

func (m *JSONMapper) Read(data []byte, v any) error { return m.api.Unmarshal(data, v) }

func (m *JSONMapper) ContentType() string { return ContentTypeJSON }

// YAMLMapper encodes YAML.
type YAMLMapper struct{}

func (YAMLMapper) Write(v any) ([]byte, error) { return yaml.Marshal(v) }

func (YAMLMapper) Read(data []byte, v any) error { return yaml.Unmarshal(data, v) }

func (YAMLMapper) ContentType() string { return ContentTypeYAML }

// TOMLMapper encodes TOML. Only maps and structs can be written.
type TOMLMapper struct{}

func (TOMLMapper) Write(v any) ([]byte, error) { return toml.Marshal(v) }

func (TOMLMapper) Read(data []byte, v any) error { return toml.Unmarshal(data, v) }

func (TOMLMapper) ContentType() string { return ContentTypeTOML }

var defaultMapper ObjectMapper = NewJSONMapper()

// Default returns the JSON mapper used when none is configured.
func Default() ObjectMapper { return defaultMapper }

// ForContentType picks a built-in mapper for a media type such as
// "application/problem+json" or "text/yaml; charset=utf-8".
func ForContentType(contentType string) (ObjectMapper, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case mediaType == ContentTypeJSON, strings.HasSuffix(mediaType, "+json"):
		return defaultMapper, true
	case strings.HasSuffix(mediaType, "/yaml"), strings.HasSuffix(mediaType, "/x-yaml"), strings.HasSuffix(mediaType, "+yaml"):
		return YAMLMapper{}, true
	case strings.HasSuffix(mediaType, "/toml"), strings.HasSuffix(mediaType, "+toml"):
		return TOMLMapper{}, true
	}
	return nil, false
}

// ForFormat picks a built-in mapper by short name: json, yaml or toml.
func ForFormat(format string) (ObjectMapper, bool) {
	switch strings.ToLower(format) {
	case "json":
		return defaultMapper, true
	case "yaml", "yml":
		return YAMLMapper{}, true
	case "toml":
		return TOMLMapper{}, true
	}
	return nil, false
}
