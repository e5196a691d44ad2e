package schemafile

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
)

// Format is a schema document encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	case ".json":
		return JSON, nil
	}
	return "", errors.InvalidInput(errors.PhaseLoad, "unrecognized schema extension: "+path)
}

var validate = validator.New()

// Decode parses and validates a document without resolving it.
func Decode(data []byte, format Format) (*Document, error) {
	doc := &Document{}
	var err error
	switch format {
	case YAML:
		err = yaml.Unmarshal(data, doc)
	case TOML:
		err = toml.Unmarshal(data, doc)
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(doc)
	default:
		return nil, errors.InvalidInput(errors.PhaseLoad, "unknown schema format "+string(format))
	}
	if err != nil {
		return nil, errors.Load("decode "+string(format)+" document", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, errors.Load("invalid schema document", err)
	}
	return doc, nil
}

// Parse decodes data and freezes it into a model.
func Parse(data []byte, format Format) (*schema.Model, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return doc.Model()
}

// Load reads the schema file at path, choosing the format by extension.
func Load(path string) (*schema.Model, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	Logger().Debug("schema loaded",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("types", len(m.Structs())),
		zap.Int("enums", len(m.Enums())),
		zap.String("root", m.Root()))
	return m, nil
}
