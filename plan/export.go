package plan

import (
	"encoding/json"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
)

// Format selects the encoding of an exported plan set.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgPack Format = "msgpack"
)

// ParseFormat accepts format names and common file extensions.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp", "mpk":
		return FormatMsgPack, nil
	}
	return "", errors.InvalidInput(errors.PhaseExport, "unknown export format "+s)
}

// Document is the exported shape of a Set.
type Document struct {
	Root           string         `json:"root,omitempty" yaml:"root,omitempty" msgpack:"root,omitempty"`
	FileIdentifier string         `json:"file_identifier,omitempty" yaml:"file_identifier,omitempty" msgpack:"file_identifier,omitempty"`
	FileExtension  string         `json:"file_extension,omitempty" yaml:"file_extension,omitempty" msgpack:"file_extension,omitempty"`
	Options        schema.Options `json:"options" yaml:"options" msgpack:"options"`
	Types          []*TypePlan    `json:"types" yaml:"types" msgpack:"types"`
	Enums          []*EnumPlan    `json:"enums,omitempty" yaml:"enums,omitempty" msgpack:"enums,omitempty"`
	Unions         []*UnionPlan   `json:"unions,omitempty" yaml:"unions,omitempty" msgpack:"unions,omitempty"`
}

// Document snapshots the set in declaration order.
func (s *Set) Document() Document {
	return Document{
		Root:           s.root,
		FileIdentifier: s.fileIdentifier,
		FileExtension:  s.fileExtension,
		Options:        s.options,
		Types:          s.Types(),
		Enums:          s.Enums(),
		Unions:         s.Unions(),
	}
}

// Encode exports set in format.
func Encode(set *Set, format Format) ([]byte, error) {
	if set == nil {
		return nil, errors.InvalidInput(errors.PhaseExport, "nil plan set")
	}
	doc := set.Document()

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(doc, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case FormatYAML:
		data, err = yaml.Marshal(doc)
	case FormatMsgPack:
		data, err = msgpack.Marshal(doc)
	default:
		return nil, errors.InvalidInput(errors.PhaseExport, "unknown export format "+string(format))
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseExport, errors.KindInvalidData, err, "encode "+string(format))
	}
	return data, nil
}
