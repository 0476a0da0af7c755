package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclparse"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatJSON
	formatYAML
	formatTOML
	formatHCL
)

func formatForPath(path string) fileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON
	case ".yaml", ".yml":
		return formatYAML
	case ".toml":
		return formatTOML
	case ".hcl":
		return formatHCL
	default:
		return formatUnknown
	}
}

// loadConfigTree reads a structured config file and decodes it into a
// generic key tree. The format is chosen by extension; unrecognized
// extensions are sniffed as JSON, then YAML, then TOML. Failures are
// reported as FileError, never swallowed.
func loadConfigTree(path string) (map[string]interface{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, FileError{Path: path, Cause: err}
	}
	tree, err := decodeTree(content, path, formatForPath(path))
	if err != nil {
		return nil, FileError{Path: path, Cause: err}
	}
	return tree, nil
}

func decodeTree(content []byte, path string, format fileFormat) (map[string]interface{}, error) {
	switch format {
	case formatJSON:
		return decodeJSON(content)
	case formatYAML:
		return decodeYAML(content)
	case formatTOML:
		return decodeTOML(content)
	case formatHCL:
		return decodeHCL(content, path)
	}

	// Unknown extension: sniff. JSON first since it is the strictest,
	// YAML next, TOML last.
	if tree, err := decodeJSON(content); err == nil {
		return tree, nil
	}
	if tree, err := decodeYAML(content); err == nil {
		return tree, nil
	}
	if tree, err := decodeTOML(content); err == nil {
		return tree, nil
	}
	return nil, fmt.Errorf("content is not valid JSON, YAML, or TOML")
}

func decodeJSON(content []byte) (map[string]interface{}, error) {
	var tree map[string]interface{}
	if err := json.Unmarshal(content, &tree); err != nil {
		return nil, fmt.Errorf("decoding JSON: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("decoding JSON: document is null")
	}
	return tree, nil
}

func decodeYAML(content []byte) (map[string]interface{}, error) {
	var tree map[string]interface{}
	if err := yaml.Unmarshal(content, &tree); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	if tree == nil {
		// an empty document decodes to nil, which callers treat as an
		// empty tree
		tree = map[string]interface{}{}
	}
	return tree, nil
}

func decodeTOML(content []byte) (map[string]interface{}, error) {
	var tree map[string]interface{}
	if err := toml.Unmarshal(content, &tree); err != nil {
		return nil, fmt.Errorf("decoding TOML: %w", err)
	}
	if tree == nil {
		tree = map[string]interface{}{}
	}
	return tree, nil
}

// decodeHCL reads top-level attributes from an HCL document into a key
// tree. Blocks are not supported, only attribute assignments.
func decodeHCL(content []byte, path string) (map[string]interface{}, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decoding HCL: %w", diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("decoding HCL: %w", diags)
	}
	tree := make(map[string]interface{}, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating HCL attribute %q: %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("converting HCL attribute %q: %w", name, err)
		}
		tree[name] = native
	}
	return tree, nil
}

// ctyToNative converts an HCL cty value into the same generic shapes the
// other decoders produce: bool, float64, string, []interface{}, and
// map[string]interface{}.
func ctyToNative(v cty.Value) (interface{}, error) {
	if v.IsNull() {
		return nil, nil
	}
	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString(), nil
	case t == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case t == cty.Bool:
		return v.True(), nil
	case t.IsTupleType() || t.IsListType() || t.IsSetType():
		out := make([]interface{}, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			native, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case t.IsObjectType() || t.IsMapType():
		out := make(map[string]interface{}, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			kv, ev := it.Element()
			native, err := ctyToNative(ev)
			if err != nil {
				return nil, err
			}
			out[kv.AsString()] = native
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported HCL value type %s", t.FriendlyName())
	}
}
