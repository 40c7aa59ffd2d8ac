// Package varsfile loads caller variables for the log header's VARIABLES
// section from YAML or TOML files.
package varsfile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/logbook"
)

// ErrUnsupportedFormat indicates the file extension maps to no known
// format.
var ErrUnsupportedFormat = errors.New("unsupported variables file format")

// scalarGroup names the Map collecting top-level scalar entries.
const scalarGroup = "vars"

// Map is an ordered set of named values implementing
// [logbook.Describable].
type Map struct {
	name   string
	fields []logbook.Field
}

// NewMap creates a Map with the given type name and fields.
func NewMap(name string, fields []logbook.Field) *Map {
	return &Map{name: name, fields: fields}
}

// TypeName implements logbook.Describable.
func (m *Map) TypeName() string {
	return m.name
}

// Fields implements logbook.Describable.
func (m *Map) Fields() []logbook.Field {
	return m.fields
}

// Load reads a variables file and returns one Describable per top-level
// table, plus one named "vars" collecting any top-level scalars. The
// format is chosen by extension: .yaml/.yml or .toml. Keys are emitted in
// sorted order for deterministic headers.
func Load(path string) ([]logbook.Describable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading variables file %s", path)
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrapf(err, "parsing YAML variables file %s", path)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, errors.Wrapf(err, "parsing TOML variables file %s", path)
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", path)
	}

	return split(raw), nil
}

// split orders the raw document into table-backed Maps followed by a
// scalar group.
func split(raw map[string]any) []logbook.Describable {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []logbook.Describable
	var scalars []logbook.Field
	for _, k := range keys {
		table, ok := tableFields(raw[k])
		if !ok {
			scalars = append(scalars, logbook.Field{Key: k, Value: raw[k]})
			continue
		}
		out = append(out, NewMap(k, table))
	}
	if len(scalars) > 0 {
		out = append(out, NewMap(scalarGroup, scalars))
	}
	return out
}

// tableFields converts a decoded mapping value into sorted fields. YAML
// and TOML decode tables differently, so both map key types are handled.
func tableFields(v any) ([]logbook.Field, bool) {
	var m map[string]any
	switch t := v.(type) {
	case map[string]any:
		m = t
	case map[any]any:
		m = make(map[string]any, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			m[ks] = val
		}
	default:
		return nil, false
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]logbook.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, logbook.Field{Key: k, Value: m[k]})
	}
	return fields, true
}
