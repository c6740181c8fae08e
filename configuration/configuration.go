// Package configuration resolves named string settings from layered sources such as the environment, YAML files
// and built in defaults.
package configuration

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unmarshal uses the provided configuration to fill the exported fields of v, which must be a pointer to a struct.
// Field names are looked up as is unless overridden by a "cfg" or "yaml" struct tag, in that order.  Embedded
// structs are unmarshalled in place.  Unconfigured fields are left unchanged, so defaults can be assigned before
// calling Unmarshal.
func Unmarshal(v any, cf Interface) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf(`unmarshal can only be used with struct pointers, got %T`, v)
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		ft := rt.Field(i)
		if ft.PkgPath != `` {
			continue
		}
		if ft.Anonymous && ft.Type.Kind() == reflect.Struct {
			if err := Unmarshal(rv.Field(i).Addr().Interface(), cf); err != nil {
				return err
			}
			continue
		}
		name := ft.Name
		if tag := ft.Tag.Get(`cfg`); tag != `` {
			name = tag
		} else if tag := ft.Tag.Get(`yaml`); tag != `` {
			name = tag
		}
		name = strings.SplitN(name, `,`, 2)[0]
		if name == `` || name == `-` {
			continue
		}
		if err := Get(rv.Field(i).Addr().Interface(), cf, name); err != nil {
			return err
		}
	}
	return nil
}

// Get resolves ref from a named configuration item.  Ref must point to a string, a slice of strings, a boolean, an
// integer or a float64.  If the item is not configured, ref is left unchanged.
func Get(ref any, cf Interface, name string) error {
	values := cf.GetConfiguration(name)
	if values == nil {
		return nil
	}
	if ref, ok := ref.(*[]string); ok {
		*ref = values
		return nil
	}
	switch len(values) {
	case 0:
		return nil
	case 1:
	default:
		return fmt.Errorf(`only one value allowed for %q, got %d`, name, len(values))
	}
	value := values[0]

	switch ref := ref.(type) {
	case *string:
		*ref = value
	case *bool:
		switch strings.ToLower(value) {
		case `true`, `yes`, `on`, `1`:
			*ref = true
		case `false`, `no`, `off`, `0`:
			*ref = false
		default:
			return fmt.Errorf(`invalid boolean value %q for %q`, value, name)
		}
	case *int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf(`%w for %q`, err, name)
		}
		*ref = n
	case *uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf(`%w for %q`, err, name)
		}
		*ref = n
	case *float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf(`%w for %q`, err, name)
		}
		*ref = n
	default:
		return fmt.Errorf(`unsupported type %T for %q`, ref, name)
	}
	return nil
}

// Interface describes a source of named configuration items.
type Interface interface {
	// GetConfiguration returns the values configured for name.  Nil means the item is not configured and a default
	// should be used.
	GetConfiguration(name string) []string

	// Configured lists the configured items, in no particular order.
	Configured() []string
}

// An Overlay combines multiple configurations.  The first one that configures an item wins, so they should be
// listed in priority order, such as Overlay{Environment(`STEPSEARCH_`), file, defaults}.
type Overlay []Interface

func (cf Overlay) GetConfiguration(name string) []string {
	for _, it := range cf {
		if it == nil {
			continue
		}
		if items := it.GetConfiguration(name); items != nil {
			return items
		}
	}
	return nil
}

// Configured returns the items configured by any layer, sorted and without duplicates.
func (cf Overlay) Configured() []string {
	seen := make(map[string]struct{}, 64)
	for _, it := range cf {
		if it == nil {
			continue
		}
		for _, item := range it.Configured() {
			seen[item] = struct{}{}
		}
	}
	items := make([]string, 0, len(seen))
	for item := range seen {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// Map provides a configuration from a map, and can be read from YAML.
type Map map[string][]string

func (cf Map) GetConfiguration(name string) []string { return cf[name] }

func (cf Map) Configured() []string {
	items := make([]string, 0, len(cf))
	for item := range cf {
		items = append(items, item)
	}
	return items
}

// UnmarshalYAML satisfies yaml.Unmarshaler using a mapping of names to scalars or sequences of scalars.
func (cf *Map) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf(`line %d: expected a map`, value.Line)
	}
	*cf = make(Map, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, value := value.Content[i], value.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == `` {
			return fmt.Errorf(`line %d: expected a name`, key.Line)
		}
		switch value.Kind {
		case yaml.ScalarNode:
			(*cf)[key.Value] = []string{value.Value}
		case yaml.SequenceNode:
			items := make([]string, len(value.Content))
			for j, item := range value.Content {
				if item.Kind != yaml.ScalarNode {
					return fmt.Errorf(`line %d: expected a scalar in %q`, item.Line, key.Value)
				}
				items[j] = item.Value
			}
			(*cf)[key.Value] = items
		default:
			return fmt.Errorf(`line %d: expected a scalar or sequence for %q`, value.Line, key.Value)
		}
	}
	return nil
}

// File reads a YAML map from path.  A missing file is an empty configuration when optional is true.
func File(path string, optional bool) (Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return Map{}, nil
		}
		return nil, err
	}
	var cf Map
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf(`%w while reading %v`, err, path)
	}
	if cf == nil {
		cf = Map{}
	}
	return cf, nil
}

// Environment provides a configuration from the OS environment, adding prefix to each name.  If the prefix is
// uppercase, names are converted to uppercase before lookup.
func Environment(prefix string) Interface {
	return environment{
		uppercase: prefix != `` && strings.ToUpper(prefix) == prefix,
		prefix:    prefix,
	}
}

type environment struct {
	uppercase bool
	prefix    string
}

func (cf environment) Configured() []string {
	var items []string
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, cf.prefix) {
			continue
		}
		name, _, _ := strings.Cut(env[len(cf.prefix):], `=`)
		if cf.uppercase {
			name = strings.ToLower(name)
		}
		items = append(items, name)
	}
	return items
}

func (cf environment) GetConfiguration(name string) []string {
	if cf.uppercase {
		name = strings.ToUpper(name)
	}
	value, ok := os.LookupEnv(cf.prefix + name)
	if !ok {
		return nil
	}
	return []string{value}
}
