package resource

import (
	"fmt"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"
)

// ConfigTree maps option names to string, int or bool values. Options the
// tree does not set are left to the host's defaults.
type ConfigTree struct {
	values map[string]interface{}
}

// Option is a single name/value pair used to pre-populate a tree.
type Option struct {
	Name  string
	Value interface{}
}

func String(name, value string) Option { return Option{Name: name, Value: value} }

func Int(name string, value int) Option { return Option{Name: name, Value: value} }

func Bool(name string, value bool) Option { return Option{Name: name, Value: value} }

// NewConfigTree builds a tree from options; later options override earlier
// ones with the same name. Values of any other type are ignored.
func NewConfigTree(options ...Option) ConfigTree {
	t := ConfigTree{values: make(map[string]interface{}, len(options))}
	for _, o := range options {
		switch v := o.Value.(type) {
		case string, int, bool:
			t.values[o.Name] = v
		}
	}
	return t
}

func (t *ConfigTree) set(name string, value interface{}) {
	if t.values == nil {
		t.values = make(map[string]interface{})
	}
	t.values[name] = value
}

func (t *ConfigTree) SetString(name, value string) { t.set(name, value) }

func (t *ConfigTree) SetInt(name string, value int) { t.set(name, value) }

func (t *ConfigTree) SetBool(name string, value bool) { t.set(name, value) }

func (t ConfigTree) Get(name string) (interface{}, bool) {
	v, ok := t.values[name]
	return v, ok
}

// GetString returns the option when it is set and holds a string.
func (t ConfigTree) GetString(name string) (string, bool) {
	v, ok := t.values[name].(string)
	return v, ok
}

func (t ConfigTree) GetInt(name string) (int, bool) {
	v, ok := t.values[name].(int)
	return v, ok
}

func (t ConfigTree) Len() int { return len(t.values) }

// Keys returns option names in sorted order.
func (t ConfigTree) Keys() []string {
	keys := make([]string, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy.
func (t ConfigTree) Clone() ConfigTree {
	c := ConfigTree{values: make(map[string]interface{}, len(t.values))}
	for k, v := range t.values {
		c.values[k] = v
	}
	return c
}

// Map returns a copy of the options as a plain map.
func (t ConfigTree) Map() map[string]interface{} {
	return t.Clone().values
}

// AsStruct renders the tree as a protobuf Struct for hosts that exchange
// configuration as protobuf values.
func (t ConfigTree) AsStruct() (*structpb.Struct, error) {
	s, err := structpb.NewStruct(t.values)
	if err != nil {
		return nil, fmt.Errorf("config tree to struct: %w", err)
	}
	return s, nil
}

// MarshalYAML emits the options as a mapping.
func (t ConfigTree) MarshalYAML() (interface{}, error) {
	if t.values == nil {
		return map[string]interface{}{}, nil
	}
	return t.values, nil
}

// BuildMeasurementConfig and its siblings assemble the four independent trees
// attached to a resource. Most probes pass no options.
func BuildMeasurementConfig(fixed ...Option) ConfigTree { return NewConfigTree(fixed...) }

func BuildProductConfig(fixed ...Option) ConfigTree { return NewConfigTree(fixed...) }

func BuildControlConfig(fixed ...Option) ConfigTree { return NewConfigTree(fixed...) }

func BuildCustomProperties(fixed ...Option) ConfigTree { return NewConfigTree(fixed...) }
