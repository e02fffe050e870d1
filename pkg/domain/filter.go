package domain

import (
	"fmt"
	"maps"

	"github.com/mitchellh/mapstructure"
)

// FilterConfig is the named parameter set of a filter or generator.
type FilterConfig struct {
	Name    string            `json:"name"`
	Version int               `json:"version"`
	Params  map[string]string `json:"params,omitempty"`
}

// NewFilterConfig creates a configuration with no parameters.
func NewFilterConfig(name string, version int) *FilterConfig {
	return &FilterConfig{Name: name, Version: version, Params: make(map[string]string)}
}

// Set stores a parameter value.
func (c *FilterConfig) Set(key, value string) {
	if c.Params == nil {
		c.Params = make(map[string]string)
	}
	c.Params[key] = value
}

// Get returns a parameter value and whether it was set.
func (c *FilterConfig) Get(key string) (string, bool) {
	v, ok := c.Params[key]
	return v, ok
}

// Reset replaces all parameters.
func (c *FilterConfig) Reset(version int, params map[string]string) {
	c.Version = version
	c.Params = maps.Clone(params)
	if c.Params == nil {
		c.Params = make(map[string]string)
	}
}

// Decode converts the string parameters into a typed struct using
// "mapstructure" tags, e.g. `mapstructure:"halfWidth"`.
func (c *FilterConfig) Decode(target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           target,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(c.Params); err != nil {
		return fmt.Errorf("failed to decode %s parameters: %w", c.Name, err)
	}
	return nil
}
