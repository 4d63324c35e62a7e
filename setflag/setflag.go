// Package setflag is a flag.Value holding a subset of fixed options, given
// as a repeated or comma-separated flag.
package setflag

import (
	"fmt"
	"slices"
	"strings"
)

func New(options ...string) *SetFlag {
	return &SetFlag{options: options}
}

type SetFlag struct {
	options []string
	values  []string
}

// List returns the chosen values in the order the options were given.
func (sf *SetFlag) List() []string {
	var values []string
	for _, opt := range sf.options {
		if slices.Contains(sf.values, opt) {
			values = append(values, opt)
		}
	}
	return values
}

func (sf *SetFlag) String() string {
	if sf == nil {
		return ""
	}
	return strings.Join(sf.List(), ",")
}

func (sf *SetFlag) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if !slices.Contains(sf.options, v) {
			return fmt.Errorf("unsupported value '%s'; use one of %s", v, strings.Join(sf.options, ", "))
		}
		if !slices.Contains(sf.values, v) {
			sf.values = append(sf.values, v)
		}
	}
	return nil
}
