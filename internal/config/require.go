package config

import (
	"fmt"
	"strings"
)

// required collects the env names of settings that came back empty.
type required []string

func (r *required) str(value, envName string) {
	if strings.TrimSpace(value) == "" {
		*r = append(*r, envName)
	}
}

func (r *required) bytes(value []byte, envName string) {
	if len(value) == 0 {
		*r = append(*r, envName)
	}
}

func (r required) err() error {
	if len(r) == 0 {
		return nil
	}
	return fmt.Errorf("missing required env %s", strings.Join(r, ", "))
}
