/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"io"
	"os"

	"github.com/suparena/flagstore/errors"
	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a definitions file.
type file struct {
	Flags Definitions `yaml:"flags"`
}

// Load reads YAML flag definitions from r.
func Load(r io.Reader) (Definitions, error) {
	var f file
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return Definitions{}, nil
		}
		return nil, fmt.Errorf("failed to decode definitions: %w", err)
	}
	if f.Flags == nil {
		return Definitions{}, nil
	}
	for name := range f.Flags {
		if name == "" {
			return nil, errors.NewValidationError("flags", "empty flag name")
		}
	}
	return f.Flags, nil
}

// LoadFile reads YAML flag definitions from path.
func LoadFile(path string) (Definitions, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definitions: %w", err)
	}
	defer fh.Close()

	defs, err := Load(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}
