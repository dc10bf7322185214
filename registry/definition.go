/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sort"

	"github.com/suparena/flagstore/storagemodels"
)

// Definition describes a flag: its default, the values a select flag may take
// and the storage its overrides live in. An empty Storage means the default
// storage.
type Definition struct {
	Default     storagemodels.Value `yaml:"default" json:"default"`
	Options     []string            `yaml:"options,omitempty" json:"options,omitempty"`
	Storage     string              `yaml:"storage,omitempty" json:"storage,omitempty"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`
}

// Type returns select when options are listed, string when the default is a
// string and boolean otherwise.
func (d Definition) Type() storagemodels.FlagType {
	if len(d.Options) > 0 {
		return storagemodels.FlagTypeSelect
	}
	if d.Default.Kind() == storagemodels.KindString {
		return storagemodels.FlagTypeString
	}
	return storagemodels.FlagTypeBoolean
}

func (d Definition) clone() Definition {
	if d.Options != nil {
		d.Options = append([]string(nil), d.Options...)
	}
	return d
}

// Definitions maps flag names to their definitions.
type Definitions map[string]Definition

// Clone returns a deep copy of defs.
func (defs Definitions) Clone() Definitions {
	out := make(Definitions, len(defs))
	for name, def := range defs {
		out[name] = def.clone()
	}
	return out
}

// Names returns the flag names in sorted order.
func (defs Definitions) Names() []string {
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot is an immutable view of a Definitions map. It is safe for
// concurrent use.
type Snapshot struct {
	defs  Definitions
	names []string
}

// NewSnapshot copies defs into a new Snapshot. A nil map yields an empty one.
func NewSnapshot(defs Definitions) *Snapshot {
	cloned := defs.Clone()
	return &Snapshot{
		defs:  cloned,
		names: cloned.Names(),
	}
}

// Lookup returns the definition registered under name.
func (s *Snapshot) Lookup(name string) (Definition, bool) {
	def, ok := s.defs[name]
	if !ok {
		return Definition{}, false
	}
	return def.clone(), true
}

// Names returns the defined flag names in sorted order.
func (s *Snapshot) Names() []string {
	return append([]string(nil), s.names...)
}

func (s *Snapshot) Len() int { return len(s.defs) }

// Definitions returns a copy of the snapshot's definitions.
func (s *Snapshot) Definitions() Definitions {
	return s.defs.Clone()
}
