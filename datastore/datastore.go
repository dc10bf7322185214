/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"strings"

	"github.com/suparena/flagstore/storagemodels"
)

// Store is the capability every storage has: a name and a point read.
// Get returns a null Value when nothing is stored under key.
type Store interface {
	Name() string

	Get(ctx context.Context, key string) (storagemodels.Value, error)
}

// ReadWriteStore is a storage that persists overrides.
type ReadWriteStore interface {
	Store

	Set(ctx context.Context, key string, value storagemodels.Value) error

	Remove(ctx context.Context, key string) error
}

// ReadOnlyStore is a storage that can hand over everything it holds at once.
// It is used as a hydration source.
type ReadOnlyStore interface {
	Store

	All(ctx context.Context) (map[string]storagemodels.Value, error)
}

// Capability is a set of storage capabilities.
type Capability uint8

const (
	CapRead Capability = 1 << iota
	CapWrite
	CapList
)

// Has reports whether c includes every capability in other.
func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	var parts []string
	if c.Has(CapRead) {
		parts = append(parts, "read")
	}
	if c.Has(CapWrite) {
		parts = append(parts, "write")
	}
	if c.Has(CapList) {
		parts = append(parts, "list")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Capabilities reports what s supports. A nil store supports nothing.
func Capabilities(s Store) Capability {
	if s == nil {
		return 0
	}
	c := CapRead
	if _, ok := s.(ReadWriteStore); ok {
		c |= CapWrite
	}
	if _, ok := s.(ReadOnlyStore); ok {
		c |= CapList
	}
	return c
}

// AsReadWrite returns s as a ReadWriteStore when it can be written.
func AsReadWrite(s Store) (ReadWriteStore, bool) {
	if s == nil {
		return nil, false
	}
	rw, ok := s.(ReadWriteStore)
	return rw, ok
}

// AsReadOnly returns s as a ReadOnlyStore when it can list its contents.
func AsReadOnly(s Store) (ReadOnlyStore, bool) {
	if s == nil {
		return nil, false
	}
	ro, ok := s.(ReadOnlyStore)
	return ro, ok
}
