/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flagstore

import (
	"log/slog"
	"sort"

	"github.com/suparena/flagstore/datastore"
	"github.com/suparena/flagstore/errors"
)

// DefaultStorageName is the alias bound to the first registered storage.
const DefaultStorageName = "_default"

// StorageMap is a name-keyed table of storages. It is built once and not
// modified afterwards, so it is safe for concurrent use.
type StorageMap struct {
	stores map[string]datastore.Store
	def    datastore.Store
}

// NewStorageMap registers stores under their names and aliases the first one
// as DefaultStorageName. Nil stores are skipped. When two stores share a name
// the later one wins and a warning is logged.
func NewStorageMap(stores ...datastore.Store) *StorageMap {
	return newStorageMap(slog.Default(), stores)
}

func newStorageMap(logger *slog.Logger, stores []datastore.Store) *StorageMap {
	sm := &StorageMap{
		stores: make(map[string]datastore.Store, len(stores)),
	}
	for _, s := range stores {
		if s == nil {
			continue
		}
		if sm.def == nil {
			sm.def = s
		}
		name := s.Name()
		if _, exists := sm.stores[name]; exists || name == DefaultStorageName {
			logger.Warn("storage name registered twice",
				"storage", name,
				"error", errors.NewAlreadyExistsError("storage", name))
		}
		sm.stores[name] = s
	}
	return sm
}

// Lookup returns the storage registered under name. DefaultStorageName
// resolves to the default storage.
func (sm *StorageMap) Lookup(name string) (datastore.Store, error) {
	if name == DefaultStorageName {
		if sm.def == nil {
			return nil, errors.NewNotFoundError("storage", name)
		}
		return sm.def, nil
	}
	s, ok := sm.stores[name]
	if !ok {
		return nil, errors.NewNotFoundError("storage", name)
	}
	return s, nil
}

// Default returns the default storage, or nil when the map is empty.
func (sm *StorageMap) Default() datastore.Store {
	return sm.def
}

// Names returns the registered storage names in sorted order, without the
// default alias.
func (sm *StorageMap) Names() []string {
	names := make([]string, 0, len(sm.stores))
	for name := range sm.stores {
		if name == DefaultStorageName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered storages.
func (sm *StorageMap) Len() int {
	return len(sm.Names())
}
