/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package flagstore

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/suparena/flagstore/datastore"
	"github.com/suparena/flagstore/errors"
	"github.com/suparena/flagstore/registry"
	"github.com/suparena/flagstore/storagemodels"
)

// Options configures a Resolver.
type Options struct {
	// Storage lists the storages overrides are read from and written to.
	// The first one is the default storage.
	Storage []datastore.Store

	// Definitions is the initial set of flag definitions.
	Definitions registry.Definitions

	// HydrateFrom lists sources whose values are applied through the write
	// path on construction and after every SetDefinitions.
	HydrateFrom []datastore.ReadOnlyStore

	// Logger receives warnings about misconfiguration. Defaults to slog.Default().
	Logger *slog.Logger
}

// Resolver resolves the effective value of feature flags.
//
// Reads and writes may run concurrently with hydration. A read issued while
// hydration is in flight can observe the value from before hydration.
type Resolver struct {
	storages *StorageMap
	defs     atomic.Pointer[registry.Snapshot]
	sources  []datastore.ReadOnlyStore
	logger   *slog.Logger

	// hydration bookkeeping, guarded by mu
	mu      sync.Mutex
	idle    *sync.Cond
	pending int
	errs    []error
}

// New builds a resolver and starts hydrating from opts.HydrateFrom. ctx
// bounds the hydration fetches, so it should outlive the first Wait.
func New(ctx context.Context, opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Resolver{
		storages: newStorageMap(logger, opts.Storage),
		sources:  opts.HydrateFrom,
		logger:   logger,
	}
	r.idle = sync.NewCond(&r.mu)
	if r.storages.Default() == nil {
		logger.Warn("resolver created without storage, flags will resolve to their defaults")
	}
	r.defs.Store(registry.NewSnapshot(opts.Definitions))
	r.hydrate(ctx)
	return r
}

func (r *Resolver) snapshot() *registry.Snapshot {
	return r.defs.Load()
}

// storageFor resolves the storage of a definition. It returns nil when there
// is no storage at all.
func (r *Resolver) storageFor(name string, def registry.Definition) datastore.Store {
	if def.Storage != "" {
		s, err := r.storages.Lookup(def.Storage)
		if err == nil {
			return s
		}
		r.logger.Warn("flag storage not registered, using default storage",
			"flag", name,
			"storage", def.Storage,
			"error", err)
	}

	s := r.storages.Default()
	if s == nil {
		r.logger.Warn("no storage available for flag", "flag", name)
	}
	return s
}

// Get returns the effective value of a flag: the stored override when there
// is one, otherwise the default. Unknown flags resolve to null. A storage read
// failure is logged and the default is returned.
func (r *Resolver) Get(ctx context.Context, name string) storagemodels.Value {
	def, ok := r.snapshot().Lookup(name)
	if !ok {
		return storagemodels.Null()
	}
	return r.resolve(ctx, name, def)
}

func (r *Resolver) resolve(ctx context.Context, name string, def registry.Definition) storagemodels.Value {
	store := r.storageFor(name, def)
	if store == nil {
		return def.Default
	}

	v, err := store.Get(ctx, name)
	if err != nil {
		r.logger.Warn("failed to read flag, using default",
			"flag", name,
			"storage", store.Name(),
			"error", errors.NewStorageError(store.Name(), "get", name, err))
		return def.Default
	}
	if v.IsNull() {
		return def.Default
	}
	return v
}

// GetDefault returns the default value of a flag, or null for unknown flags.
func (r *Resolver) GetDefault(name string) storagemodels.Value {
	def, ok := r.snapshot().Lookup(name)
	if !ok {
		return storagemodels.Null()
	}
	return def.Default
}

// IsOn reports the truthiness of the flag's effective value.
func (r *Resolver) IsOn(ctx context.Context, name string) bool {
	return r.Get(ctx, name).Truthy()
}

// IsOverridden reports whether the effective value differs from the default.
// Boolean flags compare truthiness; string and select flags compare values.
func (r *Resolver) IsOverridden(ctx context.Context, name string) bool {
	def, ok := r.snapshot().Lookup(name)
	if !ok {
		return false
	}
	return r.overridden(ctx, name, def)
}

func (r *Resolver) overridden(ctx context.Context, name string, def registry.Definition) bool {
	v := r.resolve(ctx, name, def)
	if def.Type() == storagemodels.FlagTypeBoolean {
		return v.Truthy() != def.Default.Truthy()
	}
	return !v.Equal(def.Default)
}

// Set writes a flag. A value equal to the default removes the stored
// override; any other value is stored. Unknown flags and read-only storages
// are skipped with a log entry. A storage failure is returned as a
// StorageError.
func (r *Resolver) Set(ctx context.Context, name string, value storagemodels.Value) error {
	return r.set(ctx, r.snapshot(), name, value)
}

// SetMany writes several flags one at a time in name order. A failure on one
// flag does not stop the others; all failures are returned joined.
func (r *Resolver) SetMany(ctx context.Context, values map[string]storagemodels.Value) error {
	snap := r.snapshot()

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		if err := r.set(ctx, snap, name, values[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (r *Resolver) set(ctx context.Context, snap *registry.Snapshot, name string, value storagemodels.Value) error {
	def, ok := snap.Lookup(name)
	if !ok {
		r.logger.Debug("ignoring write to undefined flag", "flag", name)
		return nil
	}

	store := r.storageFor(name, def)
	if store == nil {
		return nil
	}

	op := "set"
	if value.Equal(def.Default) {
		op = "remove"
	}

	rw, ok := datastore.AsReadWrite(store)
	if !ok {
		r.logger.Warn("attempting to write to read-only storage",
			"flag", name,
			"storage", store.Name(),
			"error", errors.NewReadOnlyError(store.Name(), op, name))
		return nil
	}

	var err error
	if op == "remove" {
		err = rw.Remove(ctx, name)
	} else {
		err = rw.Set(ctx, name, value)
	}
	if err != nil {
		return errors.NewStorageError(store.Name(), op, name, err)
	}
	return nil
}

// AllResolved returns the effective value of every defined flag.
func (r *Resolver) AllResolved(ctx context.Context) map[string]storagemodels.Value {
	snap := r.snapshot()
	result := make(map[string]storagemodels.Value, snap.Len())
	for _, name := range snap.Names() {
		def, _ := snap.Lookup(name)
		result[name] = r.resolve(ctx, name, def)
	}
	return result
}

// AllOverridden returns the effective value of every overridden flag.
func (r *Resolver) AllOverridden(ctx context.Context) map[string]storagemodels.Value {
	snap := r.snapshot()
	result := make(map[string]storagemodels.Value)
	for _, name := range snap.Names() {
		def, _ := snap.Lookup(name)
		if r.overridden(ctx, name, def) {
			result[name] = r.resolve(ctx, name, def)
		}
	}
	return result
}

// SetDefinitions replaces the flag definitions and hydrates again. Calls
// that already loaded the previous definitions finish against them.
func (r *Resolver) SetDefinitions(ctx context.Context, defs registry.Definitions) {
	r.defs.Store(registry.NewSnapshot(defs))
	r.hydrate(ctx)
}

// Definitions returns a copy of the current definitions.
func (r *Resolver) Definitions() registry.Definitions {
	return r.snapshot().Definitions()
}

// Storages returns the names of the registered storages.
func (r *Resolver) Storages() []string {
	return r.storages.Names()
}

// WatchDefinitions reloads definitions from a YAML file whenever it changes
// and applies them with SetDefinitions. After each reload it waits for the
// new hydration round and hands its result to onReload, which may be nil.
// Watching stops when ctx is done.
func (r *Resolver) WatchDefinitions(ctx context.Context, path string, onReload func(error)) error {
	return registry.Watch(ctx, path, func(defs registry.Definitions) {
		r.logger.Info("definitions reloaded", "path", path, "flags", len(defs))
		r.SetDefinitions(ctx, defs)
		err := r.Wait()
		if onReload != nil {
			onReload(err)
		}
	}, r.logger)
}
