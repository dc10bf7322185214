/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides in-memory storages for testing
package mock

import (
	"context"
	"sync"

	"github.com/suparena/flagstore/storagemodels"
)

// Store is an in-memory read-write storage. It does not list its contents,
// so it cannot be used as a hydration source.
type Store struct {
	mu          sync.RWMutex
	name        string
	data        map[string]storagemodels.Value
	getError    error
	setError    error
	removeError error
	keyErrors   map[string]error
}

// New creates a new mock Store
func New(name string) *Store {
	return &Store{
		name:      name,
		data:      make(map[string]storagemodels.Value),
		keyErrors: make(map[string]error),
	}
}

// WithGetError makes Get operations return an error
func (m *Store) WithGetError(err error) *Store {
	m.getError = err
	return m
}

// WithSetError makes Set operations return an error
func (m *Store) WithSetError(err error) *Store {
	m.setError = err
	return m
}

// WithRemoveError makes Remove operations return an error
func (m *Store) WithRemoveError(err error) *Store {
	m.removeError = err
	return m
}

// WithKeyError makes Set and Remove fail for one key only
func (m *Store) WithKeyError(key string, err error) *Store {
	m.keyErrors[key] = err
	return m
}

func (m *Store) Name() string { return m.name }

// Get returns the stored value or null
func (m *Store) Get(ctx context.Context, key string) (storagemodels.Value, error) {
	if m.getError != nil {
		return storagemodels.Null(), m.getError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

// Set stores a value
func (m *Store) Set(ctx context.Context, key string, value storagemodels.Value) error {
	if m.setError != nil {
		return m.setError
	}
	if err := m.keyErrors[key]; err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove deletes a key. Removing a missing key is not an error.
func (m *Store) Remove(ctx context.Context, key string) error {
	if m.removeError != nil {
		return m.removeError
	}
	if err := m.keyErrors[key]; err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Helper methods for testing

// Has reports whether key has an entry, null or not
func (m *Store) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// SetData directly sets the internal data map (for testing)
func (m *Store) SetData(data map[string]storagemodels.Value) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]storagemodels.Value, len(data))
	for k, v := range data {
		m.data[k] = v
	}
}

// GetData returns a copy of the internal data map (for testing)
func (m *Store) GetData() map[string]storagemodels.Value {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]storagemodels.Value, len(m.data))
	for k, v := range m.data {
		result[k] = v
	}
	return result
}

// Count returns the number of stored entries
func (m *Store) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all data
func (m *Store) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]storagemodels.Value)
}

// Source is an in-memory read-only storage usable as a hydration source.
type Source struct {
	mu       sync.RWMutex
	name     string
	values   map[string]storagemodels.Value
	allFunc  func(ctx context.Context) (map[string]storagemodels.Value, error)
	allError error
	calls    int
}

// NewSource creates a read-only source serving a copy of values
func NewSource(name string, values map[string]storagemodels.Value) *Source {
	copied := make(map[string]storagemodels.Value, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Source{name: name, values: copied}
}

// WithAllFunc replaces the All implementation, e.g. to block or delay
func (s *Source) WithAllFunc(f func(ctx context.Context) (map[string]storagemodels.Value, error)) *Source {
	s.allFunc = f
	return s
}

// WithAllError makes All return an error
func (s *Source) WithAllError(err error) *Source {
	s.allError = err
	return s
}

func (s *Source) Name() string { return s.name }

// Get returns the value for key or null
func (s *Source) Get(ctx context.Context, key string) (storagemodels.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

// All returns a copy of every value
func (s *Source) All(ctx context.Context) (map[string]storagemodels.Value, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.allError != nil {
		return nil, s.allError
	}
	if s.allFunc != nil {
		return s.allFunc(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(map[string]storagemodels.Value, len(s.values))
	for k, v := range s.values {
		result[k] = v
	}
	return result, nil
}

// Calls returns how many times All was invoked
func (s *Source) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}
