/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package yamlfile provides a flag storage kept in a YAML file:
//
//	dark_mode: true
//	theme: dark
//
// The file is read once on Open and rewritten after every change. A missing
// file is an empty store and is created on the first write.
package yamlfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/suparena/flagstore/storagemodels"
	"gopkg.in/yaml.v3"
)

// Store is a read-write flag storage backed by a YAML file.
type Store struct {
	mu   sync.RWMutex
	name string
	path string
	data map[string]storagemodels.Value
}

// Open loads the file at path into a store named name.
func Open(name, path string) (*Store, error) {
	s := &Store{
		name: name,
		path: path,
		data: make(map[string]storagemodels.Value),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if s.data == nil {
		s.data = make(map[string]storagemodels.Value)
	}
	return s, nil
}

func (s *Store) Name() string { return s.name }

func (s *Store) Path() string { return s.path }

// Get returns the stored value or null
func (s *Store) Get(ctx context.Context, key string) (storagemodels.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key], nil
}

// Set stores a value and rewrites the file
func (s *Store) Set(ctx context.Context, key string, value storagemodels.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = value
	if err := s.save(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// Remove deletes a key and rewrites the file
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	if !had {
		return nil
	}
	delete(s.data, key)
	if err := s.save(); err != nil {
		s.data[key] = prev
		return err
	}
	return nil
}

// All returns a copy of every stored value
func (s *Store) All(ctx context.Context) (map[string]storagemodels.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]storagemodels.Value, len(s.data))
	for k, v := range s.data {
		result[k] = v
	}
	return result, nil
}

// save writes the file through a temp file and rename. Caller holds mu.
func (s *Store) save() error {
	data, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode flags: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
