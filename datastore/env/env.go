/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package env provides a read-only flag source backed by environment
// variables and .env files.
//
// A variable named <prefix><FLAG> sets flag "flag": with prefix "FLAG_",
// FLAG_DARK_MODE=true yields dark_mode = true. Values are parsed with
// storagemodels.ParseValue. Variables from the process environment win over
// values read from .env files.
package env

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/suparena/flagstore/storagemodels"
)

// Source is a read-only flag source over environment variables.
type Source struct {
	name    string
	prefix  string
	files   []string
	environ func() []string
}

// New creates a source named name. Files are .env files read on every call
// to All, in order; later files win over earlier ones.
func New(name, prefix string, files ...string) *Source {
	return &Source{
		name:    name,
		prefix:  prefix,
		files:   files,
		environ: os.Environ,
	}
}

func (s *Source) Name() string { return s.name }

// Get returns the value for key or null.
func (s *Source) Get(ctx context.Context, key string) (storagemodels.Value, error) {
	all, err := s.All(ctx)
	if err != nil {
		return storagemodels.Null(), err
	}
	return all[key], nil
}

// All returns every flag visible through the prefix.
func (s *Source) All(ctx context.Context) (map[string]storagemodels.Value, error) {
	result := make(map[string]storagemodels.Value)

	for _, file := range s.files {
		vars, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		for k, v := range vars {
			s.collect(result, k, v)
		}
	}

	for _, kv := range s.environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		s.collect(result, k, v)
	}

	return result, nil
}

func (s *Source) collect(into map[string]storagemodels.Value, key, raw string) {
	flag, ok := s.flagName(key)
	if !ok {
		return
	}
	into[flag] = storagemodels.ParseValue(raw)
}

// flagName maps FLAG_DARK_MODE to dark_mode for prefix FLAG_.
func (s *Source) flagName(key string) (string, bool) {
	if !strings.HasPrefix(key, s.prefix) {
		return "", false
	}
	name := strings.TrimPrefix(key, s.prefix)
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}
