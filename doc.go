/*
Package flagstore resolves the effective value of feature flags from flag
definitions and pluggable storage backends.

A flag has a definition (default value, optional select options and the name
of the storage it lives in). Its effective value is the override held by that
storage when there is one, otherwise the default. Writes keep storages sparse:
setting a flag to its default removes the override instead of storing it.

Key Features:
  - Boolean, string and select flags with override detection
  - Several named storages, the first one acting as default
  - Capability checks at call time: read-only storages are never written
  - Hydration from read-only sources on construction and on definition reload
  - Storage backends for DynamoDB, SQLite, YAML files, environment variables
    and HTTP endpoints
  - Semantic error types and structured logging through log/slog

Basic Usage:

	overrides, _ := yamlfile.Open("local", "overrides.yaml")
	defs, _ := registry.LoadFile("flags.yaml")

	r := flagstore.New(ctx, flagstore.Options{
		Storage:     []datastore.Store{overrides},
		Definitions: defs,
		HydrateFrom: []datastore.ReadOnlyStore{env.New("env", "FLAG_")},
	})
	if err := r.Wait(); err != nil {
		log.Printf("hydration: %v", err)
	}

	if r.IsOn(ctx, "dark_mode") {
		// ...
	}
	_ = r.Set(ctx, "theme", storagemodels.String("dark"))

For more information, see the documentation at https://github.com/suparena/flagstore
*/
package flagstore
