/*
Package registry holds flag definitions.

A Definition names a flag's default value, the options of a select flag and
the storage its overrides are kept in:

	defs := registry.Definitions{
	    "dark_mode": {Default: storagemodels.Bool(false)},
	    "theme": {
	        Default: storagemodels.String("light"),
	        Options: []string{"light", "dark"},
	        Storage: "remote",
	    },
	}

The resolver never mutates a Definitions map. It wraps it in an immutable
Snapshot and replaces the whole snapshot when definitions change.

Definitions can be kept in YAML:

	flags:
	  dark_mode:
	    default: false
	  theme:
	    default: light
	    options: [light, dark]
	    storage: remote

and loaded with Load or LoadFile. Watch reloads such a file whenever it changes.
*/
package registry
