/*
Package datastore defines the storage capabilities the flag resolver consumes.

Every storage is a Store. What else it can do is expressed by two interfaces:

	type ReadWriteStore interface {
	    Store
	    Set(ctx context.Context, key string, value storagemodels.Value) error
	    Remove(ctx context.Context, key string) error
	}

	type ReadOnlyStore interface {
	    Store
	    All(ctx context.Context) (map[string]storagemodels.Value, error)
	}

A backend may implement either side or both. The resolver checks with
AsReadWrite before writing and treats a store without write capability as
read-only: the write is skipped and a warning is logged.

Implementations:
  - mock: in-memory store and read-only source for tests
  - ddb: DynamoDB, one item per flag
  - sqlstore: SQLite table shared by any number of named stores
  - yamlfile: a YAML mapping on disk
  - env: read-only, environment variables and .env files
  - httpsource: read-only, a JSON object fetched over HTTP
*/
package datastore
