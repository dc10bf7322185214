/*
Package ddb provides a DynamoDB storage for flag overrides.

Each store owns one partition of a single table. Every override is one item:

	PK        = "FLAGSTORE#<store name>"
	SK        = "FLAG#<flag name>"
	Flag      = flag name
	Value     = NULL, BOOL or S attribute
	UpdatedAt = RFC 3339 timestamp

Several named stores can therefore share a table. Because a store can list its
partition, it is both a read-write storage and a hydration source.

Listing pages through the partition and retries throttling errors:

	store := ddb.New("remote", "flags", client,
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.ScanProgress) {
	        log.Printf("read %d overrides", p.ItemsProcessed)
	    }),
	)

Credentials can come from the environment (and .env files):

	cfg, err := ddb.ConfigFromEnv()
	store, err := ddb.NewDynamodbDataStore(ctx, "remote", cfg)
*/
package ddb
