/*
Package storagemodels defines the data structures shared by the resolver and
every storage backend.

Key Types:

Value:
A flag value is null, a boolean or a string. The zero Value is null, and a
null value read from a storage means "no override stored":

	v := storagemodels.Bool(true)
	s := storagemodels.String("dark")
	n := storagemodels.Null()

	v.Truthy()        // true
	s.Equal(n)        // false
	storagemodels.ParseValue("false") // Bool(false)

Value knows how to encode itself as JSON, YAML and DynamoDB attribute values,
so backends never see anything other than these three shapes.

FlagType:
The type a definition resolves to (boolean, string or select).

ScanOptions:
Configuration for backends that list their contents page by page:

	opts := []ScanOption{
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
