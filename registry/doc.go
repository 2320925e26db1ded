/*
Package registry manages type registration and key map lookup for recordkit.

The registry system enables:
  - Polymorphic loading of entities stored together, resolved by their EntityType attribute
  - Flexible DynamoDB key patterns through key maps

Type Registry:
Maps entity type names to factories:

	registry.Register[Book]()
	e, err := registry.NewEntity("Book")

Key Map Registry:
Associates Go types with DynamoDB key templates built from their columns:

	registry.RegisterKeyMap[Book](map[string]string{
	    "PK": "AUTHOR#{author_id}",
	    "SK": "BOOK#{number}",
	})

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
