/*
Package errors provides semantic error types for the recordkit library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound     = errors.New("entity not found")
	    ErrInvalidInput = errors.New("invalid input")
	    ErrIncomparable = errors.New("incomparable type")
	    ErrPlanBuild    = errors.New("lookup plan build failed")
	    ErrInvalidModel = errors.New("invalid model")
	)

Usage:

	// Identity comparison over arbitrary values
	same, err := identity.EqualAny(a, b)
	if errors.IsIncomparable(err) {
	    // one side is not an entity
	}

	// Lookup plan failures keep the key missing and wrap the builder error
	book, err := store.Find(ctx, 1, 2)
	if errors.IsPlanBuild(err) {
	    return nil, fmt.Errorf("book lookup misconfigured: %w", err)
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
