package inventory

import "errors"

var (
	// ErrUnsafeEnvironment indicates temperature or humidity above the configured thresholds.
	ErrUnsafeEnvironment = errors.New("unsafe storage environment")
	// ErrDuplicateBin indicates a bin with the same identifier already exists.
	ErrDuplicateBin = errors.New("bin already exists")
	// ErrUnknownBin indicates the referenced bin is not registered.
	ErrUnknownBin = errors.New("unknown bin")
	// ErrCapacityExceeded indicates an add would push the bin over its maximum quantity.
	ErrCapacityExceeded = errors.New("bin capacity exceeded")
	// ErrItemNotFound indicates no item with the requested name is stored in the bin.
	ErrItemNotFound = errors.New("item not found")
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
)
