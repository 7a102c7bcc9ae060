package comp

import (
	"errors"

	"github.com/vk/lumengo/internal/serial"
	"github.com/vk/lumengo/internal/vals"
)

// Error kinds surfaced by the component runtime. All are propagated to the
// caller; none are retried internally.
var (
	// ErrUninitialized reports use of the runtime before a root component
	// has been bound (or after shutdown).
	ErrUninitialized = errors.New("component runtime is not initialized")

	// ErrDuplicateKey reports re-registration of an existing type key.
	ErrDuplicateKey = errors.New("type key already registered")

	// ErrDuplicateName reports a named-child collision between siblings.
	ErrDuplicateName = errors.New("child name already taken")

	// ErrUnknownType reports a create call with an unregistered type key.
	ErrUnknownType = errors.New("unknown type key")

	// ErrInvalidArgument reports a malformed or missing configuration
	// field. It is the same sentinel the property accessors return, so a
	// construct failure tests identically wherever it originated.
	ErrInvalidArgument = vals.ErrInvalidArgument

	// ErrLocatorNotFound reports a locator that does not currently resolve
	// to a live component.
	ErrLocatorNotFound = errors.New("locator not found")

	// ErrSerializationTypeMismatch reports an archive record whose type key
	// is not registered in the live process, or whose record version does
	// not match the reader's.
	ErrSerializationTypeMismatch = errors.New("archive type mismatch")

	// ErrSerializationTruncated reports an archive that ended before the
	// expected structure was complete.
	ErrSerializationTruncated = serial.ErrTruncated
)
