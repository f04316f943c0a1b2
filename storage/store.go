package storage

import "context"

// Store is a small key/value persistence layer for client-side session state.
// It plays the part browser local storage plays for a web front-end: values are
// strings under well known keys and live for the lifetime of the process or longer.
type Store interface {
	// Get returns the value stored under key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(ctx context.Context, key, value string) error

	// Delete removes the keys, missing keys are not an error
	Delete(ctx context.Context, keys ...string) error

	// Take returns the value under key and removes it in one step.
	// A second Take of the same key reports found == false.
	Take(ctx context.Context, key string) (string, bool, error)
}
