// Package pool provides managed goroutine pools built on ants.
package pool

import "errors"

var (
	// ErrPoolClosed is returned when submitting to a released pool.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrPoolNotFound is returned when a named pool is not registered.
	ErrPoolNotFound = errors.New("pool not found")

	// ErrPoolAlreadyExists is returned on duplicate registration.
	ErrPoolAlreadyExists = errors.New("pool already exists")

	// ErrInvalidPoolConfig indicates an invalid pool configuration.
	ErrInvalidPoolConfig = errors.New("invalid pool config")

	// ErrManagerNotInitialized is returned when the global manager is unset.
	ErrManagerNotInitialized = errors.New("pool manager not initialized")

	// ErrPoolOverload is returned when a nonblocking pool is full.
	ErrPoolOverload = errors.New("pool overloaded")
)
