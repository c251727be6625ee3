package storage

import (
	"fmt"

	"github.com/JaimeStill/optigate/pkg/faults"
)

var (
	// ErrNotFound indicates the requested blob does not exist.
	ErrNotFound = fmt.Errorf("blob %w", faults.ErrNotFound)
	// ErrEmptyKey indicates an empty storage key was provided.
	ErrEmptyKey = fmt.Errorf("storage key must not be empty: %w", faults.ErrValidation)
	// ErrInvalidKey indicates the storage key contains a path traversal segment.
	ErrInvalidKey = fmt.Errorf("storage key contains invalid path segment: %w", faults.ErrValidation)
)
