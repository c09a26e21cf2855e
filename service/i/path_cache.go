package i

import (
	"context"
	"errors"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
)

var (
	ErrLayoutNotFound = errors.New("layout not found")
	ErrPathNotStored  = errors.New("path result computed but not stored")
)

// PathCache stores computed paths by key.
type PathCache interface {
	// GetOrFill returns the cached result for key, or calls fill, stores its
	// result and returns it. The bool reports whether the result came from the cache.
	// An error wrapping ErrPathNotStored comes with a valid, freshly filled result.
	GetOrFill(ctx context.Context, key string, fill func() (domain.PathResult, error)) (domain.PathResult, bool, error)
}
