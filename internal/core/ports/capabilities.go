package ports

import "context"

// Which resolves an executable name to its absolute path.
// It returns an error matching domain.ErrToolNotFound when the tool is missing.
type Which func(name string) (string, error)

// GitClone clones the repository at url into dir.
type GitClone func(ctx context.Context, url, dir string) error
