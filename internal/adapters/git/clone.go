// Package git clones project templates with go-git.
package git

import (
	"context"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"go.trai.ch/lingo/internal/core/domain"
	"go.trai.ch/lingo/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	stagingPattern = ".lingo-template-*"
	dirPerm        = 0o755
)

// Clone clones the repository at url into dir, which may already hold files.
//
// The template is staged next to the existing files and its top-level entries
// are moved in afterwards. When any entry already exists in dir nothing is
// moved and ErrTemplateConflict is returned.
func Clone(ctx context.Context, url, dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create project directory"), "dir", dir)
	}

	staging, err := os.MkdirTemp(dir, stagingPattern)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create staging directory"), "dir", dir)
	}
	defer func() {
		_ = os.RemoveAll(staging)
	}()

	_, err = gogit.PlainCloneContext(ctx, staging, false, &gogit.CloneOptions{
		URL: url,
	})
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, domain.ErrTemplateCloneFailed.Error()), "url", url), "dir", dir)
	}

	entries, err := os.ReadDir(staging)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read cloned template"), "dir", staging)
	}

	for _, entry := range entries {
		target := filepath.Join(dir, entry.Name())
		if _, err := os.Lstat(target); err == nil {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrTemplateConflict, entry.Name()), "path", target), "url", url)
		}
	}

	for _, entry := range entries {
		from := filepath.Join(staging, entry.Name())
		to := filepath.Join(dir, entry.Name())
		if err := os.Rename(from, to); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to move template entry"), "path", to)
		}
	}
	return nil
}

var _ ports.GitClone = Clone
