package git_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lingo/internal/adapters/git"
	"go.trai.ch/lingo/internal/core/domain"
)

func newTemplateRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "Main.lf"), []byte("target Cpp\n"), 0o600))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("src/Main.lf")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestClone(t *testing.T) {
	src := newTemplateRepo(t)
	dst := t.TempDir()

	require.NoError(t, git.Clone(context.Background(), src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "src", "Main.lf"))
	require.NoError(t, err)
	assert.Equal(t, "target Cpp\n", string(data))
	assert.DirExists(t, filepath.Join(dst, ".git"))
}

func TestClone_KeepsExistingFiles(t *testing.T) {
	src := newTemplateRepo(t)
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dst, domain.ManifestFileName), []byte("[package]\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "notes.txt"), []byte("keep me\n"), 0o600))

	require.NoError(t, git.Clone(context.Background(), src, dst))

	assert.FileExists(t, filepath.Join(dst, domain.ManifestFileName))
	assert.FileExists(t, filepath.Join(dst, "src", "Main.lf"))

	data, err := os.ReadFile(filepath.Join(dst, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "keep me\n", string(data))

	staged, err := filepath.Glob(filepath.Join(dst, ".lingo-template-*"))
	require.NoError(t, err)
	assert.Empty(t, staged)
}

func TestClone_ConflictLeavesDirectoryUntouched(t *testing.T) {
	src := newTemplateRepo(t)
	dst := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dst, "src"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "src", "Main.lf"), []byte("mine\n"), 0o600))

	err := git.Clone(context.Background(), src, dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTemplateConflict)

	data, err := os.ReadFile(filepath.Join(dst, "src", "Main.lf"))
	require.NoError(t, err)
	assert.Equal(t, "mine\n", string(data))
	assert.NoDirExists(t, filepath.Join(dst, ".git"))

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "src", entries[0].Name())
}

func TestClone_MissingRepository(t *testing.T) {
	err := git.Clone(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrTemplateCloneFailed.Error())
}
