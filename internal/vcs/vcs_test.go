package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevisionOutsideRepository(t *testing.T) {
	assert.Empty(t, Revision(t.TempDir()))
}

func TestRevisionOfCommittedRepo(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.arc"), []byte("contract C {}\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("main.arc")
	require.NoError(t, err)
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	rev := Revision(dir)
	assert.Equal(t, hash.String()[:12], rev)

	// A modified tracked file marks the revision dirty; untracked files
	// do not.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	assert.Equal(t, hash.String()[:12], Revision(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.arc"), []byte("contract D {}\n"), 0o644))
	assert.Equal(t, hash.String()[:12]+"-dirty", Revision(dir))
}
