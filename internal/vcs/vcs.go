// Package vcs stamps analyzed projects with their git revision.
package vcs

import (
	"github.com/go-git/go-git/v5"
)

// Revision returns the short HEAD SHA of the repository containing dir,
// with a "-dirty" suffix when tracked files have uncommitted changes.
// Stamping is best-effort: any failure yields an empty string, never an
// error, since a project need not live in a repository at all.
func Revision(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	head, err := repo.Head()
	if err != nil {
		return ""
	}
	rev := head.Hash().String()[:12]
	if dirty(repo) {
		rev += "-dirty"
	}
	return rev
}

func dirty(repo *git.Repository) bool {
	wt, err := repo.Worktree()
	if err != nil {
		return false
	}
	status, err := wt.Status()
	if err != nil {
		return false
	}
	for _, s := range status {
		if s.Staging == git.Untracked && s.Worktree == git.Untracked {
			continue
		}
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			return true
		}
	}
	return false
}
