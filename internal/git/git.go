// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package git reads the revision of the repository a diagram was
// generated from.
package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

const shortHashLen = 12

// ErrNoGit is returned when the working directory is not a git repository.
var ErrNoGit = errors.New("not a git repository")

// ErrNoCommits is returned when the repository has no HEAD commit yet.
var ErrNoCommits = errors.New("repository has no commits")

// Revision identifies the checked-out state of a repository.
type Revision struct {
	Hash   string // Full HEAD commit hash
	Branch string // Short branch name; empty when HEAD is detached
	Dirty  bool   // Worktree has uncommitted changes
}

// Short returns the abbreviated hash.
func (r Revision) Short() string {
	if len(r.Hash) > shortHashLen {
		return r.Hash[:shortHashLen]
	}
	return r.Hash
}

// Stamp returns the abbreviated hash with a -dirty suffix when the
// worktree has changes.
func (r Revision) Stamp() string {
	if r.Dirty {
		return r.Short() + "-dirty"
	}
	return r.Short()
}

// Repo wraps a go-git repository for the operations we need.
type Repo struct {
	repo *gogit.Repository
}

// Open opens the repository containing workDir, searching parent
// directories. Returns ErrNoGit if there is none.
func Open(workDir string) (*Repo, error) {
	r, err := gogit.PlainOpenWithOptions(workDir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoGit, err)
	}
	return &Repo{repo: r}, nil
}

// IsDirty returns true if the working tree has uncommitted changes
// (either staged or unstaged).
func (r *Repo) IsDirty() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("getting worktree: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("getting status: %w", err)
	}

	return !status.IsClean(), nil
}

// Head returns the revision checked out in the repository.
func (r *Repo) Head() (Revision, error) {
	head, err := r.repo.Head()
	if err != nil {
		return Revision{}, fmt.Errorf("%w: %v", ErrNoCommits, err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return Revision{}, fmt.Errorf("getting commit: %w", err)
	}

	rev := Revision{Hash: commit.Hash.String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}
	if rev.Dirty, err = r.IsDirty(); err != nil {
		return Revision{}, err
	}
	return rev, nil
}

// Stamp opens the repository at workDir and returns its revision stamp.
func Stamp(workDir string) (string, error) {
	repo, err := Open(workDir)
	if err != nil {
		return "", err
	}
	rev, err := repo.Head()
	if err != nil {
		return "", err
	}
	return rev.Stamp(), nil
}
